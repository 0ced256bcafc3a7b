package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/lexicon/internal"
	"github.com/starford/lexicon/internal/network"
	"github.com/starford/lexicon/internal/parser"
	pkgconfig "github.com/starford/lexicon/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// stdout carries the protocol.
	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithVersion(version),
		internal.WithLogOutput(os.Stderr),
	)
}

// build prints the network payload for a snapshot file without starting
// the server. The file defaults to the configured snapshot.
func build(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path = cfg.Snapshot.Path()
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	snap, err := parser.Parse(data)
	if err != nil {
		return err
	}
	payload, err := network.Build(snap)
	if err != nil {
		return err
	}

	var out any = payload
	if cmd.IsSet("summary") {
		out = payload.Summary(int(cmd.Int("summary")))
	}

	enc := json.NewEncoder(os.Stdout)
	if cmd.Bool("pretty") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func main() {
	cmd := &cli.Command{
		Name:    "lexicon",
		Usage:   "Concept network server for an evolving synthetic lexicon",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API, event stream and static client (default)",
				Action: serve,
			},
			{
				Name:      "build",
				Usage:     "Build the network payload for a snapshot file and print it as JSON",
				ArgsUsage: "[snapshot.json | -]",
				Action:    build,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Indent the JSON output",
					},
					&cli.IntFlag{
						Name:  "summary",
						Usage: "Print a summary with the top N living words instead of the full payload",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve read-only lexicon tools over MCP on stdin/stdout",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("application error", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}
