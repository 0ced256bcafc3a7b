package internal

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.App.HTTP.Address() != ":3460" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
	if got, want := cfg.Snapshot.Path(), filepath.Join("data", "snapshot.json"); got != want {
		t.Errorf("snapshot path = %q, want %q", got, want)
	}
}

func TestHTTPConfig_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := NewDefaultConfig()
		cfg.App.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
}

func TestHTTPConfig_EmptyCORSOrigin(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.CORSOrigins = []string{"http://localhost:5173", ""}
	if err := cfg.Validate(); err == nil {
		t.Error("empty origin should fail validation")
	}
}

func TestApplicationConfig_LogFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.LogFormat = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty format should default to json: %v", err)
	}
	if cfg.App.LogFormat != LogFormatJSON {
		t.Errorf("format = %q", cfg.App.LogFormat)
	}

	cfg.App.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log format should fail validation")
	}
}

func TestHTTPConfig_NegativeUploadLimit(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.UploadsPerMinute = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative upload limit should fail validation")
	}
}

func TestSnapshotConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SnapshotConfig
		wantErr bool
	}{
		{"default", SnapshotConfig{Dir: "./data", File: "snapshot.json"}, false},
		{"nested file", SnapshotConfig{Dir: "./data", File: "run/snapshot.json"}, false},
		{"missing dir", SnapshotConfig{File: "snapshot.json"}, true},
		{"missing file", SnapshotConfig{Dir: "./data"}, true},
		{"absolute file", SnapshotConfig{Dir: "./data", File: "/etc/passwd"}, true},
		{"escaping file", SnapshotConfig{Dir: "./data", File: "../snapshot.json"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSSEConfig_NegativeThrottle(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SSE.GraphThrottle = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("negative throttle should fail validation")
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
