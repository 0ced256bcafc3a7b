package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/models"
)

func compound(word, meaning string, born int64, meanings ...string) models.Compound {
	return models.Compound{Word: word, Meanings: meanings, CompoundMeaning: meaning, Born: born}
}

func TestBuild_UndirectedPairCollapses(t *testing.T) {
	snap := &models.Snapshot{
		Generation: 5,
		Compounds: []models.Compound{
			compound("windsong", "melody", 1, "wind", "sound"),
			compound("soundwind", "echo", 2, "sound", "wind"),
		},
	}

	p, err := Build(snap)
	require.NoError(t, err)

	require.Len(t, p.Edges, 1)
	e := p.Edges[0]
	assert.Equal(t, "sound", e.Source)
	assert.Equal(t, "wind", e.Target)
	assert.Equal(t, 2, e.Weight)
	assert.Equal(t, []EdgeCompound{
		{Word: "windsong", CompoundMeaning: "melody", Born: 1},
		{Word: "soundwind", CompoundMeaning: "echo", Born: 2},
	}, e.Compounds)

	assert.Equal(t, []Node{
		{ID: "wind", Count: 2, Partners: 1, Category: CategoryNatural},
		{ID: "sound", Count: 2, Partners: 1, Category: CategoryUnknown},
	}, p.Nodes)
	assert.Equal(t, int64(5), p.Generation)
	assert.Equal(t, 2, p.TotalCompounds)
}

func TestBuild_ShortMeaningsSkippedButCounted(t *testing.T) {
	snap := &models.Snapshot{
		Compounds: []models.Compound{
			compound("lonepath", "alone", 3, "lonepath"),
			{Word: "broken", CompoundMeaning: "bad meanings"},
			compound("firestone", "ember", 4, "fire", "stone", "ignored"),
		},
	}

	p, err := Build(snap)
	require.NoError(t, err)

	assert.Equal(t, 3, p.TotalCompounds)
	require.Len(t, p.Nodes, 2)
	assert.Equal(t, "fire", p.Nodes[0].ID)
	assert.Equal(t, "stone", p.Nodes[1].ID)
	require.Len(t, p.Edges, 1)
	assert.Equal(t, "fire", p.Edges[0].Source)
	assert.Equal(t, "stone", p.Edges[0].Target)
	for _, n := range p.Nodes {
		assert.NotEqual(t, "lonepath", n.ID)
		assert.NotEqual(t, "ignored", n.ID)
	}
}

func TestBuild_LivingRankedByFitness(t *testing.T) {
	snap := &models.Snapshot{
		Generation: 10,
		Words: []models.Word{
			{Word: "echoflow", Meaning: "m", Category: "c", Fitness: 3, Born: 0},
			{Word: "stillwave", Meaning: "m2", Category: "c2", Fitness: 7, Born: 2},
		},
	}

	p, err := Build(snap)
	require.NoError(t, err)

	assert.Equal(t, []LivingWord{
		{Word: "stillwave", Meaning: "m2", Category: "c2", Fitness: 7, Age: 8},
		{Word: "echoflow", Meaning: "m", Category: "c", Fitness: 3, Age: 10},
	}, p.Living)
}

func TestRankLiving_TiesBreakByWord(t *testing.T) {
	words := []models.Word{
		{Word: "zeta", Fitness: 1},
		{Word: "beta", Fitness: 2},
		{Word: "alpha", Fitness: 1},
		{Word: "gamma", Fitness: 2},
	}

	got := RankLiving(0, words)

	var order []string
	for _, w := range got {
		order = append(order, w.Word)
	}
	assert.Equal(t, []string{"beta", "gamma", "alpha", "zeta"}, order)
}

func TestBuild_SelfPairKeepsLiteralBehavior(t *testing.T) {
	snap := &models.Snapshot{
		Compounds: []models.Compound{
			compound("firefire", "blaze", 1, "fire", "fire"),
			compound("firewater", "steam", 2, "fire", "water"),
		},
	}

	p, err := Build(snap)
	require.NoError(t, err)

	require.Len(t, p.Nodes, 2)
	fire := p.Nodes[0]
	assert.Equal(t, "fire", fire.ID)
	assert.Equal(t, 3, fire.Count)
	// fire is its own partner, then water.
	assert.Equal(t, 2, fire.Partners)

	require.Len(t, p.Edges, 2)
	assert.Equal(t, "fire", p.Edges[0].Source)
	assert.Equal(t, "fire", p.Edges[0].Target)
	assert.Equal(t, 1, p.Edges[0].Weight)

	g := Aggregate(snap.Compounds)
	detail, ok := g.Concept("fire")
	require.True(t, ok)
	assert.Equal(t, []string{"firefire", "firefire", "firewater"}, detail.Words)
}

func TestBuild_PassThroughDefaults(t *testing.T) {
	p, err := Build(&models.Snapshot{})
	require.NoError(t, err)

	assert.JSONEq(t, `{}`, string(p.Stats))
	assert.NotNil(t, p.SoundShifts)
	assert.NotNil(t, p.Nodes)
	assert.NotNil(t, p.Edges)
	assert.NotNil(t, p.Living)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"generation": 0,
		"stats": {},
		"nodes": [],
		"edges": [],
		"living": [],
		"soundShifts": [],
		"totalCompounds": 0
	}`, string(raw))
}

func TestBuild_PassThroughOpaqueFields(t *testing.T) {
	snap := &models.Snapshot{
		Generation:  42,
		Stats:       json.RawMessage(`{"births":3,"nested":{"a":[1,2]}}`),
		SoundShifts: []json.RawMessage{json.RawMessage(`{"from":"k","to":"g"}`), json.RawMessage(`"raw"`)},
	}

	p, err := Build(snap)
	require.NoError(t, err)

	assert.JSONEq(t, `{"births":3,"nested":{"a":[1,2]}}`, string(p.Stats))
	require.Len(t, p.SoundShifts, 2)
	assert.JSONEq(t, `{"from":"k","to":"g"}`, string(p.SoundShifts[0]))
	assert.JSONEq(t, `"raw"`, string(p.SoundShifts[1]))
}

func TestBuild_NilSnapshot(t *testing.T) {
	_, err := Build(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrMalformedSnapshot))
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	snap := &models.Snapshot{
		Generation: 9,
		Compounds: []models.Compound{
			compound("riverstone", "pebble", 1, "stone", "river"),
		},
		Words: []models.Word{
			{Word: "b", Fitness: 1},
			{Word: "a", Fitness: 5},
		},
	}

	_, err := Build(snap)
	require.NoError(t, err)

	assert.Equal(t, []string{"stone", "river"}, snap.Compounds[0].Meanings)
	assert.Equal(t, "b", snap.Words[0].Word)
	assert.Equal(t, "a", snap.Words[1].Word)
}

// generatedSnapshot builds a deterministic snapshot without self pairs.
func generatedSnapshot(n int) *models.Snapshot {
	ids := []string{"wind", "sound", "fire", "slow", "path", "between", "echo", "move", "zephyr", "Fire"}
	snap := &models.Snapshot{Generation: int64(n)}
	for i := 0; i < n; i++ {
		a := ids[i%len(ids)]
		b := ids[(i*3+1)%len(ids)]
		if a == b {
			b = ids[(i+1)%len(ids)]
		}
		snap.Compounds = append(snap.Compounds, compound(fmt.Sprintf("w%d", i), "m", int64(i), a, b))
		snap.Words = append(snap.Words, models.Word{Word: fmt.Sprintf("w%d", i), Fitness: float64((i * 7) % 11), Born: int64(i)})
	}
	return snap
}

func TestBuild_Invariants(t *testing.T) {
	snap := generatedSnapshot(200)

	p, err := Build(snap)
	require.NoError(t, err)

	totalCount, totalWeight := 0, 0
	for _, n := range p.Nodes {
		totalCount += n.Count
		assert.Contains(t, Categories(), n.Category)
		assert.Equal(t, Categorize(n.ID), n.Category)
	}

	seen := make(map[string]bool)
	for _, e := range p.Edges {
		totalWeight += e.Weight
		assert.Equal(t, e.Weight, len(e.Compounds))
		assert.LessOrEqual(t, e.Source, e.Target)

		key := e.Source + keySep + e.Target
		assert.False(t, seen[key], "duplicate edge %s", key)
		seen[key] = true

		matching := 0
		for _, c := range snap.Compounds {
			s, tg := sortedPair(c.Meanings[0], c.Meanings[1])
			if s == e.Source && tg == e.Target {
				matching++
			}
		}
		assert.Equal(t, matching, e.Weight)
	}
	assert.Equal(t, 2*totalWeight, totalCount)

	for i := 1; i < len(p.Living); i++ {
		assert.GreaterOrEqual(t, p.Living[i-1].Fitness, p.Living[i].Fitness)
	}
	assert.Equal(t, len(snap.Compounds), p.TotalCompounds)
	assert.Len(t, p.Living, len(snap.Words))
}

func TestGraph_Concept(t *testing.T) {
	g := Aggregate([]models.Compound{
		compound("windsong", "melody", 1, "wind", "sound"),
		compound("firewind", "gale", 2, "fire", "wind"),
		compound("firestone", "ember", 3, "fire", "stone"),
	})

	detail, ok := g.Concept("wind")
	require.True(t, ok)
	assert.Equal(t, Node{ID: "wind", Count: 2, Partners: 2, Category: CategoryNatural}, detail.Node)
	assert.Equal(t, []string{"windsong", "firewind"}, detail.Words)
	require.Len(t, detail.Edges, 2)
	assert.Equal(t, "sound", detail.Edges[0].Source)
	assert.Equal(t, "fire", detail.Edges[1].Source)

	_, ok = g.Concept("ocean")
	assert.False(t, ok)
	assert.Equal(t, 4, g.Len())
}

func TestPayload_Summary(t *testing.T) {
	snap := &models.Snapshot{
		Generation: 3,
		Compounds: []models.Compound{
			compound("a", "", 0, "wind", "slow"),
			compound("b", "", 0, "slow", "wind"),
			compound("c", "", 0, "path", "qux"),
		},
		Words: []models.Word{
			{Word: "x", Fitness: 1},
			{Word: "y", Fitness: 9},
			{Word: "z", Fitness: 4},
		},
	}
	p, err := Build(snap)
	require.NoError(t, err)

	s := p.Summary(2)
	assert.Equal(t, 4, s.Concepts)
	assert.Equal(t, 2, s.Edges)
	assert.Equal(t, 3, s.LivingWords)
	assert.Equal(t, map[Category]int{
		CategoryNatural: 1,
		CategoryQuality: 1,
		CategoryBeing:   1,
		CategoryUnknown: 1,
	}, s.Categories)
	require.Len(t, s.Top, 2)
	assert.Equal(t, "y", s.Top[0].Word)
	assert.Equal(t, "z", s.Top[1].Word)
	require.NotNil(t, s.Heaviest)
	assert.Equal(t, 2, s.Heaviest.Weight)

	assert.Empty(t, p.Summary(0).Top)
	assert.Len(t, p.Summary(10).Top, 3)
}
