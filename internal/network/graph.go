package network

import (
	"slices"

	"github.com/starford/lexicon/internal/models"
)

// keySep joins the two concept ids of an edge key. Concept ids never contain it.
const keySep = "|"

type concept struct {
	count    int
	partners map[string]struct{}
	words    []string
}

// Graph is the aggregation of every compound with at least two meanings.
// Concepts and edges remember the order in which they were first seen.
type Graph struct {
	concepts     map[string]*concept
	conceptOrder []string
	edges        map[string]*Edge
	edgeOrder    []string
}

// ConceptDetail is a node together with the compounds and edges that produced it.
type ConceptDetail struct {
	Node
	Words []string `json:"words"`
	Edges []Edge   `json:"edges"`
}

// Aggregate folds compounds into a Graph. Only the first two meanings of a
// compound are used; compounds with fewer than two are skipped.
func Aggregate(compounds []models.Compound) *Graph {
	g := &Graph{
		concepts: make(map[string]*concept),
		edges:    make(map[string]*Edge),
	}
	for _, c := range compounds {
		if len(c.Meanings) < 2 {
			continue
		}
		g.add(c.Word, c.Meanings[0], c.Meanings[1], c.CompoundMeaning, c.Born)
	}
	return g
}

func (g *Graph) add(word, m1, m2, meaning string, born int64) {
	c1 := g.concept(m1)
	c2 := g.concept(m2)

	// c1 and c2 are the same record when m1 == m2.
	c1.count++
	c2.count++
	c1.partners[m2] = struct{}{}
	c2.partners[m1] = struct{}{}
	c1.words = append(c1.words, word)
	c2.words = append(c2.words, word)

	source, target := sortedPair(m1, m2)
	key := source + keySep + target
	e, ok := g.edges[key]
	if !ok {
		e = &Edge{Source: source, Target: target, Compounds: []EdgeCompound{}}
		g.edges[key] = e
		g.edgeOrder = append(g.edgeOrder, key)
	}
	e.Weight++
	e.Compounds = append(e.Compounds, EdgeCompound{Word: word, CompoundMeaning: meaning, Born: born})
}

func (g *Graph) concept(id string) *concept {
	c, ok := g.concepts[id]
	if !ok {
		c = &concept{partners: make(map[string]struct{})}
		g.concepts[id] = c
		g.conceptOrder = append(g.conceptOrder, id)
	}
	return c
}

func sortedPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// Nodes returns one node per concept in discovery order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.conceptOrder))
	for _, id := range g.conceptOrder {
		out = append(out, g.node(id))
	}
	return out
}

func (g *Graph) node(id string) Node {
	c := g.concepts[id]
	return Node{
		ID:       id,
		Count:    c.count,
		Partners: len(c.partners),
		Category: Categorize(id),
	}
}

// Edges returns one edge per unordered concept pair in discovery order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edgeOrder))
	for _, key := range g.edgeOrder {
		out = append(out, g.edge(key))
	}
	return out
}

func (g *Graph) edge(key string) Edge {
	e := *g.edges[key]
	e.Compounds = slices.Clone(e.Compounds)
	return e
}

// Concept returns the node for id, the words it appears in and its incident
// edges. The boolean is false when no compound mentions id.
func (g *Graph) Concept(id string) (*ConceptDetail, bool) {
	c, ok := g.concepts[id]
	if !ok {
		return nil, false
	}
	detail := &ConceptDetail{
		Node:  g.node(id),
		Words: slices.Clone(c.words),
		Edges: []Edge{},
	}
	for _, key := range g.edgeOrder {
		e := g.edges[key]
		if e.Source == id || e.Target == id {
			detail.Edges = append(detail.Edges, g.edge(key))
		}
	}
	return detail, true
}

// Len returns the number of concepts.
func (g *Graph) Len() int { return len(g.conceptOrder) }
