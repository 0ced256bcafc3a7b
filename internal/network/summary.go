package network

// Summary condenses a payload for clients that do not render the graph.
type Summary struct {
	Generation     int64            `json:"generation"`
	TotalCompounds int              `json:"totalCompounds"`
	Concepts       int              `json:"concepts"`
	Edges          int              `json:"edges"`
	LivingWords    int              `json:"livingWords"`
	Categories     map[Category]int `json:"categories"`
	Top            []LivingWord     `json:"top"`
	Heaviest       *Edge            `json:"heaviest,omitempty"`
}

// Summary counts nodes per category and keeps the top living words. A
// non-positive top keeps none.
func (p *Payload) Summary(top int) Summary {
	s := Summary{
		Generation:     p.Generation,
		TotalCompounds: p.TotalCompounds,
		Concepts:       len(p.Nodes),
		Edges:          len(p.Edges),
		LivingWords:    len(p.Living),
		Categories:     make(map[Category]int, len(categoryTable)+1),
		Top:            []LivingWord{},
	}
	for _, n := range p.Nodes {
		s.Categories[n.Category]++
	}
	if top > 0 {
		s.Top = append(s.Top, p.Living[:min(top, len(p.Living))]...)
	}
	// First edge wins ties so the result follows discovery order.
	for i := range p.Edges {
		if s.Heaviest == nil || p.Edges[i].Weight > s.Heaviest.Weight {
			s.Heaviest = &p.Edges[i]
		}
	}
	return s
}
