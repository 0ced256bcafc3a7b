package network

import "slices"

// Category classifies a concept.
type Category string

const (
	CategoryNatural  Category = "natural"
	CategoryQuality  Category = "quality"
	CategoryAction   Category = "action"
	CategoryRelation Category = "relation"
	CategoryAbstract Category = "abstract"
	CategoryBeing    Category = "being"
	CategoryUnknown  Category = "unknown"
)

type categoryEntry struct {
	name  Category
	words []string
	set   map[string]struct{}
}

// categoryTable is scanned in declaration order; the first match wins.
var categoryTable = []categoryEntry{
	newCategory(CategoryNatural, "flower", "tree", "seed", "stone", "ocean", "river", "mountain", "earth", "fire", "water",
		"wind", "rain", "sky", "cloud", "moon", "sun", "star", "ice", "snow", "light"),
	newCategory(CategoryQuality, "slow", "fast", "small", "far", "deep", "high", "dark", "bright", "warm", "cold",
		"soft", "hard", "old", "new", "still", "sharp", "rough", "smooth", "heavy", "open", "empty", "quiet", "dense", "dry"),
	newCategory(CategoryAction, "move", "fall", "flow", "turn", "rise", "hold", "make", "break", "give", "take",
		"pull", "push", "sing", "grow", "join", "cut", "merge", "drift", "pass", "scatter", "begin", "end", "change",
		"release", "emerge"),
	newCategory(CategoryRelation, "from", "between", "around", "through", "toward", "within", "beyond", "upon", "near",
		"across", "above", "below", "beside", "under"),
	newCategory(CategoryAbstract, "wave", "boundary", "cycle", "pattern", "time", "space", "order", "self", "threshold",
		"connection", "balance", "whole", "part", "other", "many", "one", "none", "all", "emergence", "echo", "form", "void"),
	newCategory(CategoryBeing, "life", "death", "breath", "voice", "spirit", "memory", "dream", "path"),
}

func newCategory(name Category, words ...string) categoryEntry {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return categoryEntry{name: name, words: words, set: set}
}

// Categorize returns the category of a concept id. Matching is exact and
// case-sensitive; ids found in no category are CategoryUnknown.
func Categorize(id string) Category {
	for _, c := range categoryTable {
		if _, ok := c.set[id]; ok {
			return c.name
		}
	}
	return CategoryUnknown
}

// Categories returns every category name in scan order, followed by
// CategoryUnknown.
func Categories() []Category {
	out := make([]Category, 0, len(categoryTable)+1)
	for _, c := range categoryTable {
		out = append(out, c.name)
	}
	return append(out, CategoryUnknown)
}

// CategoryWords returns a copy of the vocabulary of a category. It returns nil
// for CategoryUnknown and for names outside the table.
func CategoryWords(name Category) []string {
	for _, c := range categoryTable {
		if c.name == name {
			return slices.Clone(c.words)
		}
	}
	return nil
}
