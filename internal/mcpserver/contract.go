package mcpserver

// SnapshotFormat describes the snapshot document the lexicon reads, for LLM
// consumers that need to reason about the data behind the tools.
const SnapshotFormat = `# Lexicon Snapshot Format

A snapshot is one JSON object written by the simulation. It describes the
lexicon at a single generation.

## Structure

` + "```" + `json
{
  "generation": 42,
  "stats": {},
  "compounds": {
    "windsong": {
      "meanings": ["wind", "sound"],
      "compound_meaning": "song of wind",
      "born": 40
    }
  },
  "words": {
    "windsong": {
      "meaning": "melody of moving air",
      "category": "sound",
      "fitness": 5.0,
      "born": 40
    }
  },
  "sound_shifts": []
}
` + "```" + `

## Rules

1. **generation** is an integer. A missing generation reads as 0.
2. **stats** and **sound_shifts** are opaque and passed through unchanged.
3. **compounds** maps a word to the two concepts it joins. Only the first two
   entries of ` + "`" + `meanings` + "`" + ` are used; a compound with fewer than two
   produces no concept or edge but still counts toward totalCompounds.
4. **words** maps each living word to its meaning, category, fitness and birth
   generation. Age is generation minus born.
5. Key order matters: concepts and edges are listed in the order their
   compounds appear.

## Derived network

- A concept exists when it is one of the two meanings of a compound.
- Each unordered pair of concepts gets one edge; its weight is the number of
  compounds joining them.
- Concepts are categorized by a fixed vocabulary (see lexicon://categories).
`
