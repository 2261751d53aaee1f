package mcpserver

// RulesFormatContract describes the replacement rules accepted by the
// migrate_library tool and by rules files.
const RulesFormatContract = `# Replacement Rules Format

A migration takes an ordered list of rules. Every track location is matched
against the rules in order and the FIRST rule whose ` + "`old`" + ` text appears in
the location wins.

## Rule shapes

` + "```" + `json
[
  {"old": "/Users/me/Music/iTunes/iTunes Media/", "new": "/Volumes/Media/"},
  {"old": "/Users/me/Music/Podcasts/", "delete": true}
]
` + "```" + `

- **Replace rule:** ` + "`old`" + ` and ` + "`new`" + `. The first occurrence of ` + "`old`" + ` is replaced by ` + "`new`" + `.
- **Delete rule:** ` + "`old`" + ` and ` + "`delete: true`" + `. Matching tracks are removed from the library.
- A rule MUST have ` + "`old`" + ` plus exactly one of ` + "`new`" + ` or ` + "`delete`" + `.

## Matching

1. Locations are stored escaped (` + "`file:///Users/me/My%20Song.mp3`" + `). Rules may be
   written either escaped or as plain paths (` + "`/Users/me/My Song.mp3`" + `).
2. Plain paths are compared after decoding, also with Unicode normalized, so
   precomposed and decomposed accents match each other.
3. Locations starting with ` + "`http`" + ` are remote and only matched verbatim.

## Checks

- Every location must be matched by some rule, and every rule must match at
  least one location, unless ` + "`check_replacement_paths`" + ` is false.
- With ` + "`check_files`" + ` enabled every rewritten location must exist on disk.

## Rules files

The CLI reads the same rules from YAML, TOML or JSON files under a top-level
` + "`rules`" + ` key:

` + "```" + `yaml
rules:
  - old: /Users/me/Music/iTunes/iTunes Media/
    new: /Volumes/Media/
  - old: /Users/me/Music/Podcasts/
    delete: true
` + "```" + `
`
