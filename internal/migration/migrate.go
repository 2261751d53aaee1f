// Package migration rewrites the track locations of a library according to an
// ordered list of rules and reports every location the rules did not cover.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/electrovir/itunes-library-migration-assistant/internal/apperr"
	"github.com/electrovir/itunes-library-migration-assistant/internal/location"
	"github.com/electrovir/itunes-library-migration-assistant/internal/models"
)

const defaultConcurrency = 8

// Options tunes a single migration.
type Options struct {
	// CheckReplacementPaths turns unreplaced locations and unused rules into errors.
	CheckReplacementPaths bool
	// CheckFiles verifies that every rewritten location exists.
	CheckFiles bool
	// Files answers existence checks. Defaults to OSFiles.
	Files FileChecker
	// ExtraTrackProcessing runs on every surviving track after its location was rewritten.
	ExtraTrackProcessing func(models.Track) models.Track
	Logger               *slog.Logger
	// Concurrency bounds the parallel existence checks.
	Concurrency int
}

func DefaultOptions() Options {
	return Options{
		CheckReplacementPaths: true,
		Files:                 OSFiles{},
		Concurrency:           defaultConcurrency,
	}
}

// MissingFile is a rewritten location that does not exist. Both paths are decoded.
type MissingFile struct {
	Old string
	New string
}

// Diagnostics is the bookkeeping gathered while rewriting.
type Diagnostics struct {
	// Unreplaced holds locations no rule matched, deduplicated in first-seen order.
	Unreplaced []string
	// Usage counts matches per rule, indexed like the rules slice.
	Usage        []int
	MissingFiles []MissingFile
	// Deleted holds the keys of tracks removed by delete rules.
	Deleted  []string
	Replaced int
}

// UnusedRules returns the rules that never matched.
func (d Diagnostics) UnusedRules(rules []Rule) []Rule {
	var unused []Rule
	for i, r := range rules {
		if i < len(d.Usage) && d.Usage[i] == 0 {
			unused = append(unused, r)
		}
	}
	return unused
}

// Result is the migrated library plus the diagnostics of the run.
type Result struct {
	Library     *models.Library
	Diagnostics Diagnostics
}

type fileCheck struct {
	oldPath string
	newPath string
}

// Migrate returns a new library whose track locations were rewritten by the
// first matching rule. lib is left untouched. When any diagnostic counts as an
// error, Migrate returns the result together with an *apperr.MigrationError.
func Migrate(ctx context.Context, lib *models.Library, rules []Rule, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	files := opts.Files
	if files == nil {
		files = OSFiles{}
	}

	for i, r := range rules {
		if !wellFormed(r) {
			return nil, fmt.Errorf("rule %d: %w: %s", i, apperr.ErrMalformedRule, malformedRuleText)
		}
	}

	logger.Info("Replacing locations...", slog.Int("tracks", len(lib.Tracks)), slog.Int("rules", len(rules)))

	out := lib.ShallowCopy()
	diag := Diagnostics{Usage: make([]int, len(rules))}
	seenUnreplaced := make(map[string]struct{})
	var checks []fileCheck

	for _, key := range lib.TrackKeys() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		track := lib.Tracks[key]
		oldLoc, ok := track.Location()
		if !ok {
			out.Tracks[key] = applyExtra(track.Clone(), opts.ExtraTrackProcessing)
			continue
		}

		newLoc := oldLoc
		deleted := false
		idx, rule := firstMatch(oldLoc, rules)
		switch r := rule.(type) {
		case nil:
			if _, dup := seenUnreplaced[oldLoc]; !dup {
				seenUnreplaced[oldLoc] = struct{}{}
				diag.Unreplaced = append(diag.Unreplaced, oldLoc)
			}
		case Delete:
			deleted = true
			diag.Usage[idx]++
		case Replace:
			newLoc = replaceLocation(oldLoc, r)
			diag.Usage[idx]++
			diag.Replaced++
		default:
			return nil, fmt.Errorf("%w: %s: %v", apperr.ErrMalformedRule, malformedRuleText, rule)
		}

		if deleted {
			diag.Deleted = append(diag.Deleted, key)
			continue
		}

		if opts.CheckFiles && !location.IsURL(newLoc) {
			checks = append(checks, fileCheck{
				oldPath: location.Decode(oldLoc),
				newPath: location.Decode(newLoc),
			})
		}

		out.Tracks[key] = applyExtra(track.WithLocation(newLoc), opts.ExtraTrackProcessing)
	}

	missing, err := checkFiles(ctx, files, checks, opts.Concurrency)
	if err != nil {
		return nil, err
	}
	diag.MissingFiles = missing

	logger.Info("Replacing finished",
		slog.Int("replaced", diag.Replaced),
		slog.Int("deleted", len(diag.Deleted)),
		slog.Int("unreplaced", len(diag.Unreplaced)),
	)

	res := &Result{Library: out, Diagnostics: diag}
	if lines := errorLines(diag, rules, opts.CheckReplacementPaths); len(lines) > 0 {
		return res, &apperr.MigrationError{Lines: lines}
	}
	return res, nil
}

// wellFormed reports whether r is a value rule with a target and, for
// replacements, a non-empty substitute.
func wellFormed(r Rule) bool {
	switch r := r.(type) {
	case Replace:
		return r.Old != "" && r.New != ""
	case Delete:
		return r.Old != ""
	}
	return false
}

func applyExtra(t models.Track, fn func(models.Track) models.Track) models.Track {
	if fn == nil {
		return t
	}
	return fn(t)
}

// firstMatch returns the first rule whose target appears in loc, in its
// stored form, decoded, or decoded and NFC-normalized. URLs are never
// normalized.
func firstMatch(loc string, rules []Rule) (int, Rule) {
	decoded := location.Decode(loc)
	var nfc string
	for i, r := range rules {
		target := r.Target()
		if strings.Contains(loc, target) || strings.Contains(decoded, target) {
			return i, r
		}
		if location.IsURL(loc) {
			continue
		}
		if nfc == "" {
			nfc = norm.NFC.String(decoded)
		}
		if strings.Contains(nfc, norm.NFC.String(target)) {
			return i, r
		}
	}
	return -1, nil
}

// replaceLocation substitutes the first occurrence of r.Old. When the stored
// form does not contain it, the substitution happens on the decoded path,
// which is then encoded again. A location no form changes is returned as is.
func replaceLocation(loc string, r Replace) string {
	if replaced := strings.Replace(loc, r.Old, r.New, 1); replaced != loc || location.IsURL(loc) {
		return replaced
	}

	decoded := location.Decode(loc)
	if replaced := strings.Replace(decoded, r.Old, r.New, 1); replaced != decoded {
		return location.Encode(replaced)
	}
	nfc := norm.NFC.String(decoded)
	if replaced := strings.Replace(nfc, norm.NFC.String(r.Old), r.New, 1); replaced != nfc {
		return location.Encode(replaced)
	}
	return loc
}

// checkFiles runs the existence checks in parallel and returns the missing
// ones in the order they were queued.
func checkFiles(ctx context.Context, files FileChecker, checks []fileCheck, limit int) ([]MissingFile, error) {
	if len(checks) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultConcurrency
	}

	exists := make([]bool, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, c := range checks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok, err := files.Exists(c.newPath)
			if err != nil {
				return fmt.Errorf("check %s: %w", c.newPath, err)
			}
			exists[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var missing []MissingFile
	for i, c := range checks {
		if !exists[i] {
			missing = append(missing, MissingFile{Old: c.oldPath, New: c.newPath})
		}
	}
	return missing, nil
}

func errorLines(d Diagnostics, rules []Rule, checkReplacementPaths bool) []string {
	var lines []string
	if checkReplacementPaths {
		for _, loc := range d.Unreplaced {
			lines = append(lines, "This track location was not replaced:\n\t\t\t"+loc)
		}
		for _, r := range d.UnusedRules(rules) {
			lines = append(lines, "The following replacement was never used:\n\t\t\t"+r.String())
		}
	}
	for _, m := range d.MissingFiles {
		lines = append(lines, fmt.Sprintf("Missing file:\n\t\t\told: %s\n\t\t\tnew: %s", m.Old, m.New))
	}
	return lines
}
