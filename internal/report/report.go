// Package report renders the outcome of a migration for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/electrovir/itunes-library-migration-assistant/internal/migration"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const statusLabelWidth = 14

// Summary describes one finished migration.
type Summary struct {
	Library     string
	Destination string
	Tracks      int
	Checksum    string
	Rules       []migration.RawRule
	Diagnostics migration.Diagnostics
}

// Write prints s to w. Colors and box drawing are used only when w is a terminal.
func Write(w io.Writer, s Summary) error {
	tty := isTerminal(w)

	lines := []string{
		statusLine("Library", statusOK, s.Library, tty),
		statusLine("Output", statusOK, s.Destination, tty),
		statusLine("Tracks", statusOK, strconv.Itoa(s.Tracks), tty),
		statusLine("Replaced", statusOK, strconv.Itoa(s.Diagnostics.Replaced), tty),
		statusLine("Deleted", statusOK, strconv.Itoa(len(s.Diagnostics.Deleted)), tty),
		statusLine("Unreplaced", countKind(len(s.Diagnostics.Unreplaced)), strconv.Itoa(len(s.Diagnostics.Unreplaced)), tty),
		statusLine("Missing files", countKind(len(s.Diagnostics.MissingFiles)), strconv.Itoa(len(s.Diagnostics.MissingFiles)), tty),
	}
	if s.Checksum != "" {
		lines = append(lines, statusLine("SHA-256", statusOK, s.Checksum, tty))
	}
	if len(s.Rules) > 0 {
		lines = append(lines, "", RulesTable(s.Rules, s.Diagnostics.Usage, tty))
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// RulesTable lists every rule with the number of tracks it matched.
func RulesTable(rules []migration.RawRule, usage []int, boxed bool) string {
	tw := table.NewWriter()
	if boxed {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
		tw.Style().Options = table.OptionsNoBordersAndSeparators
	}
	tw.AppendHeader(table.Row{"#", "Old", "New", "Uses"})
	for i, r := range rules {
		target := r.New
		if r.Delete {
			target = "(delete)"
		}
		uses := 0
		if i < len(usage) {
			uses = usage[i]
		}
		tw.AppendRow(table.Row{i + 1, r.Old, target, uses})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignRight},
	})
	return tw.Render()
}

func countKind(n int) statusKind {
	if n > 0 {
		return statusWarn
	}
	return statusOK
}

func statusLine(label string, kind statusKind, value string, colorize bool) string {
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", value)
	if !colorize {
		return line
	}
	color := ansiGreen
	if kind == statusWarn {
		color = ansiYellow
	}
	return color + line + ansiReset
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
