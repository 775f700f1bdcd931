// Package render turns a gstat.Status into the text written to stdout.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/thiagokokada/gitstatus-go/internal/gstat"
)

type Format string

const (
	// FormatRaw is the space separated line read by shell prompt scripts.
	FormatRaw Format = "raw"
	// FormatPrompt is a ready to print prompt segment.
	FormatPrompt Format = "prompt"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatRaw, FormatPrompt:
		return f, nil
	case "":
		return FormatRaw, nil
	default:
		return "", fmt.Errorf("unknown format %q (want %s or %s)", s, FormatRaw, FormatPrompt)
	}
}

type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(s); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("unknown color mode %q (want auto, always or never)", s)
	}
}

// Shell selects how FormatPrompt marks color escapes as zero width so
// the shell measures the prompt correctly.
type Shell string

const (
	ShellNone Shell = "none"
	ShellZsh  Shell = "zsh"
	ShellBash Shell = "bash"
)

func ParseShell(s string) (Shell, error) {
	switch sh := Shell(s); sh {
	case ShellNone, ShellZsh, ShellBash:
		return sh, nil
	case "":
		return ShellNone, nil
	default:
		return "", fmt.Errorf("unknown shell %q (want none, zsh or bash)", s)
	}
}

// zeroWidth returns the markers enclosing non-printing text in a prompt.
func (sh Shell) zeroWidth() (begin, end string) {
	switch sh {
	case ShellZsh:
		return "%{", "%}"
	case ShellBash:
		return `\[`, `\]`
	}
	return "", ""
}

// Symbols are the markers used by FormatPrompt.
type Symbols struct {
	Prefix    string `yaml:"prefix"`
	Suffix    string `yaml:"suffix"`
	Separator string `yaml:"separator"`
	Ahead     string `yaml:"ahead"`
	Behind    string `yaml:"behind"`
	Staged    string `yaml:"staged"`
	Conflicts string `yaml:"conflicts"`
	Changed   string `yaml:"changed"`
	Untracked string `yaml:"untracked"`
	Stashed   string `yaml:"stashed"`
	Clean     string `yaml:"clean"`
	Local     string `yaml:"local"`
	Merging   string `yaml:"merging"`
	Rebasing  string `yaml:"rebasing"`
}

func DefaultSymbols() Symbols {
	return Symbols{
		Prefix:    "(",
		Suffix:    ")",
		Separator: "|",
		Ahead:     "↑",
		Behind:    "↓",
		Staged:    "●",
		Conflicts: "✖",
		Changed:   "✚",
		Untracked: "…",
		Stashed:   "⚑",
		Clean:     "✔",
		Local:     " L",
		Merging:   "merge",
		Rebasing:  "rebase ",
	}
}

type Renderer struct {
	format  Format
	symbols Symbols
	shell   Shell

	branch    lipgloss.Style
	staged    lipgloss.Style
	conflicts lipgloss.Style
	changed   lipgloss.Style
	untracked lipgloss.Style
	stashed   lipgloss.Style
	clean     lipgloss.Style
	state     lipgloss.Style
}

// New returns a Renderer whose color support is detected from w unless
// mode forces it. Escapes in prompt output are wrapped for shell.
func New(w io.Writer, format Format, symbols Symbols, mode ColorMode, shell Shell) *Renderer {
	lg := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		lg.SetColorProfile(termenv.ANSI)
	case ColorNever:
		lg.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		format:    format,
		symbols:   symbols,
		shell:     shell,
		branch:    lg.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		staged:    lg.NewStyle().Foreground(lipgloss.Color("1")),
		conflicts: lg.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		changed:   lg.NewStyle().Foreground(lipgloss.Color("4")),
		untracked: lg.NewStyle().Foreground(lipgloss.Color("6")),
		stashed:   lg.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		clean:     lg.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		state:     lg.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	}
}

func (r *Renderer) Render(st gstat.Status) string {
	if r.format == FormatPrompt {
		return r.prompt(st)
	}
	return st.Line()
}

func (r *Renderer) prompt(st gstat.Status) string {
	s := r.symbols
	var b strings.Builder
	b.WriteString(s.Prefix)
	b.WriteString(r.paint(r.branch, st.Branch))
	if st.LocalOnly && !st.Detached {
		b.WriteString(s.Local)
	}
	if st.Behind > 0 {
		b.WriteString(s.Behind + u(st.Behind))
	}
	if st.Ahead > 0 {
		b.WriteString(s.Ahead + u(st.Ahead))
	}
	b.WriteString(s.Separator)

	counter := func(style lipgloss.Style, symbol string, n uint64) {
		if n > 0 {
			b.WriteString(r.paint(style, symbol+u(n)))
		}
	}
	counter(r.staged, s.Staged, st.Staged)
	counter(r.conflicts, s.Conflicts, st.Conflicts)
	counter(r.changed, s.Changed, st.Changed)
	if st.Untracked > 0 {
		b.WriteString(r.paint(r.untracked, s.Untracked))
	}
	counter(r.stashed, s.Stashed, st.Stashes)
	if st.Clean() {
		b.WriteString(r.paint(r.clean, s.Clean))
	}

	if st.Merging {
		b.WriteString(s.Separator + r.paint(r.state, s.Merging))
	}
	if st.Rebase.Active() {
		b.WriteString(s.Separator + r.paint(r.state, s.Rebasing+st.Rebase.String()))
	}
	b.WriteString(s.Suffix)
	return b.String()
}

// paint styles text and, for a prompt shell, wraps the escape sequences
// around it in zero width markers.
func (r *Renderer) paint(style lipgloss.Style, text string) string {
	styled := style.Render(text)
	begin, end := r.shell.zeroWidth()
	if begin == "" || styled == text {
		return styled
	}
	i := strings.Index(styled, text)
	if i < 0 {
		return styled
	}
	before, after := styled[:i], styled[i+len(text):]
	var b strings.Builder
	if before != "" {
		b.WriteString(begin + before + end)
	}
	b.WriteString(text)
	if after != "" {
		b.WriteString(begin + after + end)
	}
	return b.String()
}

func u(n uint64) string {
	return strconv.FormatUint(n, 10)
}
