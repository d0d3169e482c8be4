// Package console prints the short status lines users read while a run is
// in progress.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Semantic colors.
var (
	Destructive = lipgloss.Color("#e53935") // Red
	Warning     = lipgloss.Color("#FFC107") // Yellow
	Info        = lipgloss.Color("#2196F3") // Blue
)

// Console writes prefixed status lines. It is safe for concurrent use.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	info  lipgloss.Style
	warn  lipgloss.Style
	error lipgloss.Style
}

// New returns a console writing to w. Colors are only emitted when the
// renderer detects a color-capable terminal behind w.
func New(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		out:   w,
		info:  r.NewStyle().Bold(true).Foreground(Info),
		warn:  r.NewStyle().Bold(true).Foreground(Warning),
		error: r.NewStyle().Bold(true).Foreground(Destructive),
	}
}

// Stdout returns a console on the process stdout.
func Stdout() *Console { return New(os.Stdout) }

// Discard returns a console that prints nothing.
func Discard() *Console { return New(io.Discard) }

func (c *Console) Infof(format string, args ...any) {
	c.print(c.info, "[INFO]", format, args...)
}

func (c *Console) Warnf(format string, args ...any) {
	c.print(c.warn, "[WARN]", format, args...)
}

func (c *Console) Errorf(format string, args ...any) {
	c.print(c.error, "[ERRO]", format, args...)
}

// Println writes a plain line.
func (c *Console) Println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

func (c *Console) print(style lipgloss.Style, prefix, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n", style.Render(prefix), fmt.Sprintf(format, args...))
}
