package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Printer renders role banners and message bodies to the terminal.
type Printer struct {
	out         io.Writer
	bannerStyle lipgloss.Style
	bodyStyle   lipgloss.Style
}

// NewPrinter builds a printer writing to stdout.
func NewPrinter() *Printer {
	return &Printer{
		out: os.Stdout,
		bannerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")),
		bodyStyle: lipgloss.NewStyle().
			PaddingLeft(2),
	}
}

// PrintMessage renders one conversation turn with its role banner.
func (p *Printer) PrintMessage(source, content string) {
	fmt.Fprintln(p.out, p.bannerStyle.Render(fmt.Sprintf("### %s:", source)))
	if content != "" {
		fmt.Fprintln(p.out, p.bodyStyle.Render(content))
	}
	fmt.Fprintln(p.out)
}

// PrintNotice renders an out-of-band line such as the welcome text.
func (p *Printer) PrintNotice(text string) {
	fmt.Fprintln(p.out, text)
}
