package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/andrejsstepanovs/proposalpilot/logger"
	"github.com/andrejsstepanovs/proposalpilot/validate"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

// Prompter reads one trimmed answer per line. It returns io.EOF once input ends.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

func (p *Prompter) Ask(label string) (string, error) {
	green.Fprint(p.out, label)
	if !p.scanner.Scan() {
		fmt.Fprintln(p.out)
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// AskID asks for a positive integer identifier.
func (p *Prompter) AskID(label, field string) (int64, error) {
	raw, err := p.Ask(label)
	if err != nil {
		return 0, err
	}
	return validate.ID(field, raw)
}

// AskLink repeats the question until the answer is empty or a valid URL.
func (p *Prompter) AskLink(label string) (string, error) {
	for {
		link, err := p.Ask(label)
		if err != nil {
			return "", err
		}
		if err := validate.URL(link); err != nil {
			red.Fprintln(p.out, apperror.Message(err))
			continue
		}
		return link, nil
	}
}

func (a *App) say(format string, args ...any) {
	green.Fprintf(a.out, format+"\n", args...)
}

func (a *App) warn(format string, args ...any) {
	red.Fprintf(a.out, format+"\n", args...)
}

func (a *App) fail(action string, err error) {
	a.warn("Error: %s", apperror.Message(err))
	logger.WithOp("menu").WithField("action", action).WithError(err).Warn("action failed")
}

func (a *App) printMenu(m menu) {
	fmt.Fprintln(a.out)
	green.Fprintf(a.out, "===== %s =====\n", m.title)
	for _, item := range m.items {
		green.Fprintf(a.out, "%s. %s\n", item.key, item.label)
	}
	green.Fprintf(a.out, "0. %s\n", m.exitLabel)
}

func (a *App) table(header []string, rows [][]string) {
	t := tablewriter.NewWriter(a.out)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetRowLine(true)
	t.AppendBulk(rows)
	t.Render()
}

func money(v float64) string {
	return fmt.Sprintf("$ %.2f", v)
}
