package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// Prompter implements ports.Prompter using stdin/stdout.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	tty bool
}

// NewPrompter constructs a prompter referencing stdio.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	tty := false
	if f, ok := in.(*os.File); ok {
		tty = termIsTerminal(f)
	}
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
		tty: tty,
	}
}

// Enabled indicates the prompter is attached to an interactive terminal.
func (p *Prompter) Enabled() bool {
	return p.tty
}

// ReadLine prints prompt and returns the next input line, trimmed.
func (p *Prompter) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", domain.ErrUserAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask implements ports.Prompter.
func (p *Prompter) Ask(ctx context.Context, question string) (string, error) {
	return p.ReadLine(ctx, question+": ")
}

// Choose lists options and accepts a number, an option or a unique prefix of one.
func (p *Prompter) Choose(ctx context.Context, question string, options []string) (string, error) {
	if len(options) == 0 {
		return "", errors.New("no options to choose from")
	}
	for {
		fmt.Fprintln(p.out, question)
		for i, opt := range options {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
		}
		answer, err := p.ReadLine(ctx, "> ")
		if err != nil {
			return "", err
		}
		if choice, ok := matchOption(answer, options); ok {
			return choice, nil
		}
		fmt.Fprintf(p.out, "Please pick 1-%d.\n", len(options))
	}
}

// Confirm asks a yes/no question; anything but y/yes is no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.ReadLine(ctx, question+" [y/N]: ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func matchOption(answer string, options []string) (string, bool) {
	if answer == "" {
		return "", false
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		return "", false
	}
	var prefixed []string
	for _, opt := range options {
		if strings.EqualFold(opt, answer) {
			return opt, true
		}
		if strings.HasPrefix(strings.ToLower(opt), strings.ToLower(answer)) {
			prefixed = append(prefixed, opt)
		}
	}
	if len(prefixed) == 1 {
		return prefixed[0], true
	}
	return "", false
}

var _ ports.Prompter = (*Prompter)(nil)

func termIsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
