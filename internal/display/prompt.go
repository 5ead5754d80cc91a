package display

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"lume/internal/executor"
)

// ErrNotInteractive is returned when a confirmation is needed but stdin is
// not a terminal and no reader was injected.
var ErrNotInteractive = errors.New("confirmation requires an interactive terminal")

// Prompter asks yes/no questions. Anything other than y/yes, including an
// empty line or EOF, is a no.
type Prompter struct {
	in          io.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter reads from in and writes questions to out. A nil in means
// os.Stdin, which must be a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if out == nil {
		out = os.Stderr
	}
	if in == nil {
		return &Prompter{in: os.Stdin, out: out, interactive: IsTerminal(os.Stdin)}
	}
	return &Prompter{in: in, out: out, interactive: true}
}

// Confirm matches the security engine's confirmation callback. Cancelling
// ctx while waiting returns executor.ErrInterrupted.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	if !p.interactive {
		return false, ErrNotInteractive
	}
	_, _ = fmt.Fprintf(p.out, "\n%s\nType 'yes' to allow [y/N]: ", question)

	answer := make(chan string, 1)
	go func() {
		line, err := bufio.NewReader(p.in).ReadString('\n')
		if err != nil && line == "" {
			close(answer)
			return
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(p.out)
		return false, executor.ErrInterrupted
	case line, ok := <-answer:
		if !ok {
			_, _ = fmt.Fprintln(p.out)
			return false, nil
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}
