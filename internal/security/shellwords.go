package security

import (
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// Join renders argv as a single line a POSIX shell would split back into the
// same words. The result is for display and copy-paste only; nothing in this
// module hands it to a shell.
func Join(argv []string) (string, error) {
	words := make([]string, len(argv))
	for i, a := range argv {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("quote token %d: %w", i, err)
		}
		words[i] = q
	}
	return strings.Join(words, " "), nil
}

// Split parses line as one simple command and returns its words.
// Anything beyond plain and quoted literals is rejected: pipelines, lists,
// redirections, assignments, and every form of expansion or substitution.
func Split(line string) ([]string, error) {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(line), "")
	if err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}
	if len(file.Stmts) != 1 {
		return nil, fmt.Errorf("expected one command, found %d", len(file.Stmts))
	}
	stmt := file.Stmts[0]
	if stmt.Background || stmt.Coprocess || stmt.Negated {
		return nil, errors.New("command is backgrounded or negated")
	}
	if len(stmt.Redirs) > 0 {
		return nil, errors.New("command contains redirections")
	}
	call, ok := stmt.Cmd.(*syntax.CallExpr)
	if !ok {
		return nil, fmt.Errorf("not a simple command: %T", stmt.Cmd)
	}
	if len(call.Assigns) > 0 {
		return nil, errors.New("command contains variable assignments")
	}
	if node := findExpansion(file); node != "" {
		return nil, fmt.Errorf("command contains %s", node)
	}

	words := make([]string, 0, len(call.Args))
	for i, w := range call.Args {
		lit, err := expand.Literal(nil, w)
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}
		words = append(words, lit)
	}
	return words, nil
}

// Verify checks that display splits back into exactly argv.
func Verify(argv []string, display string) error {
	words, err := Split(display)
	if err != nil {
		return err
	}
	if len(words) != len(argv) {
		return fmt.Errorf("display has %d words, argv has %d", len(words), len(argv))
	}
	for i := range argv {
		if words[i] != argv[i] {
			return fmt.Errorf("word %d differs: %q != %q", i, words[i], argv[i])
		}
	}
	return nil
}

func findExpansion(file *syntax.File) string {
	found := ""
	syntax.Walk(file, func(node syntax.Node) bool {
		if found != "" {
			return false
		}
		switch node.(type) {
		case *syntax.CmdSubst:
			found = "command substitution"
		case *syntax.ProcSubst:
			found = "process substitution"
		case *syntax.ParamExp:
			found = "parameter expansion"
		case *syntax.ArithmExp:
			found = "arithmetic expansion"
		case *syntax.ExtGlob:
			found = "extended glob"
		}
		return found == ""
	})
	return found
}
