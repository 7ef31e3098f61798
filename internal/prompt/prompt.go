// Package prompt holds the interactive capabilities injected into commands:
// confirmation, line input and password entry.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before a line was read.
var ErrNoInput = errors.New("no input")

// Confirmer decides whether an operation may proceed.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(question string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(question string) (bool, error) {
	return f(question)
}

// AlwaysYes accepts every confirmation. Installed by --yes.
type AlwaysYes struct{}

// Confirm returns true.
func (AlwaysYes) Confirm(string) (bool, error) {
	return true, nil
}

// Terminal asks questions on a line-oriented terminal.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a Terminal reading from in and writing to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Confirm asks a y/n question. Only "y" proceeds.
func (t *Terminal) Confirm(question string) (bool, error) {
	answer, err := t.Line(question + " (y/n) ")
	if err != nil {
		return false, err
	}
	return answer == "y", nil
}

// Line prints prompt and returns the next trimmed input line.
func (t *Terminal) Line(prompt string) (string, error) {
	fmt.Fprintf(t.out, "\n==> %s", prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadPassword reads a password from the terminal without echo. When stdin
// is not a terminal the first line of stdin is used.
func ReadPassword(prompt string) ([]byte, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("read password: %w", err)
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}
