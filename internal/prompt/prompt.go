// Package prompt reads answers typed by the user. Passwords are read without
// echo when the input is a terminal.
package prompt

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Reader reads one answer per line from in.
type Reader struct {
	in      io.Reader
	scanner *bufio.Scanner
}

func New(in io.Reader) *Reader {
	return &Reader{in: in, scanner: bufio.NewScanner(in)}
}

// Password reads a password, hiding it when in is a terminal.
func (r *Reader) Password() (string, error) {
	// Check if stdin is a terminal
	if f, ok := r.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	line, err := r.readLine()
	return strings.TrimRight(line, "\r"), err
}

// Line reads one line with surrounding whitespace removed.
func (r *Reader) Line() (string, error) {
	line, err := r.readLine()
	return strings.TrimSpace(line), err
}

func (r *Reader) readLine() (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
