package cli

import (
	"bufio"
	"fmt"
	"strings"
)

// stdinConfirmer asks yes/no questions on the terminal. It reads from
// the same buffered reader as the REPL loop.
type stdinConfirmer struct {
	in *bufio.Reader
}

func newStdinConfirmer(in *bufio.Reader) *stdinConfirmer {
	return &stdinConfirmer{in: in}
}

// Confirm prompts and accepts y/yes (case-insensitive). Anything else,
// including a read error, declines.
func (c *stdinConfirmer) Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
