package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PasswordPrompt asks for a secret after printing label.
type PasswordPrompt func(label string) (string, error)

// TerminalPasswordPrompt reads without echo when stdin is a terminal and
// falls back to plain lines so passwords can be piped in scripts.
func TerminalPasswordPrompt(stdin *os.File, out io.Writer) PasswordPrompt {
	reader := bufio.NewReader(stdin)
	return func(label string) (string, error) {
		if stdin == nil {
			return "", errors.New("stdin unavailable")
		}
		fmt.Fprint(out, label)

		fd := int(stdin.Fd())
		if term.IsTerminal(fd) {
			secret, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			if err != nil {
				return "", fmt.Errorf("read password: %w", err)
			}
			return string(secret), nil
		}

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
