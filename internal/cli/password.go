package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// ErrKeyMismatch is returned when a confirmation prompt doesn't match the
// original entry.
var ErrKeyMismatch = errors.New("keys do not match")

// ErrKeyEmpty is returned when the user submits an empty key at a prompt.
var ErrKeyEmpty = errors.New("key must not be empty")

func isTerminal() bool {
	return term.IsTerminal(int(syscall.Stdin))
}

func readLineSecure(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if isTerminal() {
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return string(b), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading key: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadKeyInteractive prompts for a key on the controlling terminal, masking
// input where possible. When confirm is true (packing a new container) the
// user is asked to repeat the key and mismatches are rejected.
func ReadKeyInteractive(confirm bool) (string, error) {
	key, err := readLineSecure("Enter key: ")
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", ErrKeyEmpty
	}
	if confirm {
		again, err := readLineSecure("Confirm key: ")
		if err != nil {
			return "", err
		}
		if again != key {
			return "", ErrKeyMismatch
		}
	}
	return key, nil
}
