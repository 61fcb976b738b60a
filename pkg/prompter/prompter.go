package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

var (
	mu     sync.Mutex
	in     io.Reader = os.Stdin
	out    io.Writer = os.Stdout
	reader *bufio.Reader
)

// SetIO redirects prompts, mainly for tests. Passing nil restores stdio.
func SetIO(r io.Reader, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	in, out, reader = r, w, nil
}

// one buffered reader for the whole process so piped input is not lost
// between prompts
func lineReader() (*bufio.Reader, io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if reader == nil {
		reader = bufio.NewReader(in)
	}
	return reader, out
}

func readLine() (string, error) {
	r, _ := lineReader()
	line, err := r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	_, w := lineReader()
	fmt.Fprint(w, label)
	input, err := readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// PromptStringDefault is PromptString that falls back to def on empty input
func PromptStringDefault(label, def string) (string, error) {
	if def != "" {
		label = fmt.Sprintf("%s[%s] ", label, def)
	}
	s, err := PromptString(label)
	if err != nil {
		return "", err
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// PromptPassword prompts user for a password. Input is hidden when stdin is
// a terminal.
func PromptPassword(label string) (string, error) {
	_, w := lineReader()
	fmt.Fprint(w, label)

	mu.Lock()
	f, isFile := in.(*os.File)
	mu.Unlock()

	if isFile && term.IsTerminal(int(f.Fd())) {
		bytepw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return string(bytepw), nil
	}

	return readLine()
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	_, w := lineReader()
	fmt.Fprint(w, label+" (y/n) ")
	input, err := readLine()
	if err != nil {
		return false, err
	}

	response := strings.TrimSpace(strings.ToLower(input))
	return response == "y" || response == "yes", nil
}

// PromptSelect prompts user to select from options
func PromptSelect(label string, options []string) (int, error) {
	_, w := lineReader()
	fmt.Fprintln(w, label)
	for i, opt := range options {
		fmt.Fprintf(w, "%d) %s\n", i+1, opt)
	}

	fmt.Fprint(w, "Select option: ")
	input, err := readLine()
	if err != nil {
		return -1, err
	}

	var selection int
	if _, err := fmt.Sscanf(strings.TrimSpace(input), "%d", &selection); err != nil {
		return -1, err
	}

	if selection < 1 || selection > len(options) {
		return -1, fmt.Errorf("invalid selection")
	}

	return selection - 1, nil
}

// PromptMultilineString reads lines until an empty line, end of input or
// maxLines lines.
func PromptMultilineString(label string, maxLines int) (string, error) {
	_, w := lineReader()
	fmt.Fprintf(w, "%s (finish with an empty line):\n", label)

	var lines []string
	for len(lines) < maxLines {
		line, err := readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if line == "" {
			break
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), nil
}
