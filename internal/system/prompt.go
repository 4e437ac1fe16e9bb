package system

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter asks the operator for decisions. Detection and repair logic never
// talk to a terminal directly; the prompt is an injected capability so the
// engine stays testable without a human present.
type Prompter interface {
	// AskYesNo returns true for an affirmative answer.
	AskYesNo(message string) bool
	// AskText returns the entered text; ok is false when the operator skipped.
	AskText(message string) (text string, ok bool)
}

// StdioPrompter prompts on a terminal.
type StdioPrompter struct {
	In  io.Reader
	Out io.Writer
}

func NewStdioPrompter() *StdioPrompter {
	return &StdioPrompter{In: os.Stdin, Out: os.Stdout}
}

func (p *StdioPrompter) AskYesNo(message string) bool {
	reader := bufio.NewReader(p.In)
	for {
		fmt.Fprintf(p.Out, "%s [y/n]: ", message)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
	}
}

func (p *StdioPrompter) AskText(message string) (string, bool) {
	fmt.Fprintf(p.Out, "%s (empty to skip): ", message)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil {
		return "", false
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	return line, true
}
