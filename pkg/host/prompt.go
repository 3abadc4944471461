package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// TerminalPrompter asks on a terminal and reads a y/n answer.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// Prompt writes the question to Out and waits for one line from In.
// Anything other than y/yes is a denial. EOF before an answer is an error.
func (p *TerminalPrompter) Prompt(ctx context.Context, req PromptRequest) (bool, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	fmt.Fprintf(p.Out, "%q would like to send you notifications%s. Allow? [y/N]: ", req.AppName, describeCapabilities(req))

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := p.reader.ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	select {
	case a := <-answers:
		if a.err != nil && (a.err != io.EOF || strings.TrimSpace(a.line) == "") {
			return false, fmt.Errorf("read prompt answer: %w", a.err)
		}
		return ParseAnswer(a.line), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// ParseAnswer reports whether a prompt answer means yes.
func ParseAnswer(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func describeCapabilities(req PromptRequest) string {
	var caps []string
	if req.Alert {
		caps = append(caps, "alerts")
	}
	if req.Sound {
		caps = append(caps, "sounds")
	}
	if req.Badge {
		caps = append(caps, "badges")
	}
	if len(caps) == 0 {
		return ""
	}
	return " (" + strings.Join(caps, ", ") + ")"
}
