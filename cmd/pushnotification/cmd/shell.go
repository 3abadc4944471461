package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/pushnotification/pkg/errors"
	"github.com/go-drift/pushnotification/pkg/host"
	"github.com/go-drift/pushnotification/pkg/platform"
)

// shellPrompter answers host permission prompts from the shell's input.
// While a prompt is pending, the next line typed goes to it instead of being
// read as a key press.
type shellPrompter struct {
	mu      sync.Mutex
	pending chan string
	// notify is called with the prompt text when a prompt opens and with ""
	// when it closes.
	notify func(text string)
}

func (p *shellPrompter) Prompt(ctx context.Context, req host.PromptRequest) (bool, error) {
	answer := make(chan string, 1)
	p.mu.Lock()
	if p.pending != nil {
		p.mu.Unlock()
		return false, fmt.Errorf("a permission prompt is already open")
	}
	p.pending = answer
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.pending = nil
		p.mu.Unlock()
		p.setText("")
	}()

	p.setText(fmt.Sprintf("%q would like to send you notifications. Allow? [y/N]", req.AppName))

	select {
	case line := <-answer:
		return host.ParseAnswer(line), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (p *shellPrompter) setText(text string) {
	if p.notify != nil {
		p.notify(text)
	}
}

// answer hands line to an open prompt. It reports false when no prompt is open.
func (p *shellPrompter) answer(line string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return false
	}
	select {
	case p.pending <- line:
	default:
	}
	return true
}

// shell is the interactive view. All fields are owned by the UI goroutine.
type shell struct {
	app      *app
	out      io.Writer
	state    viewState
	prompter *shellPrompter
	redraws  int
}

func (s *shell) redraw() {
	s.redraws++
	fmt.Fprint(s.out, clearScreen)
	fmt.Fprintln(s.out, renderView(s.state))
}

// press handles one key. It returns false when the shell should exit.
func (s *shell) press(ctx context.Context, key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "p":
		s.state = viewState{status: "Requesting permission..."}
		s.app.requester.RequestAsync(ctx, func(granted bool, err error) {
			s.state = viewState{status: describeGranted(granted), err: err}
			s.redraw()
		})
	case "s":
		s.state = viewState{status: "Scheduling notification..."}
		delay := s.app.scheduler.Template.Delay
		s.app.scheduler.ScheduleAsync(ctx, func(err error) {
			if err != nil {
				s.state = viewState{status: "Notification not scheduled.", err: err}
			} else {
				s.state = viewState{status: fmt.Sprintf("Notification scheduled in %s.", delay)}
			}
			s.redraw()
		})
	case "i":
		s.state = viewState{status: "Reading notification settings..."}
		go s.showStatus(ctx)
	case "q", "quit", "exit":
		return false
	case "":
	default:
		s.state.err = fmt.Errorf("unknown key %q (use p, s, i or q)", firstLine(key))
	}
	s.redraw()
	return true
}

// showStatus reads the host's settings and pending requests off the UI
// goroutine and dispatches the result back to it.
func (s *shell) showStatus(ctx context.Context) {
	defer errors.Recover("cmd.shellStatus")

	var text string
	settings, err := platform.Notifications.Settings(ctx)
	if err == nil {
		var pending []platform.PendingNotification
		pending, err = platform.Notifications.Pending(ctx)
		text = describePending(settings, pending, time.Now())
	}
	platform.DispatchOrRun(func() {
		if err != nil {
			s.state = viewState{status: "Settings unavailable.", err: err}
		} else {
			s.state = viewState{status: text}
		}
		s.redraw()
	})
}

func runShell(cmd *cobra.Command, opts *globalOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Callbacks from worker goroutines run on the UI goroutine through this queue.
	// Once the loop has exited they are dropped.
	queue := make(chan func(), 16)
	done := make(chan struct{})
	platform.RegisterDispatch(func(cb func()) {
		select {
		case <-done:
		default:
			select {
			case queue <- cb:
			case <-done:
			}
		}
	})

	s := &shell{out: cmd.OutOrStdout()}
	s.prompter = &shellPrompter{notify: func(text string) {
		platform.DispatchOrRun(func() {
			s.state.prompt = text
			s.redraw()
		})
	}}

	a, err := newApp(opts, appDeps{
		prompter: s.prompter,
		onDelivery: func(e platform.NotificationEvent) {
			platform.DispatchOrRun(func() {
				s.state = viewState{status: fmt.Sprintf("Delivered: %s %s", e.Title, e.Body)}
				s.redraw()
			})
		},
		stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		close(done)
		return err
	}
	s.app = a

	err = s.loop(ctx, cmd.InOrStdin(), queue)
	close(done)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

// loop is the UI goroutine: it reads key presses and runs dispatched callbacks.
func (s *shell) loop(ctx context.Context, in io.Reader, queue <-chan func()) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	s.redraw()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if s.prompter.answer(line) {
				continue
			}
			if !s.press(ctx, line) {
				return nil
			}
		case cb := <-queue:
			cb()
		case <-ctx.Done():
			return nil
		}
	}
}
