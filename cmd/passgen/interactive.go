package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vaultpass/passgen-go/internal/form"
	"github.com/vaultpass/passgen-go/internal/generator"
)

const interactiveHelp = `u, l, d, s   toggle uppercase, lowercase, digits, symbols
<length>     generate a password (4-16)
c            copy the password into the clipboard
r            reset the form, abandoning a generation in progress
q            quit
Ctrl-C       cancel a generation in progress, or quit when idle`

var toggles = map[string]form.Class{
	"u": form.Uppercase,
	"l": form.Lowercase,
	"d": form.Digits,
	"s": form.Symbols,
}

// repl is the command loop state. At most one Submit runs at a time; its
// result arrives on pending.
type repl struct {
	sess    *form.Session
	out     *printer
	pending chan error
	cancel  context.CancelFunc
}

func (r *repl) busy() bool { return r.pending != nil }

func (r *repl) submit(ctx context.Context, raw string) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		_, err := r.sess.Submit(ctx, raw)
		done <- err
	}()
	r.pending, r.cancel = done, cancel
}

func (r *repl) abort() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *repl) finish(err error) {
	r.cancel()
	r.pending, r.cancel = nil, nil

	switch {
	case err == nil:
	case errors.Is(err, form.ErrAbandoned):
		r.out.info("generation abandoned")
	case errors.Is(err, context.Canceled):
		r.out.info("generation cancelled")
	default:
		r.out.fail(err)
	}
	r.out.state(r.sess.State())
}

// handle runs one command while no generation is in flight. It reports
// whether the session should end.
func (r *repl) handle(ctx context.Context, cmd string) bool {
	if c, ok := toggles[cmd]; ok {
		r.sess.Toggle(c)
		r.out.state(r.sess.State())
		return false
	}

	switch cmd {
	case "":
	case "q", "quit":
		return true
	case "?", "help":
		fmt.Fprintln(r.out.w, interactiveHelp)
	case "r":
		r.sess.Reset()
		r.out.state(r.sess.State())
	case "c":
		st := r.sess.State()
		if !st.Generated {
			r.out.fail(errors.New("nothing to copy yet"))
			return false
		}
		if err := copyToClipboard(st.Password); err != nil {
			r.out.fail(fmt.Errorf("copy to clipboard: %w", err))
			return false
		}
		r.out.info("password copied to your clipboard")
	default:
		r.submit(ctx, cmd)
	}
	return false
}

// scanLines reads lines from in until EOF or until stop is closed. The scan
// error is delivered on the second channel before lines is closed.
func scanLines(in io.Reader, stop <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// runInteractive drives a form session from line commands read from in.
// Generations run in the background: "r" abandons one in flight and an
// interrupt cancels it, leaving the form open. Other commands typed during a
// generation run after it finishes. An interrupt while idle, "q", exhausted
// input and a done ctx end the session.
func runInteractive(ctx context.Context, g generator.PasswordGenerator, in io.Reader, out *printer, interrupts <-chan os.Signal) error {
	r := &repl{sess: form.NewSession(g), out: out}
	out.info("passgen (%s generator), ? for help", g.Name())
	out.state(r.sess.State())

	stop := make(chan struct{})
	defer close(stop)
	lines, errc := scanLines(in, stop)

	var queue []string
	needPrompt := true
	for {
		for !r.busy() && len(queue) > 0 {
			cmd := queue[0]
			queue = queue[1:]
			if r.handle(ctx, cmd) {
				return nil
			}
			needPrompt = true
		}

		if lines == nil && !r.busy() {
			if needPrompt {
				fmt.Fprint(out.w, "> ")
			}
			fmt.Fprintln(out.w)
			return <-errc
		}
		if needPrompt && !r.busy() {
			fmt.Fprint(out.w, "> ")
			needPrompt = false
		}

		select {
		case <-ctx.Done():
			r.abort()
			return nil
		case <-interrupts:
			if !r.busy() {
				fmt.Fprintln(out.w)
				return nil
			}
			r.cancel()
		case err := <-r.pending:
			r.finish(err)
			needPrompt = true
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			cmd := strings.TrimSpace(line)
			if cmd == "r" && r.busy() && len(queue) == 0 {
				r.sess.Reset()
				continue
			}
			queue = append(queue, cmd)
		}
	}
}
