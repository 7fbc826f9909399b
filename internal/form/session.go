// Package form holds the state of one password form: the selected character
// classes, the last generated password and whether one has been generated.
// Generation itself is delegated to a generator.PasswordGenerator.
package form

import (
	"context"
	"errors"
	"sync"

	"github.com/vaultpass/passgen-go/internal/crypto"
	"github.com/vaultpass/passgen-go/internal/generator"
	"github.com/vaultpass/passgen-go/internal/model"
)

// ErrAbandoned is returned by Submit when the form was reset, or submitted
// again, before the generation finished. The result is discarded.
var ErrAbandoned = errors.New("generation abandoned")

// Class identifies one character class toggle.
type Class int

const (
	Lowercase Class = iota
	Uppercase
	Digits
	Symbols
)

func (c Class) String() string {
	switch c {
	case Lowercase:
		return "lowercase"
	case Uppercase:
		return "uppercase"
	case Digits:
		return "numbers"
	case Symbols:
		return "symbols"
	}
	return "unknown"
}

// State is a snapshot of the form.
type State struct {
	Selection crypto.Selection
	Password  string
	Generated bool
}

// Session is the state of one form. It is safe for concurrent use; at most
// one generation is outstanding at a time.
type Session struct {
	gen generator.PasswordGenerator

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelFunc
}

// NewSession returns a session in its reset state.
func NewSession(gen generator.PasswordGenerator) *Session {
	return &Session{gen: gen, state: State{Selection: crypto.DefaultSelection()}}
}

// State returns a snapshot of the form.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Selection returns the current class selection.
func (s *Session) Selection() crypto.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Selection
}

// Toggle flips one class and returns the resulting selection.
func (s *Session) Toggle(c Class) crypto.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := &s.state.Selection
	switch c {
	case Lowercase:
		sel.Lowercase = !sel.Lowercase
	case Uppercase:
		sel.Uppercase = !sel.Uppercase
	case Digits:
		sel.Digits = !sel.Digits
	case Symbols:
		sel.Symbols = !sel.Symbols
	}
	return *sel
}

// SetSelection replaces the class selection.
func (s *Session) SetSelection(sel crypto.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Selection = sel
}

// Submit validates rawLength, generates a password from the current
// selection and stores it. A Submit already in flight is cancelled.
func (s *Session) Submit(ctx context.Context, rawLength string) (string, error) {
	length, err := generator.ValidateLength(rawLength)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.cancel = cancel
	req := model.GenerationRequest{
		Selection: s.state.Selection,
		Length:    length,
		Mode:      model.Mode(s.gen.Name()),
	}
	s.mu.Unlock()

	var password string
	err = generator.ValidateRequest(req)
	if err == nil {
		password, err = s.gen.Generate(ctx, req)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq != seq {
		return "", ErrAbandoned
	}
	s.cancel = nil

	if err != nil {
		s.state.Password = ""
		s.state.Generated = false
		return "", err
	}

	s.state.Password = password
	s.state.Generated = true
	return password, nil
}

// Reset cancels any generation in flight, clears the password and restores
// the default selection.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	s.state = State{Selection: crypto.DefaultSelection()}
}
