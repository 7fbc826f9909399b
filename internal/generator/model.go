package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/vaultpass/passgen-go/internal/crypto"
	"github.com/vaultpass/passgen-go/internal/model"
)

// MaxModelAttempts caps the number of calls made for one request.
const MaxModelAttempts = 5

// TextModel is a remote model that answers a prompt with text.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ModelOptions configures the remote generator.
type ModelOptions struct {
	// MaxAttempts is clamped to [1, MaxModelAttempts].
	MaxAttempts int
	// Strict requires the reply to contain all four character classes.
	Strict bool
	// AttemptTimeout bounds each call. Zero leaves calls bounded only by
	// the caller's context.
	AttemptTimeout time.Duration
}

// Model asks a remote language model for a password.
type Model struct {
	client         TextModel
	maxAttempts    int
	strict         bool
	attemptTimeout time.Duration
}

// NewModel returns a Model backed by client. A nil client yields a
// generator that always fails with ErrModelUnavailable.
func NewModel(client TextModel, opts ModelOptions) *Model {
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	if attempts > MaxModelAttempts {
		attempts = MaxModelAttempts
	}
	timeout := opts.AttemptTimeout
	if timeout < 0 {
		timeout = 0
	}
	return &Model{client: client, maxAttempts: attempts, strict: opts.Strict, attemptTimeout: timeout}
}

func (g *Model) Name() string { return string(model.ModeModel) }

// Available reports whether a remote client is configured.
func (g *Model) Available() bool { return g.client != nil }

// Budget is the longest a single Generate call can take, or zero when
// attempts are unbounded in time.
func (g *Model) Budget() time.Duration {
	return g.attemptTimeout * time.Duration(g.maxAttempts)
}

// Prompt is the instruction sent to the model for a password of length n.
func Prompt(n int) string {
	return fmt.Sprintf("Generate a random string that is exactly %d characters long. "+
		"The string must include numbers, symbols, uppercase letters, and lowercase letters, "+
		"and should not contain any spaces. Reply with the string only: no sentences, no spaces.", n)
}

// Generate asks the model for a password of req.Length characters. Longer
// replies are truncated; shorter or malformed replies are rejected and, if
// attempts remain, requested again.
func (g *Model) Generate(ctx context.Context, req model.GenerationRequest) (string, error) {
	if g.client == nil {
		return "", ErrModelUnavailable
	}

	parent := ctx
	if err := parent.Err(); err != nil {
		return "", err
	}
	if budget := g.Budget(); budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	prompt := Prompt(req.Length)

	var (
		made   int
		reason string
		cause  error
	)
	for made < g.maxAttempts && ctx.Err() == nil {
		made++
		reply, err := g.call(ctx, prompt)
		if err != nil {
			if ctxErr := parent.Err(); ctxErr != nil {
				return "", ctxErr
			}
			reason, cause = "model call failed", err
			slog.Warn("remote generation attempt failed", "attempt", made, "error", err)
			continue
		}

		password, problem := g.clean(reply, req.Length)
		if problem == "" {
			return password, nil
		}
		reason, cause = problem, nil
		slog.Warn("remote generation reply rejected", "attempt", made, "reason", problem)
	}

	return "", &RemoteGenerationError{Attempts: made, Reason: reason, Err: cause}
}

func (g *Model) call(ctx context.Context, prompt string) (string, error) {
	if g.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.attemptTimeout)
		defer cancel()
	}
	return g.client.GenerateText(ctx, prompt)
}

// clean truncates reply to length characters and returns a non-empty
// problem description when the result is unusable.
func (g *Model) clean(reply string, length int) (string, string) {
	runes := []rune(strings.TrimSpace(reply))
	if len(runes) == 0 {
		return "", "empty reply"
	}
	if len(runes) < length {
		return "", fmt.Sprintf("reply has %d characters, want %d", len(runes), length)
	}
	runes = runes[:length]

	for _, r := range runes {
		if unicode.IsSpace(r) {
			return "", "reply contains whitespace"
		}
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return "", "reply contains non-printable or non-ASCII characters"
		}
	}

	password := string(runes)
	if g.strict {
		if missing := missingClasses(password); missing != "" {
			return "", "reply is missing " + missing
		}
	}
	return password, ""
}

func missingClasses(s string) string {
	var missing []string
	if !strings.ContainsAny(s, crypto.UppercaseChars) {
		missing = append(missing, "uppercase")
	}
	if !strings.ContainsAny(s, crypto.LowercaseChars) {
		missing = append(missing, "lowercase")
	}
	if !strings.ContainsAny(s, crypto.DigitChars) {
		missing = append(missing, "digits")
	}
	if strings.IndexFunc(s, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) }) < 0 {
		missing = append(missing, "symbols")
	}
	return strings.Join(missing, ", ")
}
