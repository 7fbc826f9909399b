package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vaultpass/passgen-go/internal/model"
)

// scriptedModel replies with one entry of replies per call.
type scriptedModel struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (m *scriptedModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	i := m.calls
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.replies) {
		return m.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func modelRequest(n int) model.GenerationRequest {
	return model.GenerationRequest{Length: n, Mode: model.ModeModel}
}

func TestModelGenerate(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		length     int
		strict     bool
		want       string
		wantReason string
	}{
		{name: "exact length", reply: "aB3$eF7!", length: 8, want: "aB3$eF7!"},
		{name: "longer reply is truncated", reply: "aB3$eF7!zz99", length: 8, want: "aB3$eF7!"},
		{name: "surrounding whitespace trimmed", reply: "\n  aB3$eF7!\n", length: 8, want: "aB3$eF7!"},
		{name: "trailing chatter beyond length", reply: "aB3$eF7! is your password", length: 8, want: "aB3$eF7!"},
		{name: "shorter reply is not padded", reply: "aB3$", length: 8, wantReason: "reply has 4 characters, want 8"},
		{name: "empty reply", reply: "   ", length: 8, wantReason: "empty reply"},
		{name: "inner space", reply: "aB3 eF7!", length: 8, wantReason: "reply contains whitespace"},
		{name: "non ascii", reply: "aB3€eF7!", length: 8, wantReason: "reply contains non-printable or non-ASCII characters"},
		{name: "strict accepts all classes", reply: "aB3$eF7!", length: 8, strict: true, want: "aB3$eF7!"},
		{name: "strict rejects missing classes", reply: "abcdefgh", length: 8, strict: true, wantReason: "reply is missing uppercase, digits, symbols"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &scriptedModel{replies: []string{tt.reply}}
			g := NewModel(m, ModelOptions{MaxAttempts: 1, Strict: tt.strict})

			got, err := g.Generate(context.Background(), modelRequest(tt.length))

			if tt.wantReason != "" {
				var rge *RemoteGenerationError
				if !errors.As(err, &rge) {
					t.Fatalf("Generate() error = %v, want *RemoteGenerationError", err)
				}
				if rge.Reason != tt.wantReason {
					t.Errorf("RemoteGenerationError.Reason = %q, want %q", rge.Reason, tt.wantReason)
				}
				if got != "" {
					t.Errorf("Generate() = %q on error, want empty", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("Generate() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModelGeneratePrompt(t *testing.T) {
	m := &scriptedModel{replies: []string{"aB3$eF7!aB3$"}}

	if _, err := NewModel(m, ModelOptions{}).Generate(context.Background(), modelRequest(12)); err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if len(m.prompts) != 1 || !strings.Contains(m.prompts[0], "exactly 12 characters") {
		t.Errorf("prompts = %q, want one prompt asking for 12 characters", m.prompts)
	}
}

func TestModelGenerateRetriesBounded(t *testing.T) {
	boom := errors.New("upstream 500")
	m := &scriptedModel{
		errs:    []error{boom, nil, nil},
		replies: []string{"", "short", "aB3$eF7!"},
	}
	g := NewModel(m, ModelOptions{MaxAttempts: 3})

	got, err := g.Generate(context.Background(), modelRequest(8))
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if got != "aB3$eF7!" {
		t.Errorf("Generate() = %q, want %q", got, "aB3$eF7!")
	}
	if m.calls != 3 {
		t.Errorf("calls = %d, want 3", m.calls)
	}
}

func TestModelGenerateGivesUp(t *testing.T) {
	boom := errors.New("upstream 500")
	m := &scriptedModel{errs: []error{boom, boom, boom, boom, boom, boom, boom}}
	g := NewModel(m, ModelOptions{MaxAttempts: 100})

	_, err := g.Generate(context.Background(), modelRequest(8))

	var rge *RemoteGenerationError
	if !errors.As(err, &rge) {
		t.Fatalf("Generate() error = %v, want *RemoteGenerationError", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Generate() error should wrap the last call error")
	}
	if m.calls != MaxModelAttempts {
		t.Errorf("calls = %d, want %d", m.calls, MaxModelAttempts)
	}
	if rge.Attempts != MaxModelAttempts {
		t.Errorf("Attempts = %d, want %d", rge.Attempts, MaxModelAttempts)
	}
}

func TestModelGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &scriptedModel{errs: []error{context.Canceled}}
	_, err := NewModel(m, ModelOptions{MaxAttempts: 3}).Generate(ctx, modelRequest(8))

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want %v", err, context.Canceled)
	}
	if m.calls != 0 {
		t.Errorf("calls = %d, want 0 for an already cancelled context", m.calls)
	}
}

func TestModelGenerateCancelledMidCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &blockingModel{started: make(chan struct{}, MaxModelAttempts)}

	done := make(chan error, 1)
	go func() {
		_, err := NewModel(m, ModelOptions{MaxAttempts: 3}).Generate(ctx, modelRequest(8))
		done <- err
	}()
	<-m.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Generate() error = %v, want %v", err, context.Canceled)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Generate() did not return after cancellation")
	}
	if n := len(m.started); n != 0 {
		t.Errorf("%d extra calls after cancellation, want none", n)
	}
}

// blockingModel blocks every call until its context is done.
type blockingModel struct {
	started chan struct{}
}

func (m *blockingModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.started <- struct{}{}
	<-ctx.Done()
	return "", ctx.Err()
}

func TestModelGenerateAttemptTimeout(t *testing.T) {
	m := &blockingModel{started: make(chan struct{}, MaxModelAttempts)}
	g := NewModel(m, ModelOptions{MaxAttempts: 2, AttemptTimeout: 20 * time.Millisecond})

	if got, want := g.Budget(), 40*time.Millisecond; got != want {
		t.Errorf("Budget() = %v, want %v", got, want)
	}

	start := time.Now()
	_, err := g.Generate(context.Background(), modelRequest(8))
	elapsed := time.Since(start)

	var rge *RemoteGenerationError
	if !errors.As(err, &rge) {
		t.Fatalf("Generate() error = %v, want *RemoteGenerationError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Generate() error should wrap the attempt deadline, got %v", err)
	}
	if rge.Attempts < 1 || rge.Attempts > 2 {
		t.Errorf("Attempts = %d, want 1 or 2", rge.Attempts)
	}
	if elapsed > time.Second {
		t.Errorf("Generate() took %v, want it bounded by the budget", elapsed)
	}
}

func TestModelBudgetUnbounded(t *testing.T) {
	if got := NewModel(&scriptedModel{}, ModelOptions{MaxAttempts: 3}).Budget(); got != 0 {
		t.Errorf("Budget() = %v, want 0 without an attempt timeout", got)
	}
}

func TestModelUnavailable(t *testing.T) {
	g := NewModel(nil, ModelOptions{})
	if g.Available() {
		t.Error("Available() = true for nil client")
	}

	_, err := g.Generate(context.Background(), modelRequest(8))
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("Generate() error = %v, want %v", err, ErrModelUnavailable)
	}
}
