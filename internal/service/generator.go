package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vaultpass/passgen-go/internal/crypto"
	"github.com/vaultpass/passgen-go/internal/generator"
	"github.com/vaultpass/passgen-go/internal/model"
)

var (
	ErrQuotaExceeded   = errors.New("daily model generation quota exceeded")
	ErrAccountRequired = errors.New("model generation requires an account")
)

// UsageStore persists generation metadata. Reserve must check the quota
// and insert the pending event atomically.
type UsageStore interface {
	Reserve(ctx context.Context, ev *model.UsageEvent, since time.Time, limit int) (bool, error)
	Complete(ctx context.Context, id int64, status model.UsageStatus) error
	CountSince(ctx context.Context, userID int64, generator string, since time.Time) (int, error)
}

// GeneratorService resolves requests to a generator and enforces model
// quotas when accounts are enabled.
type GeneratorService struct {
	generators  map[model.Mode]generator.PasswordGenerator
	defaultMode model.Mode
	usage       UsageStore
	dailyQuota  int
	now         func() time.Time
}

// NewGeneratorService creates a GeneratorService serving gens, keyed by
// their Name. Requests without a mode use defaultMode.
func NewGeneratorService(defaultMode model.Mode, gens ...generator.PasswordGenerator) *GeneratorService {
	m := make(map[model.Mode]generator.PasswordGenerator, len(gens))
	for _, g := range gens {
		m[model.Mode(g.Name())] = g
	}
	return &GeneratorService{generators: m, defaultMode: defaultMode, now: time.Now}
}

// WithUsage enables accounts: model generation is then limited to
// dailyQuota successful calls per user per UTC day.
func (s *GeneratorService) WithUsage(store UsageStore, dailyQuota int) *GeneratorService {
	s.usage = store
	s.dailyQuota = dailyQuota
	return s
}

// AccountsEnabled reports whether model generation is tied to accounts.
func (s *GeneratorService) AccountsEnabled() bool {
	return s.usage != nil
}

// Request converts a request body into a validated GenerationRequest.
// Missing class flags take the form defaults: lowercase on, the rest off.
func (s *GeneratorService) Request(req model.GenerateRequest) (model.GenerationRequest, error) {
	def := crypto.DefaultSelection()
	out := model.GenerationRequest{
		Selection: crypto.Selection{
			Uppercase: boolOrDefault(req.Uppercase, def.Uppercase),
			Lowercase: boolOrDefault(req.Lowercase, def.Lowercase),
			Digits:    boolOrDefault(req.Numbers, def.Digits),
			Symbols:   boolOrDefault(req.Symbols, def.Symbols),
		},
		Mode: model.Mode(req.Mode),
	}
	if out.Mode == "" {
		out.Mode = s.defaultMode
	}

	if req.Length == nil {
		return out, &generator.ValidationError{Field: "length", Reason: "length is required"}
	}
	out.Length = *req.Length

	if err := generator.ValidateRequest(out); err != nil {
		return out, err
	}
	return out, nil
}

// Generate serves an anonymous request. When accounts are enabled, model
// generation is refused with ErrAccountRequired.
func (s *GeneratorService) Generate(ctx context.Context, req model.GenerateRequest) (model.GenerateResponse, error) {
	gr, err := s.Request(req)
	if err != nil {
		return model.GenerateResponse{}, err
	}
	if gr.Mode == model.ModeModel && s.AccountsEnabled() {
		return model.GenerateResponse{}, ErrAccountRequired
	}
	return s.run(ctx, gr)
}

// GenerateForUser serves an authenticated request, charging model
// generations against the user's daily quota. The quota slot is reserved
// before the model is called and released if the generation fails.
func (s *GeneratorService) GenerateForUser(ctx context.Context, userID int64, req model.GenerateRequest) (model.GenerateResponse, error) {
	gr, err := s.Request(req)
	if err != nil {
		return model.GenerateResponse{}, err
	}
	if gr.Mode != model.ModeModel || s.usage == nil {
		return s.run(ctx, gr)
	}

	if _, ok := s.generators[gr.Mode]; !ok {
		return model.GenerateResponse{}, generator.ErrModelUnavailable
	}

	ev := &model.UsageEvent{
		UserID:    userID,
		Generator: string(gr.Mode),
		Length:    gr.Length,
		Classes:   gr.Selection.String(),
	}
	reserved, err := s.usage.Reserve(ctx, ev, s.dayStart(), s.dailyQuota)
	if err != nil {
		return model.GenerateResponse{}, err
	}
	if !reserved {
		return model.GenerateResponse{}, ErrQuotaExceeded
	}

	resp, genErr := s.run(ctx, gr)

	status := model.UsageOK
	if genErr != nil {
		status = model.UsageFailed
	}
	if err := s.usage.Complete(context.WithoutCancel(ctx), ev.ID, status); err != nil {
		slog.Warn("failed to complete generation event", "user_id", userID, "event_id", ev.ID, "error", err)
	}

	return resp, genErr
}

// Usage reports the user's model quota for the current UTC day.
func (s *GeneratorService) Usage(ctx context.Context, userID int64) (model.UsageResponse, error) {
	start := s.dayStart()
	resp := model.UsageResponse{Limit: s.dailyQuota, ResetsAt: start.Add(24 * time.Hour)}
	if s.usage == nil {
		return resp, nil
	}

	used, err := s.usage.CountSince(ctx, userID, string(model.ModeModel), start)
	if err != nil {
		return model.UsageResponse{}, err
	}
	resp.Used = used
	resp.Remaining = max(s.dailyQuota-used, 0)
	return resp, nil
}

func (s *GeneratorService) run(ctx context.Context, req model.GenerationRequest) (model.GenerateResponse, error) {
	g, ok := s.generators[req.Mode]
	if !ok {
		return model.GenerateResponse{}, generator.ErrModelUnavailable
	}

	password, err := g.Generate(ctx, req)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	return model.GenerateResponse{
		Password:  password,
		Length:    len(password),
		Generator: g.Name(),
	}, nil
}

func (s *GeneratorService) dayStart() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

// boolOrDefault returns the dereferenced pointer value, or the fallback if nil.
func boolOrDefault(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
