// Package app assembles generators from configuration for the server and
// the terminal client.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vaultpass/passgen-go/internal/config"
	"github.com/vaultpass/passgen-go/internal/entropy"
	"github.com/vaultpass/passgen-go/internal/gemini"
	"github.com/vaultpass/passgen-go/internal/generator"
	"github.com/vaultpass/passgen-go/internal/model"
)

// Generators holds the configured password generators.
type Generators struct {
	Local *generator.Local
	// Model is nil when no API key is configured.
	Model *generator.Model

	source *entropy.Source
}

// NewGenerators opens the entropy source and, when an API key is present,
// the remote model client.
func NewGenerators(ctx context.Context, cfg config.Config) (*Generators, error) {
	src, err := entropy.Open(cfg.EntropySource, entropy.SerialConfig{
		Device:      cfg.SerialDevice,
		Baud:        cfg.SerialBaud,
		ReadTimeout: cfg.SerialReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open entropy source: %w", err)
	}
	slog.Info("entropy source ready", "source", src.Name)

	g := &Generators{Local: generator.NewLocal(src), source: src}

	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.ModelTimeout,
	})
	switch {
	case errors.Is(err, gemini.ErrMissingAPIKey):
		slog.Warn("GEMINI_API_KEY not set, model generator disabled")
	case err != nil:
		src.Close()
		return nil, fmt.Errorf("create model client: %w", err)
	default:
		g.Model = generator.NewModel(client, generator.ModelOptions{
			MaxAttempts:    cfg.ModelMaxAttempts,
			Strict:         cfg.ModelStrict,
			AttemptTimeout: cfg.ModelTimeout,
		})
	}

	return g, nil
}

// All returns the available generators.
func (g *Generators) All() []generator.PasswordGenerator {
	gens := []generator.PasswordGenerator{g.Local}
	if g.Model != nil {
		gens = append(gens, g.Model)
	}
	return gens
}

// ByMode returns the generator for mode, or ErrModelUnavailable when the
// model generator is not configured.
func (g *Generators) ByMode(mode model.Mode) (generator.PasswordGenerator, error) {
	switch mode {
	case model.ModeLocal, "":
		return g.Local, nil
	case model.ModeModel:
		if g.Model == nil {
			return nil, generator.ErrModelUnavailable
		}
		return g.Model, nil
	}
	return nil, fmt.Errorf("unknown generation mode %q", mode)
}

// ModelBudget is the longest a model generation can run, or zero when the
// model generator is not configured.
func (g *Generators) ModelBudget() time.Duration {
	if g.Model == nil {
		return 0
	}
	return g.Model.Budget()
}

// Close releases the entropy source.
func (g *Generators) Close() error {
	return g.source.Close()
}
