// Package generator turns a GenerationRequest into a password, either by
// sampling a local character pool or by asking a remote language model.
package generator

import (
	"context"
	"crypto/rand"
	"io"

	"github.com/vaultpass/passgen-go/internal/crypto"
	"github.com/vaultpass/passgen-go/internal/model"
)

// PasswordGenerator produces a password for a validated request.
type PasswordGenerator interface {
	Generate(ctx context.Context, req model.GenerationRequest) (string, error)
	Name() string
}

// Local samples passwords from the request's character pool.
type Local struct {
	entropy io.Reader
}

// NewLocal returns a Local generator reading from entropy. A nil reader
// means crypto/rand.
func NewLocal(entropy io.Reader) *Local {
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Local{entropy: entropy}
}

func (g *Local) Name() string { return string(model.ModeLocal) }

// Generate builds the pool for req.Selection and samples req.Length
// characters from it.
func (g *Local) Generate(ctx context.Context, req model.GenerationRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pool := crypto.BuildPool(req.Selection)
	if pool == "" {
		return "", ErrEmptySelection
	}

	return crypto.Sample(g.entropy, pool, req.Length)
}
