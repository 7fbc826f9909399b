package main

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/vaultpass/passgen-go/internal/crypto"
	"github.com/vaultpass/passgen-go/internal/form"
	"github.com/vaultpass/passgen-go/internal/generator"
)

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

func selectionFromFlags(upper, lower, digits, symbols bool) crypto.Selection {
	return crypto.Selection{
		Uppercase: upper,
		Lowercase: lower,
		Digits:    digits,
		Symbols:   symbols,
	}
}

func defaultSelection() crypto.Selection {
	return crypto.DefaultSelection()
}

// runGenerate prints count passwords from g and optionally copies the last
// one.
func runGenerate(ctx context.Context, g generator.PasswordGenerator, sel crypto.Selection, length string, count int, clip bool, out *printer) error {
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}

	sess := form.NewSession(g)
	sess.SetSelection(sel)

	var last string
	for i := 0; i < count; i++ {
		pw, err := sess.Submit(ctx, length)
		if err != nil {
			return err
		}
		out.password(pw)
		last = pw
	}

	if clip {
		if err := copyToClipboard(last); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		out.info("password copied to your clipboard")
	}
	return nil
}
