package model

import "github.com/vaultpass/passgen-go/internal/crypto"

// Mode selects which generator serves a request.
type Mode string

const (
	ModeLocal Mode = "local"
	ModeModel Mode = "model"
)

// GenerationRequest is the validated, immutable input of one generation.
type GenerationRequest struct {
	Selection crypto.Selection
	Length    int
	Mode      Mode
}

// GenerateRequest represents a password generation request body.
// Pointer fields distinguish a missing value from an explicit zero.
type GenerateRequest struct {
	Length    *int   `json:"length"`
	Uppercase *bool  `json:"uppercase"`
	Lowercase *bool  `json:"lowercase"`
	Numbers   *bool  `json:"numbers"`
	Symbols   *bool  `json:"symbols"`
	Mode      string `json:"mode,omitempty"`
}

// GenerateResponse represents a password generation response.
type GenerateResponse struct {
	Password  string `json:"password"`
	Length    int    `json:"length"`
	Generator string `json:"generator"`
	RequestID string `json:"request_id,omitempty"`
}
