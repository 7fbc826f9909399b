package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/vaultpass/passgen-go/internal/model"
)

const (
	MinLength = 4
	MaxLength = 16
)

// ValidateLength parses raw form input into a password length in
// [MinLength, MaxLength].
func ValidateLength(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &ValidationError{Field: "length", Value: raw, Reason: "length is required"}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: "length", Value: raw, Reason: "length must be a number"}
	}

	if err := CheckLength(n); err != nil {
		return 0, err
	}
	return n, nil
}

// CheckLength applies the length bounds to an already numeric value.
func CheckLength(n int) error {
	switch {
	case n < MinLength:
		return &ValidationError{Field: "length", Value: strconv.Itoa(n), Reason: fmt.Sprintf("at least %d characters", MinLength)}
	case n > MaxLength:
		return &ValidationError{Field: "length", Value: strconv.Itoa(n), Reason: fmt.Sprintf("max %d characters allowed", MaxLength)}
	}
	return nil
}

// ValidateRequest reports every problem with req at once. The returned
// error matches ErrEmptySelection and *ValidationError through errors.Is/As.
func ValidateRequest(req model.GenerationRequest) error {
	var result *multierror.Error

	if err := CheckLength(req.Length); err != nil {
		result = multierror.Append(result, err)
	}

	switch req.Mode {
	case model.ModeLocal, "":
		if req.Selection.Empty() {
			result = multierror.Append(result, ErrEmptySelection)
		}
	case model.ModeModel:
	default:
		result = multierror.Append(result, &ValidationError{Field: "mode", Value: string(req.Mode), Reason: "unknown generation mode"})
	}

	if result == nil {
		return nil
	}
	if len(result.Errors) == 1 {
		return result.Errors[0]
	}
	result.ErrorFormat = joinErrors
	return result
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
