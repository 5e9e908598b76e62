package domain

import "fmt"

// ValidationResult reports the outcome of a listing validation pass.
type ValidationResult struct {
	IsValid bool
	Message string
}

// Err returns the failure as an ErrInvalidListing-wrapped error, or nil when
// the listing passed.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidListing, r.Message)
}

const (
	titleMinLen = 5
	titleMaxLen = 100
)

// ValidateListing applies the server-side schema rules for listing payloads.
// It is called after the write has landed: a listing that fails here is
// removed by a compensating delete, not blocked up front.
func ValidateListing(l *Listing) ValidationResult {
	if l == nil {
		return invalid("listing payload is empty")
	}
	if n := len([]rune(l.Title)); n < titleMinLen || n > titleMaxLen {
		return invalid(fmt.Sprintf("title length must be between %d and %d characters", titleMinLen, titleMaxLen))
	}
	// An absent price decodes to zero, so zero and missing are rejected alike.
	if l.Price <= 0 {
		return invalid("price is required and must be positive")
	}
	if l.CategoryID == "" {
		return invalid("category is required")
	}
	return ValidationResult{IsValid: true}
}

func invalid(msg string) ValidationResult {
	return ValidationResult{IsValid: false, Message: msg}
}
