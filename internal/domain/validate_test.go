package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validListing() *Listing {
	return &Listing{
		Title:      "Mountain Bike",
		CategoryID: "vehicles",
		Price:      250,
	}
}

func TestValidateListing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Listing)
		valid  bool
	}{
		{"valid listing", func(l *Listing) {}, true},
		{"title too short", func(l *Listing) { l.Title = "Abcd" }, false},
		{"title at minimum", func(l *Listing) { l.Title = "Abcde" }, true},
		{"title at maximum", func(l *Listing) { l.Title = strings.Repeat("x", 100) }, true},
		{"title too long", func(l *Listing) { l.Title = strings.Repeat("x", 101) }, false},
		{"multibyte title counts runes", func(l *Listing) { l.Title = "Véló!" }, true},
		{"negative price", func(l *Listing) { l.Price = -1 }, false},
		{"zero price", func(l *Listing) { l.Price = 0 }, false},
		{"missing category", func(l *Listing) { l.CategoryID = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validListing()
			tt.mutate(l)
			result := ValidateListing(l)
			assert.Equal(t, tt.valid, result.IsValid)
			if !tt.valid {
				assert.NotEmpty(t, result.Message)
			}
		})
	}
}

func TestValidateListing_MissingPrice(t *testing.T) {
	result := ValidateListing(&Listing{Title: "Mountain Bike", CategoryID: "vehicles"})
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Message, "price")
}

func TestValidateListing_NilPayload(t *testing.T) {
	result := ValidateListing(nil)
	assert.False(t, result.IsValid)
}

func TestValidationResult_Err(t *testing.T) {
	assert.NoError(t, ValidateListing(validListing()).Err())

	err := ValidateListing(&Listing{Title: "Hi", CategoryID: "vehicles", Price: 10}).Err()
	assert.ErrorIs(t, err, ErrInvalidListing)
	assert.Contains(t, err.Error(), "title")
}
