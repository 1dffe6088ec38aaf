// Package validation checks and normalises user input before it reaches the
// store or becomes a metric label value.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxUserIDLength bounds user ids, which become items_in_cart label values
const MaxUserIDLength = 64

// MaxItems bounds the number of items a cart may hold
const MaxItems = 1_000_000

// Letters and digits of any script, so NFC decides whether two spellings
// share an items_in_cart series
var userIDRegex = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)

var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrInvalidItems  = errors.New("invalid items")
)

// NormalizeUserID trims spaces and applies NFC so equivalent spellings of
// the same id map to one label value
func NormalizeUserID(userID string) string {
	return norm.NFC.String(strings.TrimSpace(userID))
}

// ValidateUserID normalises userID and checks its length and charset
func ValidateUserID(userID string) (string, error) {
	normalized := NormalizeUserID(userID)

	if normalized == "" {
		return "", fmt.Errorf("%w: user id cannot be empty", ErrInvalidUserID)
	}
	if utf8.RuneCountInString(normalized) > MaxUserIDLength {
		return "", fmt.Errorf("%w: user id longer than %d characters", ErrInvalidUserID, MaxUserIDLength)
	}
	if !userIDRegex.MatchString(normalized) {
		return "", fmt.Errorf("%w: user id may only contain letters, digits, '-' and '_'", ErrInvalidUserID)
	}

	return normalized, nil
}

// ValidateItems checks that items is a whole, non-negative count
func ValidateItems(items float64) (int, error) {
	switch {
	case math.IsNaN(items) || math.IsInf(items, 0):
		return 0, fmt.Errorf("%w: items must be a finite number", ErrInvalidItems)
	case items < 0:
		return 0, fmt.Errorf("%w: items cannot be negative", ErrInvalidItems)
	case items != math.Trunc(items):
		return 0, fmt.Errorf("%w: items must be a whole number", ErrInvalidItems)
	case items > MaxItems:
		return 0, fmt.Errorf("%w: items cannot exceed %d", ErrInvalidItems, MaxItems)
	}
	return int(items), nil
}
