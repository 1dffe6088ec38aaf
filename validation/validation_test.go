package validation

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidateUserID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		valid    bool
	}{
		{"numeric id", "42", "42", true},
		{"mixed id", "user_42-a", "user_42-a", true},
		{"trimmed", "  42 ", "42", true},
		{"max length", strings.Repeat("a", MaxUserIDLength), strings.Repeat("a", MaxUserIDLength), true},
		{"empty", "", "", false},
		{"only spaces", "   ", "", false},
		{"too long", strings.Repeat("a", MaxUserIDLength+1), "", false},
		{"slash", "a/b", "", false},
		{"quote", `a"b`, "", false},
		{"newline", "a\nb", "", false},
		{"composed accent", "jos\u00e9", "jos\u00e9", true},
		{"decomposed accent", "jose\u0301", "jos\u00e9", true},
		{"non-latin", "\u7528\u6237", "\u7528\u6237", true},
		{"multibyte max length", strings.Repeat("\u00e9", MaxUserIDLength), strings.Repeat("\u00e9", MaxUserIDLength), true},
		{"multibyte too long", strings.Repeat("\u00e9", MaxUserIDLength+1), "", false},
		{"space inside", "a b", "", false},
		{"emoji", "a\U0001F600", "", false},
		{"lone combining mark", "\u0301", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateUserID(tt.input)
			if !tt.valid {
				if !errors.Is(err, ErrInvalidUserID) {
					t.Errorf("Expected ErrInvalidUserID for %q, got %v", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected %q to be valid, got %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNormalizeUserID(t *testing.T) {
	decomposed := "jose\u0301"
	composed := "jos\u00e9"

	if got := NormalizeUserID(decomposed); got != composed {
		t.Errorf("Expected NFC form %q, got %q", composed, got)
	}
	if got := NormalizeUserID(" " + composed + "\t"); got != composed {
		t.Errorf("Expected trimmed %q, got %q", composed, got)
	}
}

func TestValidateItems(t *testing.T) {
	tests := []struct {
		input    float64
		expected int
		valid    bool
	}{
		{0, 0, true},
		{5, 5, true},
		{MaxItems, MaxItems, true},
		{-1, 0, false},
		{1.5, 0, false},
		{MaxItems + 1, 0, false},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
		{math.Inf(-1), 0, false},
	}

	for _, tt := range tests {
		got, err := ValidateItems(tt.input)
		if !tt.valid {
			if !errors.Is(err, ErrInvalidItems) {
				t.Errorf("ValidateItems(%v): expected ErrInvalidItems, got %v", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("ValidateItems(%v) = %d, %v; want %d, nil", tt.input, got, err, tt.expected)
		}
	}
}
