package provider

import (
	"errors"
	"fmt"
)

// Provider name strings as stored and accepted on the command line.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// ErrInvalidName indicates an unrecognized provider name.
var ErrInvalidName = errors.New("invalid provider")

// Name represents a validated provider name.
// Zero value means "unset" and must be defaulted with OrDefault before use.
// Use ParseName to create from user input, or the pre-parsed constants.
type Name struct {
	name string
}

// Compile-time interface compliance check.
var _ fmt.Stringer = Name{}

// Pre-parsed provider constants for use in code.
var (
	OpenAI    = Name{name: ProviderOpenAI}
	Gemini    = Name{name: ProviderGemini}
	Anthropic = Name{name: ProviderAnthropic}
)

// names lists providers in canonical order.
var names = []Name{OpenAI, Gemini, Anthropic}

// ParseName validates and parses a provider name string.
// Matching is case-sensitive. Empty string returns an error.
func ParseName(s string) (Name, error) {
	if s == "" {
		return Name{}, fmt.Errorf("provider cannot be empty: %w", ErrInvalidName)
	}
	for _, n := range names {
		if n.name == s {
			return n, nil
		}
	}
	return Name{}, fmt.Errorf("unknown provider %q (use 'openai', 'gemini' or 'anthropic'): %w", s, ErrInvalidName)
}

// MustParseName parses a provider name, panicking if invalid.
// Use only for compile-time constants and tests.
func MustParseName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Names returns every supported provider in canonical order.
func Names() []Name {
	return append([]Name(nil), names...)
}

// String returns the provider name, or "" for the zero value.
func (n Name) String() string {
	return n.name
}

// IsZero returns true if no provider is set.
func (n Name) IsZero() bool {
	return n.name == ""
}

// OrDefault returns n, or OpenAI if n is zero.
func (n Name) OrDefault() Name {
	if n.IsZero() {
		return OpenAI
	}
	return n
}
