package prompt

import (
	"errors"
	"fmt"
)

// Validation errors for the optional style settings.
var (
	ErrUnsupportedTone   = errors.New("unsupported tone")
	ErrUnsupportedLength = errors.New("unsupported length")
)

// Tone and length values, in canonical order.
var (
	tones   = []string{"professional", "casual", "friendly", "formal", "persuasive", "informative", "creative", "technical"}
	lengths = []string{"short", "medium", "long", "detailed"}
)

// ---------------------------------------------------------------------------
// Tone type - represents a validated tone
// ---------------------------------------------------------------------------

// Tone is a validated tone. The zero value means "unset".
type Tone struct {
	value string
}

// ParseTone validates a tone. Empty input is valid and yields the zero Tone.
func ParseTone(s string) (Tone, error) {
	if s == "" {
		return Tone{}, nil
	}
	if !contains(tones, s) {
		return Tone{}, fmt.Errorf("%w %q (supported: %v)", ErrUnsupportedTone, s, tones)
	}
	return Tone{value: s}, nil
}

// String returns the tone, or "" when unset.
func (t Tone) String() string { return t.value }

// IsZero reports whether no tone was set.
func (t Tone) IsZero() bool { return t.value == "" }

// Tones returns the supported tones.
func Tones() []string {
	return append([]string(nil), tones...)
}

// ---------------------------------------------------------------------------
// Length type - represents a validated length
// ---------------------------------------------------------------------------

// Length is a validated output length. The zero value means "unset".
type Length struct {
	value string
}

// ParseLength validates a length. Empty input is valid and yields the zero Length.
func ParseLength(s string) (Length, error) {
	if s == "" {
		return Length{}, nil
	}
	if !contains(lengths, s) {
		return Length{}, fmt.Errorf("%w %q (supported: %v)", ErrUnsupportedLength, s, lengths)
	}
	return Length{value: s}, nil
}

// String returns the length, or "" when unset.
func (l Length) String() string { return l.value }

// IsZero reports whether no length was set.
func (l Length) IsZero() bool { return l.value == "" }

// Lengths returns the supported lengths.
func Lengths() []string {
	return append([]string(nil), lengths...)
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
