// Package normalize extracts the prompt text from a provider reply.
//
// Providers are asked for plain text, but some wrap the answer in a JSON
// object anyway. Parse recognizes {"generated_prompt": "..."} and
// {"prompt": "..."} envelopes and falls back to the raw text for anything else.
package normalize

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Recognized envelope keys, in priority order.
var envelopeKeys = []string{"generated_prompt", "prompt"}

// Kind describes how a reply was interpreted.
type Kind int

const (
	// PlainText means the reply was not a JSON object.
	PlainText Kind = iota
	// Wrapped means the prompt was extracted from a recognized JSON key.
	Wrapped
	// UnrecognizedJSON means the reply was a JSON object without a
	// string-valued recognized key. The raw text is returned.
	UnrecognizedJSON
)

func (k Kind) String() string {
	switch k {
	case PlainText:
		return "plain_text"
	case Wrapped:
		return "wrapped"
	case UnrecognizedJSON:
		return "unrecognized_json"
	}
	return "unknown"
}

// Result is the outcome of Parse.
type Result struct {
	Text string
	Kind Kind
}

// Parse interprets raw. It never fails: when no envelope is recognized,
// Text is raw byte-for-byte.
func Parse(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return Result{Text: raw, Kind: PlainText}
	}

	obj := gjson.Parse(trimmed)
	if !obj.IsObject() {
		return Result{Text: raw, Kind: PlainText}
	}

	for _, key := range envelopeKeys {
		if v := lastMember(obj, key); v.Type == gjson.String {
			return Result{Text: v.String(), Kind: Wrapped}
		}
	}
	return Result{Text: raw, Kind: UnrecognizedJSON}
}

// lastMember returns the value of the last top-level member named key.
// Duplicate keys resolve like encoding/json: the last one wins.
func lastMember(obj gjson.Result, key string) gjson.Result {
	var last gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			last = v
		}
		return true
	})
	return last
}

// Prompt returns the prompt text for raw. See Parse.
func Prompt(raw string) string {
	return Parse(raw).Text
}
