// Package framework holds the registry of prompt-engineering frameworks.
// The registry is compiled into the binary and never mutated at runtime.
package framework

import (
	"fmt"
	"strings"
)

// Framework id constants.
// Use these instead of string literals for compile-time safety.
const (
	APE   = "ape"
	RACE  = "race"
	COAST = "coast"
	TAG   = "tag"
	RISE  = "rise"
	TRACE = "trace"
	ERA   = "era"
	CARE  = "care"
	ROSES = "roses"
	RTF   = "rtf"
	BAB   = "bab"
	PAIN  = "pain"
)

// Template describes one framework: a stable id, the name shown to users,
// and the ordered slots the model is asked to fill in.
type Template struct {
	ID          string
	DisplayName string
	Slots       []string
}

// Components returns the slots joined for display ("Task, Action, Goal").
func (t Template) Components() string {
	return strings.Join(t.Slots, ", ")
}

// registry lists frameworks in canonical order.
// The order drives All(), IDs(), CLI listings and the instruction template.
var registry = []Template{
	{APE, "A.P.E Framework", []string{"Action", "Purpose", "Expectation"}},
	{RACE, "R.A.C.E Framework", []string{"Role", "Action", "Context", "Expectation"}},
	{COAST, "C.O.A.S.T Framework", []string{"Context", "Objective", "Actions", "Scenario", "Task"}},
	{TAG, "T.A.G Framework", []string{"Task", "Action", "Goal"}},
	{RISE, "R.I.S.E Framework", []string{"Role", "Input", "Steps", "Expectation"}},
	{TRACE, "T.R.A.C.E Framework", []string{"Task", "Request", "Action", "Context", "Example"}},
	{ERA, "E.R.A Framework", []string{"Expectation", "Role", "Action"}},
	{CARE, "C.A.R.E Framework", []string{"Context", "Action", "Result", "Example"}},
	{ROSES, "R.O.S.E.S Framework", []string{"Role", "Objective", "Scenario", "Expected Solution", "Steps"}},
	{RTF, "R.T.F Framework", []string{"Role", "Task", "Format"}},
	{BAB, "B.A.B Framework", []string{"Before", "After", "Bridge"}},
	{PAIN, "P.A.I.N Framework", []string{"Problem", "Action", "Information", "Next Steps"}},
}

// byID indexes registry. Built once at init.
var byID = make(map[string]int, len(registry))

func init() {
	for i, t := range registry {
		if _, dup := byID[t.ID]; dup {
			panic("framework: duplicate id " + t.ID)
		}
		byID[t.ID] = i
	}
}

// Get returns the framework registered under id.
// Matching is exact and case-sensitive. Returns ErrNotFound otherwise.
// The returned Template owns its Slots slice.
func Get(id string) (Template, error) {
	i, ok := byID[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return clone(registry[i]), nil
}

// All returns every framework in canonical order.
func All() []Template {
	out := make([]Template, len(registry))
	for i, t := range registry {
		out[i] = clone(t)
	}
	return out
}

// IDs returns every framework id in canonical order.
func IDs() []string {
	out := make([]string, len(registry))
	for i, t := range registry {
		out[i] = t.ID
	}
	return out
}

func clone(t Template) Template {
	t.Slots = append([]string(nil), t.Slots...)
	return t
}
