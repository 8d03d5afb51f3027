// Package checkout holds the double-out finishing table used to validate
// checkouts and suggest finishes.
package checkout

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxCheckout is the highest score that can be finished with three darts.
const MaxCheckout = 170

//go:embed checkouts.yaml
var defaultTable []byte

// Table maps a remaining score (1..170) to a suggested finishing combination.
// It is read-only after construction.
type Table struct {
	entries map[int]string
}

// Default returns the table embedded in the binary.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("checkout: embedded table is invalid: %v", err))
	}
	return t
}

// Parse builds a table from a YAML document of `score: "T20 T20 Bull"` pairs.
func Parse(data []byte) (*Table, error) {
	raw := make(map[int]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode checkout table: %w", err)
	}

	entries := make(map[int]string, len(raw))
	for score, combo := range raw {
		if score < 1 || score > MaxCheckout {
			return nil, fmt.Errorf("checkout score %d out of range", score)
		}
		combo = strings.TrimSpace(combo)
		darts := strings.Fields(combo)
		if len(darts) == 0 || len(darts) > 3 {
			return nil, fmt.Errorf("checkout %d: expected 1-3 darts, got %q", score, combo)
		}
		entries[score] = strings.Join(darts, " ")
	}
	return &Table{entries: entries}, nil
}

// Suggestion returns the finishing combination for score, if one exists.
func (t *Table) Suggestion(score int) (string, bool) {
	if t == nil {
		return "", false
	}
	s, ok := t.entries[score]
	return s, ok
}

// CanFinish reports whether score can be taken out exactly with a double.
func (t *Table) CanFinish(score int) bool {
	if score <= 0 {
		return false
	}
	if straightDouble(score) {
		return true
	}
	s, ok := t.Suggestion(score)
	if !ok {
		return false
	}
	darts := strings.Fields(s)
	return isDouble(darts[len(darts)-1])
}

// PossibleDarts lists the dart counts a checkout of score can have been
// completed with, or nil when the score cannot be finished.
func (t *Table) PossibleDarts(score int) []int {
	if !t.CanFinish(score) {
		return nil
	}
	min := 3
	if straightDouble(score) {
		min = 1
	} else if s, ok := t.Suggestion(score); ok {
		min = len(strings.Fields(s))
	}
	out := make([]int, 0, 3)
	for n := min; n <= 3; n++ {
		out = append(out, n)
	}
	return out
}

func straightDouble(score int) bool {
	return score == 50 || (score <= 40 && score%2 == 0)
}

func isDouble(dart string) bool {
	return strings.HasPrefix(dart, "D") || strings.EqualFold(dart, "Bull")
}
