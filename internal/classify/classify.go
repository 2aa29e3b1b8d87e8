// Package classify assigns exactly one outcome to every read.
package classify

import (
	"fmt"
	"sync"

	"readsieve/internal/dust"
	"readsieve/internal/pattern"
	"readsieve/internal/trie"
)

// Class is the outcome of screening one read. Every read gets exactly one.
type Class uint8

const (
	Ok Class = iota
	Adapter
	AmbiguousBase
	PolyG
	PolyC
	TooShort
	LowComplexity

	NumClasses = 7
)

// Report vocabulary, by classification.
var classNames = [NumClasses]string{"ok", "adapter", "n", "polyG", "polyC", "length", "dust"}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", c)
}

func fromKind(k pattern.Kind) Class {
	switch k {
	case pattern.Adapter:
		return Adapter
	case pattern.PolyG:
		return PolyG
	default:
		return PolyC
	}
}

// TagID appends the classification name to a record id.
func TagID(id string, c Class) string {
	return id + ":" + c.String()
}

// Classifier screens reads against the configured checks. Immutable after
// New and safe for concurrent use.
type Classifier struct {
	MinLength    int // reads shorter than this are rejected
	MaxAmbiguous int // more than this many N bases rejects the read
	Errors       int // substitution budget for the automaton scan

	auto     *trie.Automaton
	scorer   *dust.Scorer // nil disables the complexity check
	scanners sync.Pool
}

// New builds a Classifier over an automaton and an optional complexity
// scorer. The substitution budget must be 0, 1 or 2.
func New(auto *trie.Automaton, scorer *dust.Scorer, minLength, maxAmbiguous, errors int) (*Classifier, error) {
	if errors < 0 || errors > 2 {
		return nil, fmt.Errorf("classify: substitution budget must be 0, 1 or 2, got %d", errors)
	}
	c := &Classifier{
		MinLength:    minLength,
		MaxAmbiguous: maxAmbiguous,
		Errors:       errors,
		auto:         auto,
		scorer:       scorer,
	}
	c.scanners.New = func() interface{} { return auto.NewScanner() }
	return c, nil
}

// Classify runs the checks cheapest first: length, ambiguous bases, the
// automaton scan, then the complexity score. The first check that fires
// decides the read.
func (c *Classifier) Classify(seq string) Class {
	if len(seq) < c.MinLength {
		return TooShort
	}
	if countAmbiguous(seq) > c.MaxAmbiguous {
		return AmbiguousBase
	}
	sc := c.scanners.Get().(*trie.Scanner)
	kind, found := sc.Find(seq, c.Errors)
	c.scanners.Put(sc)
	if found {
		return fromKind(kind)
	}
	if c.scorer != nil && c.scorer.LowComplexity(seq) {
		return LowComplexity
	}
	return Ok
}

func countAmbiguous(seq string) int {
	n := 0
	for i := 0; i < len(seq); i++ {
		if seq[i] == 'N' || seq[i] == 'n' {
			n++
		}
	}
	return n
}
