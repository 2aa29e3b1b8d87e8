// Package pattern loads the contaminant fragment list and synthesizes the
// homopolymer patterns that are always screened for alongside it.
package pattern

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shenwei356/xopen"
)

// Kind tags a pattern with the read classification it triggers on a match.
type Kind uint8

const (
	Adapter Kind = iota
	PolyG
	PolyC
)

var kindNames = [...]string{"adapter", "polyG", "polyC"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Pattern is a literal sequence to screen reads against. Immutable once built.
type Pattern struct {
	Text string
	Kind Kind
}

// ErrNoPatterns is returned when the fragment source contains no usable lines.
var ErrNoPatterns = errors.New("pattern: fragment list is empty")

// Load reads one pattern per line, uppercases it and strips a tab-delimited
// trailing annotation if present. Blank lines are skipped. Two homopolymer
// patterns (a G-run and a C-run of polyLen bases) are appended to whatever
// the source provides. An empty source is a configuration error: the
// homopolymer patterns alone are not considered a usable screen.
func Load(r io.Reader, polyLen int) ([]Pattern, error) {
	var patterns []Pattern
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		line = strings.ToUpper(line)
		if tab := strings.IndexByte(line, '\t'); tab >= 0 {
			line = line[:tab]
		}
		if line == "" {
			continue
		}
		patterns = append(patterns, Pattern{Text: line, Kind: Adapter})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("pattern: reading fragment list: %w", err)
	}
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}
	patterns = append(patterns,
		Pattern{Text: strings.Repeat("G", polyLen), Kind: PolyG},
		Pattern{Text: strings.Repeat("C", polyLen), Kind: PolyC},
	)
	return patterns, nil
}

// LoadFile loads patterns from a plain or gzipped file, or from stdin
// when path is "-".
func LoadFile(path string, polyLen int) ([]Pattern, error) {
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("pattern: open %s: %w", path, err)
	}
	defer fh.Close()
	return Load(fh, polyLen)
}
