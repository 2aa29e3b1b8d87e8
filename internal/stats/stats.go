// Package stats accumulates per-stream classification histograms and
// prints the end-of-run report.
package stats

import (
	"fmt"
	"io"
	"strconv"
	"sync/atomic"

	"github.com/fatih/color"

	"readsieve/internal/classify"
)

// Stats counts classifications for one input stream. Updates are atomic so
// classification workers can share an instance without locking.
type Stats struct {
	Source string
	counts [classify.NumClasses]int64
	kept   [classify.NumClasses]int64 // per-class counts of reads whose pair was kept
	paired bool
}

// New returns stats for a single-end stream named after its source file.
func New(source string) *Stats {
	return &Stats{Source: source}
}

// NewPaired returns stats for one mate stream of a paired run.
func NewPaired(source string) *Stats {
	return &Stats{Source: source, paired: true}
}

// Update records one single-end classification.
func (s *Stats) Update(c classify.Class) {
	atomic.AddInt64(&s.counts[c], 1)
}

// UpdatePaired records one mate's classification together with whether the
// pair as a whole was kept. A mate can classify ok and still not be kept
// when the other mate fails.
func (s *Stats) UpdatePaired(c classify.Class, pairKept bool) {
	atomic.AddInt64(&s.counts[c], 1)
	if pairKept {
		atomic.AddInt64(&s.kept[c], 1)
	}
}

// Count returns the number of reads with the given classification.
func (s *Stats) Count(c classify.Class) int64 {
	return atomic.LoadInt64(&s.counts[c])
}

// KeptCount returns how many reads of the given classification belonged to
// a kept pair. Only meaningful for paired stats.
func (s *Stats) KeptCount(c classify.Class) int64 {
	return atomic.LoadInt64(&s.kept[c])
}

// Total returns the number of reads seen on this stream.
func (s *Stats) Total() int64 {
	var t int64
	for c := 0; c < classify.NumClasses; c++ {
		t += atomic.LoadInt64(&s.counts[c])
	}
	return t
}

// Kept returns the number of reads emitted from this stream: ok reads for
// single-end stats, reads of kept pairs for paired stats.
func (s *Stats) Kept() int64 {
	if s.paired {
		var t int64
		for c := 0; c < classify.NumClasses; c++ {
			t += atomic.LoadInt64(&s.kept[c])
		}
		return t
	}
	return s.Count(classify.Ok)
}

// Report writes the histogram for this stream.
func (s *Stats) Report(w io.Writer) {
	total := s.Total()
	kept := s.Kept()
	pct := 0.0
	if total > 0 {
		pct = float64(kept) / float64(total) * 100
	}

	fmt.Fprintf(w, "\n%s\n", s.Source)
	fmt.Fprintf(w, "Total reads: %s\n", Comma(total))
	fmt.Fprintf(w, "Kept reads: %s\n", Comma(kept))
	color.New(color.FgHiGreen).Fprintf(w, "Percentage of kept reads: %.2f%%\n", pct)
	for c := classify.Class(1); c < classify.NumClasses; c++ {
		color.New(color.FgHiMagenta).Fprintf(w, "%s: %s\n", c, Comma(s.Count(c)))
	}
}

// Comma formats an integer with thousands separators.
func Comma(value int64) string {
	str := strconv.FormatInt(value, 10)
	neg := ""
	if str[0] == '-' {
		neg, str = "-", str[1:]
	}
	out := make([]byte, 0, len(str)+len(str)/3)
	lead := len(str) % 3
	if lead == 0 {
		lead = 3
	}
	for i := 0; i < len(str); i++ {
		if i == lead {
			out = append(out, ',')
			lead += 3
		}
		out = append(out, str[i])
	}
	return neg + string(out)
}
