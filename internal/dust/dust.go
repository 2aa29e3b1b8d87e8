// Package dust flags low-complexity reads with a DUST-style k-mer score.
package dust

// DefaultWindow bounds the trailing window the k-mer counts are kept over,
// measured in k-mer starting positions.
const DefaultWindow = 64

// maxK is the widest k-mer whose 3-bit base codes fit a uint64 key.
// Larger K values are clamped to it.
const maxK = 21

// Scorer computes the repetitiveness score of a sequence. Zero value is
// not usable; K must be positive. Safe for concurrent use: Score keeps no
// state between calls.
type Scorer struct {
	K      int
	Cutoff float64
	Window int // k-mer window size; DefaultWindow when zero
}

// code maps a base to a 3-bit symbol so that up to 21 bases fit a uint64
// k-mer key. Bases outside ACGTN share a single bucket.
func code(b byte) uint64 {
	switch b {
	case 'A', 'a':
		return 0
	case 'C', 'c':
		return 1
	case 'G', 'g':
		return 2
	case 'T', 't':
		return 3
	case 'N', 'n':
		return 4
	}
	return 5
}

// Score slides a window of k-mers along seq, counting occurrences of each
// distinct k-mer inside the window, and returns the maximum over windows of
//
//	sum over distinct k-mers of c*(c-1)/2, divided by the window size.
//
// Sequences shorter than K score zero. The pass is linear: entering a
// k-mer with current count c raises the raw sum by c, leaving one lowers
// it by c-1.
func (s *Scorer) Score(seq string) float64 {
	k := s.K
	if k > maxK {
		k = maxK
	}
	n := len(seq) - k + 1
	if k <= 0 || n <= 0 {
		return 0
	}
	window := s.Window
	if window <= 0 {
		window = DefaultWindow
	}

	mask := uint64(1)<<(3*uint(k)) - 1
	keys := make([]uint64, n)
	var key uint64
	for i := 0; i < len(seq); i++ {
		key = (key<<3 | code(seq[i])) & mask
		if i >= k-1 {
			keys[i-k+1] = key
		}
	}

	counts := make(map[uint64]int, window)
	var raw, max float64
	for i := 0; i < n; i++ {
		if i >= window {
			c := counts[keys[i-window]]
			counts[keys[i-window]] = c - 1
			raw -= float64(c - 1)
		}
		c := counts[keys[i]]
		counts[keys[i]] = c + 1
		raw += float64(c)

		size := i + 1
		if size > window {
			size = window
		}
		if v := raw / float64(size); v > max {
			max = v
		}
	}
	return max
}

// LowComplexity reports whether the score exceeds the cutoff.
func (s *Scorer) LowComplexity(seq string) bool {
	return s.Score(seq) > s.Cutoff
}
