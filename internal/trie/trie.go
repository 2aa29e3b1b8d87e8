// Package trie implements an Aho-Corasick automaton over the pattern set
// with a mismatch-tolerant scan. Nodes live in a flat arena and refer to
// each other by index, so the failure links never form ownership cycles.
package trie

import "readsieve/internal/pattern"

// kindSet is a bitmask of pattern kinds terminating at a node. A node can
// complete more than one pattern when literals collide with the synthetic
// homopolymer runs.
type kindSet uint8

func bit(k pattern.Kind) kindSet { return 1 << k }

func (s kindSet) has(k pattern.Kind) bool { return s&bit(k) != 0 }

// best resolves the fixed priority among simultaneous kinds:
// adapter beats polyG beats polyC.
func (s kindSet) best() pattern.Kind {
	switch {
	case s.has(pattern.Adapter):
		return pattern.Adapter
	case s.has(pattern.PolyG):
		return pattern.PolyG
	default:
		return pattern.PolyC
	}
}

// node is one automaton state. next[b] == 0 means no edge on byte b;
// state 0 is the root and is never the target of a trie edge.
type node struct {
	next  [256]int32
	edges []byte // bytes with a non-zero next entry, for substitution steps
	fail  int32
	kinds kindSet
	depth int32
}

// Automaton is immutable after Build and safe for concurrent scanning;
// each goroutine needs its own Scanner.
type Automaton struct {
	nodes []node
}

// Build inserts every pattern into the trie and wires failure links
// breadth-first. Kind sets reachable through the failure chain are folded
// into each node so a suffix match is visible without walking the chain
// during the scan.
func Build(patterns []pattern.Pattern) *Automaton {
	a := &Automaton{nodes: make([]node, 1)}

	for _, p := range patterns {
		cur := int32(0)
		for i := 0; i < len(p.Text); i++ {
			b := p.Text[i]
			if a.nodes[cur].next[b] == 0 {
				a.nodes = append(a.nodes, node{depth: a.nodes[cur].depth + 1})
				a.nodes[cur].next[b] = int32(len(a.nodes) - 1)
				a.nodes[cur].edges = append(a.nodes[cur].edges, b)
			}
			cur = a.nodes[cur].next[b]
		}
		a.nodes[cur].kinds |= bit(p.Kind)
	}

	queue := make([]int32, 0, len(a.nodes))
	for _, b := range a.nodes[0].edges {
		child := a.nodes[0].next[b]
		a.nodes[child].fail = 0
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, b := range a.nodes[cur].edges {
			child := a.nodes[cur].next[b]
			queue = append(queue, child)
			f := a.nodes[cur].fail
			for f > 0 && a.nodes[f].next[b] == 0 {
				f = a.nodes[f].fail
			}
			if next := a.nodes[f].next[b]; next != 0 && next != child {
				f = next
			}
			a.nodes[child].fail = f
			a.nodes[child].kinds |= a.nodes[f].kinds
		}
	}
	return a
}

// Size returns the number of automaton states, root included.
func (a *Automaton) Size() int { return len(a.nodes) }

// Find reports whether any pattern occurs in seq within the given
// substitution budget, and the kind of the first such occurrence. It is a
// convenience wrapper allocating a fresh Scanner; loops should reuse one.
func (a *Automaton) Find(seq string, errors int) (pattern.Kind, bool) {
	return a.NewScanner().Find(seq, errors)
}

// state is one active track of the mismatch-tolerant scan.
type state struct {
	node int32
	mm   int8
}

// Scanner holds the per-traversal working set. Not safe for concurrent
// use; create one per goroutine.
type Scanner struct {
	a       *Automaton
	active  []state
	best    []int8 // lowest mismatch count reaching each node this step, -1 if none
	touched []int32
}

// NewScanner returns a Scanner bound to the automaton.
func (a *Automaton) NewScanner() *Scanner {
	s := &Scanner{
		a:       a,
		active:  make([]state, 0, 16),
		best:    make([]int8, len(a.nodes)),
		touched: make([]int32, 0, 16),
	}
	for i := range s.best {
		s.best[i] = -1
	}
	return s
}

// Find scans seq left to right keeping a set of active states. An exact
// edge on the current byte is free; when a node has no such edge the scan
// falls back through failure links as in exact Aho-Corasick. While budget
// remains, every other child is also entered at the cost of one
// substitution, whether or not an exact edge exists: a sibling pattern's
// exact edge must not shadow a substitution into another pattern. The
// first position where any state lands on a terminal node wins.
func (s *Scanner) Find(seq string, errors int) (pattern.Kind, bool) {
	a := s.a
	s.active = append(s.active[:0], state{node: 0, mm: 0})

	for i := 0; i < len(seq); i++ {
		b := seq[i]
		s.touched = s.touched[:0]

		for _, st := range s.active {
			nd := &a.nodes[st.node]
			if c := nd.next[b]; c != 0 {
				s.push(c, st.mm)
			} else {
				n := st.node
				for n > 0 && a.nodes[n].next[b] == 0 {
					n = a.nodes[n].fail
				}
				s.push(a.nodes[n].next[b], st.mm) // 0 lands back on the root
			}
			if int(st.mm) < errors {
				for _, e := range nd.edges {
					if e == b {
						continue
					}
					s.push(nd.next[e], st.mm+1)
				}
			}
		}

		var found kindSet
		s.active = s.active[:0]
		for _, n := range s.touched {
			found |= a.nodes[n].kinds
			s.active = append(s.active, state{node: n, mm: s.best[n]})
			s.best[n] = -1
		}
		if found != 0 {
			return found.best(), true
		}
	}
	return 0, false
}

func (s *Scanner) push(n int32, mm int8) {
	if s.best[n] == -1 {
		s.best[n] = mm
		s.touched = append(s.touched, n)
	} else if mm < s.best[n] {
		s.best[n] = mm
	}
}
