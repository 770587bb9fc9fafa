// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package cut

// PseudoLeaves returns the nodes that act
// as the effective leaves of the tree
// for a feature whose tested nodes are given:
// a node is a pseudo-leaf
// if it was tested
// and no tested node lies below it
// on any root-to-leaf path through it.
// Untested parts of the tree push
// the effective leaf level upwards;
// a fully untested tree yields an empty set.
func (t *Tree) PseudoLeaves(tested map[int]bool) map[int]bool {
	// deepest tested node per root-to-leaf path
	cand := make(map[int]bool)
	for _, path := range t.paths {
		for _, id := range path {
			if tested[id] {
				cand[id] = true
				break
			}
		}
	}

	// a candidate shared by several paths
	// is discarded if a tested node
	// lies below it on any of them
	pseudo := make(map[int]bool, len(cand))
	for id := range cand {
		deeper := false
		t.walkDesc(id, func(n int) {
			if n != id && tested[n] {
				deeper = true
			}
		})
		if deeper {
			continue
		}
		pseudo[id] = true
	}
	return pseudo
}
