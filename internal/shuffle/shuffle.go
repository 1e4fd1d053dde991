// Package shuffle orders an exam's questions per student.
//
// The order is a pure function of (student, exam): the same pair always gets
// the same permutation and different students get independently seeded
// ones. Each call uses its own generator, so no process-wide random state is
// read or advanced.
package shuffle

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
)

// Order returns a permutation of items seeded by the (studentID, examID)
// pair. The input slice is not modified. Zero or one items are returned
// as-is.
func Order[T any](items []T, studentID, examID string) []T {
	if len(items) <= 1 {
		return items
	}

	out := make([]T, len(items))
	copy(out, items)

	r := rand.New(newSource(studentID, examID))
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// newSource derives a PCG source from a 128-bit FNV-1a hash of the pair.
// The NUL separator keeps ("ab", "c") and ("a", "bc") apart.
func newSource(studentID, examID string) *rand.PCG {
	h := fnv.New128a()
	h.Write([]byte(studentID))
	h.Write([]byte{0})
	h.Write([]byte(examID))
	sum := h.Sum(nil)
	return rand.NewPCG(binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:]))
}
