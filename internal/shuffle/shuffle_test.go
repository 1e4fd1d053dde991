package shuffle

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("q%02d", i)
	}
	return ids
}

func TestOrder_StableForSamePair(t *testing.T) {
	ids := questionIDs(20)

	first := Order(ids, "student-1", "exam-1")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Order(ids, "student-1", "exam-1"))
	}
}

func TestOrder_IsPermutation(t *testing.T) {
	ids := questionIDs(20)

	got := Order(ids, "student-1", "exam-1")
	require.Len(t, got, len(ids))

	sorted := slices.Clone(got)
	slices.Sort(sorted)
	assert.Equal(t, ids, sorted)
}

func TestOrder_DiffersAcrossStudents(t *testing.T) {
	ids := questionIDs(20)

	a := Order(ids, "student-a", "exam-1")
	b := Order(ids, "student-b", "exam-1")
	assert.NotEqual(t, a, b)
}

func TestOrder_DiffersAcrossExams(t *testing.T) {
	ids := questionIDs(20)

	a := Order(ids, "student-a", "exam-1")
	b := Order(ids, "student-a", "exam-2")
	assert.NotEqual(t, a, b)
}

func TestOrder_SeparatorAvoidsCollisions(t *testing.T) {
	ids := questionIDs(20)

	a := Order(ids, "ab", "c")
	b := Order(ids, "a", "bc")
	assert.NotEqual(t, a, b)
}

func TestOrder_DoesNotMutateInput(t *testing.T) {
	ids := questionIDs(10)
	orig := slices.Clone(ids)

	Order(ids, "student-1", "exam-1")
	assert.Equal(t, orig, ids)
}

func TestOrder_SmallInputs(t *testing.T) {
	tests := []struct {
		name  string
		input []string
	}{
		{"nil", nil},
		{"empty", []string{}},
		{"single", []string{"only"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.input, Order(tt.input, "s", "e"))
		})
	}
}
