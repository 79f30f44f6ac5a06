package arrayops_test

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/grafana/arraykit/pkg/arrayops"
)

func TestFlattenedParentIndices(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("list", func(t *testing.T) {
		input := listOf(t, mem, [][]int64{{1, 2, 3}, {}, nil, {4, 5}})
		defer input.Release()

		parents, err := arrayops.FlattenedParentIndices(mem, input)
		require.NoError(t, err)
		defer parents.Release()

		requireInt64Values(t, []int64{0, 0, 0, 3, 3}, parents)
		require.Equal(t, input.ListValues().Len(), parents.Len())
	})

	t.Run("string", func(t *testing.T) {
		input := stringsOf(t, mem, []string{"ab", "", "c"}, nil)
		defer input.Release()

		parents, err := arrayops.FlattenedParentIndices(mem, input)
		require.NoError(t, err)
		defer parents.Release()

		requireInt64Values(t, []int64{0, 0, 2}, parents)
	})

	t.Run("non list-alike", func(t *testing.T) {
		input := int64sOf(t, mem, []int64{1}, nil)
		defer input.Release()

		_, err := arrayops.FlattenedParentIndices(mem, input)
		require.ErrorIs(t, err, arrayops.ErrType)
	})
}

func TestMakeListFromParentIndicesAndValues(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("basic", func(t *testing.T) {
		parents := int64sOf(t, mem, []int64{0, 1, 1, 3, 3}, nil)
		defer parents.Release()
		values := int64sOf(t, mem, []int64{0, 1, 2, 3, 4}, nil)
		defer values.Release()

		list, err := arrayops.MakeListFromParentIndicesAndValues(mem, 6, parents, values)
		require.NoError(t, err)
		defer list.Release()

		// Rows 2, 4, and 5 have no elements. They come out empty and valid,
		// never null.
		expect := listOf(t, mem, [][]int64{{0}, {1, 2}, {}, {3, 4}, {}, {}})
		defer expect.Release()

		require.Zero(t, list.NullN())
		require.True(t, array.Equal(expect, list), "expected %v, got %v", expect, list)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		values := int64sOf(t, mem, []int64{0, 1, 2}, nil)
		defer values.Release()

		for _, tt := range []struct {
			name       string
			numParents int
			parents    []int64
			valid      []bool
			err        error
		}{
			{name: "unsorted", numParents: 4, parents: []int64{0, 2, 1}, err: arrayops.ErrValue},
			{name: "out of range", numParents: 2, parents: []int64{0, 1, 2}, err: arrayops.ErrValue},
			{name: "negative index", numParents: 4, parents: []int64{-1, 0, 1}, err: arrayops.ErrValue},
			{name: "negative numParents", numParents: -1, parents: []int64{0, 0, 0}, err: arrayops.ErrValue},
			{name: "length mismatch", numParents: 4, parents: []int64{0, 1}, err: arrayops.ErrValue},
			{name: "null index", numParents: 4, parents: []int64{0, 0, 1}, valid: []bool{true, false, true}, err: arrayops.ErrValue},
			{name: "numParents overflows offsets", numParents: math.MaxInt32 + 1, parents: []int64{0, 1, 2}, err: arrayops.ErrOverflow},
		} {
			t.Run(tt.name, func(t *testing.T) {
				parents := int64sOf(t, mem, tt.parents, tt.valid)
				defer parents.Release()

				_, err := arrayops.MakeListFromParentIndicesAndValues(mem, tt.numParents, parents, values)
				require.ErrorIs(t, err, tt.err)
			})
		}
	})

	t.Run("non-int64 indices", func(t *testing.T) {
		parents := stringsOf(t, mem, []string{"0"}, nil)
		defer parents.Release()
		values := int64sOf(t, mem, []int64{7}, nil)
		defer values.Release()

		_, err := arrayops.MakeListFromParentIndicesAndValues(mem, 1, parents, values)
		require.ErrorIs(t, err, arrayops.ErrType)
	})
}

func TestParentIndicesRoundTrip(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("no nulls", func(t *testing.T) {
		input := listOf(t, mem, [][]int64{{1, 2, 3}, {}, {4, 5}})
		defer input.Release()

		parents, err := arrayops.FlattenedParentIndices(mem, input)
		require.NoError(t, err)
		defer parents.Release()

		rebuilt, err := arrayops.MakeListFromParentIndicesAndValues(mem, input.Len(), parents, input.ListValues())
		require.NoError(t, err)
		defer rebuilt.Release()

		require.True(t, array.Equal(input, rebuilt), "expected %v, got %v", input, rebuilt)
	})

	// Null rows flatten to zero elements, so they round-trip as empty-valid
	// rows. This asymmetry is part of the contract, not a bug.
	t.Run("null rows become empty-valid", func(t *testing.T) {
		input := listOf(t, mem, [][]int64{{1}, nil, {2, 3}})
		defer input.Release()

		parents, err := arrayops.FlattenedParentIndices(mem, input)
		require.NoError(t, err)
		defer parents.Release()

		rebuilt, err := arrayops.MakeListFromParentIndicesAndValues(mem, input.Len(), parents, input.ListValues())
		require.NoError(t, err)
		defer rebuilt.Release()

		expect := listOf(t, mem, [][]int64{{1}, {}, {2, 3}})
		defer expect.Release()

		require.Zero(t, rebuilt.NullN())
		require.True(t, array.Equal(expect, rebuilt), "expected %v, got %v", expect, rebuilt)
	})
}
