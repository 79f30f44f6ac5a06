package arrayops

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// FlattenedParentIndices converts the offset-based nesting of a list-alike
// array into flat parent-row indices: row i is emitted once per child
// element it spans, in row order. The output length equals the length of
// the flattened child. For example, rows of lengths [3, 0, 0, 2] produce
// [0, 0, 0, 3, 3].
//
// FlattenedParentIndices returns [ErrType] if the input is not list-alike.
func FlattenedParentIndices(mem memory.Allocator, arr arrow.Array) (*array.Int64, error) {
	lengths, err := listAlikeLengths(arr)
	if err != nil {
		return nil, err
	}

	var total int
	for _, n := range lengths {
		total += int(n)
	}

	builder := array.NewInt64Builder(mem)
	defer builder.Release()
	builder.Reserve(total)

	for i, n := range lengths {
		for range n {
			builder.Append(int64(i))
		}
	}

	return builder.NewInt64Array(), nil
}

// MakeListFromParentIndicesAndValues is the inverse of
// [FlattenedParentIndices]: it builds a list array with numParents rows
// whose row i spans the values whose parent index is i.
//
// parentIndices must be a non-null int64 array, sorted ascending, with every
// index in [0, numParents) and the same length as values. A parent index
// with no occurrences yields an empty row that is valid, not null:
// reconstruction cannot recover null-ness, so list arrays with null rows
// round-trip through the parent-index form as empty-valid rows. The values
// array becomes the child of the result and is structurally shared, never
// copied or mutated.
//
// MakeListFromParentIndicesAndValues returns [ErrType] for a non-int64
// parentIndices array, [ErrValue] for a violated ordering or range
// precondition, and [ErrOverflow] if the child offsets would exceed the
// int32 offset width.
func MakeListFromParentIndicesAndValues(mem memory.Allocator, numParents int, parentIndices, values arrow.Array) (*array.List, error) {
	indices, ok := parentIndices.(*array.Int64)
	if !ok {
		return nil, fmt.Errorf("%w: parent indices must be int64, got %s", ErrType, parentIndices.DataType())
	}

	switch {
	case numParents < 0:
		return nil, fmt.Errorf("%w: numParents must be non-negative, got %d", ErrValue, numParents)
	case indices.Len() != values.Len():
		return nil, fmt.Errorf("%w: parent indices length %d does not match values length %d", ErrValue, indices.Len(), values.Len())
	case indices.NullN() != 0:
		return nil, fmt.Errorf("%w: parent indices must not contain nulls", ErrValue)
	case numParents > math.MaxInt32:
		return nil, fmt.Errorf("%w: numParents %d exceeds int32 offset range", ErrOverflow, numParents)
	case values.Len() > math.MaxInt32:
		return nil, fmt.Errorf("%w: values length %d exceeds int32 offset range", ErrOverflow, values.Len())
	}

	// Count occurrences per parent in place, then turn the counts into
	// offsets with a prefix sum. Cumulative counts fit in int32 because the
	// total is bounded by the values length checked above.
	offsets := make([]int32, numParents+1)
	prev := int64(-1)
	for i := range indices.Len() {
		parent := indices.Value(i)
		if parent < prev {
			return nil, fmt.Errorf("%w: parent indices must be sorted ascending; index %d follows %d", ErrValue, parent, prev)
		}
		if parent < 0 || parent >= int64(numParents) {
			return nil, fmt.Errorf("%w: parent index %d out of range [0, %d)", ErrValue, parent, numParents)
		}
		offsets[parent+1]++
		prev = parent
	}
	for i := range numParents {
		offsets[i+1] += offsets[i]
	}

	listType := arrow.ListOf(values.DataType())
	offsetsBuf := memory.NewBufferBytes(arrow.Int32Traits.CastToBytes(offsets))
	defer offsetsBuf.Release()

	// All rows are valid; parents without elements become empty rows, so the
	// validity buffer is left nil.
	data := array.NewData(listType, numParents, []*memory.Buffer{nil, offsetsBuf}, []arrow.ArrayData{values.Data()}, 0, 0)
	defer data.Release()

	return array.NewListData(data), nil
}
