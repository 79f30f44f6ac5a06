package arrayops

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// FillNullLists returns a copy of a list array in which every null row is
// replaced by the single row of fillWith, an array of exactly one element
// whose type matches the list's element type. Non-null rows, including
// empty-but-valid rows, pass through unchanged; the result has no null rows.
// A null element inside fillWith is carried into every filled row.
//
// FillNullLists returns [ErrType] when the input is not a list array or
// fillWith's type does not match the list's element type, [ErrValue] when
// fillWith does not have exactly one row, and [ErrOverflow] when the filled
// child would exceed the int32 offset range.
func FillNullLists(mem memory.Allocator, arr, fillWith arrow.Array) (*array.List, error) {
	list, ok := arr.(*array.List)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list array, got %s", ErrType, arr.DataType())
	}

	listType := list.DataType().(*arrow.ListType)
	if !arrow.TypeEqual(listType.Elem(), fillWith.DataType()) {
		return nil, fmt.Errorf("%w: fill value type %s does not match list element type %s", ErrType, fillWith.DataType(), listType.Elem())
	}
	if fillWith.Len() != 1 {
		return nil, fmt.Errorf("%w: fill value must have exactly one row, got %d", ErrValue, fillWith.Len())
	}

	if int64(list.ListValues().Len())+int64(list.NullN()) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: filled child length exceeds int32 offset range", ErrOverflow)
	}

	child := list.ListValues()
	offsets := make([]int32, list.Len()+1)

	var pieces []arrow.Array
	var slices []arrow.Array // slices of child owned by us, released after concatenation
	var total int64

	for i := 0; i < list.Len(); {
		if list.IsNull(i) {
			pieces = append(pieces, fillWith)
			total++
			offsets[i+1] = int32(total)
			i++
			continue
		}

		// Spans of consecutive valid rows are contiguous in the child, so a
		// whole run becomes a single slice.
		runStart, runEnd := list.ValueOffsets(i)
		for !list.IsNull(i) {
			start, end := list.ValueOffsets(i)
			runEnd = end
			total += end - start
			offsets[i+1] = int32(total)
			i++
			if i == list.Len() {
				break
			}
		}

		piece := array.NewSlice(child, runStart, runEnd)
		pieces = append(pieces, piece)
		slices = append(slices, piece)
	}

	if len(pieces) == 0 {
		// Zero-row input still needs an empty child for the output.
		piece := array.NewSlice(child, 0, 0)
		pieces = append(pieces, piece)
		slices = append(slices, piece)
	}

	filled, err := array.Concatenate(pieces, mem)
	for _, s := range slices {
		s.Release()
	}
	if err != nil {
		return nil, fmt.Errorf("concatenating filled child: %w", err)
	}
	defer filled.Release()

	offsetsBuf := memory.NewBufferBytes(arrow.Int32Traits.CastToBytes(offsets))
	defer offsetsBuf.Release()

	data := array.NewData(listType, list.Len(), []*memory.Buffer{nil, offsetsBuf}, []arrow.ArrayData{filled.Data()}, 0, 0)
	defer data.Release()

	return array.NewListData(data), nil
}
