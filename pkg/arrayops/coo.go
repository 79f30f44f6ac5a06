package arrayops

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// CooFromList flattens a possibly nested list array into coordinate-list
// (COO) form. For a list array nested D levels deep (a list of primitives
// is 1 level), each leaf scalar contributes one coordinate tuple of D+1
// components: its row index at every list level followed by its position
// within its innermost row. Tuples are concatenated in leaf order into a
// single int64 array.
//
// The second result is the dense shape: D+1 components where component 0 is
// the row count and component d is the maximum row length observed at
// nesting level d, i.e. the bounding box of the nested structure. Null rows
// and empty rows contribute no coordinates and are indistinguishable in the
// COO form, but both count toward the bounding box extents.
//
// CooFromList returns [ErrType] if the input is not a list array, if any
// non-terminal nesting level is not a list, or if the leaf type is neither
// a fixed-width primitive nor binary-alike.
func CooFromList(mem memory.Allocator, arr arrow.Array) (coo *array.Int64, denseShape *array.Int64, err error) {
	outer, ok := arr.(*array.List)
	if !ok {
		return nil, nil, fmt.Errorf("%w: expected a list array, got %s", ErrType, arr.DataType())
	}

	depth, err := nestingDepth(outer)
	if err != nil {
		return nil, nil, err
	}

	walker := cooWalker{
		shape: make([]int64, depth+1),
		path:  make([]int64, 0, depth+1),
	}
	walker.shape[0] = int64(outer.Len())
	walker.walk(outer, 0, outer.Len(), 0)

	cooBuilder := array.NewInt64Builder(mem)
	defer cooBuilder.Release()
	cooBuilder.AppendValues(walker.coo, nil)

	shapeBuilder := array.NewInt64Builder(mem)
	defer shapeBuilder.Release()
	shapeBuilder.AppendValues(walker.shape, nil)

	return cooBuilder.NewInt64Array(), shapeBuilder.NewInt64Array(), nil
}

// nestingDepth counts the list levels of arr down to the leaf and validates
// that the leaf holds scalars.
func nestingDepth(arr *array.List) (int, error) {
	depth := 1
	child := arr.ListValues()
	for {
		inner, ok := child.(*array.List)
		if !ok {
			break
		}
		depth++
		child = inner.ListValues()
	}

	switch child.DataType().ID() {
	case arrow.BINARY, arrow.STRING:
		return depth, nil
	}
	if _, fixed := child.DataType().(arrow.FixedWidthDataType); !fixed {
		return 0, fmt.Errorf("%w: leaf elements must be primitive or binary scalars, got %s", ErrType, child.DataType())
	}
	return depth, nil
}

type cooWalker struct {
	coo   []int64
	shape []int64
	path  []int64
}

// walk emits coordinate tuples for elements [lo, hi) of arr, which form the
// rows of a single parent span at the given nesting level. Local indices are
// relative to lo.
func (w *cooWalker) walk(arr arrow.Array, lo, hi int, level int) {
	list, ok := arr.(*array.List)
	if !ok {
		// Leaf level: one tuple per scalar, including null scalars.
		for i := lo; i < hi; i++ {
			w.coo = append(w.coo, w.path...)
			w.coo = append(w.coo, int64(i-lo))
		}
		return
	}

	for i := lo; i < hi; i++ {
		if list.IsNull(i) {
			continue
		}
		start, end := list.ValueOffsets(i)
		if length := end - start; length > w.shape[level+1] {
			w.shape[level+1] = length
		}

		w.path = append(w.path, int64(i-lo))
		w.walk(list.ListValues(), int(start), int(end), level+1)
		w.path = w.path[:len(w.path)-1]
	}
}
