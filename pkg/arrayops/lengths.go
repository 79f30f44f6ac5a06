package arrayops

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// listAlikeLengths returns the per-row span lengths of a list-alike array
// (list, binary, or string). Null rows carry an empty span in the offsets
// encoding and therefore report a length of 0.
func listAlikeLengths(arr arrow.Array) ([]int32, error) {
	lengths := make([]int32, arr.Len())

	switch arr := arr.(type) {
	case *array.List:
		for i := range arr.Len() {
			start, end := arr.ValueOffsets(i)
			lengths[i] = int32(end - start)
		}
	case *array.Binary:
		for i := range arr.Len() {
			lengths[i] = int32(arr.ValueLen(i))
		}
	case *array.String:
		for i := range arr.Len() {
			lengths[i] = int32(len(arr.Value(i)))
		}
	default:
		return nil, fmt.Errorf("%w: expected a list-alike array, got %s", ErrType, arr.DataType())
	}

	return lengths, nil
}

// ElementLengths returns, for each row of a list-alike array (list, binary,
// or string), the number of child elements the row spans. Null rows and
// empty rows both report 0; the returned array carries no validity bitmap,
// so callers that need to tell them apart must consult the input's validity
// separately (see [NullBitmapAsBytes]).
//
// ElementLengths returns [ErrType] if the input is not list-alike.
func ElementLengths(mem memory.Allocator, arr arrow.Array) (*array.Int32, error) {
	lengths, err := listAlikeLengths(arr)
	if err != nil {
		return nil, err
	}

	builder := array.NewInt32Builder(mem)
	defer builder.Release()

	builder.AppendValues(lengths, nil)
	return builder.NewInt32Array(), nil
}

// NullBitmapAsBytes expands the validity bitmap of arr into one byte per
// row, in row order, where 1 denotes a null row. An input without a
// validity bitmap yields all zeros. The byte-per-bit expansion exists so
// numeric consumers never see packed bitmap memory directly.
func NullBitmapAsBytes(mem memory.Allocator, arr arrow.Array) (*array.Uint8, error) {
	builder := array.NewUint8Builder(mem)
	defer builder.Release()

	expanded := make([]uint8, arr.Len())
	if arr.NullN() != 0 {
		validity := arr.NullBitmapBytes()
		offset := arr.Data().Offset()
		for i := range arr.Len() {
			if !bitutil.BitIsSet(validity, offset+i) {
				expanded[i] = 1
			}
		}
	}

	builder.AppendValues(expanded, nil)
	return builder.NewUint8Array(), nil
}

// BinaryTotalByteSize returns the total number of value bytes spanned by
// all rows of a binary or string array, i.e. the length of the
// concatenation of all its byte strings. Null rows span no bytes.
//
// BinaryTotalByteSize returns [ErrType] if the input is not binary-alike.
func BinaryTotalByteSize(arr arrow.Array) (uint64, error) {
	var total uint64

	switch arr := arr.(type) {
	case *array.Binary:
		for i := range arr.Len() {
			total += uint64(arr.ValueLen(i))
		}
	case *array.String:
		for i := range arr.Len() {
			total += uint64(len(arr.Value(i)))
		}
	default:
		return 0, fmt.Errorf("%w: expected a binary-alike array, got %s", ErrType, arr.DataType())
	}

	return total, nil
}
