package arrayops

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cespare/xxhash/v2"
)

// ValueCounts groups equal scalar values of a primitive, boolean, binary, or
// string array and counts their occurrences. The result is a struct array
// with a "values" field of the input's type and an int64 "counts" field.
// Groups appear in first-seen order, so the output is deterministic for a
// fixed input. Null entries form a single group, emitted last, when the
// input contains any.
//
// Float values are grouped by exact equality; NaN never compares equal, so
// each NaN occurrence forms its own group.
//
// ValueCounts returns [ErrType] on list or otherwise non-scalar input.
func ValueCounts(mem memory.Allocator, arr arrow.Array) (*array.Struct, error) {
	switch arr := arr.(type) {
	case *array.Boolean:
		return countScalars[bool](mem, arr, array.NewBooleanBuilder(mem))
	case *array.Int8:
		return countScalars[int8](mem, arr, array.NewInt8Builder(mem))
	case *array.Int16:
		return countScalars[int16](mem, arr, array.NewInt16Builder(mem))
	case *array.Int32:
		return countScalars[int32](mem, arr, array.NewInt32Builder(mem))
	case *array.Int64:
		return countScalars[int64](mem, arr, array.NewInt64Builder(mem))
	case *array.Uint8:
		return countScalars[uint8](mem, arr, array.NewUint8Builder(mem))
	case *array.Uint16:
		return countScalars[uint16](mem, arr, array.NewUint16Builder(mem))
	case *array.Uint32:
		return countScalars[uint32](mem, arr, array.NewUint32Builder(mem))
	case *array.Uint64:
		return countScalars[uint64](mem, arr, array.NewUint64Builder(mem))
	case *array.Float32:
		return countScalars[float32](mem, arr, array.NewFloat32Builder(mem))
	case *array.Float64:
		return countScalars[float64](mem, arr, array.NewFloat64Builder(mem))
	case *array.Binary:
		groups := newBytesGrouper(arr.Len(), arr.IsNull, arr.Value, xxhash.Sum64, bytes.Equal)
		builder := array.NewBinaryBuilder(mem, arr.DataType().(arrow.BinaryDataType))
		defer builder.Release()
		return buildCounts(mem, groups, builder, func(row int) { builder.Append(arr.Value(row)) })
	case *array.String:
		groups := newBytesGrouper(arr.Len(), arr.IsNull, arr.Value, xxhash.Sum64String, func(a, b string) bool { return a == b })
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		return buildCounts(mem, groups, builder, func(row int) { builder.Append(arr.Value(row)) })
	default:
		return nil, fmt.Errorf("%w: expected a scalar array, got %s", ErrType, arr.DataType())
	}
}

// grouper accumulates value groups in first-seen order. Each group is
// identified by the row index of its first occurrence.
type grouper struct {
	firstRows []int
	counts    []int64
	nullCount int64
}

// scalarArray is the read surface shared by the typed primitive arrays.
type scalarArray[T comparable] interface {
	arrow.Array
	Value(i int) T
}

// scalarBuilder is the append surface shared by the typed primitive builders.
type scalarBuilder[T comparable] interface {
	array.Builder
	Append(v T)
}

func countScalars[T comparable](mem memory.Allocator, arr scalarArray[T], builder scalarBuilder[T]) (*array.Struct, error) {
	defer builder.Release()

	var g grouper
	index := make(map[T]int, arr.Len())

	for i := range arr.Len() {
		if arr.IsNull(i) {
			g.nullCount++
			continue
		}

		v := arr.Value(i)
		if at, ok := index[v]; ok {
			g.counts[at]++
			continue
		}

		index[v] = len(g.firstRows)
		g.firstRows = append(g.firstRows, i)
		g.counts = append(g.counts, 1)
	}

	return buildCounts(mem, g, builder, func(row int) { builder.Append(arr.Value(row)) })
}

// newBytesGrouper groups variable-length values through a hash bucket index
// so that byte strings never need to be materialized as map keys; equal
// hashes fall back to a byte-wise equality check within the bucket.
func newBytesGrouper[T any](length int, isNull func(int) bool, value func(int) T, hash func(T) uint64, equal func(T, T) bool) grouper {
	var g grouper
	buckets := make(map[uint64][]int, length)

	for i := range length {
		if isNull(i) {
			g.nullCount++
			continue
		}

		v := value(i)
		h := hash(v)

		found := false
		for _, at := range buckets[h] {
			if equal(value(g.firstRows[at]), v) {
				g.counts[at]++
				found = true
				break
			}
		}
		if found {
			continue
		}

		buckets[h] = append(buckets[h], len(g.firstRows))
		g.firstRows = append(g.firstRows, i)
		g.counts = append(g.counts, 1)
	}

	return g
}

// buildCounts materializes the values/counts struct array from accumulated
// groups. appendValue appends the value at the given input row to the values
// builder.
func buildCounts(mem memory.Allocator, g grouper, values array.Builder, appendValue func(row int)) (*array.Struct, error) {
	for _, row := range g.firstRows {
		appendValue(row)
	}

	counts := make([]int64, len(g.counts), len(g.counts)+1)
	copy(counts, g.counts)

	if g.nullCount > 0 {
		values.AppendNull()
		counts = append(counts, g.nullCount)
	}

	valuesArr := values.NewArray()
	defer valuesArr.Release()

	countsBuilder := array.NewInt64Builder(mem)
	defer countsBuilder.Release()
	countsBuilder.AppendValues(counts, nil)

	countsArr := countsBuilder.NewInt64Array()
	defer countsArr.Release()

	return array.NewStructArray([]arrow.Array{valuesArr, countsArr}, []string{"values", "counts"})
}
