// Command array-inspect prints structural statistics for the columns of
// Arrow IPC files: row and null counts, list length distributions, bounding
// boxes of nested lists, binary payload sizes, and the most frequent values
// of scalar columns.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/grafana/arraykit/pkg/arrayops"
)

var topValues = flag.Int("top", 5, "number of most frequent values to print per scalar column")

func main() {
	flag.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))

	if flag.NArg() == 0 {
		level.Error(logger).Log("msg", "no input files; usage: array-inspect [-top N] FILE...")
		os.Exit(1)
	}

	for _, name := range flag.Args() {
		if err := inspectFile(name); err != nil {
			level.Error(logger).Log("msg", "failed to inspect file", "file", name, "err", err)
		}
	}
}

func inspectFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	mem := memory.NewGoAllocator()

	// Try the IPC file format first, then fall back to the stream format.
	if rdr, err := ipc.NewFileReader(f, ipc.WithAllocator(mem)); err == nil {
		defer func() { _ = rdr.Close() }()

		fmt.Printf("%s: arrow file, %d record batches\n", name, rdr.NumRecords())
		for i := 0; i < rdr.NumRecords(); i++ {
			rec, err := rdr.Record(i)
			if err != nil {
				return fmt.Errorf("reading record %d: %w", i, err)
			}
			inspectRecord(mem, i, rec)
		}
		return nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	rdr, err := ipc.NewReader(f, ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("not an arrow file or stream: %w", err)
	}
	defer rdr.Release()

	fmt.Printf("%s: arrow stream\n", name)
	for i := 0; rdr.Next(); i++ {
		inspectRecord(mem, i, rdr.Record())
	}
	return rdr.Err()
}

func inspectRecord(mem memory.Allocator, index int, rec arrow.Record) {
	fmt.Printf("record %d: %d rows, %d columns\n", index, rec.NumRows(), rec.NumCols())

	for i, col := range rec.Columns() {
		field := rec.Schema().Field(i)
		fmt.Printf("  column %q (%s): %d nulls\n", field.Name, field.Type, countNulls(mem, col))
		inspectColumn(mem, col)
	}
}

func countNulls(mem memory.Allocator, col arrow.Array) int64 {
	nulls, err := arrayops.NullBitmapAsBytes(mem, col)
	if err != nil {
		return int64(col.NullN())
	}
	defer nulls.Release()

	var total int64
	for _, b := range nulls.Uint8Values() {
		total += int64(b)
	}
	return total
}

func inspectColumn(mem memory.Allocator, col arrow.Array) {
	switch col := col.(type) {
	case *array.List:
		lengths, err := arrayops.ElementLengths(mem, col)
		if err != nil {
			return
		}
		defer lengths.Release()

		var sum, longest int64
		for i := range lengths.Len() {
			n := int64(lengths.Value(i))
			sum += n
			longest = max(longest, n)
		}
		fmt.Printf("    list rows: %d total elements, longest row %d\n", sum, longest)

		if coo, shape, err := arrayops.CooFromList(mem, col); err == nil {
			fmt.Printf("    bounding box: %v\n", shape.Int64Values())
			coo.Release()
			shape.Release()
		}

	case *array.Binary, *array.String:
		size, err := arrayops.BinaryTotalByteSize(col)
		if err != nil {
			return
		}
		fmt.Printf("    payload: %s\n", humanize.Bytes(size))
		printTopValues(mem, col)

	default:
		printTopValues(mem, col)
	}
}

func printTopValues(mem memory.Allocator, col arrow.Array) {
	counts, err := arrayops.ValueCounts(mem, col)
	if err != nil {
		return
	}
	defer counts.Release()

	values := counts.Field(0)
	occurrences := counts.Field(1).(*array.Int64)

	order := make([]int, values.Len())
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return occurrences.Value(order[a]) > occurrences.Value(order[b])
	})

	fmt.Printf("    distinct values: %d\n", values.Len())
	for rank, at := range order {
		if rank == *topValues {
			break
		}
		repr := "<null>"
		if !values.IsNull(at) {
			repr = values.ValueStr(at)
		}
		fmt.Printf("    top[%d]: %s (%d)\n", rank, repr, occurrences.Value(at))
	}
}
