package compressor

import (
	"fmt"
	"testing"
)

func TestCompress(t *testing.T) {
	x := 0 // an empty value

	tests := []struct {
		original []int
		rowCount int
		colCount int
	}{
		{
			original: []int{
				1, 1, 1, 1, 1,
				1, 1, 1, 1, 1,
				1, 1, 1, 1, 1,
			},
			rowCount: 3,
			colCount: 5,
		},
		{
			original: []int{
				x, x, x, x, x,
				x, x, x, x, x,
				x, x, x, x, x,
			},
			rowCount: 3,
			colCount: 5,
		},
		{
			original: []int{
				1, 1, 1, 1, 1,
				x, x, x, x, x,
				1, 1, 1, 1, 1,
			},
			rowCount: 3,
			colCount: 5,
		},
		{
			original: []int{
				1, x, 1, 1, 1,
				1, 1, x, 1, 1,
				1, 1, 1, x, 1,
			},
			rowCount: 3,
			colCount: 5,
		},
		{
			original: []int{
				-3, x, x, 2, x,
				x, x, 7, x, x,
				-3, x, x, 2, x,
				x, 1, x, x, -9,
			},
			rowCount: 4,
			colCount: 5,
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
			orig, err := NewOriginalTable(tt.original, tt.colCount)
			if err != nil {
				t.Fatal(err)
			}
			tab := Compress(orig, x)
			if tab.OriginalRowCount != tt.rowCount || tab.OriginalColCount != tt.colCount {
				t.Fatalf("unexpected original table size; want: %vx%v, got: %vx%v", tt.rowCount, tt.colCount, tab.OriginalRowCount, tab.OriginalColCount)
			}
			for row := 0; row < tt.rowCount; row++ {
				for col := 0; col < tt.colCount; col++ {
					v, err := Lookup(tab, row, col)
					if err != nil {
						t.Fatal(err)
					}
					expected := tt.original[row*tt.colCount+col]
					if v != expected {
						t.Fatalf("unexpected entry; row: %v, column: %v, want: %v, got: %v", row, col, expected, v)
					}
				}
			}
			if len(tab.Entries) > len(tt.original) {
				t.Fatalf("the compressed table is larger than the original one; original: %v, compressed: %v", len(tt.original), len(tab.Entries))
			}
		})
	}
}

func TestCompress_MergesIdenticalRows(t *testing.T) {
	x := 0
	orig, err := NewOriginalTable([]int{
		1, x, 2,
		x, 3, x,
		1, x, 2,
		1, x, 2,
	}, 3)
	if err != nil {
		t.Fatal(err)
	}
	tab := Compress(orig, x)
	expected := []int{0, 1, 0, 0}
	for i, n := range expected {
		if tab.RowNums[i] != n {
			t.Fatalf("unexpected row number; row: %v, want: %v, got: %v", i, n, tab.RowNums[i])
		}
	}
	if len(tab.RowDisplacement) != 2 {
		t.Fatalf("unexpected unique row count; want: 2, got: %v", len(tab.RowDisplacement))
	}
}

func TestLookup_OutOfRange(t *testing.T) {
	orig, err := NewOriginalTable([]int{1, 2, 3, 4}, 2)
	if err != nil {
		t.Fatal(err)
	}
	tab := Compress(orig, 0)
	for _, idx := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		_, err := Lookup(tab, idx[0], idx[1])
		if err == nil {
			t.Fatalf("an error must occur; row: %v, column: %v", idx[0], idx[1])
		}
	}
}

func TestNewOriginalTable(t *testing.T) {
	tests := []struct {
		caption  string
		entries  []int
		colCount int
	}{
		{
			caption:  "entries must not be empty",
			entries:  nil,
			colCount: 1,
		},
		{
			caption:  "a column count must be positive",
			entries:  []int{1},
			colCount: 0,
		},
		{
			caption:  "entries length must be a multiple of the column count",
			entries:  []int{1, 2, 3},
			colCount: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := NewOriginalTable(tt.entries, tt.colCount)
			if err == nil {
				t.Fatal("an error must occur")
			}
		})
	}
}
