package compressor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	spec "github.com/nihei9/gply/spec/grammar"
)

type OriginalTable struct {
	entries  []int
	rowCount int
	colCount int
}

func NewOriginalTable(entries []int, colCount int) (*OriginalTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("entries is empty")
	}
	if colCount <= 0 {
		return nil, fmt.Errorf("colCount must be >=1")
	}
	if len(entries)%colCount != 0 {
		return nil, fmt.Errorf("entries length or column count are incorrect; entries length: %v, column count: %v", len(entries), colCount)
	}

	return &OriginalTable{
		entries:  entries,
		rowCount: len(entries) / colCount,
		colCount: colCount,
	}, nil
}

func (t *OriginalTable) row(r int) []int {
	return t.entries[r*t.colCount : (r+1)*t.colCount]
}

// Compress merges identical rows of a table, then packs the remaining rows into one array by row
// displacement. emptyValue must be the value of empty entries of the original table.
func Compress(orig *OriginalTable, emptyValue int) *spec.CompressedTable {
	uniq, rowNums := mergeRows(orig)
	entries, bounds, disp := displaceRows(uniq, orig.colCount, emptyValue)
	return &spec.CompressedTable{
		RowNums:          rowNums,
		OriginalRowCount: orig.rowCount,
		OriginalColCount: orig.colCount,
		EmptyValue:       emptyValue,
		Entries:          entries,
		Bounds:           bounds,
		RowDisplacement:  disp,
	}
}

// Lookup reads an entry of the original table out of a compressed table.
func Lookup(tab *spec.CompressedTable, row, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return tab.EmptyValue, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	u := tab.RowNums[row]
	d := tab.RowDisplacement[u]
	if tab.Bounds[d+col] != u {
		return tab.EmptyValue, nil
	}
	return tab.Entries[d+col], nil
}

// mergeRows returns the unique rows in the order of first appearance, and the index of the unique row of
// every original row.
func mergeRows(orig *OriginalTable) ([][]int, []int) {
	var uniq [][]int
	rowNums := make([]int, orig.rowCount)
	key2RowNum := map[string]int{}
	for r := 0; r < orig.rowCount; r++ {
		row := orig.row(r)
		key := rowKey(row)
		num, ok := key2RowNum[key]
		if !ok {
			num = len(uniq)
			key2RowNum[key] = num
			uniq = append(uniq, row)
		}
		rowNums[r] = num
	}
	return uniq, rowNums
}

func rowKey(row []int) string {
	var b strings.Builder
	for i, v := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// forbiddenBound marks a slot no row owns.
const forbiddenBound = -1

type rowInfo struct {
	rowNum      int
	nonEmptyCol []int
}

// displaceRows places every row at the lowest offset where its non-empty entries land on free slots.
// Denser rows are placed first. Bounds[i] tells which row owns the slot i.
func displaceRows(rows [][]int, colCount int, emptyValue int) ([]int, []int, []int) {
	infos := make([]rowInfo, len(rows))
	for r, row := range rows {
		infos[r].rowNum = r
		for c, v := range row {
			if v == emptyValue {
				continue
			}
			infos[r].nonEmptyCol = append(infos[r].nonEmptyCol, c)
		}
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return len(infos[i].nonEmptyCol) > len(infos[j].nonEmptyCol)
	})

	size := len(rows) * colCount
	entries := make([]int, size)
	bounds := make([]int, size)
	for i := 0; i < size; i++ {
		entries[i] = emptyValue
		bounds[i] = forbiddenBound
	}
	disp := make([]int, len(rows))

	bottom := colCount
	next := 0
	for _, info := range infos {
		if len(info.nonEmptyCol) == 0 {
			continue
		}

		for !fits(bounds, next, info.nonEmptyCol) {
			next++
		}
		disp[info.rowNum] = next
		for _, c := range info.nonEmptyCol {
			entries[next+c] = rows[info.rowNum][c]
			bounds[next+c] = info.rowNum
		}
		if next+colCount > bottom {
			bottom = next + colCount
		}
		next++
	}

	return entries[:bottom], bounds[:bottom], disp
}

func fits(bounds []int, offset int, cols []int) bool {
	for _, c := range cols {
		if bounds[offset+c] != forbiddenBound {
			return false
		}
	}
	return true
}
