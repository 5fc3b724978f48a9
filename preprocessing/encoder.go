package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linreg/pkg/errors"
	"github.com/YuminosukeSato/linreg/pkg/log"
)

// Table は数値とカテゴリ値が混在する2次元データ
// セルには float64, 整数型, bool, string を格納できる
type Table [][]interface{}

// カテゴリ値の種類。ソート順はこの順序に従う
type kind int

const (
	kindNumber kind = iota
	kindBool
	kindString
)

// category is the canonical form of a cell: every numeric type is widened
// to float64 so that 1 and 1.0 name the same category.
type category struct {
	kind kind
	num  float64
	b    bool
	str  string
}

func (c category) value() interface{} {
	switch c.kind {
	case kindNumber:
		return c.num
	case kindBool:
		return c.b
	default:
		return c.str
	}
}

func (c category) less(o category) bool {
	if c.kind != o.kind {
		return c.kind < o.kind
	}
	switch c.kind {
	case kindNumber:
		return c.num < o.num
	case kindBool:
		return !c.b && o.b
	default:
		return c.str < o.str
	}
}

func toCategory(v interface{}) (category, bool) {
	switch x := v.(type) {
	case string:
		return category{kind: kindString, str: x}, true
	case bool:
		return category{kind: kindBool, b: x}, true
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) {
		return category{}, false
	}
	return category{kind: kindNumber, num: f}, true
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

// validate checks that X is a non-empty rectangular table and returns its width.
func validate(op string, X Table) (int, error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	width := len(X[0])
	for _, row := range X {
		if len(row) != width {
			return 0, errors.NewDimensionError(op, width, len(row), 1)
		}
	}
	return width, nil
}

// uniqueCategories returns the sorted distinct values of column index
// together with the canonical category of every row.
func uniqueCategories(op string, X Table, index int) ([]category, []category, error) {
	cells := make([]category, len(X))
	seen := make(map[category]struct{})
	var uniq []category
	for i, row := range X {
		c, ok := toCategory(row[index])
		if !ok {
			return nil, nil, errors.NewValueError(op,
				fmt.Sprintf("unsupported value %v (%T) at row %d, column %d", row[index], row[index], i, index))
		}
		cells[i] = c
		if _, dup := seen[c]; !dup {
			seen[c] = struct{}{}
			uniq = append(uniq, c)
		}
	}
	sort.Slice(uniq, func(a, b int) bool { return uniq[a].less(uniq[b]) })
	return uniq, cells, nil
}

// OneHotEncode は指定された列をワンホット表現に置き換える
//
// 各カテゴリ列は、その列に現れた値ごとに1本の指示列（1.0 または 0.0）へ
// 展開され、元の列の位置に挿入される。値の並びは数値、bool、文字列の順で、
// それぞれの中では昇順。dropFirst が true の場合は最初のカテゴリの列を落とす。
//
// 入力 X は変更されない。インデックスは降順に処理されるため、
// 先に展開した列が後続のインデックスをずらすことはない。
//
// 使用例:
//
//	X := preprocessing.Table{{"a", 1.0}, {"b", 2.0}, {"a", 3.0}}
//	encoded, err := preprocessing.OneHotEncode(X, []int{0}, false)
//	// encoded = [[1 0 1] [0 1 2] [1 0 3]]
func OneHotEncode(X Table, categoricalIndices []int, dropFirst bool) (Table, error) {
	const op = "OneHotEncode"

	width, err := validate(op, X)
	if err != nil {
		return nil, err
	}

	indices := make([]int, 0, len(categoricalIndices))
	seen := make(map[int]struct{}, len(categoricalIndices))
	for _, idx := range categoricalIndices {
		if idx < 0 || idx >= width {
			return nil, errors.NewValidationError("categoricalIndices",
				fmt.Sprintf("index must be in [0, %d)", width), idx)
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))

	logger := log.GetLoggerWithName("preprocessing")

	out := X.Clone()
	for _, index := range indices {
		uniq, cells, err := uniqueCategories(op, out, index)
		if err != nil {
			return nil, err
		}

		levels := uniq
		if dropFirst {
			levels = uniq[1:]
		}

		for i, row := range out {
			replaced := make([]interface{}, 0, len(row)-1+len(levels))
			replaced = append(replaced, row[:index]...)
			for _, level := range levels {
				if cells[i] == level {
					replaced = append(replaced, 1.0)
				} else {
					replaced = append(replaced, 0.0)
				}
			}
			replaced = append(replaced, row[index+1:]...)
			out[i] = replaced
		}

		logger.Debug("Column encoded",
			log.OperationKey, log.OperationTransform,
			log.ColumnsKey, index,
			log.CategoriesKey, len(uniq),
		)
	}

	return out, nil
}

// Categories returns the sorted distinct values of column index, in the
// order OneHotEncode lays out its indicator columns. Numbers are reported
// as float64.
func Categories(X Table, index int) ([]interface{}, error) {
	const op = "Categories"

	width, err := validate(op, X)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= width {
		return nil, errors.NewValidationError("index", fmt.Sprintf("index must be in [0, %d)", width), index)
	}

	uniq, _, err := uniqueCategories(op, X, index)
	if err != nil {
		return nil, err
	}
	values := make([]interface{}, len(uniq))
	for i, c := range uniq {
		values[i] = c.value()
	}
	return values, nil
}

// Clone returns a copy of the table whose rows can be modified freely.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for i, row := range t {
		out[i] = append([]interface{}(nil), row...)
	}
	return out
}

// ToDense converts a fully numeric table to a gonum matrix.
// bool セルは 1/0 に変換される。文字列が残っている場合は ValueError
func ToDense(X Table) (*mat.Dense, error) {
	const op = "ToDense"

	width, err := validate(op, X)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(len(X), width, nil)
	for i, row := range X {
		for j, v := range row {
			if b, ok := v.(bool); ok {
				if b {
					out.Set(i, j, 1)
				}
				continue
			}
			f, ok := toFloat(v)
			if !ok {
				return nil, errors.NewValueError(op,
					fmt.Sprintf("non-numeric value %v (%T) at row %d, column %d", v, v, i, j))
			}
			out.Set(i, j, f)
		}
	}
	return out, nil
}
