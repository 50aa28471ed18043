package loader

import (
	"fmt"
	"math"
	"time"

	"github.com/mjb-oz/geoutils/pkg/types"
)

// TimeLayout is the text layout DATETIME values are stored with. Values are
// converted to UTC first.
const TimeLayout = "2006-01-02 15:04:05.999999999"

// bindValue converts a Frame value of kind k to a driver argument. Nil,
// NaN and the zero time become NULL. Times are stored in UTC so equal
// instants compare equal.
func bindValue(k types.Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch k {
	case types.KindInt:
		switch x := v.(type) {
		case int64:
			return x, nil
		case int:
			return int64(x), nil
		case int32:
			return int64(x), nil
		}
	case types.KindFloat:
		switch x := v.(type) {
		case float64:
			if math.IsNaN(x) {
				return nil, nil
			}
			return x, nil
		case float32:
			if math.IsNaN(float64(x)) {
				return nil, nil
			}
			return float64(x), nil
		case int64:
			return float64(x), nil
		case int:
			return float64(x), nil
		}
	case types.KindText:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case types.KindTime:
		if t, ok := v.(time.Time); ok {
			if t.IsZero() {
				return nil, nil
			}
			return t.UTC().Format(TimeLayout), nil
		}
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedType, k)
	}
	return nil, fmt.Errorf("%w: %T for %s", types.ErrValueMismatch, v, k)
}

// bindColumns converts every value of cols, row by row. The result holds
// one argument slice per row, in column order.
func bindColumns(cols []types.Column, n int) ([][]any, error) {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = make([]any, len(cols))
	}
	for j, c := range cols {
		if _, err := SQLType(c.Kind); err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		for i, v := range c.Values {
			b, err := bindValue(c.Kind, v)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", c.Name, i, err)
			}
			rows[i][j] = b
		}
	}
	return rows, nil
}
