package decimate

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mjb-oz/geoutils/internal/las"
)

// stepTolerance is the relative spacing error still treated as a regular step.
const stepTolerance = 1e-6

// Apply returns a copy of log holding only the rows kept by f. The header is
// preserved; the ~W STRT, STOP and STEP items, when present, are rewritten to
// describe the retained rows. STEP becomes 0 when the retained spacing is
// irregular, as LAS prescribes.
func Apply(log *las.Log, f Factor) (*las.Log, error) {
	out := log.Clone()
	out.Rows = out.Rows[:0:0]
	for i, row := range log.Rows {
		if f.Keep(i) {
			out.Rows = append(out.Rows, row)
		}
	}
	if err := updateDepthRange(out); err != nil {
		return nil, err
	}
	return out, nil
}

func updateDepthRange(log *las.Log) error {
	if len(log.Rows) == 0 {
		return nil
	}
	depths := make([]float64, len(log.Rows))
	for i, row := range log.Rows {
		d, err := strconv.ParseFloat(row.Values[0], 64)
		if err != nil {
			return fmt.Errorf("depth %q in row %d: %w", row.Values[0], i, err)
		}
		depths[i] = d
	}

	step := 0.0
	if len(depths) > 1 {
		step = depths[1] - depths[0]
		for i := 2; i < len(depths); i++ {
			if math.Abs(depths[i]-depths[i-1]-step) > stepTolerance*math.Max(1, math.Abs(step)) {
				step = 0
				break
			}
		}
	}

	values := map[string]float64{
		"STRT": depths[0],
		"STOP": depths[len(depths)-1],
		"STEP": step,
	}
	for _, mnem := range []string{"STRT", "STOP", "STEP"} {
		orig, ok := log.WellValue(mnem)
		if !ok {
			continue
		}
		err := log.SetWellValue(mnem, formatLike(orig, values[mnem]))
		if err != nil && !errors.Is(err, las.ErrItemNotFound) {
			return err
		}
	}
	return nil
}

// formatLike formats v with as many decimals as the original value text.
func formatLike(orig string, v float64) string {
	decimals := -1
	if dot := strings.IndexByte(orig, '.'); dot >= 0 {
		decimals = len(orig) - dot - 1
	}
	if decimals < 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// OutputName returns the output file name for path: the base name with
// "decimated<factor>" inserted before the extension.
func OutputName(path string, f Factor) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return stem + "decimated" + f.String() + ext
}
