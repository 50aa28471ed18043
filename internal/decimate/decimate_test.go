package decimate

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjb-oz/geoutils/internal/las"
	"github.com/mjb-oz/geoutils/pkg/types"
)

const wellLAS = `~Version
 VERS.   2.0 : CWLS LAS
 WRAP.   NO  : One line per depth step
~Well
 STRT.M   1670.0000 : START DEPTH
 STOP.M   1669.5000 : STOP DEPTH
 STEP.M    -0.1250 : STEP
 NULL.    -999.25 : NULL VALUE
~Curve
 DEPT.M   : DEPTH
 GR  .API : GAMMA RAY
~A DEPT GR
1670.000  10.0
1669.875  11.0
1669.750  12.0
1669.625  13.0
1669.500  14.0
`

func TestFactor(t *testing.T) {
	tests := []struct {
		f      float64
		stride int
		kept   []int
		str    string
	}{
		{f: 0.5, stride: 2, kept: []int{0, 2, 4}, str: "0.5"},
		{f: 0.75, stride: 4, kept: []int{0, 4}, str: "0.75"},
		{f: 0.9, stride: 10, kept: []int{0}, str: "0.9"},
		{f: 0.1, stride: 1, kept: []int{0, 1, 2, 3, 4, 5}, str: "0.1"},
		{f: 1, stride: 0, kept: []int{0}, str: "1"},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			f, err := NewFactor(tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.stride, f.Stride())
			assert.Equal(t, tt.str, f.String())

			var kept []int
			for i := 0; i < 6; i++ {
				if f.Keep(i) {
					kept = append(kept, i)
				}
			}
			assert.Equal(t, tt.kept, kept)
		})
	}
}

func TestFactorInvalid(t *testing.T) {
	for _, s := range []string{"0", "-1", "1.5", "abc", "NaN", "Inf"} {
		t.Run(s, func(t *testing.T) {
			_, err := ParseFactor(s)
			assert.ErrorIs(t, err, types.ErrInvalidFactor)
		})
	}
	_, err := NewFactor(0)
	assert.ErrorIs(t, err, types.ErrInvalidFactor)
}

func mustFactor(t *testing.T, f float64) Factor {
	t.Helper()
	fac, err := NewFactor(f)
	require.NoError(t, err)
	return fac
}

func TestApply(t *testing.T) {
	log, err := las.Read(strings.NewReader(wellLAS))
	require.NoError(t, err)

	t.Run("half keeps every second row and rewrites the range", func(t *testing.T) {
		out, err := Apply(log, mustFactor(t, 0.5))
		require.NoError(t, err)

		require.Len(t, out.Rows, 3)
		assert.Equal(t, "1669.750", out.Rows[1].Values[0])

		strt, _ := out.WellValue("STRT")
		stop, _ := out.WellValue("STOP")
		step, _ := out.WellValue("STEP")
		assert.Equal(t, "1670.0000", strt)
		assert.Equal(t, "1669.5000", stop)
		assert.Equal(t, "-0.2500", step)

		null, _ := out.WellValue("NULL")
		assert.Equal(t, "-999.25", null)
	})

	t.Run("factor one keeps only the first row", func(t *testing.T) {
		out, err := Apply(log, mustFactor(t, 1))
		require.NoError(t, err)

		require.Len(t, out.Rows, 1)
		stop, _ := out.WellValue("STOP")
		step, _ := out.WellValue("STEP")
		assert.Equal(t, "1670.0000", stop)
		assert.Equal(t, "0.0000", step)
	})

	t.Run("source log is untouched", func(t *testing.T) {
		_, err := Apply(log, mustFactor(t, 0.5))
		require.NoError(t, err)
		assert.Len(t, log.Rows, 5)
		step, _ := log.WellValue("STEP")
		assert.Equal(t, "-0.1250", step)
	})
}

func TestApplyIrregularStep(t *testing.T) {
	src := "~Well\n STRT.M 0.0 : s\n STOP.M 6.0 : s\n STEP.M 1.0 : s\n~Curve\n DEPT.M : d\n~A\n0.0\n1.0\n2.0\n5.0\n6.0\n"
	log, err := las.Read(strings.NewReader(src))
	require.NoError(t, err)

	out, err := Apply(log, mustFactor(t, 0.5))
	require.NoError(t, err)
	require.Len(t, out.Rows, 3)

	step, _ := out.WellValue("STEP")
	assert.Equal(t, "0.0", step)
	stop, _ := out.WellValue("STOP")
	assert.Equal(t, "6.0", stop)
}

func TestApplyBadDepth(t *testing.T) {
	src := "~Well\n STRT.M 0.0 : s\n~Curve\n DEPT.M : d\n~A\nabc\n"
	log, err := las.Read(strings.NewReader(src))
	require.NoError(t, err)

	_, err = Apply(log, mustFactor(t, 0.5))
	assert.Error(t, err)
}

func TestOutputName(t *testing.T) {
	f := mustFactor(t, 0.9)
	assert.Equal(t, "welldecimated0.9.las", OutputName("/data/well.las", f))
	assert.Equal(t, "WELL_2decimated0.9.LAS", OutputName("WELL_2.LAS", f))
	assert.Equal(t, "a.bdecimated0.9.las", OutputName("dir/a.b.las", f))
}

func TestDiscover(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, p := range []string{"/data/a.las", "/data/B.LAS", "/data/notes.txt", "/data/sub/c.Las", "/data/sub/deep/d.las"} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o644))
	}

	flat, err := Discover(fs, "/data", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/B.LAS", "/data/a.las"}, flat)

	nested, err := Discover(fs, "/data", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/B.LAS", "/data/a.las", "/data/sub/c.Las", "/data/sub/deep/d.las"}, nested)

	_, err = Discover(fs, "/missing", false)
	assert.Error(t, err)
}

func TestRunner(t *testing.T) {
	fs := afero.NewMemMapFs()
	inputs := []string{"/in/one.las", "/in/two.las", "/in/three.las"}
	for _, p := range inputs {
		require.NoError(t, afero.WriteFile(fs, p, []byte(wellLAS), 0o644))
	}

	logger, hook := test.NewNullLogger()
	r := &Runner{Fs: fs, OutDir: "/out", Factor: mustFactor(t, 0.5), Jobs: 2, Log: logger}

	summary, err := r.Run(context.Background(), inputs)
	require.NoError(t, err)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, 15, summary.RowsIn())
	assert.Equal(t, 9, summary.RowsOut())
	for i, res := range summary.Results {
		assert.Equal(t, inputs[i], res.Input)
		assert.Equal(t, filepath.Join("/out", OutputName(inputs[i], r.Factor)), res.Output)

		log, err := las.ReadFile(fs, res.Output)
		require.NoError(t, err)
		assert.Len(t, log.Rows, 3)
		assert.Equal(t, []string{"DEPT", "GR"}, res.Curves)
	}
	assert.Len(t, hook.AllEntries(), 3)
	entry := hook.LastEntry()
	assert.Equal(t, "decimated", entry.Message)
	assert.Equal(t, "DEPT,GR", entry.Data["curves"])
	assert.Equal(t, 0.5, entry.Data["factor"])
}

func TestRunnerCollisions(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := mustFactor(t, 0.5)

	t.Run("same base name in two directories", func(t *testing.T) {
		r := &Runner{Fs: fs, OutDir: "/out", Factor: f}
		_, err := r.Run(context.Background(), []string{"/in/a/well.las", "/in/b/well.las"})
		assert.ErrorIs(t, err, types.ErrOutputCollision)
	})

	t.Run("output would overwrite an input", func(t *testing.T) {
		r := &Runner{Fs: fs, OutDir: "/in", Factor: f}
		_, err := r.Run(context.Background(), []string{"/in/x.las", "/in/xdecimated0.5.las"})
		assert.ErrorIs(t, err, types.ErrOutputCollision)
	})
}

func TestRunnerWritesNextToInputs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/a/well.las", []byte(wellLAS), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/in/b/well.las", []byte(wellLAS), 0o644))

	r := &Runner{Fs: fs, Factor: mustFactor(t, 0.9)}
	summary, err := r.Run(context.Background(), []string{"/in/a/well.las", "/in/b/well.las"})
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, "/in/a/welldecimated0.9.las", summary.Results[0].Output)
	assert.Equal(t, "/in/b/welldecimated0.9.las", summary.Results[1].Output)
}

func TestRunnerStopsOnError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/good.las", []byte(wellLAS), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/in/bad.las", []byte("~Version\n VERS. 2.0 : x\n"), 0o644))

	r := &Runner{Fs: fs, OutDir: "/out", Factor: mustFactor(t, 0.5)}
	_, err := r.Run(context.Background(), []string{"/in/bad.las", "/in/good.las"})
	require.Error(t, err)
	assert.ErrorIs(t, err, las.ErrNoDataSection)
	assert.Contains(t, err.Error(), "/in/bad.las")

	exists, _ := afero.Exists(fs, "/out/baddecimated0.5.las")
	assert.False(t, exists)
}
