package waffles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWaveform(run int, endpoint int, channel int, adcs []float64) *Waveform {
	return NewWaveform(0, 16.0, adcs, run, endpoint, channel)
}

func newTestSet(t *testing.T) *WaveformSet {
	t.Helper()

	ws, err := NewWaveformSet(
		newTestWaveform(10, 102, 3, []float64{1, 2, 3, 4}),
		newTestWaveform(10, 102, 4, []float64{5, 6, 7, 8}),
		newTestWaveform(11, 104, 3, []float64{9, 10, 11, 12}),
		newTestWaveform(11, 104, 7, []float64{13, 14, 15, 16}),
	)
	require.NoError(t, err)
	return ws
}

func TestNewWaveformSet_Empty(t *testing.T) {
	_, err := NewWaveformSet()

	var shapeErr *ErrShape
	require.ErrorAs(t, err, &shapeErr)
}

func TestNewWaveformSet_NonUniformLengths(t *testing.T) {
	_, err := NewWaveformSet(
		newTestWaveform(10, 102, 3, []float64{1, 2, 3, 4}),
		newTestWaveform(10, 102, 4, []float64{1, 2, 3}),
	)

	var shapeErr *ErrShape
	require.ErrorAs(t, err, &shapeErr)
}

func TestNewWaveformSet_DerivedState(t *testing.T) {
	ws := newTestSet(t)

	assert.Equal(t, 4, ws.PointsPerWf())
	assert.Equal(t, map[int]struct{}{10: {}, 11: {}}, ws.Runs())
	assert.Equal(t, map[int]map[int]struct{}{
		102: {3: {}, 4: {}},
		104: {3: {}, 7: {}},
	}, ws.AvailableChannels())

	assert.Nil(t, ws.MeanAdcs())
	assert.Nil(t, ws.MeanAdcsIdcs())
}

func TestIsValidIndex(t *testing.T) {
	ws := newTestSet(t)

	assert.True(t, ws.IsValidIndex(0))
	assert.True(t, ws.IsValidIndex(3))
	assert.False(t, ws.IsValidIndex(-1))
	assert.False(t, ws.IsValidIndex(4))
}

func TestAnalyse_MalformedBaselineLimits(t *testing.T) {
	ws := newTestSet(t)

	tests := []struct {
		name   string
		limits []int
	}{
		{"empty", []int{}},
		{"odd length", []int{0, 1, 2}},
		{"non increasing", []int{2, 1}},
		{"negative lower limit", []int{-1, 2}},
		{"upper limit out of bounds", []int{0, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ws.Analyse("lims", "standard", tt.limits, nil, 0, -1, false)

			var limitsErr *ErrMalformedLimits
			require.ErrorAs(t, err, &limitsErr)
		})
	}

	// No waveform was touched by the rejected calls.
	for _, wf := range ws.Waveforms() {
		assert.Empty(t, wf.Analyses)
	}
}

func TestAnalyse_MalformedWindow(t *testing.T) {
	ws := newTestSet(t)

	tests := []struct {
		name  string
		intLl int
		intUl int
	}{
		{"negative lower limit", -1, 2},
		{"upper not above lower", 2, 2},
		{"upper out of bounds", 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ws.Analyse("win", "standard", []int{0, 2}, nil, tt.intLl, tt.intUl, false)

			var windowErr *ErrMalformedWindow
			require.ErrorAs(t, err, &windowErr)
		})
	}
}

func TestAnalyse_UnknownAnalyser(t *testing.T) {
	ws := newTestSet(t)

	_, err := ws.Analyse("missing", "does_not_exist", []int{0, 2}, nil, 0, -1, false)

	var contractErr *ErrAnalyserContract
	require.ErrorAs(t, err, &contractErr)
	assert.Equal(t, "does_not_exist", contractErr.Name)
}

func TestAnalyse_AttachesResults(t *testing.T) {
	ws := newTestSet(t)

	output, err := ws.Analyse("base", "standard", []int{0, 2}, nil, 0, -1, false)
	require.NoError(t, err)
	require.Len(t, output, 4)

	for i, wf := range ws.Waveforms() {
		require.Contains(t, output, i)

		ana, ok := wf.Analyses["base"]
		require.True(t, ok, "waveform %d has no analysis attached", i)
		require.NotNil(t, ana.Result)
		assert.True(t, ana.Passed)
		assert.Equal(t, []int{0, 2}, ana.BaselineLimits)
		assert.Equal(t, 0, ana.IntLl)
		assert.Equal(t, 3, ana.IntUl, "a negative int_ul must default to the full trace")
	}

	// Traces are linear ramps, so the baseline is the mean of the first two
	// samples and the integral is the baseline-subtracted sum.
	first := ws.Waveforms()[0].Analyses["base"]
	assert.InDelta(t, 1.5, first.Result.Baseline, 1e-12)
	assert.InDelta(t, (1-1.5)+(2-1.5)+(3-1.5)+(4-1.5), first.Result.Integral, 1e-12)
}

func TestAnalyse_OverwritePolicy(t *testing.T) {
	ws := newTestSet(t)

	_, err := ws.Analyse("dup", "standard", []int{0, 2}, nil, 0, -1, false)
	require.NoError(t, err)

	_, err = ws.Analyse("dup", "standard", []int{0, 2}, nil, 0, -1, false)
	var takenErr *ErrLabelTaken
	require.ErrorAs(t, err, &takenErr)
	assert.Equal(t, "dup", takenErr.Label)

	_, err = ws.Analyse("dup", "standard", []int{0, 2}, nil, 0, -1, true)
	require.NoError(t, err)
}

func TestAnalyse_ExtraArgs(t *testing.T) {
	ws := newTestSet(t)

	thresholded := func(waveform *WaveformAdcs, ana *WfAna, threshold float64) (*WfAnaResult, bool, map[string]any) {
		passed := waveform.Adcs[0] >= threshold
		return &WfAnaResult{}, passed, map[string]any{"threshold": threshold}
	}
	require.NoError(t, RegisterAnalyser("thresholded", thresholded))

	output, err := ws.Analyse("thr", "thresholded", []int{0, 2}, []any{5.0}, 0, -1, false)
	require.NoError(t, err)

	assert.Equal(t, 5.0, output[0]["threshold"])
	assert.False(t, ws.Waveforms()[0].Analyses["thr"].Passed)
	assert.True(t, ws.Waveforms()[1].Analyses["thr"].Passed)

	// Wrong argument count surfaces as an error, not a panic.
	_, err = ws.Analyse("thr2", "thresholded", []int{0, 2}, nil, 0, -1, false)
	require.Error(t, err)
}
