package waffles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetGridOfWfIdcs_Contiguous(t *testing.T) {
	ws := newTestSet(t)

	grid, err := ws.GetGridOfWfIdcs(2, 3, 2, nil, nil, 0)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			k0 := 2 * (j + 3*i)
			assert.Equal(t, []int{k0, k0 + 1}, grid[i][j], "cell (%d, %d)", i, j)
		}
	}
}

func TestGetGridOfWfIdcs_ContiguousExceedsCollection(t *testing.T) {
	ws := newTestSet(t)

	// No bounds check against the collection length is performed: a grid
	// larger than the set still produces the full contiguous ranges.
	grid, err := ws.GetGridOfWfIdcs(1, 2, 10, nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, len(grid[0][0]))
	assert.Equal(t, 19, grid[0][1][9])
}

func TestGetGridOfWfIdcs_InvalidShape(t *testing.T) {
	ws := newTestSet(t)

	var shapeErr *ErrShape

	_, err := ws.GetGridOfWfIdcs(0, 1, 1, nil, nil, 0)
	require.ErrorAs(t, err, &shapeErr)

	_, err = ws.GetGridOfWfIdcs(1, 0, 1, nil, nil, 0)
	require.ErrorAs(t, err, &shapeErr)

	_, err = ws.GetGridOfWfIdcs(1, 1, -1, nil, nil, 0)
	require.ErrorAs(t, err, &shapeErr)
}

func TestGetGridOfWfIdcs_FilterContract(t *testing.T) {
	ws := newTestSet(t)
	args := [][][]any{{{10}}}

	tests := []struct {
		name   string
		filter any
	}{
		{"nil filter", nil},
		{"not a function", "MatchRun"},
		{"wrong first parameter", func(run int) bool { return true }},
		{"wrong return type", func(waveform *Waveform, run int) int { return run }},
		{"two return values", func(waveform *Waveform) (bool, error) { return true, nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ws.GetGridOfWfIdcs(1, 1, 0, tt.filter, args, 0)

			var contractErr *ErrFilterContract
			require.ErrorAs(t, err, &contractErr)
		})
	}
}

func TestGetGridOfWfIdcs_FilterArgsShape(t *testing.T) {
	ws := newTestSet(t)

	_, err := ws.GetGridOfWfIdcs(1, 2, 0, MatchRun, [][][]any{{{10}}}, 0)

	var shapeErr *ErrShape
	require.ErrorAs(t, err, &shapeErr)
}

func TestGetGridOfWfIdcs_ByRun(t *testing.T) {
	ws := newTestSet(t)

	grid, err := ws.GetGridOfWfIdcs(1, 2, 0, MatchRun, [][][]any{{{10}, {11}}}, 5)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, grid[0][0])
	assert.Equal(t, []int{2, 3}, grid[0][1])
}

func TestGetGridOfWfIdcs_ByRunAbsentRunSkipsScan(t *testing.T) {
	ws := newTestSet(t)

	grid, err := ws.GetGridOfWfIdcs(1, 1, 0, MatchRun, [][][]any{{{99}}}, 5)
	require.NoError(t, err)
	assert.Empty(t, grid[0][0])
}

func TestGetGridOfWfIdcs_ByEndpointAndChannel(t *testing.T) {
	ws := newTestSet(t)

	filterArgs := [][][]any{
		{{102, 3}, {102, 4}},
		{{104, 7}, {104, 9}}, // channel 9 is absent from endpoint 104
	}
	grid, err := ws.GetGridOfWfIdcs(2, 2, 0, MatchEndpointAndChannel, filterArgs, 5)
	require.NoError(t, err)

	assert.Equal(t, []int{0}, grid[0][0])
	assert.Equal(t, []int{1}, grid[0][1])
	assert.Equal(t, []int{3}, grid[1][0])
	assert.Empty(t, grid[1][1])
}

func TestGetGridOfWfIdcs_AbsentEndpointSkipsScan(t *testing.T) {
	ws := newTestSet(t)

	grid, err := ws.GetGridOfWfIdcs(1, 1, 0, MatchEndpointAndChannel, [][][]any{{{999, 1}}}, 5)
	require.NoError(t, err)
	assert.Empty(t, grid[0][0])
}

func TestGetGridOfWfIdcs_FastPathEquivalence(t *testing.T) {
	ws := newTestSet(t)

	// A wrapper has its own identity, so it takes the general path even
	// though it evaluates the same predicate.
	matchRunGeneral := func(waveform *Waveform, run int) bool {
		return MatchRun(waveform, run)
	}
	matchEpChGeneral := func(waveform *Waveform, endpoint int, channel int) bool {
		return MatchEndpointAndChannel(waveform, endpoint, channel)
	}

	runArgs := [][][]any{{{10}, {11}, {99}}}
	fast, err := ws.GetGridOfWfIdcs(1, 3, 0, MatchRun, runArgs, 1)
	require.NoError(t, err)
	general, err := ws.GetGridOfWfIdcs(1, 3, 0, matchRunGeneral, runArgs, 1)
	require.NoError(t, err)
	assert.Equal(t, general, fast)

	chArgs := [][][]any{{{102, 3}, {104, 7}, {999, 1}}}
	fast, err = ws.GetGridOfWfIdcs(1, 3, 0, MatchEndpointAndChannel, chArgs, 1)
	require.NoError(t, err)
	general, err = ws.GetGridOfWfIdcs(1, 3, 0, matchEpChGeneral, chArgs, 1)
	require.NoError(t, err)
	assert.Equal(t, general, fast)
}

func TestGetGridOfWfIdcs_PerCellCap(t *testing.T) {
	waveforms := make([]*Waveform, 7)
	for i := range waveforms {
		waveforms[i] = newTestWaveform(10, 102, 3, []float64{float64(i)})
	}
	ws, err := NewWaveformSet(waveforms...)
	require.NoError(t, err)

	args := [][][]any{{{10}}}

	// Zero selects the default cap.
	grid, err := ws.GetGridOfWfIdcs(1, 1, 0, MatchRun, args, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, grid[0][0])

	// A negative cap disables the limit.
	grid, err = ws.GetGridOfWfIdcs(1, 1, 0, MatchRun, args, -1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, grid[0][0])

	grid, err = ws.GetGridOfWfIdcs(1, 1, 0, MatchRun, args, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, grid[0][0])
}

func TestGetGridOfWfIdcs_GeneralPredicate(t *testing.T) {
	ws, err := NewWaveformSet(
		NewWaveform(5, 16.0, []float64{1}, 10, 102, 3),
		NewWaveform(20, 16.0, []float64{2}, 10, 102, 4),
		NewWaveform(35, 16.0, []float64{3}, 11, 104, 3),
	)
	require.NoError(t, err)

	after := func(waveform *Waveform, min uint64) bool {
		return waveform.Timestamp >= min
	}
	grid, err := ws.GetGridOfWfIdcs(1, 1, 0, after, [][][]any{{{uint64(10)}}}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, grid[0][0])
}

func TestMatchChannel(t *testing.T) {
	wf := newTestWaveform(10, 102, 3, []float64{1})

	assert.True(t, MatchChannel(wf, 3))
	assert.False(t, MatchChannel(wf, 4))
}
