package waffles

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEndpointAndChannel(t *testing.T) {
	tests := []struct {
		packed   int
		endpoint int
		channel  int
	}{
		{10203, 102, 3},
		{10447, 104, 47},
		{99, 0, 99},
		{10500, 105, 0},
	}

	for _, tt := range tests {
		endpoint, channel := GetEndpointAndChannel(tt.packed)
		assert.Equal(t, tt.endpoint, endpoint, "packed %d", tt.packed)
		assert.Equal(t, tt.channel, channel, "packed %d", tt.packed)
	}
}

func TestFractionIsWellFormed(t *testing.T) {
	tests := []struct {
		name  string
		lower float64
		upper float64
		want  bool
	}{
		{"whole file", 0.0, 1.0, true},
		{"third quarter", 0.5, 0.75, true},
		{"negative lower limit", -0.1, 0.5, false},
		{"equal limits", 0.5, 0.5, false},
		{"inverted limits", 0.75, 0.5, false},
		{"upper limit above one", 0.0, 1.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FractionIsWellFormed(tt.lower, tt.upper))
		})
	}
}

func TestReadWaveformSet_MalformedRange(t *testing.T) {
	// The range is validated before the file is touched, so a nonexistent
	// path must not matter here.
	_, err := ReadWaveformSet("does_not_exist.hdf5", "raw_waveforms", 0.75, 0.5)

	var rangeErr *ErrRange
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 0.75, rangeErr.Start)
	assert.Equal(t, 0.5, rangeErr.Stop)
}

func TestReadWaveformSet_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does_not_exist.hdf5")

	_, err := ReadWaveformSet(path, "raw_waveforms", 0.0, 1.0)

	var openErr *ErrOpenFile
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, path, openErr.Filename)
}
