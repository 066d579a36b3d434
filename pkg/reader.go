package waffles

import (
	"fmt"
	"math"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// FractionIsWellFormed reports whether 0 <= lowerLimit < upperLimit <= 1.
func FractionIsWellFormed(lowerLimit float64, upperLimit float64) bool {
	if lowerLimit < 0.0 {
		return false
	}
	if upperLimit <= lowerLimit {
		return false
	}
	return upperLimit <= 1.0
}

// GetEndpointAndChannel decodes a packed 5-digit channel identifier into its
// endpoint (first three digits) and channel (last two digits).
func GetEndpointAndChannel(packed int) (int, int) {
	return packed / 100, packed % 100
}

// ReadWaveformSet loads a waveform set from an HDF5 file. The file must hold
// a group named groupName with the columnar datasets "channel", "timestamp"
// (or "timestamps") and a two-dimensional "adcs" of shape
// (waveforms, samples). The optional datasets "run" (per waveform) and "dt"
// (single sampling period, in ns) are used when present.
//
// Only the waveforms within the [startFraction, stopFraction) slice of the
// file are loaded. E.g. 0.5 and 0.75 load the third quarter of the file.
func ReadWaveformSet(filepath string, groupName string, startFraction float64, stopFraction float64) (*WaveformSet, error) {
	if !FractionIsWellFormed(startFraction, stopFraction) {
		return nil, &ErrRange{Start: startFraction, Stop: stopFraction}
	}

	file, err := hdf5.OpenFile(filepath, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filepath, Err: err}
	}
	defer file.Close()

	group, err := file.OpenGroup(groupName)
	if err != nil {
		return nil, &ErrFormat{Filename: filepath, Missing: groupName}
	}
	defer group.Close()

	adcs, err := group.OpenDataset("adcs")
	if err != nil {
		return nil, &ErrFormat{Filename: filepath, Missing: "adcs"}
	}
	defer adcs.Close()

	dims, _, err := adcs.Space().SimpleExtentDims()
	if err != nil {
		return nil, fmt.Errorf("error reading the extent of the adcs dataset: %w", err)
	}
	if len(dims) != 2 {
		return nil, &ErrShape{Reason: fmt.Sprintf("the adcs dataset must be two-dimensional, got %d dimensions", len(dims))}
	}
	nWaveforms := int(dims[0])
	nSamples := int(dims[1])

	wfStart := int(math.Floor(startFraction * float64(nWaveforms)))
	wfStop := int(math.Ceil(stopFraction * float64(nWaveforms)))
	count := wfStop - wfStart
	if count < 1 {
		return nil, &ErrShape{Reason: "the selected fraction range holds no waveforms"}
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading waveforms [%d, %d) of %d from %s", wfStart, wfStop, nWaveforms, filepath)
		logger.Info(message, "reader")
	}

	samples, err := readAdcsSubset(adcs, wfStart, count, nSamples)
	if err != nil {
		return nil, err
	}

	channels, err := readInt64Column(group, []string{"channel"}, wfStart, count)
	if err != nil {
		return nil, &ErrFormat{Filename: filepath, Missing: "channel"}
	}
	timestamps, err := readInt64Column(group, []string{"timestamp", "timestamps"}, wfStart, count)
	if err != nil {
		return nil, &ErrFormat{Filename: filepath, Missing: "timestamp"}
	}

	// Optional columns.
	runs, err := readInt64Column(group, []string{"run"}, wfStart, count)
	if err != nil {
		runs = make([]int64, count)
	}
	timeStepNs := readTimeStep(group)

	waveforms := make([]*Waveform, count)
	for i := 0; i < count; i++ {
		endpoint, channel := GetEndpointAndChannel(int(channels[i]))
		trace := samples[i*nSamples : (i+1)*nSamples : (i+1)*nSamples]
		waveforms[i] = NewWaveform(uint64(timestamps[i]), timeStepNs, trace, int(runs[i]), endpoint, channel)
	}
	return NewWaveformSet(waveforms...)
}

func readAdcsSubset(dataset *hdf5.Dataset, start int, count int, nSamples int) ([]float64, error) {
	filespace := dataset.Space()
	offset := []uint{uint(start), 0}
	block := []uint{uint(count), uint(nSamples)}
	if err := filespace.SelectHyperslab(offset, nil, block, nil); err != nil {
		return nil, fmt.Errorf("error selecting the adcs hyperslab: %w", err)
	}

	memspace, err := hdf5.CreateSimpleDataspace(block, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating the adcs memory dataspace: %w", err)
	}
	defer memspace.Close()

	data := make([]float64, count*nSamples)
	if err := dataset.ReadSubset(&data, memspace, filespace); err != nil {
		return nil, fmt.Errorf("error reading the adcs dataset: %w", err)
	}
	return data, nil
}

// readInt64Column reads count entries, starting at start, from the first of
// the named one-dimensional datasets which exists in the group.
func readInt64Column(group *hdf5.Group, names []string, start int, count int) ([]int64, error) {
	var lastErr error
	for _, name := range names {
		dataset, err := group.OpenDataset(name)
		if err != nil {
			lastErr = err
			continue
		}
		defer dataset.Close()

		filespace := dataset.Space()
		offset := []uint{uint(start)}
		block := []uint{uint(count)}
		if err := filespace.SelectHyperslab(offset, nil, block, nil); err != nil {
			return nil, fmt.Errorf("error selecting the %s hyperslab: %w", name, err)
		}

		memspace, err := hdf5.CreateSimpleDataspace(block, nil)
		if err != nil {
			return nil, fmt.Errorf("error creating the %s memory dataspace: %w", name, err)
		}
		defer memspace.Close()

		data := make([]int64, count)
		if err := dataset.ReadSubset(&data, memspace, filespace); err != nil {
			return nil, fmt.Errorf("error reading the %s dataset: %w", name, err)
		}
		return data, nil
	}
	return nil, lastErr
}

func readTimeStep(group *hdf5.Group) float64 {
	dataset, err := group.OpenDataset("dt")
	if err != nil {
		return 0
	}
	defer dataset.Close()

	data := make([]float64, 1)
	if err := dataset.Read(&data); err != nil {
		return 0
	}
	return data[0]
}
