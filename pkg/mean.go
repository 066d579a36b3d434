package waffles

import "fmt"

// ComputeMeanWaveform computes the elementwise mean trace of a subset of the
// waveforms and records which indices contributed to it. The mean and its
// provenance replace any previously cached result on the set and are also
// returned.
//
// The subset is chosen by argument precedence. A non-nil wfIdcs selects the
// listed indices: out-of-range entries are skipped silently, duplicates are
// counted as many times as they appear, and the call fails only when no
// entry is valid. Otherwise a non-nil wfSelector selects the waveforms for
// which wfSelector(waveform, args...) holds; it must satisfy the same call
// shape as a grid filter. Otherwise every waveform contributes.
//
// The mean trace's time step is taken from the first contributing waveform;
// contributors are assumed to share it.
func (ws *WaveformSet) ComputeMeanWaveform(wfIdcs []int, wfSelector any, args ...any) (*WaveformAdcs, error) {
	if len(ws.waveforms) == 0 {
		return nil, &ErrEmptyCollection{Op: "ComputeMeanWaveform"}
	}

	switch {
	case wfIdcs != nil:
		return ws.meanWaveformOfGivenIdcs(wfIdcs)
	case wfSelector != nil:
		return ws.meanWaveformWithSelector(wfSelector, args)
	default:
		return ws.meanWaveformOfEveryWaveform()
	}
}

func (ws *WaveformSet) meanWaveformOfEveryWaveform() (*WaveformAdcs, error) {
	sum := make([]float64, ws.pointsPerWf)
	idcs := make([]int, len(ws.waveforms))
	for i, wf := range ws.waveforms {
		idcs[i] = i
		for k, sample := range wf.Adcs {
			sum[k] += sample
		}
	}
	return ws.cacheMean(sum, idcs), nil
}

func (ws *WaveformSet) meanWaveformWithSelector(wfSelector any, args []any) (*WaveformAdcs, error) {
	selector, err := checkFilterContract(wfSelector)
	if err != nil {
		return nil, err
	}

	sum := make([]float64, ws.pointsPerWf)
	var idcs []int
	for i, wf := range ws.waveforms {
		match, err := selector(wf, args)
		if err != nil {
			return nil, fmt.Errorf("waveform %d: %w", i, err)
		}
		if !match {
			continue
		}
		idcs = append(idcs, i)
		for k, sample := range wf.Adcs {
			sum[k] += sample
		}
	}
	if len(idcs) == 0 {
		return nil, &ErrEmptySelection{Reason: "no waveform in this set passed the given selector"}
	}
	return ws.cacheMean(sum, idcs), nil
}

func (ws *WaveformSet) meanWaveformOfGivenIdcs(wfIdcs []int) (*WaveformAdcs, error) {
	anyValid := false
	for _, idx := range wfIdcs {
		if ws.IsValidIndex(idx) {
			anyValid = true
			break
		}
	}
	if !anyValid {
		return nil, &ErrEmptySelection{Reason: "the given index list does not contain a single valid index"}
	}

	// Invalid indices are skipped; repeated valid indices are deliberately
	// counted every time they appear.
	sum := make([]float64, ws.pointsPerWf)
	var idcs []int
	for _, idx := range wfIdcs {
		if !ws.IsValidIndex(idx) {
			continue
		}
		idcs = append(idcs, idx)
		for k, sample := range ws.waveforms[idx].Adcs {
			sum[k] += sample
		}
	}
	return ws.cacheMean(sum, idcs), nil
}

func (ws *WaveformSet) cacheMean(sum []float64, idcs []int) *WaveformAdcs {
	for k := range sum {
		sum[k] /= float64(len(idcs))
	}
	mean := NewWaveformAdcs(ws.waveforms[idcs[0]].TimeStepNs, sum)
	ws.meanAdcs = mean
	ws.meanAdcsIdcs = idcs
	return mean
}
