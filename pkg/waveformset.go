package waffles

import (
	"fmt"
)

// WaveformSet owns an ordered sequence of waveforms with traces of a common
// length. The run numbers and the channels observed per endpoint are
// computed once, at construction, and are not refreshed if the waveforms are
// mutated afterwards.
type WaveformSet struct {
	waveforms         []*Waveform
	pointsPerWf       int
	runs              map[int]struct{}
	availableChannels map[int]map[int]struct{}
	meanAdcs          *WaveformAdcs
	meanAdcsIdcs      []int
}

// NewWaveformSet builds a set from the given waveforms. It fails if no
// waveform is given or if the trace lengths are not homogeneous.
func NewWaveformSet(waveforms ...*Waveform) (*WaveformSet, error) {
	if len(waveforms) == 0 {
		return nil, &ErrShape{Reason: "a waveform set needs at least one waveform"}
	}

	pointsPerWf := len(waveforms[0].Adcs)
	for i := 1; i < len(waveforms); i++ {
		if len(waveforms[i].Adcs) != pointsPerWf {
			return nil, &ErrShape{Reason: fmt.Sprintf("the length of the given waveforms is not homogeneous: waveform %d has %d points, expected %d", i, len(waveforms[i].Adcs), pointsPerWf)}
		}
	}

	ws := &WaveformSet{
		waveforms:         waveforms,
		pointsPerWf:       pointsPerWf,
		runs:              make(map[int]struct{}),
		availableChannels: make(map[int]map[int]struct{}),
	}
	for _, wf := range waveforms {
		ws.runs[wf.RunNumber] = struct{}{}
		channels, ok := ws.availableChannels[wf.Endpoint]
		if !ok {
			channels = make(map[int]struct{})
			ws.availableChannels[wf.Endpoint] = channels
		}
		channels[wf.Channel] = struct{}{}
	}
	return ws, nil
}

func (ws *WaveformSet) Waveforms() []*Waveform {
	return ws.waveforms
}

func (ws *WaveformSet) PointsPerWf() int {
	return ws.pointsPerWf
}

// Runs returns the set of run numbers for which this set holds at least one
// waveform.
func (ws *WaveformSet) Runs() map[int]struct{} {
	return ws.runs
}

// AvailableChannels maps each endpoint to the set of channels for which this
// set holds at least one waveform.
func (ws *WaveformSet) AvailableChannels() map[int]map[int]struct{} {
	return ws.availableChannels
}

// MeanAdcs returns the last mean waveform computed by ComputeMeanWaveform,
// or nil if none has been computed yet.
func (ws *WaveformSet) MeanAdcs() *WaveformAdcs {
	return ws.meanAdcs
}

// MeanAdcsIdcs returns the indices of the waveforms which contributed to the
// last computed mean, or nil if none has been computed yet.
func (ws *WaveformSet) MeanAdcsIdcs() []int {
	return ws.meanAdcsIdcs
}

func (ws *WaveformSet) IsValidIndex(i int) bool {
	return i >= 0 && i < len(ws.waveforms)
}

// baselineLimitsAreWellFormed reports whether limits has an even length and
// satisfies 0 <= limits[0] < limits[1] < ... <= pointsPerWf - 1.
func (ws *WaveformSet) baselineLimitsAreWellFormed(limits []int) bool {
	if len(limits)%2 != 0 || len(limits) == 0 {
		return false
	}
	if limits[0] < 0 {
		return false
	}
	for i := 0; i < len(limits)-1; i++ {
		if limits[i] >= limits[i+1] {
			return false
		}
	}
	return limits[len(limits)-1] <= ws.pointsPerWf-1
}

// subintervalIsWellFormed reports whether 0 <= iLow < iUp <= pointsPerWf - 1.
func (ws *WaveformSet) subintervalIsWellFormed(iLow int, iUp int) bool {
	if iLow < 0 {
		return false
	}
	if iUp <= iLow {
		return false
	}
	return iUp <= ws.pointsPerWf-1
}

// Analyse applies the named analyser to every waveform in the set, in index
// order, attaching a WfAna under label to each one. The analyser contract
// and the numeric preconditions are checked once, before any waveform is
// touched. A negative intUl selects the full trace.
//
// The returned map gives, for each waveform index, the side output of that
// waveform's analysis. There is no rollback: if a waveform's analysis fails,
// the waveforms before it keep their new analyses.
func (ws *WaveformSet) Analyse(label string, analyserName string, baselineLimits []int, args []any, intLl int, intUl int, overwrite bool) (map[int]map[string]any, error) {
	if !ws.baselineLimitsAreWellFormed(baselineLimits) {
		return nil, &ErrMalformedLimits{
			Limits: baselineLimits,
			Reason: "limits must come in strictly increasing [lo, hi) pairs within the trace",
		}
	}

	if intUl < 0 {
		intUl = ws.pointsPerWf - 1
	}
	if !ws.subintervalIsWellFormed(intLl, intUl) {
		return nil, &ErrMalformedWindow{
			IntLl:  intLl,
			IntUl:  intUl,
			Reason: "the window must satisfy 0 <= int_ll < int_ul <= points_per_wf - 1",
		}
	}

	inv, err := resolveAnalyser(analyserName)
	if err != nil {
		return nil, err
	}

	output := make(map[int]map[string]any, len(ws.waveforms))
	for i, wf := range ws.waveforms {
		wfOutput, err := wf.analyseWith(label, inv, baselineLimits, args, intLl, intUl, overwrite)
		if err != nil {
			return nil, fmt.Errorf("error analysing waveform %d: %w", i, err)
		}
		output[i] = wfOutput
	}
	return output, nil
}
