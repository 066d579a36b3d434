package waffles

// UniqueChannel identifies a single detector channel. Endpoints group
// channels, so the pair is unique across the detector.
type UniqueChannel struct {
	Endpoint int
	Channel  int
}

// WaveformAdcs holds a digitized trace: the ADC samples, the sampling period
// in nanoseconds and the analyses which have been attached to the trace,
// keyed by label.
type WaveformAdcs struct {
	TimeStepNs float64
	Adcs       []float64
	Analyses   map[string]*WfAna
}

func NewWaveformAdcs(timeStepNs float64, adcs []float64) *WaveformAdcs {
	return &WaveformAdcs{
		TimeStepNs: timeStepNs,
		Adcs:       adcs,
		Analyses:   make(map[string]*WfAna),
	}
}

// Waveform is a WaveformAdcs trace plus the metadata which identifies it
// within a data-taking campaign.
type Waveform struct {
	WaveformAdcs
	Timestamp uint64
	RunNumber int
	Endpoint  int
	Channel   int
}

func NewWaveform(timestamp uint64, timeStepNs float64, adcs []float64, runNumber int, endpoint int, channel int) *Waveform {
	return &Waveform{
		WaveformAdcs: *NewWaveformAdcs(timeStepNs, adcs),
		Timestamp:    timestamp,
		RunNumber:    runNumber,
		Endpoint:     endpoint,
		Channel:      channel,
	}
}

// Analyse runs the named analyser over this trace and attaches the resulting
// WfAna under label. An existing analysis under the same label is only
// replaced when overwrite is set; otherwise the call fails and the trace is
// left untouched. The returned map is the analyser's side output.
//
// The baseline limits and the integration window are stored verbatim in the
// attached WfAna; they are assumed to have been validated by the caller
// against the trace length.
func (wf *WaveformAdcs) Analyse(label string, analyserName string, baselineLimits []int, args []any, intLl int, intUl int, overwrite bool) (map[string]any, error) {
	inv, err := resolveAnalyser(analyserName)
	if err != nil {
		return nil, err
	}
	return wf.analyseWith(label, inv, baselineLimits, args, intLl, intUl, overwrite)
}

func (wf *WaveformAdcs) analyseWith(label string, inv analyserInvoker, baselineLimits []int, args []any, intLl int, intUl int, overwrite bool) (map[string]any, error) {
	if _, taken := wf.Analyses[label]; taken && !overwrite {
		return nil, &ErrLabelTaken{Label: label}
	}

	ana := &WfAna{
		BaselineLimits: baselineLimits,
		IntLl:          intLl,
		IntUl:          intUl,
	}
	result, passed, output, err := inv(wf, ana, args)
	if err != nil {
		return nil, err
	}

	ana.Result = result
	ana.Passed = passed
	if wf.Analyses == nil {
		wf.Analyses = make(map[string]*WfAna)
	}
	wf.Analyses[label] = ana
	return output, nil
}
