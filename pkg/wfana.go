package waffles

import (
	"fmt"
	"reflect"
)

// WfAnaResult bundles the values computed by an analyser for one trace.
type WfAnaResult struct {
	Baseline     float64
	Integral     float64
	SpottedPeaks []int
}

// WfAna is one analysis attached to a trace: the inputs it ran with plus the
// analyser's result and pass/fail verdict. The integration window limits are
// both inclusive; baseline limits come in [lo, hi) pairs.
type WfAna struct {
	BaselineLimits []int
	IntLl          int
	IntUl          int
	Result         *WfAnaResult
	Passed         bool
}

// Analyser is the canonical call shape of a registered analyser. Analysers
// with extra trailing positional parameters are accepted too; they are
// invoked through reflection with the per-call argument list.
type Analyser func(waveform *WaveformAdcs, ana *WfAna) (*WfAnaResult, bool, map[string]any)

type analyserInvoker func(waveform *WaveformAdcs, ana *WfAna, args []any) (*WfAnaResult, bool, map[string]any, error)

var analysers = make(map[string]any)

var (
	waveformAdcsType = reflect.TypeOf((*WaveformAdcs)(nil))
	wfAnaType        = reflect.TypeOf((*WfAna)(nil))
	wfAnaResultType  = reflect.TypeOf((*WfAnaResult)(nil))
	boolType         = reflect.TypeOf(false)
	sideOutputType   = reflect.TypeOf(map[string]any(nil))
)

// RegisterAnalyser adds fn to the analyser registry under name. The call
// shape of fn is validated here, once, so that dispatching over a large
// waveform set never has to re-check it per record.
func RegisterAnalyser(name string, fn any) error {
	if _, err := makeAnalyserInvoker(name, fn); err != nil {
		return err
	}
	analysers[name] = fn
	return nil
}

func resolveAnalyser(name string) (analyserInvoker, error) {
	fn, ok := analysers[name]
	if !ok {
		return nil, &ErrAnalyserContract{Name: name, Clause: "no analyser is registered under this name"}
	}
	return makeAnalyserInvoker(name, fn)
}

func makeAnalyserInvoker(name string, fn any) (analyserInvoker, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, &ErrAnalyserContract{Name: name, Clause: "not a callable function"}
	}

	t := v.Type()
	if t.NumIn() < 1 || t.In(0) != waveformAdcsType {
		return nil, &ErrAnalyserContract{Name: name, Clause: "the first parameter must be the waveform (*WaveformAdcs)"}
	}
	if t.NumIn() < 2 || t.In(1) != wfAnaType {
		return nil, &ErrAnalyserContract{Name: name, Clause: "the second parameter must be the analysis being filled (*WfAna)"}
	}
	if t.NumOut() != 3 || t.Out(0) != wfAnaResultType || t.Out(1) != boolType || t.Out(2) != sideOutputType {
		return nil, &ErrAnalyserContract{Name: name, Clause: "the return shape must be (*WfAnaResult, bool, map[string]any)"}
	}

	return func(waveform *WaveformAdcs, ana *WfAna, args []any) (*WfAnaResult, bool, map[string]any, error) {
		in, err := buildCallArgs(t, []reflect.Value{reflect.ValueOf(waveform), reflect.ValueOf(ana)}, args)
		if err != nil {
			return nil, false, nil, fmt.Errorf("analyser %q: %w", name, err)
		}
		out := v.Call(in)
		result, _ := out[0].Interface().(*WfAnaResult)
		output, _ := out[2].Interface().(map[string]any)
		return result, out[1].Bool(), output, nil
	}, nil
}

// buildCallArgs assembles the reflect argument list for a call to a function
// of type t, prepending the fixed leading arguments to the caller-supplied
// extra ones. Extra arguments must be assignable to the corresponding
// parameter types.
func buildCallArgs(t reflect.Type, fixed []reflect.Value, extra []any) ([]reflect.Value, error) {
	want := t.NumIn()
	got := len(fixed) + len(extra)
	if t.IsVariadic() {
		if got < want-1 {
			return nil, fmt.Errorf("expected at least %d arguments, got %d", want-1, got)
		}
	} else if got != want {
		return nil, fmt.Errorf("expected %d arguments, got %d", want, got)
	}

	in := make([]reflect.Value, 0, got)
	in = append(in, fixed...)
	for i, arg := range extra {
		pos := len(fixed) + i
		var paramType reflect.Type
		if t.IsVariadic() && pos >= want-1 {
			paramType = t.In(want - 1).Elem()
		} else {
			paramType = t.In(pos)
		}

		av := reflect.ValueOf(arg)
		if !av.IsValid() {
			av = reflect.Zero(paramType)
		} else if !av.Type().AssignableTo(paramType) {
			if !av.Type().ConvertibleTo(paramType) {
				return nil, fmt.Errorf("argument %d (%T) is not assignable to %s", pos, arg, paramType)
			}
			av = av.Convert(paramType)
		}
		in = append(in, av)
	}
	return in, nil
}

// StandardAnalyser estimates the baseline as the mean of the samples within
// the baseline-limit regions, spots the local maxima above the baseline
// within the integration window and integrates the baseline-subtracted
// samples over the window. It never fails a waveform and produces no side
// output.
func StandardAnalyser(waveform *WaveformAdcs, ana *WfAna) (*WfAnaResult, bool, map[string]any) {
	baseline := 0.0
	count := 0
	for i := 0; i+1 < len(ana.BaselineLimits); i += 2 {
		for k := ana.BaselineLimits[i]; k < ana.BaselineLimits[i+1]; k++ {
			baseline += waveform.Adcs[k]
			count++
		}
	}
	if count > 0 {
		baseline /= float64(count)
	}

	integral := 0.0
	var peaks []int
	for k := ana.IntLl; k <= ana.IntUl; k++ {
		integral += waveform.Adcs[k] - baseline
		if k > ana.IntLl && k < ana.IntUl &&
			waveform.Adcs[k] > baseline &&
			waveform.Adcs[k] > waveform.Adcs[k-1] &&
			waveform.Adcs[k] >= waveform.Adcs[k+1] {
			peaks = append(peaks, k)
		}
	}

	result := &WfAnaResult{
		Baseline:     baseline,
		Integral:     integral,
		SpottedPeaks: peaks,
	}
	return result, true, map[string]any{}
}

func init() {
	if err := RegisterAnalyser("standard", StandardAnalyser); err != nil {
		panic(err)
	}
}
