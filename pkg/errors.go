package waffles

import "fmt"

// ErrShape represents a structural invariant violation, such as a waveform
// set built from traces of different lengths.
type ErrShape struct {
	Reason string
}

func (e *ErrShape) Error() string {
	return fmt.Sprintf("shape error: %s", e.Reason)
}

// ErrMalformedLimits represents an invalid baseline-limits sequence.
type ErrMalformedLimits struct {
	Limits []int
	Reason string
}

func (e *ErrMalformedLimits) Error() string {
	return fmt.Sprintf("the baseline limits %v are not well formed: %s", e.Limits, e.Reason)
}

// ErrMalformedWindow represents an invalid integration window.
type ErrMalformedWindow struct {
	IntLl  int
	IntUl  int
	Reason string
}

func (e *ErrMalformedWindow) Error() string {
	return fmt.Sprintf("the integration window (%d, %d) is not well formed: %s", e.IntLl, e.IntUl, e.Reason)
}

// ErrAnalyserContract represents an analyser which does not satisfy the
// required call shape. Clause names the requirement which failed.
type ErrAnalyserContract struct {
	Name   string
	Clause string
}

func (e *ErrAnalyserContract) Error() string {
	return fmt.Sprintf("analyser %q does not satisfy the analyser contract: %s", e.Name, e.Clause)
}

// ErrFilterContract represents a waveform filter or selector which does not
// satisfy the required call shape.
type ErrFilterContract struct {
	Clause string
}

func (e *ErrFilterContract) Error() string {
	return fmt.Sprintf("the given waveform filter does not satisfy the filter contract: %s", e.Clause)
}

// ErrEmptyCollection represents an aggregation attempt over a waveform set
// with no waveforms.
type ErrEmptyCollection struct {
	Op string
}

func (e *ErrEmptyCollection) Error() string {
	return fmt.Sprintf("%s: there are no waveforms in this waveform set", e.Op)
}

// ErrEmptySelection represents a selection mode which yielded no usable
// waveforms.
type ErrEmptySelection struct {
	Reason string
}

func (e *ErrEmptySelection) Error() string {
	return fmt.Sprintf("empty selection: %s", e.Reason)
}

// ErrLabelTaken represents an attempt to attach an analysis under a label
// which already exists, without the overwrite flag.
type ErrLabelTaken struct {
	Label string
}

func (e *ErrLabelTaken) Error() string {
	return fmt.Sprintf("an analysis with label %q already exists and overwrite is not set", e.Label)
}

// ErrRange represents malformed fractional limits for a file read.
type ErrRange struct {
	Start float64
	Stop  float64
}

func (e *ErrRange) Error() string {
	return fmt.Sprintf("fraction limits (%g, %g) are not well formed", e.Start, e.Stop)
}

// ErrFormat represents an input file which lacks an expected group or
// dataset.
type ErrFormat struct {
	Filename string
	Missing  string
}

func (e *ErrFormat) Error() string {
	return fmt.Sprintf("%q not found in %q", e.Missing, e.Filename)
}

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}
