package waffles

import (
	"fmt"
	"reflect"
)

// DefaultMaxWfsPerAxes is the per-cell cap applied by GetGridOfWfIdcs when
// the caller does not choose one.
const DefaultMaxWfsPerAxes = 5

// MatchRun reports whether the waveform belongs to the given run.
func MatchRun(waveform *Waveform, run int) bool {
	return waveform.RunNumber == run
}

// MatchChannel reports whether the waveform comes from the given channel,
// regardless of the endpoint.
func MatchChannel(waveform *Waveform, channel int) bool {
	return waveform.Channel == channel
}

// MatchEndpointAndChannel reports whether the waveform comes from the given
// endpoint and channel.
func MatchEndpointAndChannel(waveform *Waveform, endpoint int, channel int) bool {
	return waveform.Endpoint == endpoint && waveform.Channel == channel
}

type waveformFilter func(waveform *Waveform, args []any) (bool, error)

// GetGridOfWfIdcs partitions the set into an nrows x ncols grid of waveform
// index lists, meant to drive a grid of plots.
//
// If wfsPerAxes is positive the grid is contiguous: cell [i][j] receives the
// wfsPerAxes consecutive indices starting at wfsPerAxes*(j + ncols*i),
// ignoring wfFilter. No check is made that the set actually holds that many
// waveforms; requesting a grid larger than the set is the caller's error.
//
// If wfsPerAxes is zero the grid is filtered: wfFilter must be a function
// whose first parameter is the waveform (*Waveform) and which returns a
// single bool, and filterArgs must be an nrows x ncols grid of per-cell
// argument lists. Cell [i][j] collects, in index order, the waveforms for
// which wfFilter(waveform, filterArgs[i][j]...) holds, stopping early once
// maxWfsPerAxes indices have been collected (zero selects
// DefaultMaxWfsPerAxes; a negative value removes the cap). A cell with fewer
// matches than the cap is not an error.
//
// When wfFilter is MatchRun or MatchEndpointAndChannel, cells whose target
// run or channel is absent from the set's precomputed Runs or
// AvailableChannels are skipped without scanning the set. The resulting grid
// is identical to the one the general path would produce.
func (ws *WaveformSet) GetGridOfWfIdcs(nrows int, ncols int, wfsPerAxes int, wfFilter any, filterArgs [][][]any, maxWfsPerAxes int) ([][][]int, error) {
	if nrows < 1 || ncols < 1 {
		return nil, &ErrShape{Reason: "the number of rows and columns must be positive"}
	}
	if wfsPerAxes < 0 {
		return nil, &ErrShape{Reason: "the number of waveforms per axes must be positive"}
	}

	if wfsPerAxes > 0 {
		return contiguousIdcsGrid(nrows, ncols, wfsPerAxes), nil
	}

	filter, err := checkFilterContract(wfFilter)
	if err != nil {
		return nil, err
	}
	if !gridOfListsIsWellFormed(filterArgs, nrows, ncols) {
		return nil, &ErrShape{Reason: fmt.Sprintf("the shape of the given filter arguments is not %d x %d", nrows, ncols)}
	}
	if maxWfsPerAxes == 0 {
		maxWfsPerAxes = DefaultMaxWfsPerAxes
	}

	grid := emptyIdcsGrid(nrows, ncols)
	switch funcIdentity(wfFilter) {
	case funcIdentity(MatchRun):
		err = ws.fillGridByRun(grid, filterArgs, maxWfsPerAxes)
	case funcIdentity(MatchEndpointAndChannel):
		err = ws.fillGridByEndpointAndChannel(grid, filterArgs, maxWfsPerAxes)
	default:
		err = ws.fillGridGeneral(grid, filter, filterArgs, maxWfsPerAxes)
	}
	if err != nil {
		return nil, err
	}
	return grid, nil
}

// checkFilterContract validates fn against the filter call shape: a function
// taking the waveform (*Waveform) first, possibly followed by further
// positional parameters, and returning a single bool. It returns a uniform
// reflective invoker for fn.
func checkFilterContract(fn any) (waveformFilter, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, &ErrFilterContract{Clause: "not a callable function"}
	}

	t := v.Type()
	if t.NumIn() < 1 || t.In(0) != reflect.TypeOf((*Waveform)(nil)) {
		return nil, &ErrFilterContract{Clause: "the first parameter must be the waveform (*Waveform)"}
	}
	if t.NumOut() != 1 || t.Out(0) != boolType {
		return nil, &ErrFilterContract{Clause: "the return type must be a single bool"}
	}

	return func(waveform *Waveform, args []any) (bool, error) {
		in, err := buildCallArgs(t, []reflect.Value{reflect.ValueOf(waveform)}, args)
		if err != nil {
			return false, err
		}
		return v.Call(in)[0].Bool(), nil
	}, nil
}

// funcIdentity gives a comparable identity for a function value, so that the
// fast paths trigger on the predicate itself rather than on its name.
func funcIdentity(fn any) uintptr {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return 0
	}
	return v.Pointer()
}

func (ws *WaveformSet) fillGridByRun(grid [][][]int, filterArgs [][][]any, maxWfsPerAxes int) error {
	for i := range grid {
		for j := range grid[i] {
			run, err := cellIntArg(filterArgs[i][j], 0, "run")
			if err != nil {
				return fmt.Errorf("cell (%d, %d): %w", i, j, err)
			}
			if _, ok := ws.runs[run]; !ok {
				continue
			}
			for k, wf := range ws.waveforms {
				if !MatchRun(wf, run) {
					continue
				}
				grid[i][j] = append(grid[i][j], k)
				if maxWfsPerAxes > 0 && len(grid[i][j]) == maxWfsPerAxes {
					break
				}
			}
		}
	}
	return nil
}

func (ws *WaveformSet) fillGridByEndpointAndChannel(grid [][][]int, filterArgs [][][]any, maxWfsPerAxes int) error {
	for i := range grid {
		for j := range grid[i] {
			endpoint, err := cellIntArg(filterArgs[i][j], 0, "endpoint")
			if err != nil {
				return fmt.Errorf("cell (%d, %d): %w", i, j, err)
			}
			channel, err := cellIntArg(filterArgs[i][j], 1, "channel")
			if err != nil {
				return fmt.Errorf("cell (%d, %d): %w", i, j, err)
			}

			channels, ok := ws.availableChannels[endpoint]
			if !ok {
				continue
			}
			if _, ok := channels[channel]; !ok {
				continue
			}
			for k, wf := range ws.waveforms {
				if !MatchEndpointAndChannel(wf, endpoint, channel) {
					continue
				}
				grid[i][j] = append(grid[i][j], k)
				if maxWfsPerAxes > 0 && len(grid[i][j]) == maxWfsPerAxes {
					break
				}
			}
		}
	}
	return nil
}

func (ws *WaveformSet) fillGridGeneral(grid [][][]int, filter waveformFilter, filterArgs [][][]any, maxWfsPerAxes int) error {
	for i := range grid {
		for j := range grid[i] {
			for k, wf := range ws.waveforms {
				match, err := filter(wf, filterArgs[i][j])
				if err != nil {
					return fmt.Errorf("cell (%d, %d): %w", i, j, err)
				}
				if !match {
					continue
				}
				grid[i][j] = append(grid[i][j], k)
				if maxWfsPerAxes > 0 && len(grid[i][j]) == maxWfsPerAxes {
					break
				}
			}
		}
	}
	return nil
}

func cellIntArg(args []any, pos int, name string) (int, error) {
	if pos >= len(args) {
		return 0, fmt.Errorf("missing %s argument", name)
	}
	value, ok := args[pos].(int)
	if !ok {
		return 0, fmt.Errorf("the %s argument must be an int, got %T", name, args[pos])
	}
	return value, nil
}

func emptyIdcsGrid(nrows int, ncols int) [][][]int {
	grid := make([][][]int, nrows)
	for i := range grid {
		grid[i] = make([][]int, ncols)
	}
	return grid
}

func contiguousIdcsGrid(nrows int, ncols int, idcsPerCell int) [][][]int {
	grid := make([][][]int, nrows)
	for i := range grid {
		grid[i] = make([][]int, ncols)
		for j := range grid[i] {
			cell := make([]int, idcsPerCell)
			for k := range cell {
				cell[k] = k + idcsPerCell*(j+ncols*i)
			}
			grid[i][j] = cell
		}
	}
	return grid
}

func gridOfListsIsWellFormed(grid [][][]any, nrows int, ncols int) bool {
	if len(grid) != nrows {
		return false
	}
	for _, row := range grid {
		if len(row) != ncols {
			return false
		}
	}
	return true
}
