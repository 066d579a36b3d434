package waffles

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// PlotGrid renders an index grid as a PNG with one subplot per cell. When
// average is false every cell plots its waveforms as labelled traces; when
// average is true every non-empty cell plots the mean waveform of its
// indices instead, which also updates the set's cached mean.
func PlotGrid(ws *WaveformSet, grid [][][]int, average bool, filename string) error {
	nrows := len(grid)
	if nrows == 0 {
		return &ErrShape{Reason: "the grid must have at least one row"}
	}
	ncols := len(grid[0])
	for _, row := range grid {
		if len(row) != ncols {
			return &ErrShape{Reason: "every row of the grid must have the same number of cells"}
		}
	}
	if ncols == 0 {
		return &ErrShape{Reason: "the grid must have at least one column"}
	}

	plots := make([][]*plot.Plot, nrows)
	for i := range grid {
		plots[i] = make([]*plot.Plot, ncols)
		for j := range grid[i] {
			p, err := cellPlot(ws, grid[i][j], average)
			if err != nil {
				return fmt.Errorf("cell (%d, %d): %w", i, j, err)
			}
			plots[i][j] = p
		}
	}

	const cellSize = 4 * vg.Inch
	img := vgimg.New(vg.Length(ncols)*cellSize, vg.Length(nrows)*cellSize)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: nrows,
		Cols: ncols,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			if plots[i][j] != nil {
				plots[i][j].Draw(canvases[i][j])
			}
		}
	}

	w, err := os.Create(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	defer w.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("error writing plot to %q: %w", filename, err)
	}
	return nil
}

func cellPlot(ws *WaveformSet, idcs []int, average bool) (*plot.Plot, error) {
	p := plot.New()
	p.Y.Label.Text = "ADC"
	p.X.Label.Text = "Sample"
	if ws.pointsPerWf > 0 && len(ws.waveforms) > 0 && ws.waveforms[0].TimeStepNs > 0 {
		p.X.Label.Text = "Time (ns)"
	}

	if average {
		if len(idcs) == 0 {
			return p, nil
		}
		mean, err := ws.ComputeMeanWaveform(idcs, nil)
		if err != nil {
			return nil, err
		}
		line, err := plotter.NewLine(traceXYs(mean))
		if err != nil {
			return nil, err
		}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("Mean Wf [%s]", stringOfFirstIdcs(idcs, 3)), line)
		return p, nil
	}

	for _, k := range idcs {
		if !ws.IsValidIndex(k) {
			return nil, &ErrEmptySelection{Reason: fmt.Sprintf("index %d is not a valid waveform index", k)}
		}
		wf := ws.waveforms[k]
		line, err := plotter.NewLine(traceXYs(&wf.WaveformAdcs))
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(k)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("Wf %d, Ch %d, Ep %d", k, wf.Channel, wf.Endpoint), line)
	}
	return p, nil
}

func traceXYs(wf *WaveformAdcs) plotter.XYs {
	xys := make(plotter.XYs, len(wf.Adcs))
	for k, sample := range wf.Adcs {
		x := float64(k)
		if wf.TimeStepNs > 0 {
			x *= wf.TimeStepNs
		}
		xys[k].X = x
		xys[k].Y = sample
	}
	return xys
}

// stringOfFirstIdcs formats up to n leading indices of the list, appending
// ",..." when the list is longer.
func stringOfFirstIdcs(idcs []int, n int) string {
	out := ""
	for i := 0; i < len(idcs) && i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", idcs[i])
	}
	if len(idcs) > n {
		out += ",..."
	}
	return out
}
