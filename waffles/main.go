package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	sqlx "github.com/jmoiron/sqlx"
	waffles "github.com/jurenag/waffles/pkg"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var dbConn *sqlx.DB
var configuration waffles.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = waffles.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return
	}
	waffles.SetConfiguration(configuration)
	waffles.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	start := time.Now()
	wfSet, err := waffles.ReadWaveformSet(configuration.FileIn, configuration.GroupName, configuration.StartFraction, configuration.StopFraction)
	if err != nil {
		message := fmt.Errorf("Error reading waveforms: %w", err)
		logger.Error(message.Error())
		return
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Read %d waveforms of %d points in %d ms",
			len(wfSet.Waveforms()), wfSet.PointsPerWf(), time.Since(start).Milliseconds())
		logger.Info(message, "main")
	}

	if !configuration.NoDB {
		dbConn, err = waffles.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
		if err != nil {
			message := fmt.Errorf("Error connection to database: %w", err)
			logger.Error(message.Error())
			return
		}
		defer dbConn.Close()

		if err := waffles.LoadChannelMap(dbConn, firstRun(wfSet)); err != nil {
			logger.Error(err.Error())
			return
		}
	}

	start = time.Now()
	_, err = wfSet.Analyse(configuration.AnalysisLabel, configuration.AnalyserName,
		configuration.BaselineLimits, nil, configuration.IntLl, configuration.IntUl,
		configuration.Overwrite)
	if err != nil {
		message := fmt.Errorf("Error analysing waveforms: %w", err)
		logger.Error(message.Error())
		return
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Analysed %d waveforms in %d ms",
			len(wfSet.Waveforms()), time.Since(start).Milliseconds())
		logger.Info(message, "main")
	}

	grid, err := buildGrid(wfSet)
	if err != nil {
		message := fmt.Errorf("Error partitioning waveforms: %w", err)
		logger.Error(message.Error())
		return
	}

	start = time.Now()
	err = waffles.PlotGrid(wfSet, grid, configuration.Average, configuration.PlotOut)
	if err != nil {
		message := fmt.Errorf("Error plotting waveforms: %w", err)
		logger.Error(message.Error())
		return
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Wrote %s in %d ms", configuration.PlotOut, time.Since(start).Milliseconds())
		logger.Info(message, "main")
	}
}

// buildGrid partitions the set for plotting. A positive wfs_per_axes selects
// contiguous index ranges; zero assigns one channel of the set to each cell,
// in endpoint then channel order.
func buildGrid(wfSet *waffles.WaveformSet) ([][][]int, error) {
	if configuration.WfsPerAxes > 0 {
		return wfSet.GetGridOfWfIdcs(configuration.NRows, configuration.NCols,
			configuration.WfsPerAxes, nil, nil, 0)
	}

	filterArgs := channelGridArgs(wfSet, configuration.NRows, configuration.NCols)
	return wfSet.GetGridOfWfIdcs(configuration.NRows, configuration.NCols, 0,
		waffles.MatchEndpointAndChannel, filterArgs, configuration.MaxWfsPerAxes)
}

// channelGridArgs lists the set's channels in endpoint then channel order as
// an nrows x ncols grid of MatchEndpointAndChannel arguments. Spare cells get
// an absent channel, so they stay empty.
func channelGridArgs(wfSet *waffles.WaveformSet, nrows int, ncols int) [][][]any {
	var targets [][]any
	endpoints := maps.Keys(wfSet.AvailableChannels())
	slices.Sort(endpoints)
	for _, endpoint := range endpoints {
		channels := maps.Keys(wfSet.AvailableChannels()[endpoint])
		slices.Sort(channels)
		for _, channel := range channels {
			targets = append(targets, []any{endpoint, channel})
		}
	}

	filterArgs := make([][][]any, nrows)
	next := 0
	for i := range filterArgs {
		filterArgs[i] = make([][]any, ncols)
		for j := range filterArgs[i] {
			if next < len(targets) {
				filterArgs[i][j] = targets[next]
				next++
			} else {
				filterArgs[i][j] = []any{-1, -1}
			}
		}
	}
	return filterArgs
}

func firstRun(wfSet *waffles.WaveformSet) int {
	runs := maps.Keys(wfSet.Runs())
	slices.Sort(runs)
	return runs[0]
}
