package main

import (
	"fmt"

	waffles "github.com/jurenag/waffles/pkg"
)

func printConfiguration(config waffles.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("Group name: %s", config.GroupName), "config")
	logger.Info(fmt.Sprintf("Fraction range: [%g, %g)", config.StartFraction, config.StopFraction), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Analysis label: %s", config.AnalysisLabel), "config")
	logger.Info(fmt.Sprintf("Analyser: %s", config.AnalyserName), "config")
	logger.Info(fmt.Sprintf("Baseline limits: %v", config.BaselineLimits), "config")
	logger.Info(fmt.Sprintf("Integration window: [%d, %d]", config.IntLl, config.IntUl), "config")
	logger.Info(fmt.Sprintf("Overwrite analyses: %t", config.Overwrite), "config")
	logger.Info(fmt.Sprintf("Grid: %d x %d", config.NRows, config.NCols), "config")
	logger.Info(fmt.Sprintf("Waveforms per axes: %d", config.WfsPerAxes), "config")
	logger.Info(fmt.Sprintf("Max waveforms per axes: %d", config.MaxWfsPerAxes), "config")
	logger.Info(fmt.Sprintf("Average: %t", config.Average), "config")
	logger.Info(fmt.Sprintf("Plot out: %s", config.PlotOut), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
}
