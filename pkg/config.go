package waffles

import (
	"encoding/json"
	"os"
)

type Configuration struct {
	FileIn         string  `json:"file_in"`
	GroupName      string  `json:"group_name"`
	StartFraction  float64 `json:"start_fraction"`
	StopFraction   float64 `json:"stop_fraction"`
	Verbosity      int     `json:"verbosity"`
	NoDB           bool    `json:"no_db"`
	Host           string  `json:"host"`
	User           string  `json:"user"`
	Passwd         string  `json:"pass"`
	DBName         string  `json:"dbname"`
	AnalysisLabel  string  `json:"analysis_label"`
	AnalyserName   string  `json:"analyser_name"`
	BaselineLimits []int   `json:"baseline_limits"`
	IntLl          int     `json:"int_ll"`
	IntUl          int     `json:"int_ul"`
	Overwrite      bool    `json:"overwrite"`
	NRows          int     `json:"nrows"`
	NCols          int     `json:"ncols"`
	WfsPerAxes     int     `json:"wfs_per_axes"`
	MaxWfsPerAxes  int     `json:"max_wfs_per_axes"`
	Average        bool    `json:"average"`
	PlotOut        string  `json:"plot_out"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

func LoadConfiguration(filename string) (Configuration, error) {
	var config Configuration

	// Set default values
	config.GroupName = "raw_waveforms"
	config.StartFraction = 0.0
	config.StopFraction = 1.0
	config.Verbosity = 0
	config.NoDB = false
	config.Host = "dune-db.cern.ch"
	config.User = "wafflesreader"
	config.Passwd = "readonly"
	config.DBName = "DAPHNE"
	config.AnalysisLabel = "standard"
	config.AnalyserName = "standard"
	config.IntLl = 0
	config.IntUl = -1
	config.NRows = 1
	config.NCols = 1
	config.WfsPerAxes = 1
	config.MaxWfsPerAxes = DefaultMaxWfsPerAxes
	config.PlotOut = "waveforms.png"

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}
