package config

import (
	"github.com/jpalmerr/wifiboard"
)

// BuildOptions converts parsed configuration into SDK options for
// [wifiboard.New].
//
// Fields still at their zero value after [Parse] fall through to the SDK
// defaults. The log_file field is not mapped: log routing is wired by the
// caller, which owns the logger.
func BuildOptions(cfg *Config) []wifiboard.Option {
	opts := []wifiboard.Option{
		wifiboard.WithPort(cfg.Port),
		wifiboard.WithScanInterval(cfg.ScanInterval.Duration()),
		wifiboard.WithScanTimeout(cfg.ScanTimeout.Duration()),
		wifiboard.WithHistorySize(cfg.HistorySize),
	}

	if cfg.Title != "" {
		opts = append(opts, wifiboard.WithTitle(cfg.Title))
	}

	// auto is the SDK default and needs no option
	switch cfg.Scanner {
	case ScannerSystem:
		opts = append(opts, wifiboard.WithSystemScanner())
	case ScannerSimulated:
		opts = append(opts, wifiboard.WithSimulatedScanner())
	}

	if cfg.ModelFile != "" {
		opts = append(opts, wifiboard.WithModelFile(cfg.ModelFile))
	}
	if cfg.SurveyDB != "" {
		opts = append(opts,
			wifiboard.WithSurveyDB(cfg.SurveyDB),
			wifiboard.WithKNNNeighbors(cfg.KNNNeighbors),
		)
	}

	if cfg.Autostart {
		opts = append(opts, autostartOption(cfg))
	}

	return opts
}

// autostartOption translates mode and track into the matching autostart
// option. Without autostart, track is not mapped: monitoring started later
// from the dashboard picks its own selection.
func autostartOption(cfg *Config) wifiboard.Option {
	if cfg.Mode == ModeSingle {
		if len(cfg.Track) == 1 {
			return wifiboard.WithAutostartTarget(cfg.Track[0])
		}
		// single mode with no explicit target tracks every visible
		// network until one is selected
		return wifiboard.WithAutostart()
	}
	return wifiboard.WithAutostartTargets(cfg.Track...)
}
