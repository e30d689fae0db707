package survey

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/wifiboard/internal/scan"
)

const (
	defaultScansPerPoint = 3
	defaultDelay         = 2 * time.Second
	defaultScanTimeout   = 10 * time.Second
)

// CollectorConfig tunes a Collector. Zero values fall back to 3 passes per
// location, a 2s pause between passes, and a 10s scan timeout.
type CollectorConfig struct {
	ScansPerPoint int
	Delay         time.Duration
	Timeout       time.Duration
}

// Collector walks survey locations and persists what it sees there.
// Several passes per location smooth out the jitter of individual scans.
type Collector struct {
	logger  *slog.Logger
	scanner scan.Scanner
	store   *Store
	cfg     CollectorConfig
}

// NewCollector builds a Collector writing to store. scanner and store must
// be non-nil; a nil logger falls back to slog.Default.
func NewCollector(logger *slog.Logger, scanner scan.Scanner, store *Store, cfg CollectorConfig) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ScansPerPoint <= 0 {
		cfg.ScansPerPoint = defaultScansPerPoint
	}
	if cfg.Delay <= 0 {
		cfg.Delay = defaultDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultScanTimeout
	}
	return &Collector{logger: logger, scanner: scanner, store: store, cfg: cfg}
}

// CollectAt performs the configured number of scan passes at loc and stores
// every observation. It returns the number of samples stored, which may be
// nonzero even on error when earlier passes succeeded.
func (c *Collector) CollectAt(ctx context.Context, loc Location) (int, error) {
	total := 0
	for pass := 1; pass <= c.cfg.ScansPerPoint; pass++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		scanCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		obs, err := c.scanner.Scan(scanCtx)
		cancel()
		if err != nil {
			return total, fmt.Errorf("scan at %s pass %d: %w", loc, pass, err)
		}
		if len(obs) == 0 {
			c.logger.Warn("no networks found", "location", loc.String(), "pass", pass)
		}

		samples := make([]Sample, len(obs))
		for i, o := range obs {
			samples[i] = Sample{Observation: o, Location: loc, ScanNumber: pass}
		}
		if err := c.store.Insert(ctx, samples); err != nil {
			return total, err
		}
		total += len(samples)
		c.logger.Info("survey pass stored",
			"location", loc.String(),
			"pass", pass,
			"networks", len(obs),
		)

		if pass < c.cfg.ScansPerPoint {
			select {
			case <-time.After(c.cfg.Delay):
			case <-ctx.Done():
				return total, ctx.Err()
			}
		}
	}
	return total, nil
}

// CollectGrid surveys a rows x cols grid with the given spacing, visiting
// points row by row.
func (c *Collector) CollectGrid(ctx context.Context, rows, cols int, spacing float64) (int, error) {
	points, err := GridPoints(rows, cols, spacing)
	if err != nil {
		return 0, err
	}

	total := 0
	for i, loc := range points {
		n, err := c.CollectAt(ctx, loc)
		total += n
		if err != nil {
			return total, err
		}
		c.logger.Info("grid progress", "visited", i+1, "total", len(points))
	}
	return total, nil
}
