package scan

import (
	"context"
	"log/slog"
)

// FallbackScanner delegates to a primary scanner and switches to a fallback
// when the primary fails or sees nothing. This covers the platform tools'
// common failure modes: missing binary, disabled adapter, or an empty scan
// in a shielded environment.
type FallbackScanner struct {
	primary  Scanner
	fallback Scanner
	logger   *slog.Logger
}

var _ Scanner = (*FallbackScanner)(nil)

// NewFallbackScanner wraps primary with fallback. The logger records which
// path produced each snapshot at debug level.
func NewFallbackScanner(primary, fallback Scanner, logger *slog.Logger) *FallbackScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackScanner{primary: primary, fallback: fallback, logger: logger}
}

// Scan tries the primary scanner first. On error or an empty snapshot the
// fallback scanner is consulted and its result (or error) returned as-is.
func (f *FallbackScanner) Scan(ctx context.Context) ([]Observation, error) {
	networks, err := f.primary.Scan(ctx)
	if err == nil && len(networks) > 0 {
		return networks, nil
	}

	if err != nil {
		f.logger.Debug("primary scan failed, using fallback", "error", err)
	} else {
		f.logger.Debug("primary scan saw no networks, using fallback")
	}

	return f.fallback.Scan(ctx)
}
