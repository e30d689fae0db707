package scan

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// airportPath is the undocumented location of the macOS scan tool.
const airportPath = "/System/Library/PrivateFrameworks/Apple80211.framework/Versions/Current/Resources/airport"

// ErrUnsupportedPlatform is returned by [SystemScanner.Scan] when no native
// scan tool is known for the current operating system.
var ErrUnsupportedPlatform = errors.New("no system wifi scanner for this platform")

// commandRunner executes a scan tool and returns its stdout. Replaced in
// tests to feed captured fixture output through the parsers.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// SystemScanner obtains snapshots from the operating system's native WiFi
// scan tool:
//
//   - linux: nmcli -f SSID,SIGNAL,CHAN,SECURITY dev wifi
//   - windows: netsh wlan show networks mode=Bssid
//   - darwin: airport -s
//
// Output parsing is tolerant: malformed lines are skipped rather than
// failing the whole snapshot. Tool failures (missing binary, non-zero exit,
// context deadline) surface as errors so the caller can fall back or report.
type SystemScanner struct {
	goos string
	run  commandRunner
}

var _ Scanner = (*SystemScanner)(nil)

// NewSystemScanner creates a [SystemScanner] for the current platform.
//
// Platform support is not checked at construction; an unsupported platform
// surfaces as [ErrUnsupportedPlatform] from Scan, which lets the caller wire
// a fallback scanner instead.
func NewSystemScanner() *SystemScanner {
	return &SystemScanner{
		goos: runtime.GOOS,
		run:  runCommand,
	}
}

// Scan runs the platform scan tool and parses its output.
func (s *SystemScanner) Scan(ctx context.Context) ([]Observation, error) {
	capturedAt := time.Now()

	switch s.goos {
	case "linux":
		out, err := s.run(ctx, "nmcli", "-f", "SSID,SIGNAL,CHAN,SECURITY", "dev", "wifi")
		if err != nil {
			return nil, fmt.Errorf("nmcli scan failed: %w", err)
		}
		return parseNmcli(out, capturedAt), nil

	case "windows":
		out, err := s.run(ctx, "netsh", "wlan", "show", "networks", "mode=Bssid")
		if err != nil {
			return nil, fmt.Errorf("netsh scan failed: %w", err)
		}
		return parseNetsh(out, capturedAt), nil

	case "darwin":
		out, err := s.run(ctx, airportPath, "-s")
		if err != nil {
			return nil, fmt.Errorf("airport scan failed: %w", err)
		}
		return parseAirport(out, capturedAt), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, s.goos)
	}
}

// runCommand executes a tool and returns its stdout. Stderr is folded into
// the error on failure so permission and driver problems stay visible in
// error events.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
