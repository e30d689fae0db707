package scan

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// netsh prints one indented attribute block per network; these patterns pull
// the interesting fields out of each block.
var (
	netshSSID    = regexp.MustCompile(`SSID \d+ : (.+)`)
	netshBSSID   = regexp.MustCompile(`BSSID \d+\s*: ([0-9a-fA-F:]+)`)
	netshPercent = regexp.MustCompile(`(\d+)%`)
	netshAuth    = regexp.MustCompile(`Authentication\s+:\s+(.+)`)
	netshChannel = regexp.MustCompile(`Channel\s+:\s+(\d+)`)
)

// parseNmcli parses `nmcli -f SSID,SIGNAL,CHAN,SECURITY dev wifi` output.
//
// nmcli reports signal as a 0-100 percentage, converted to dBm here so all
// observations carry one unit. Missing columns fall back to neutral values
// rather than dropping the row.
func parseNmcli(out []byte, capturedAt time.Time) []Observation {
	var networks []Observation

	sc := bufio.NewScanner(bytes.NewReader(out))
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		quality := 50
		if q, err := strconv.Atoi(parts[1]); err == nil {
			quality = q
		}
		channel := 1
		if len(parts) > 2 {
			if c, err := strconv.Atoi(parts[2]); err == nil {
				channel = c
			}
		}
		security := "Unknown"
		if len(parts) > 3 {
			security = parts[3]
		}

		networks = append(networks, Observation{
			SSID:       parts[0],
			SignalDBm:  QualityToDBm(quality),
			Quality:    quality,
			Channel:    channel,
			Band:       BandLabel(channel),
			Security:   security,
			CapturedAt: capturedAt,
		})
	}

	return networks
}

// parseNetsh parses `netsh wlan show networks mode=Bssid` output.
//
// netsh prints one block per network starting with an "SSID n : name" line;
// the next SSID line (or end of output) closes the previous block. Signal is
// a percentage. Fields netsh omitted are filled with neutral defaults.
func parseNetsh(out []byte, capturedAt time.Time) []Observation {
	var networks []Observation
	var current *Observation

	flush := func() {
		if current == nil {
			return
		}
		// SignalDBm is never 0 when a percentage was seen (max is -30)
		if current.SignalDBm == 0 {
			current.Quality = 50
			current.SignalDBm = -70
		}
		if current.Security == "" {
			current.Security = "Unknown"
		}
		current.Band = BandLabel(current.Channel)
		networks = append(networks, *current)
		current = nil
	}

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		switch {
		case strings.HasPrefix(line, "SSID"):
			flush()
			if m := netshSSID.FindStringSubmatch(line); m != nil {
				if ssid := strings.TrimSpace(m[1]); ssid != "" {
					current = &Observation{SSID: ssid, CapturedAt: capturedAt}
				}
			}
		case current == nil:
			// interface preamble before the first SSID block
		case strings.HasPrefix(line, "BSSID"):
			if m := netshBSSID.FindStringSubmatch(line); m != nil && current.BSSID == "" {
				current.BSSID = m[1]
			}
		case strings.Contains(line, "Signal"):
			if m := netshPercent.FindStringSubmatch(line); m != nil {
				quality, _ := strconv.Atoi(m[1])
				current.Quality = quality
				current.SignalDBm = QualityToDBm(quality)
			}
		case strings.Contains(line, "Authentication"):
			if m := netshAuth.FindStringSubmatch(line); m != nil {
				current.Security = strings.TrimSpace(m[1])
			}
		case strings.Contains(line, "Channel"):
			if m := netshChannel.FindStringSubmatch(line); m != nil {
				current.Channel, _ = strconv.Atoi(m[1])
			}
		}
	}
	flush()

	return networks
}

// parseAirport parses `airport -s` output (columns: SSID BSSID RSSI CHANNEL
// HT CC SECURITY). RSSI is already in dBm. The channel column may carry a
// width suffix ("149,+1"), which is trimmed.
func parseAirport(out []byte, capturedAt time.Time) []Observation {
	var networks []Observation

	sc := bufio.NewScanner(bytes.NewReader(out))
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}

		rssi, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}

		channel := 1
		if len(parts) > 3 {
			raw, _, _ := strings.Cut(parts[3], ",")
			if c, err := strconv.Atoi(raw); err == nil {
				channel = c
			}
		}
		security := "Unknown"
		if len(parts) > 6 {
			security = parts[6]
		}

		networks = append(networks, Observation{
			SSID:       parts[0],
			BSSID:      parts[1],
			SignalDBm:  rssi,
			Quality:    Quality(rssi),
			Channel:    channel,
			Band:       BandLabel(channel),
			Security:   security,
			CapturedAt: capturedAt,
		})
	}

	return networks
}
