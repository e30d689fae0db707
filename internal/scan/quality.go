package scan

import "fmt"

// Quality converts a signal strength in dBm to a 0-100 quality percentage.
//
// The mapping is linear between -90 dBm (0%) and -30 dBm (100%) and clamped
// outside that range, so it is monotonic non-decreasing in signal strength.
func Quality(dbm int) int {
	return QualityFloat(float64(dbm))
}

// QualityFloat is [Quality] for fractional dBm values such as model output.
func QualityFloat(dbm float64) int {
	switch {
	case dbm >= -30:
		return 100
	case dbm <= -90:
		return 0
	default:
		return int((dbm + 90) / 60 * 100)
	}
}

// QualityToDBm approximately inverts [Quality]. It is used for platform
// tools (nmcli, netsh) that report signal as a percentage rather than dBm.
func QualityToDBm(quality int) int {
	return int(-90 + float64(quality)/100*60)
}

// BandLabel derives the human-readable band label from a channel number.
//
// Channels 1-14 are 2.4 GHz, 36-165 are 5 GHz. Channel 0 (unknown) yields
// "N/A"; anything else yields "Unknown".
func BandLabel(channel int) string {
	switch {
	case channel <= 0:
		return "N/A"
	case channel <= 14:
		return fmt.Sprintf("2.4 GHz (Ch %d)", channel)
	case channel >= 36 && channel <= 165:
		return fmt.Sprintf("5 GHz (Ch %d)", channel)
	default:
		return "Unknown"
	}
}
