package predict

// Grade buckets a 0-100 quality percentage into the four dashboard labels.
func Grade(quality int) string {
	switch {
	case quality >= 80:
		return "Excellent"
	case quality >= 60:
		return "Good"
	case quality >= 40:
		return "Fair"
	default:
		return "Poor"
	}
}

// Recommendation returns the advice line shown alongside a prediction.
func Recommendation(quality int) string {
	switch {
	case quality >= 80:
		return "Excellent connection! Perfect for streaming and gaming."
	case quality >= 60:
		return "Good connection. Suitable for most online activities."
	case quality >= 40:
		return "Fair connection. May experience occasional slowdowns."
	default:
		return "Poor connection. Consider moving closer to the router."
	}
}
