package handlers

const (
	// Multipart framing and the small form fields around the uploaded script
	formOverheadBytes = 64 * 1024

	// Reported by /api/metrics
	apiVersion = "1.0.0"
)
