package security

// RedactString masks a sensitive value for logging, keeping just enough of the
// prefix to correlate log lines.
func RedactString(input string) string {
	if input == "" {
		return ""
	}
	if len(input) <= 8 {
		return "[REDACTED]"
	}
	return input[:4] + "...[REDACTED]"
}
