package logging

// RedactToken shortens a credential so it can appear in debug output
// without being replayable. Tokens of 12 characters or fewer are fully
// masked.
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "[REDACTED]"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
