package triage

// Reply returns the scripted assistant response for a severity tier. These
// are fixed, reviewed texts, not generated content; the high tier always
// carries the emergency safety notice.
func Reply(severity int) string {
	switch {
	case severity >= SeverityHigh:
		return "I'm really concerned about what you just shared. You deserve immediate support, and I'm connecting you with a human psychologist now. " + SafetyNotice
	case severity >= SeverityModerate:
		return "That sounds really hard, and what you're feeling matters. Try to take a slow breath with me. I'm here, and if it would help, you can request a call with one of our psychologists at any time."
	default:
		return "Thanks for sharing that with me. I'm listening - tell me more about how your day has been."
	}
}
