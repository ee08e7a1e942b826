package triage

import "strings"

// Severity tiers. Only the high tier forces a human handoff; the moderate
// tier is surfaced to the user but keeps the conversation automated.
const (
	SeverityBaseline = 1
	SeverityModerate = 3
	SeverityHigh     = 5

	// EscalateThreshold is the severity at which a conversation is
	// surfaced for a human claim.
	EscalateThreshold = 4
)

// SafetyNotice is shown to the user whenever severity is high, regardless
// of what else succeeded or failed on the request.
const SafetyNotice = "If you are in immediate danger, please contact your local emergency services right now."

// highRiskPhrases signal self-harm or suicidal ideation. Checked first:
// a high-risk match always wins, even when moderate phrases co-occur.
var highRiskPhrases = []string{
	"want to die",
	"kill myself",
	"killing myself",
	"end my life",
	"suicide",
	"suicidal",
	"hurt myself",
	"harm myself",
	"self-harm",
	"self harm",
	"no reason to live",
	"better off dead",
	"end it all",
	"don't want to be alive",
	"dont want to be alive",
}

// moderateRiskPhrases signal acute distress short of immediate danger:
// panic, hopelessness, abuse, acute anxiety.
var moderateRiskPhrases = []string{
	"panic attack",
	"panic",
	"can't breathe",
	"cant breathe",
	"hopeless",
	"worthless",
	"abuse",
	"abused",
	"abusing",
	"terrified",
	"anxious",
	"anxiety",
	"overwhelmed",
	"can't cope",
	"cant cope",
}

// Classify scores raw message text for psychological risk. It is a pure
// function, safe to call on every inbound user message: severity 5 for any
// high-risk phrase, else 3 for any moderate-risk phrase, else 1. Only
// severity >= EscalateThreshold escalates to a human responder.
func Classify(text string) (severity int, escalate bool) {
	normalized := strings.ToLower(text)

	for _, phrase := range highRiskPhrases {
		if strings.Contains(normalized, phrase) {
			return SeverityHigh, true
		}
	}
	for _, phrase := range moderateRiskPhrases {
		if strings.Contains(normalized, phrase) {
			return SeverityModerate, false
		}
	}
	return SeverityBaseline, false
}
