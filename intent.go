package maildraft

import "strings"

// Intent is a coarse classification of an email's purpose.
type Intent string

const (
	IntentOutreach           Intent = "outreach"
	IntentFollowUp           Intent = "follow_up"
	IntentApology            Intent = "apology"
	IntentInformationRequest Intent = "information_request"
	IntentThankYou           Intent = "thank_you"
	IntentMeetingRequest     Intent = "meeting_request"
	IntentStatusUpdate       Intent = "status_update"
	IntentIntroduction       Intent = "introduction"
	IntentNetworking         Intent = "networking"
	IntentComplaint          Intent = "complaint"

	// IntentUnknown is a valid label for requests no category fits.
	IntentUnknown Intent = "unknown"
)

// Intents lists the classifiable labels, excluding IntentUnknown.
var Intents = []Intent{
	IntentOutreach, IntentFollowUp, IntentApology, IntentInformationRequest,
	IntentThankYou, IntentMeetingRequest, IntentStatusUpdate,
	IntentIntroduction, IntentNetworking, IntentComplaint,
}

// NormalizeIntent maps free-form model output onto a label: exact match
// first, then containment, otherwise IntentUnknown.
func NormalizeIntent(s string) Intent {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "\"'`.")
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if s == "" {
		return IntentUnknown
	}
	for _, in := range Intents {
		if string(in) == s {
			return in
		}
	}
	if Intent(s) == IntentUnknown {
		return IntentUnknown
	}
	for _, in := range Intents {
		if strings.Contains(s, string(in)) || (len(s) >= 4 && strings.Contains(string(in), s)) {
			return in
		}
	}
	return IntentUnknown
}
