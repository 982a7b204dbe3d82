package matcher

import "strings"

// Status is a recognised candidate status. Raw values from the candidate
// store are free text; ParseStatus maps them onto this set at the boundary.
type Status int

const (
	StatusUnrecognized Status = iota

	// active pipeline
	StatusInitialScreening
	StatusSentToClient
	StatusCodePairing
	StatusTechnicalRound
	StatusTechAssessment
	StatusTechnicalAssessment
	StatusInterviewScheduled
	StatusInterviewRound
	StatusInterviewCompleted
	StatusSelected
	StatusFinalRound
	StatusOfferExtended
	StatusOfferAccepted
	StatusStaffed

	// exits
	StatusScreenRejected
	StatusRejected
	StatusCandidateRNRDropped
	StatusRequirementOnHold
	StatusOnHold
	StatusInternalDropped
	StatusDuplicateProfile
	StatusDropped
)

var statusNames = map[Status]string{
	StatusUnrecognized:        "Unrecognized",
	StatusInitialScreening:    "Initial Screening",
	StatusSentToClient:        "Sent to client",
	StatusCodePairing:         "Code Pairing",
	StatusTechnicalRound:      "Technical Round",
	StatusTechAssessment:      "Tech Assessment",
	StatusTechnicalAssessment: "Technical Assessment",
	StatusInterviewScheduled:  "Interview Scheduled",
	StatusInterviewRound:      "Interview Round",
	StatusInterviewCompleted:  "Interview Completed",
	StatusSelected:            "Selected",
	StatusFinalRound:          "Final Round",
	StatusOfferExtended:       "Offer Extended",
	StatusOfferAccepted:       "Offer Accepted",
	StatusStaffed:             "Staffed",
	StatusScreenRejected:      "Screen Rejected",
	StatusRejected:            "Rejected",
	StatusCandidateRNRDropped: "Candidate RNR/Dropped",
	StatusRequirementOnHold:   "Requirement on hold",
	StatusOnHold:              "On Hold",
	StatusInternalDropped:     "Internal Dropped",
	StatusDuplicateProfile:    "Duplicate Profile",
	StatusDropped:             "Dropped",
}

var statusByKey = func() map[string]Status {
	m := make(map[string]Status, len(statusNames))
	for s, name := range statusNames {
		if s != StatusUnrecognized {
			m[normalize(name)] = s
		}
	}
	// spellings seen in ATS exports
	m["on boarded"] = StatusStaffed
	m["onboarded"] = StatusStaffed
	m["tech round"] = StatusTechnicalRound
	return m
}()

// rejection statuses, counted by CountRejected
var rejectionStatuses = newStatusSet(
	StatusScreenRejected, StatusRejected, StatusCandidateRNRDropped,
	StatusOnHold, StatusInternalDropped, StatusDuplicateProfile,
)

// exited = dropped ∪ rejected ∪ on-hold, counted by CountExited
var exitedStatuses = newStatusSet(
	StatusDropped, StatusRejected, StatusOnHold, StatusScreenRejected,
	StatusCandidateRNRDropped, StatusInternalDropped,
)

// exitStatuses can never sit in an active stage bucket.
var exitStatuses = newStatusSet(
	StatusScreenRejected, StatusRejected, StatusCandidateRNRDropped, StatusRequirementOnHold,
	StatusOnHold, StatusInternalDropped, StatusDuplicateProfile, StatusDropped,
)

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ParseStatus maps a raw status string onto a Status. Matching ignores case
// and repeated whitespace; anything else is StatusUnrecognized.
func ParseStatus(raw string) Status {
	if s, ok := statusByKey[normalize(raw)]; ok {
		return s
	}
	return StatusUnrecognized
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusUnrecognized]
}

// IsExit reports whether s ends a candidate's process.
func (s Status) IsExit() bool { return exitStatuses[s] }

// Statuses lists every recognised status in declaration order.
func Statuses() []Status {
	out := make([]Status, 0, len(statusNames)-1)
	for s := StatusInitialScreening; s <= StatusDropped; s++ {
		out = append(out, s)
	}
	return out
}

type statusSet map[Status]bool

func newStatusSet(statuses ...Status) statusSet {
	set := make(statusSet, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}
