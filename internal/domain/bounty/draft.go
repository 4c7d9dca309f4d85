package bounty

import (
	"fmt"
	"strconv"
	"strings"
)

// NotProvided is sent to the analyzer in place of any unfilled field so the
// rubric can penalize absence consistently.
const NotProvided = "(not provided)"

// Draft is the client-held bounty being composed. It has no identity until
// published.
type Draft struct {
	Title              string   `json:"title"`
	Industry           string   `json:"industry"`
	ProblemDescription string   `json:"problemDescription"`
	CurrentProcess     string   `json:"currentProcess"`
	PainFrequency      string   `json:"painFrequency"`
	HoursWasted        *float64 `json:"hoursWasted"`
	AnnualCost         *float64 `json:"annualCost"`
	PainDescription    string   `json:"painDescription"`
	DesiredOutcome     string   `json:"desiredOutcome"`
	AcceptanceCriteria string   `json:"acceptanceCriteria"`
	ToolPreferences    string   `json:"toolPreferences"`
	BountyAmount       *float64 `json:"bountyAmount"`
	PaymentStructure   string   `json:"paymentStructure"`
	Urgency            string   `json:"urgency"`
	Deadline           string   `json:"deadline"`
	AdditionalNotes    string   `json:"additionalNotes"`
}

// Field is one labelled line of the draft as presented to the analyzer.
type Field struct {
	Label string
	Value string
}

// Fields lists every draft field in rubric order with absent values replaced
// by NotProvided. Money fields carry a "$" prefix.
func (d Draft) Fields() []Field {
	return []Field{
		{"Title", text(d.Title)},
		{"Industry", text(d.Industry)},
		{"Problem Description", text(d.ProblemDescription)},
		{"Current Process", text(d.CurrentProcess)},
		{"Pain Frequency", text(d.PainFrequency)},
		{"Hours Wasted/Week", number(d.HoursWasted)},
		{"Estimated Annual Cost", "$" + number(d.AnnualCost)},
		{"Pain Impact", text(d.PainDescription)},
		{"Desired Outcome", text(d.DesiredOutcome)},
		{"Acceptance Criteria", text(d.AcceptanceCriteria)},
		{"Tool Preferences", text(d.ToolPreferences)},
		{"Bounty Amount", "$" + number(d.BountyAmount)},
		{"Payment Structure", text(d.PaymentStructure)},
		{"Urgency", text(d.Urgency)},
		{"Deadline", text(d.Deadline)},
		{"Additional Notes", text(d.AdditionalNotes)},
	}
}

func text(s string) string {
	if s == "" {
		return NotProvided
	}
	return s
}

func number(f *float64) string {
	if f == nil {
		return NotProvided
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// CheckPublishable verifies the fields every persisted bounty must carry.
func (d Draft) CheckPublishable() error {
	switch {
	case strings.TrimSpace(d.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidDraft)
	case strings.TrimSpace(d.ProblemDescription) == "":
		return fmt.Errorf("%w: problem description is required", ErrInvalidDraft)
	case d.BountyAmount != nil && *d.BountyAmount < 0:
		return fmt.Errorf("%w: bounty amount cannot be negative", ErrInvalidDraft)
	}
	return nil
}
