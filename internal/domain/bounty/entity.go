package bounty

import "time"

// ID identifier type
type ID string

// Status of a persisted bounty. Only "open" is set here; later states are
// owned by the application/agreement workflows.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Bounty is the persisted row: the draft plus owner, status and the
// analyzer's scores and summary denormalized for listing.
type Bounty struct {
	ID      ID     `json:"id"`
	OwnerID string `json:"user_id"`
	Status  Status `json:"status"`

	Title              string   `json:"title"`
	Industry           string   `json:"industry,omitempty"`
	ProblemDescription string   `json:"problem_description"`
	CurrentProcess     string   `json:"current_process,omitempty"`
	PainFrequency      string   `json:"pain_frequency,omitempty"`
	HoursWasted        *float64 `json:"hours_wasted,omitempty"`
	AnnualCost         *float64 `json:"annual_cost,omitempty"`
	PainDescription    string   `json:"pain_description,omitempty"`
	DesiredOutcome     string   `json:"desired_outcome,omitempty"`
	AcceptanceCriteria string   `json:"acceptance_criteria,omitempty"`
	ToolPreferences    string   `json:"tool_preferences,omitempty"`
	BountyAmount       float64  `json:"bounty_amount"`
	PaymentStructure   string   `json:"payment_structure,omitempty"`
	Urgency            string   `json:"urgency,omitempty"`
	Deadline           string   `json:"deadline,omitempty"`
	AdditionalNotes    string   `json:"additional_notes,omitempty"`

	AISummary           string  `json:"ai_summary"`
	AICompletenessScore float64 `json:"ai_completeness_score"`
	AIClarityScore      float64 `json:"ai_clarity_score"`
	AIScopabilityScore  float64 `json:"ai_scopability_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New merges a draft with its analysis into an open bounty. The draft is
// taken by value and left untouched.
func New(id ID, ownerID string, d Draft, r AnalysisResult, now time.Time) *Bounty {
	b := &Bounty{
		ID:      id,
		OwnerID: ownerID,
		Status:  StatusOpen,

		Title:              d.Title,
		Industry:           d.Industry,
		ProblemDescription: d.ProblemDescription,
		CurrentProcess:     d.CurrentProcess,
		PainFrequency:      d.PainFrequency,
		HoursWasted:        copyFloat(d.HoursWasted),
		AnnualCost:         copyFloat(d.AnnualCost),
		PainDescription:    d.PainDescription,
		DesiredOutcome:     d.DesiredOutcome,
		AcceptanceCriteria: d.AcceptanceCriteria,
		ToolPreferences:    d.ToolPreferences,
		PaymentStructure:   d.PaymentStructure,
		Urgency:            d.Urgency,
		Deadline:           d.Deadline,
		AdditionalNotes:    d.AdditionalNotes,

		AISummary:           r.Summary,
		AICompletenessScore: r.CompletenessScore,
		AIClarityScore:      r.ClarityScore,
		AIScopabilityScore:  r.ScopabilityScore,

		CreatedAt: now,
		UpdatedAt: now,
	}
	if d.BountyAmount != nil {
		b.BountyAmount = *d.BountyAmount
	}
	return b
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
