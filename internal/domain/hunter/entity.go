package hunter

import (
	"fmt"
	"time"
)

// Status of a hunter application. Transitions happen through admin review,
// never through screening.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus converts a stored value to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown hunter status %q", s)
}

// Profile is a hunter's application. AIScore and AIAssessment are written
// only by the screener.
type Profile struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	FullName        string   `json:"full_name"`
	Title           string   `json:"title"`
	Bio             string   `json:"bio"`
	YearsExperience int      `json:"years_experience"`
	ExpertiseAreas  []string `json:"expertise_areas"`
	LinkedInURL     string   `json:"linkedin_url,omitempty"`
	GitHubURL       string   `json:"github_url,omitempty"`
	PortfolioURL    string   `json:"portfolio_url,omitempty"`
	ResumePath      string   `json:"resume_path,omitempty"`
	PastProjects    string   `json:"past_projects,omitempty"`
	Certifications  string   `json:"certifications,omitempty"`

	Status       Status  `json:"status"`
	AIScore      *int    `json:"ai_score"`
	AIAssessment *string `json:"ai_assessment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Screened reports whether the screener has annotated the profile.
func (p *Profile) Screened() bool { return p.AIScore != nil }
