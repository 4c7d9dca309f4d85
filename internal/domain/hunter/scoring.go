package hunter

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Recommendation bands over the total score.
const (
	ApproveThreshold = 60
	ReviewThreshold  = 40
)

// Factor is one rubric line: its points and the human-readable reason.
type Factor struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Max    int    `json:"max"`
	Detail string `json:"detail"`
}

// Screening is the outcome of scoring one profile.
type Screening struct {
	Score      int      `json:"score"`
	Assessment string   `json:"assessment"`
	Factors    []Factor `json:"factors"`
}

// Score applies the additive rubric. Every factor is capped on its own, so the
// total stays within [0,100] and never decreases when one input grows.
//
// Text length stands in for depth on bio, past projects and certifications.
// That is a weak signal, kept as-is.
func Score(p *Profile) Screening {
	factors := []Factor{
		experience(p.YearsExperience),
		bio(length(p.Bio)),
		expertise(len(p.ExpertiseAreas)),
		links(p),
		resume(p.ResumePath),
		projects(length(p.PastProjects)),
		certifications(length(p.Certifications)),
	}

	total := 0
	lines := make([]string, 0, len(factors))
	for _, f := range factors {
		total += f.Points
		lines = append(lines, fmt.Sprintf("%s: %s (+%d)", f.Name, f.Detail, f.Points))
	}

	assessment := fmt.Sprintf("**AI Screening Score: %d/100**\n\n%s\n\n%s",
		total, strings.Join(lines, "\n"), Recommendation(total))

	return Screening{Score: total, Assessment: assessment, Factors: factors}
}

// Recommendation returns the banded verdict line for a total score.
func Recommendation(score int) string {
	switch {
	case score >= ApproveThreshold:
		return "Strong candidate: recommend approval."
	case score >= ReviewThreshold:
		return "Moderate profile: manual review of portfolio and projects."
	default:
		return "Weak profile: insufficient evidence of expertise."
	}
}

func length(s string) int { return utf8.RuneCountInString(s) }

func experience(years int) Factor {
	pts := min(max(years, 0)*2, 20)
	return Factor{Name: "Experience", Points: pts, Max: 20, Detail: fmt.Sprintf("%d years", years)}
}

func bio(n int) Factor {
	pts := tier(n, []int{200, 100, 50}, []int{15, 10, 5})
	return Factor{Name: "Bio quality", Points: pts, Max: 15, Detail: depth(pts, "detailed")}
}

func expertise(n int) Factor {
	pts := min(n*3, 15)
	return Factor{Name: "Expertise areas", Points: pts, Max: 15, Detail: fmt.Sprintf("%d selected", n)}
}

func links(p *Profile) Factor {
	n := 0
	for _, u := range []string{p.LinkedInURL, p.GitHubURL, p.PortfolioURL} {
		if strings.TrimSpace(u) != "" {
			n++
		}
	}
	return Factor{Name: "Portfolio links", Points: n * 5, Max: 15, Detail: fmt.Sprintf("%d provided", n)}
}

func resume(path string) Factor {
	if strings.TrimSpace(path) == "" {
		return Factor{Name: "Resume", Points: 0, Max: 10, Detail: "not uploaded"}
	}
	return Factor{Name: "Resume", Points: 10, Max: 10, Detail: "uploaded"}
}

func projects(n int) Factor {
	pts := tier(n, []int{300, 150, 50}, []int{15, 10, 5})
	return Factor{Name: "Past projects", Points: pts, Max: 15, Detail: depth(pts, "comprehensive")}
}

func certifications(n int) Factor {
	pts := tier(n, []int{100, 30}, []int{10, 5})
	detail := "provided"
	if n == 0 {
		detail = "not provided"
	}
	return Factor{Name: "Certifications", Points: pts, Max: 10, Detail: detail}
}

// tier returns points[i] for the first bound strictly exceeded, else 0.
// bounds must be descending.
func tier(n int, bounds, points []int) int {
	for i, b := range bounds {
		if n > b {
			return points[i]
		}
	}
	return 0
}

func depth(pts int, top string) string {
	switch {
	case pts > 10:
		return top
	case pts > 5:
		return "adequate"
	default:
		return "brief"
	}
}
