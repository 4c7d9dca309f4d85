package bounty

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Verdict is the analyzer's coarse publish-readiness label.
type Verdict string

const (
	VerdictReady        Verdict = "ready"
	VerdictNeedsWork    Verdict = "needs_work"
	VerdictInsufficient Verdict = "insufficient"
)

// Priority of a missing-info item.
type Priority string

const (
	PriorityCritical   Priority = "critical"
	PriorityImportant  Priority = "important"
	PriorityNiceToHave Priority = "nice_to_have"
)

// ReadyThreshold is the score every dimension must exceed for a "ready"
// verdict. The rubric targets ~60% of what a builder needs; do not raise it.
const ReadyThreshold = 60

// MissingInfoItem is one clarifying question the analyzer wants answered.
type MissingInfoItem struct {
	Field    string   `json:"field" validate:"required"`
	Question string   `json:"question" validate:"required"`
	Priority Priority `json:"priority" validate:"required,oneof=critical important nice_to_have"`
}

// AnalysisResult is the immutable output of one analyzer run.
type AnalysisResult struct {
	CompletenessScore float64           `json:"completeness_score"`
	ClarityScore      float64           `json:"clarity_score"`
	ScopabilityScore  float64           `json:"scopability_score"`
	Verdict           Verdict           `json:"verdict"`
	Summary           string            `json:"summary"`
	Strengths         []string          `json:"strengths"`
	MissingInfo       []MissingInfoItem `json:"missing_info"`
	Suggestions       []string          `json:"suggestions"`
}

// CriticalMissing returns the items tagged critical.
func (r AnalysisResult) CriticalMissing() []MissingInfoItem {
	var out []MissingInfoItem
	for _, m := range r.MissingInfo {
		if m.Priority == PriorityCritical {
			out = append(out, m)
		}
	}
	return out
}

// wireResult mirrors AnalysisResult with pointers so that absent keys are
// distinguishable from zero values.
type wireResult struct {
	CompletenessScore *float64          `json:"completeness_score" validate:"required,gte=0,lte=100"`
	ClarityScore      *float64          `json:"clarity_score" validate:"required,gte=0,lte=100"`
	ScopabilityScore  *float64          `json:"scopability_score" validate:"required,gte=0,lte=100"`
	Verdict           *string           `json:"verdict" validate:"required,oneof=ready needs_work insufficient"`
	Summary           *string           `json:"summary" validate:"required"`
	Strengths         []string          `json:"strengths" validate:"required"`
	MissingInfo       []MissingInfoItem `json:"missing_info" validate:"required,dive"`
	Suggestions       []string          `json:"suggestions" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(readyScores, wireResult{})
	return v
}

// readyScores rejects a "ready" verdict unless every score clears the threshold.
func readyScores(sl validator.StructLevel) {
	w := sl.Current().Interface().(wireResult)
	if w.Verdict == nil || Verdict(*w.Verdict) != VerdictReady {
		return
	}
	check := func(v *float64, field string) {
		if v != nil && *v <= ReadyThreshold {
			sl.ReportError(*v, field, field, "ready_gt60", "")
		}
	}
	check(w.CompletenessScore, "completeness_score")
	check(w.ClarityScore, "clarity_score")
	check(w.ScopabilityScore, "scopability_score")
}

// ParseAnalysis decodes and validates a structured verdict. Unknown keys,
// missing keys, out-of-range scores, unknown enums and a "ready" verdict with
// any score <= 60 are all rejected with ErrInvalidAnalysis. Nothing is coerced.
func ParseAnalysis(raw []byte) (AnalysisResult, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var w wireResult
	if err := dec.Decode(&w); err != nil {
		return AnalysisResult{}, fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return AnalysisResult{}, fmt.Errorf("%w: trailing data after object", ErrInvalidAnalysis)
	}
	if err := validate.Struct(w); err != nil {
		return AnalysisResult{}, fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}

	return AnalysisResult{
		CompletenessScore: *w.CompletenessScore,
		ClarityScore:      *w.ClarityScore,
		ScopabilityScore:  *w.ScopabilityScore,
		Verdict:           Verdict(*w.Verdict),
		Summary:           *w.Summary,
		Strengths:         w.Strengths,
		MissingInfo:       w.MissingInfo,
		Suggestions:       w.Suggestions,
	}, nil
}

// Validate re-checks an already decoded result against the same rules. A
// decoded struct cannot tell an absent list from an empty one, so nil lists
// count as empty here.
func (r AnalysisResult) Validate() error {
	if r.Strengths == nil {
		r.Strengths = []string{}
	}
	if r.MissingInfo == nil {
		r.MissingInfo = []MissingInfoItem{}
	}
	if r.Suggestions == nil {
		r.Suggestions = []string{}
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}
	_, err = ParseAnalysis(raw)
	return err
}
