package prompt

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/playground/bountyhub/internal/domain/bounty"
)

// ToolName is the function the model is forced to call.
const (
	ToolName        = "bounty_analysis"
	ToolDescription = "Return structured analysis of the bounty submission"
)

// GetSystemPrompt returns the fixed review rubric.
func GetSystemPrompt() string {
	return `You are a senior automation engineering consultant reviewing bounty submissions on a platform where businesses post automation challenges. Your job is to assess whether a bounty submission contains enough detail for an automation engineer to scope, estimate, and build the solution.

Analyze the submission and return a JSON object using the tool provided. Evaluate these dimensions:

1. **Completeness Score** (0-100): Overall how complete the submission is.
2. **Clarity Score** (0-100): How clearly the problem and desired outcome are articulated.
3. **Scopability Score** (0-100): Whether an engineer could write a statement of work from this.
4. **Overall Verdict**: "ready" | "needs_work" | "insufficient"
   - ready: Engineer can scope this now (all scores > 60)
   - needs_work: Has the core idea but missing a couple key details
   - insufficient: Too vague to even understand the problem
   Keep the bar LOW. A clear title + problem description + rough budget = "needs_work" at minimum.

5. **Strengths**: 1-2 things the submitter did well (be specific, reference their actual inputs).
6. **Missing Info**: Only the TOP 2-3 most critical gaps a builder absolutely needs to start scoping. Skip nice-to-haves. Keep questions short and easy to answer. For each:
   - field: which area it relates to
   - question: a specific, non-intimidating clarifying question
   - priority: "critical" | "important"
7. **Summary**: A 2-3 sentence executive summary of the bounty as you understand it.
8. **Suggestions**: 1-2 concrete suggestions to strengthen the bounty.

The goal is to get the builder ~60% of what they need to scope, not 100%. Builders figure out details during engagement.`
}

// GetUserPrompt renders every draft field, absent ones as "(not provided)".
func GetUserPrompt(d bounty.Draft) string {
	var b strings.Builder
	b.WriteString("Here is the bounty submission to analyze:\n\n")
	for _, f := range d.Fields() {
		fmt.Fprintf(&b, "**%s:** %s\n", f.Label, f.Value)
	}
	b.WriteString("\nAnalyze this submission thoroughly.")
	return b.String()
}

// Schema is the JSON schema of the bounty_analysis tool arguments.
func Schema() jsonschema.Definition {
	str := jsonschema.Definition{Type: jsonschema.String}
	num := jsonschema.Definition{Type: jsonschema.Number}
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"completeness_score": num,
			"clarity_score":      num,
			"scopability_score":  num,
			"verdict": {
				Type: jsonschema.String,
				Enum: []string{string(bounty.VerdictReady), string(bounty.VerdictNeedsWork), string(bounty.VerdictInsufficient)},
			},
			"summary":   str,
			"strengths": {Type: jsonschema.Array, Items: &str},
			"missing_info": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"field":    str,
						"question": str,
						"priority": {
							Type: jsonschema.String,
							Enum: []string{string(bounty.PriorityCritical), string(bounty.PriorityImportant), string(bounty.PriorityNiceToHave)},
						},
					},
					Required:             []string{"field", "question", "priority"},
					AdditionalProperties: false,
				},
			},
			"suggestions": {Type: jsonschema.Array, Items: &str},
		},
		Required:             RequiredFields(),
		AdditionalProperties: false,
	}
}

// RequiredFields lists the top-level keys every reply must carry.
func RequiredFields() []string {
	return []string{
		"completeness_score", "clarity_score", "scopability_score",
		"verdict", "summary", "strengths", "missing_info", "suggestions",
	}
}
