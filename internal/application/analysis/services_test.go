package analysis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playground/bountyhub/internal/application/analysis"
	"github.com/playground/bountyhub/internal/domain/ai"
	"github.com/playground/bountyhub/internal/domain/bounty"
)

type fakeClient struct {
	raw   string
	err   error
	calls int
	seen  []bounty.Draft
}

func (f *fakeClient) AnalyzeBounty(_ context.Context, d bounty.Draft) ([]byte, error) {
	f.calls++
	f.seen = append(f.seen, d)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.raw), nil
}

func f64(v float64) *float64 { return &v }

const sparseReply = `{"completeness_score":25,"clarity_score":55,"scopability_score":20,"verdict":"needs_work",
"summary":"Wants lead scraping automated.","strengths":["Clear problem statement"],
"missing_info":[{"field":"desired_outcome","question":"What should happen to the leads once collected?","priority":"critical"},
{"field":"current_process","question":"Which sites do you pull leads from today?","priority":"important"}],
"suggestions":["Describe the output format you need."]}`

const fullReply = `{"completeness_score":86,"clarity_score":90,"scopability_score":78,"verdict":"ready",
"summary":"Automate weekly Stripe to QuickBooks payout reconciliation with Slack exceptions.",
"strengths":["Measurable acceptance criteria","Quantified cost"],
"missing_info":[{"field":"volume","question":"Roughly how many payouts per week?","priority":"nice_to_have"}],
"suggestions":["Attach a sample export."]}`

func TestAnalyze_SparseDraftIsBlocked(t *testing.T) {
	client := &fakeClient{raw: sparseReply}
	svc := analysis.NewService(client)
	draft := bounty.Draft{Title: "Scrape leads", ProblemDescription: "We copy leads by hand.", BountyAmount: f64(300)}

	r, err := svc.Analyze(context.Background(), draft)
	require.NoError(t, err)

	assert.Contains(t, []bounty.Verdict{bounty.VerdictNeedsWork, bounty.VerdictInsufficient}, r.Verdict)
	assert.NotEmpty(t, r.CriticalMissing())
	assert.False(t, bounty.CanPublish(r))
}

func TestAnalyze_FullDraftIsPublishable(t *testing.T) {
	svc := analysis.NewService(&fakeClient{raw: fullReply})

	r, err := svc.Analyze(context.Background(), bounty.Draft{Title: "Reconcile payouts"})
	require.NoError(t, err)

	assert.Equal(t, bounty.VerdictReady, r.Verdict)
	assert.Greater(t, r.CompletenessScore, 60.0)
	assert.Greater(t, r.ClarityScore, 60.0)
	assert.Greater(t, r.ScopabilityScore, 60.0)
	assert.True(t, bounty.CanPublish(r))
}

func TestAnalyze_BackendErrorsPassThrough(t *testing.T) {
	for _, reason := range []error{ai.ErrRateLimited, ai.ErrQuotaExhausted, ai.ErrUpstreamFailure} {
		t.Run(reason.Error(), func(t *testing.T) {
			client := &fakeClient{err: &ai.AnalysisError{Reason: reason, Err: errors.New("upstream")}}
			svc := analysis.NewService(client)

			r, err := svc.Analyze(context.Background(), bounty.Draft{Title: "x"})
			assert.ErrorIs(t, err, reason)
			assert.Equal(t, bounty.AnalysisResult{}, r)
			assert.Equal(t, 1, client.calls, "no local retry")
		})
	}
}

func TestAnalyze_MalformedReplies(t *testing.T) {
	cases := map[string]string{
		"prose":            "The bounty looks good to me.",
		"ready with a 40":  `{"completeness_score":40,"clarity_score":90,"scopability_score":90,"verdict":"ready","summary":"s","strengths":[],"missing_info":[],"suggestions":[]}`,
		"missing verdict":  `{"completeness_score":40,"clarity_score":90,"scopability_score":90,"summary":"s","strengths":[],"missing_info":[],"suggestions":[]}`,
		"truncated object": `{"completeness_score":40,"clarity_score":`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			svc := analysis.NewService(&fakeClient{raw: raw})
			_, err := svc.Analyze(context.Background(), bounty.Draft{})
			assert.ErrorIs(t, err, ai.ErrMalformedResponse)
			assert.Equal(t, "malformed_response", ai.ReasonCode(err))
		})
	}
}

func TestAnalyze_DoesNotMutateDraft(t *testing.T) {
	client := &fakeClient{raw: fullReply}
	svc := analysis.NewService(client)
	draft := bounty.Draft{Title: "Reconcile payouts", HoursWasted: f64(6)}
	before := draft

	_, err1 := svc.Analyze(context.Background(), draft)
	_, err2 := svc.Analyze(context.Background(), draft)
	require.NoError(t, err1)
	require.NoError(t, err2)

	assert.Equal(t, before, draft)
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, client.seen[0], client.seen[1])
}
