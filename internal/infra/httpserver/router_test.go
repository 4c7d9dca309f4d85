package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playground/bountyhub/internal/application/analysis"
	"github.com/playground/bountyhub/internal/application/bounties"
	"github.com/playground/bountyhub/internal/application/hunters"
	"github.com/playground/bountyhub/internal/domain/ai"
	"github.com/playground/bountyhub/internal/domain/bounty"
	"github.com/playground/bountyhub/internal/domain/hunter"
	"github.com/playground/bountyhub/internal/domain/store"
	"github.com/playground/bountyhub/internal/infra/httpserver"
	"github.com/playground/bountyhub/internal/infra/queue"
)

const bountyID = "8f14e45f-ceea-467f-a8d6-2f1c2b3a4d5e"

// ---- fakes ----

type aiClient struct {
	raw   []byte
	err   error
	calls atomic.Int32
}

func (c *aiClient) AnalyzeBounty(context.Context, bounty.Draft) ([]byte, error) {
	c.calls.Add(1)
	return c.raw, c.err
}

type bountyRepo struct {
	mu   sync.Mutex
	rows []*bounty.Bounty
	err  error
}

func (r *bountyRepo) Insert(_ context.Context, b *bounty.Bounty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, b)
	return nil
}

func (r *bountyRepo) Get(_ context.Context, id bounty.ID) (*bounty.Bounty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.rows {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *bountyRepo) ListOpen(_ context.Context, limit int) ([]*bounty.Bounty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*bounty.Bounty(nil), r.rows...), nil
}

type profileRepo struct {
	mu     sync.Mutex
	byUser map[string]*hunter.Profile
}

func (r *profileRepo) Insert(_ context.Context, p *hunter.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[p.UserID] = p
	return nil
}

func (r *profileRepo) GetByUser(_ context.Context, userID string) (*hunter.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byUser[userID]; ok {
		return p, nil
	}
	return nil, store.ErrNotFound
}

func (r *profileRepo) UpdateScreening(_ context.Context, userID string, score int, assessment string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.byUser[userID]
	p.AIScore, p.AIAssessment = &score, &assessment
	return nil
}

func (r *profileRepo) ListUnscreened(context.Context, time.Time, int) ([]*hunter.Profile, error) {
	return nil, nil
}

type resumeStore struct{ keys []string }

func (s *resumeStore) PutResume(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	s.keys = append(s.keys, key)
	return key, nil
}

type fixedIDs struct{}

func (fixedIDs) NewID() string { return bountyID }

type clock struct{}

func (clock) Now() time.Time { return time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC) }

type env struct {
	srv      *httptest.Server
	ai       *aiClient
	bounties *bountyRepo
	profiles *profileRepo
	resumes  *resumeStore
	queue    *queue.Memory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		ai:       &aiClient{},
		bounties: &bountyRepo{},
		profiles: &profileRepo{byUser: map[string]*hunter.Profile{}},
		resumes:  &resumeStore{},
		queue:    queue.NewMemory(8),
	}
	h := httpserver.NewRouter(httpserver.Deps{
		Analysis: analysis.NewService(e.ai),
		Bounties: &bounties.Service{Repo: e.bounties, Clock: clock{}, IDs: fixedIDs{}},
		Hunters: &hunters.Service{
			Profiles: e.profiles,
			Resumes:  e.resumes,
			Queue:    e.queue,
			Clock:    clock{},
			IDs:      fixedIDs{},
		},
		CORSOrigins: []string{"https://app.example.com"},
	})
	e.srv = httptest.NewServer(h)
	t.Cleanup(e.srv.Close)
	return e
}

func (e *env) post(t *testing.T, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(e.srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp, decode(t, resp)
}

func (e *env) get(t *testing.T, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	require.NoError(t, err)
	return resp, decode(t, resp)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

const readyJSON = `{"completeness_score":85,"clarity_score":88,"scopability_score":74,"verdict":"ready",
"summary":"Automate weekly payout reconciliation.","strengths":["clear"],"missing_info":[],"suggestions":[]}`

const blockedJSON = `{"completeness_score":50,"clarity_score":70,"scopability_score":40,"verdict":"needs_work",
"summary":"s","strengths":[],"missing_info":[{"field":"desired_outcome","question":"What does done look like?","priority":"critical"}],"suggestions":[]}`

func draft() map[string]any {
	return map[string]any{"title": "Reconcile payouts", "problemDescription": "Manual matching.", "bountyAmount": 2500}
}

// ---- analyze ----

func TestAnalyze_Success(t *testing.T) {
	e := newEnv(t)
	e.ai.raw = []byte(readyJSON)

	resp, body := e.post(t, "/analyze-bounty", map[string]any{"bountyData": draft()})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	a := body["analysis"].(map[string]any)
	assert.Equal(t, "ready", a["verdict"])
	assert.Equal(t, 74.0, a["scopability_score"])
}

func TestAnalyze_ErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		raw    string
		status int
		reason string
	}{
		{"rate limited", ai.Classify(429, assert.AnError), "", http.StatusTooManyRequests, "rate_limited"},
		{"quota", ai.Classify(402, assert.AnError), "", http.StatusPaymentRequired, "quota_exhausted"},
		{"upstream", ai.Classify(503, assert.AnError), "", http.StatusInternalServerError, "upstream_failure"},
		{"malformed", nil, `{"verdict":"ready"}`, http.StatusInternalServerError, "malformed_response"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := newEnv(t)
			e.ai.err, e.ai.raw = c.err, []byte(c.raw)

			resp, body := e.post(t, "/analyze-bounty", map[string]any{"bountyData": draft()})
			assert.Equal(t, c.status, resp.StatusCode)
			assert.Equal(t, c.reason, body["reason"])
			assert.NotEmpty(t, body["error"])
			assert.Nil(t, body["analysis"])
		})
	}
}

func TestAnalyze_BadBody(t *testing.T) {
	cases := map[string]struct {
		body string
		msg  string
	}{
		"empty object": {`{}`, "bountyData is required"},
		"not json":     {`not json`, "invalid JSON body"},
		"empty body":   {``, "request body is empty"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t)
			resp, err := http.Post(e.srv.URL+"/analyze-bounty", "application/json", strings.NewReader(c.body))
			require.NoError(t, err)
			body := decode(t, resp)

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.Contains(t, body["error"], c.msg)
			assert.Zero(t, e.ai.calls.Load())
		})
	}
}

func TestPreflight(t *testing.T) {
	e := newEnv(t)
	req, _ := http.NewRequest(http.MethodOptions, e.srv.URL+"/analyze-bounty", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

// ---- publish ----

func TestPublish_Created(t *testing.T) {
	e := newEnv(t)
	resp, body := e.post(t, "/bounties", map[string]any{
		"userId": "user-1", "bountyData": draft(), "analysis": json.RawMessage(readyJSON),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	b := body["bounty"].(map[string]any)
	assert.Equal(t, bountyID, b["id"])
	assert.Equal(t, "open", b["status"])
	assert.Equal(t, "Automate weekly payout reconciliation.", b["ai_summary"])
	require.Len(t, e.bounties.rows, 1)

	resp, body = e.get(t, "/bounties/"+bountyID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, bountyID, body["bounty"].(map[string]any)["id"])

	resp, body = e.get(t, "/bounties?limit=abc")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["bounties"], 1)
}

func TestPublish_Blocked(t *testing.T) {
	e := newEnv(t)
	resp, body := e.post(t, "/bounties", map[string]any{
		"userId": "user-1", "bountyData": draft(), "analysis": json.RawMessage(blockedJSON),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "needs_work", body["verdict"])
	assert.Len(t, body["criticalMissing"], 1)
	assert.Empty(t, e.bounties.rows)
}

func TestPublish_InvalidAnalysis(t *testing.T) {
	e := newEnv(t)
	tampered := strings.Replace(readyJSON, `"completeness_score":85`, `"completeness_score":40`, 1)
	resp, _ := e.post(t, "/bounties", map[string]any{
		"userId": "user-1", "bountyData": draft(), "analysis": json.RawMessage(tampered),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, e.bounties.rows)
}

func TestPublish_StoreFailure(t *testing.T) {
	e := newEnv(t)
	e.bounties.err = assert.AnError
	resp, body := e.post(t, "/bounties", map[string]any{
		"userId": "user-1", "bountyData": draft(), "analysis": json.RawMessage(readyJSON),
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body["error"], "store: write failed")
}

func TestGetBounty_NotFound(t *testing.T) {
	e := newEnv(t)
	resp, body := e.get(t, "/bounties/"+bountyID)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", body["error"])

	resp, _ = e.get(t, "/bounties/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ---- hunters ----

func profileJSON() map[string]any {
	return map[string]any{
		"userId": "user-1", "fullName": "Ada", "title": "Builder", "bio": "I automate.",
		"yearsExperience": 10, "expertiseAreas": []string{"RPA", "Python"},
		"githubUrl": "https://github.com/ada", "pastProjects": "Invoice bot.",
	}
}

func TestApply_MultipartWithResumeThenScreen(t *testing.T) {
	e := newEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	pj, _ := json.Marshal(profileJSON())
	require.NoError(t, mw.WriteField("profile", string(pj)))
	fw, err := mw.CreateFormFile("resume", "cv.PDF")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(e.srv.URL+"/hunter-profiles", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	body := decode(t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	p := body["profile"].(map[string]any)
	assert.Equal(t, "pending", p["status"])
	assert.Equal(t, "user-1/resume.pdf", p["resume_path"])
	assert.Equal(t, []string{"user-1/resume.pdf"}, e.resumes.keys)
	assert.Equal(t, 1, e.queue.Len())

	resp, body = e.post(t, "/screen-hunter", map[string]any{"userId": "user-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// 20 + 0 + 6 + 5 + 10 + 0 + 0
	assert.Equal(t, 41.0, body["score"])
	assert.Contains(t, body["assessment"], "manual review")

	resp, body = e.get(t, "/hunter-profiles/user-1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 41.0, body["profile"].(map[string]any)["ai_score"])
	assert.Equal(t, true, body["screened"])
}

func TestApply_JSONWithoutResume(t *testing.T) {
	e := newEnv(t)
	resp, body := e.post(t, "/hunter-profiles", profileJSON())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Nil(t, body["profile"].(map[string]any)["ai_score"])
	assert.Empty(t, e.resumes.keys)
}

func TestApply_Invalid(t *testing.T) {
	e := newEnv(t)
	p := profileJSON()
	p["linkedinUrl"] = "javascript:alert(1)"
	resp, _ := e.post(t, "/hunter-profiles", p)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	p = profileJSON()
	delete(p, "bio")
	resp, _ = e.post(t, "/hunter-profiles", p)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScreen_MissingProfileIs400(t *testing.T) {
	e := newEnv(t)
	resp, body := e.post(t, "/screen-hunter", map[string]any{"userId": "ghost"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "hunter profile not found")
}

func TestGetProfile_NotFound(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.get(t, "/hunter-profiles/ghost")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ---- ops ----

func TestOperationalEndpoints(t *testing.T) {
	e := newEnv(t)
	resp, body := e.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])

	resp, body = e.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "analyses_total")
	assert.Contains(t, body, "screening_failures")
}
