package hunters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/playground/bountyhub/internal/application"
	"github.com/playground/bountyhub/internal/domain/hunter"
	"github.com/playground/bountyhub/internal/domain/store"
)

// Failure phases recorded with each ScreeningFailure.
const (
	PhaseAPI    = "api"
	PhaseWorker = "worker"
	PhaseSweep  = "sweep"
)

// Service implements hunter applications and screening.
// Aman dipakai concurrent selama port-nya juga aman.
type Service struct {
	Profiles hunter.Repository
	Resumes  hunter.ResumeStore
	Failures hunter.FailureRepository
	Queue    Queue
	Clock    application.Clock
	IDs      application.IDGenerator
	Log      *zap.Logger
	Observer Observer
}

//
// ==== USE CASES ====
//

// Resume is an uploaded file attached to an application.
type Resume struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ApplyCommand untuk submit profile hunter baru
type ApplyCommand struct {
	UserID          string   `json:"userId" validate:"required,max=128"`
	FullName        string   `json:"fullName" validate:"required,max=200"`
	Title           string   `json:"title" validate:"required,max=200"`
	Bio             string   `json:"bio" validate:"required"`
	YearsExperience int      `json:"yearsExperience" validate:"gte=0,lte=80"`
	ExpertiseAreas  []string `json:"expertiseAreas" validate:"min=1,dive,required"`
	LinkedInURL     string   `json:"linkedinUrl" validate:"omitempty,http_url"`
	GitHubURL       string   `json:"githubUrl" validate:"omitempty,http_url"`
	PortfolioURL    string   `json:"portfolioUrl" validate:"omitempty,http_url"`
	PastProjects    string   `json:"pastProjects" validate:"required"`
	Certifications  string   `json:"certifications"`

	Resume *Resume `json:"-"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalize trims free text before validation. Length tiers in hunter.Score
// count runes, so padding must not reach the store.
func (c *ApplyCommand) normalize() {
	c.UserID = strings.TrimSpace(c.UserID)
	c.FullName = strings.TrimSpace(c.FullName)
	c.Title = strings.TrimSpace(c.Title)
	c.Bio = strings.TrimSpace(c.Bio)
	c.PastProjects = strings.TrimSpace(c.PastProjects)
	c.Certifications = strings.TrimSpace(c.Certifications)
	c.LinkedInURL = strings.TrimSpace(c.LinkedInURL)
	c.GitHubURL = strings.TrimSpace(c.GitHubURL)
	c.PortfolioURL = strings.TrimSpace(c.PortfolioURL)
	areas := c.ExpertiseAreas[:0:0]
	for _, a := range c.ExpertiseAreas {
		if a = strings.TrimSpace(a); a != "" {
			areas = append(areas, a)
		}
	}
	c.ExpertiseAreas = areas
}

// Apply stores the resume, inserts a pending profile and queues screening.
// Screening is fire and forget: an enqueue failure is logged and recorded,
// never returned.
func (s *Service) Apply(ctx context.Context, cmd ApplyCommand) (*hunter.Profile, error) {
	cmd.normalize()
	if err := validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", hunter.ErrInvalidProfile, err)
	}
	now := s.Clock.Now()

	var resumePath string
	if cmd.Resume != nil && cmd.Resume.Body != nil {
		key := ResumeKey(cmd.UserID, cmd.Resume.Filename)
		path, err := s.Resumes.PutResume(ctx, key, cmd.Resume.Body, cmd.Resume.Size, cmd.Resume.ContentType)
		if err != nil {
			return nil, fmt.Errorf("upload resume: %w", err)
		}
		resumePath = path
	}

	p := &hunter.Profile{
		ID:              s.IDs.NewID(),
		UserID:          cmd.UserID,
		FullName:        cmd.FullName,
		Title:           cmd.Title,
		Bio:             cmd.Bio,
		YearsExperience: cmd.YearsExperience,
		ExpertiseAreas:  cmd.ExpertiseAreas,
		LinkedInURL:     cmd.LinkedInURL,
		GitHubURL:       cmd.GitHubURL,
		PortfolioURL:    cmd.PortfolioURL,
		ResumePath:      resumePath,
		PastProjects:    cmd.PastProjects,
		Certifications:  cmd.Certifications,
		Status:          hunter.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Profiles.Insert(ctx, p); err != nil {
		return nil, store.WriteFailed("insert hunter profile", err)
	}

	// detach from the request so a client disconnect does not drop the job
	job := Job{UserID: p.UserID, Attempt: 1, EnqueuedAt: now}
	if err := s.Queue.Enqueue(context.WithoutCancel(ctx), job); err != nil {
		s.logger().Warn("enqueue screening failed", zap.String("user_id", p.UserID), zap.Error(err))
		s.RecordFailure(context.WithoutCancel(ctx), job, PhaseAPI, err, false)
	}
	return p, nil
}

// ResumeKey builds the object key for a user's resume, <user>/resume.<ext>. Files without an extension are stored as .pdf.
func ResumeKey(userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || ext == "." {
		ext = ".pdf"
	}
	return userID + "/resume" + ext
}

// Screen scores the stored profile and writes ai_score and ai_assessment back.
// Status is never touched.
func (s *Service) Screen(ctx context.Context, userID string) (hunter.Screening, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return hunter.Screening{}, err
	}

	res := hunter.Score(p)
	if err := s.Profiles.UpdateScreening(ctx, userID, res.Score, res.Assessment); err != nil {
		return hunter.Screening{}, store.WriteFailed("update screening", err)
	}
	s.observer().Screened(res.Score)
	return res, nil
}

// Get ambil profile by user id
func (s *Service) Get(ctx context.Context, userID string) (*hunter.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: empty user id", hunter.ErrProfileNotFound)
	}
	p, err := s.Profiles.GetByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", hunter.ErrProfileNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Sweep re-enqueues pending profiles that are still unscored after grace.
// Profiles whose last attempt failed terminally are left for a manual
// `bountyhub screen`.
func (s *Service) Sweep(ctx context.Context, grace time.Duration, batch int) (int, error) {
	now := s.Clock.Now()
	profiles, err := s.Profiles.ListUnscreened(ctx, now.Add(-grace), batch)
	if err != nil {
		return 0, fmt.Errorf("list unscreened: %w", err)
	}
	n := 0
	for _, p := range profiles {
		if s.gaveUp(ctx, p.UserID) {
			continue
		}
		job := Job{UserID: p.UserID, Attempt: 1, EnqueuedAt: now}
		if err := s.Queue.Enqueue(ctx, job); err != nil {
			s.RecordFailure(ctx, job, PhaseSweep, err, false)
			continue
		}
		n++
	}
	return n, nil
}

// gaveUp reports whether the latest recorded failure for userID is terminal.
func (s *Service) gaveUp(ctx context.Context, userID string) bool {
	if s.Failures == nil {
		return false
	}
	last, err := s.Failures.ListByUser(ctx, userID, 1)
	if err != nil {
		s.logger().Warn("load screening failures", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return len(last) > 0 && last[0].Terminal
}

// RecordFailure logs a failed attempt and persists it. Persisting is best
// effort; its own failure is only logged.
func (s *Service) RecordFailure(ctx context.Context, job Job, phase string, cause error, terminal bool) {
	s.logger().Warn("screening failed",
		zap.String("user_id", job.UserID),
		zap.Int("attempt", job.Attempt),
		zap.String("phase", phase),
		zap.Bool("terminal", terminal),
		zap.Error(cause),
	)
	s.observer().ScreeningFailed(terminal)
	if s.Failures == nil {
		return
	}
	f := &hunter.ScreeningFailure{
		UserID:    job.UserID,
		Attempt:   job.Attempt,
		Phase:     phase,
		Message:   cause.Error(),
		Terminal:  terminal,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Failures.Save(ctx, f); err != nil {
		s.logger().Error("save screening failure", zap.String("user_id", job.UserID), zap.Error(err))
	}
}

// FailureHistory returns the recorded screening failures for a user.
func (s *Service) FailureHistory(ctx context.Context, userID string, limit int) ([]*hunter.ScreeningFailure, error) {
	if s.Failures == nil {
		return []*hunter.ScreeningFailure{}, nil
	}
	return s.Failures.ListByUser(ctx, userID, limit)
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Service) observer() Observer {
	if s.Observer == nil {
		return nopObserver{}
	}
	return s.Observer
}
