package httpserver

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apphunters "github.com/playground/bountyhub/internal/application/hunters"
	"github.com/playground/bountyhub/internal/middleware"
)

// POST /screen-hunter
// Body: {"userId": "..."}
// Any failure here is a 400 with the error text, including write-back
// failures; the profile itself is unaffected.
func (r *Router) handleScreen(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateUserID(body.UserID); err != nil {
		return badRequest("%v", err)
	}

	res, err := r.hunters.Screen(req.Context(), body.UserID)
	if err != nil {
		r.hunters.RecordFailure(req.Context(), apphunters.Job{UserID: body.UserID, Attempt: 1}, apphunters.PhaseAPI, err, false)
		return &httpError{status: http.StatusBadRequest, msg: err.Error(), cause: err}
	}
	writeJSON(w, http.StatusOK, map[string]any{"score": res.Score, "assessment": res.Assessment})
	return nil
}

// POST /hunter-profiles
// multipart/form-data: "profile" (JSON) + optional "resume" file,
// or a plain JSON body without a resume.
func (r *Router) handleApply(w http.ResponseWriter, req *http.Request) error {
	var cmd apphunters.ApplyCommand

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
		if err := req.ParseMultipartForm(multipartInMemory); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return &httpError{status: http.StatusRequestEntityTooLarge, msg: "upload too large"}
			}
			return badRequest("invalid multipart body: %v", err)
		}
		defer req.MultipartForm.RemoveAll()

		raw := req.FormValue("profile")
		if raw == "" {
			return badRequest("profile is required")
		}
		if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
			return badRequest("invalid profile JSON: %v", err)
		}

		file, header, err := req.FormFile("resume")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return badRequest("invalid resume upload: %v", err)
		default:
			defer file.Close()
			cmd.Resume = &apphunters.Resume{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Body:        file,
			}
		}
	} else if err := decodeJSON(w, req, &cmd); err != nil {
		return err
	}

	if err := middleware.ValidateUserID(cmd.UserID); err != nil {
		return badRequest("%v", err)
	}
	for _, link := range []string{cmd.LinkedInURL, cmd.GitHubURL, cmd.PortfolioURL} {
		if err := middleware.ValidateLinkURL(link); err != nil {
			return badRequest("%v", err)
		}
	}
	cmd.FullName = middleware.SanitizeString(cmd.FullName)
	cmd.Title = middleware.SanitizeString(cmd.Title)
	for i, a := range cmd.ExpertiseAreas {
		cmd.ExpertiseAreas[i] = middleware.SanitizeString(a)
	}

	p, err := r.hunters.Apply(req.Context(), cmd)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"profile": p})
	return nil
}

// GET /hunter-profiles/{userId}
func (r *Router) handleGetProfile(w http.ResponseWriter, req *http.Request) error {
	userID := chi.URLParam(req, "userId")
	if err := middleware.ValidateUserID(userID); err != nil {
		return badRequest("%v", err)
	}
	p, err := r.hunters.Get(req.Context(), userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": p, "screened": p.Screened()})
	return nil
}

// GET /hunter-profiles/{userId}/screening-failures?limit=20
func (r *Router) handleScreeningFailures(w http.ResponseWriter, req *http.Request) error {
	userID := chi.URLParam(req, "userId")
	if err := middleware.ValidateUserID(userID); err != nil {
		return badRequest("%v", err)
	}
	limit := middleware.ParseLimit(req.URL.Query().Get("limit"))
	list, err := r.hunters.FailureHistory(req.Context(), strings.TrimSpace(userID), limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"failures": list})
	return nil
}
