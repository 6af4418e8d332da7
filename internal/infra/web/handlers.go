package web

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"forma-web/internal/domain"
	"forma-web/internal/domain/model"
	"forma-web/internal/infra/logging"
	rds "forma-web/internal/infra/redis"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	count, err := s.waitlistUC.Count(r.Context())
	if err != nil {
		// The page still renders without the vanity number.
		count = 0
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = landingPage.Execute(w, struct {
		WaitlistCount int
		Year          int
	}{WaitlistCount: count, Year: time.Now().Year()})
}

type waitlistRequest struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

func (s *Server) handleWaitlist(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)

	var req waitlistRequest
	switch {
	case strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"):
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
	default:
		// The landing form posts urlencoded.
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form")
			return
		}
		req.Email = r.PostFormValue("email")
		req.Source = r.PostFormValue("source")
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(r.Context(), rds.SignupKey(clientIP(r)), s.rateLimit, s.rateWindow)
		if err != nil {
			l.Error().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			writeError(w, http.StatusTooManyRequests, "too many signups, try again later")
			return
		}
	}

	entry, err := s.waitlistUC.Join(r.Context(), req.Email, req.Source)
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "this email is already on the list")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "could not save your signup")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": entry.ID, "email": entry.Email})
}

type demoSessionRequest struct {
	AccessCode string `json:"accessCode"`
}

func (s *Server) handleDemoSession(w http.ResponseWriter, r *http.Request) {
	var req demoSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if s.accessCode == "" || req.AccessCode != s.accessCode {
		writeError(w, http.StatusForbidden, domain.ErrAccessCodeRejected.Error())
		return
	}

	token, err := s.sessions.Mint()
	if err != nil {
		s.log.Error().Err(err).Msg("session mint failed")
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type statusResponse struct {
	RecordID   string                  `json:"recordId"`
	Phase      string                  `json:"phase"`
	Projection model.StatusProjection  `json:"projection"`
	Status     *model.GenerationStatus `json:"status,omitempty"`
}

func (s *Server) handleGenerationStatus(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordID")
	if recordID == "" {
		writeError(w, http.StatusBadRequest, "recordID is required")
		return
	}

	tracker := s.registry.Track(s.trackCtx, recordID)
	writeJSON(w, http.StatusOK, statusResponse{
		RecordID:   recordID,
		Phase:      string(tracker.Phase()),
		Projection: tracker.Projection(),
		Status:     tracker.LastStatus(),
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
