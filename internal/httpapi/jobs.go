package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/MimeLyc/bilingual-news/internal/news"
	"github.com/MimeLyc/bilingual-news/pkg/icron"
)

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.queue.List())
}

func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/jobs/"), "/")
	if decoded, err := url.PathUnescape(id); err == nil {
		id = decoded
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing job id")
		return
	}
	job, ok := s.queue.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type retranslateRequest struct {
	ArticleID int64 `json:"articleId"`
}

func (s *Server) handleRetranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.retranslate == nil {
		writeError(w, http.StatusNotImplemented, "retranslation is not configured")
		return
	}
	var req retranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.ArticleID <= 0 {
		writeError(w, http.StatusBadRequest, "articleId is required")
		return
	}

	job, created, err := s.retranslate.EnqueueArticle(r.Context(), req.ArticleID)
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			writeError(w, http.StatusNotFound, "News not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	code := http.StatusCreated
	if !created {
		code = http.StatusOK
	}
	writeJSON(w, code, map[string]any{
		"created": created,
		"job":     job,
	})
}

type scheduleResponse struct {
	*icron.TriggerInfo
	ActiveJobs int `json:"active_jobs"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.retranslate == nil {
		writeError(w, http.StatusNotImplemented, "retranslation is not configured")
		return
	}
	info, err := icron.GetTriggerInfo(s.retranslate.CronExpr(), s.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scheduleResponse{
		TriggerInfo: info,
		ActiveJobs:  len(activeJobs(s.queue.List())),
	})
}
