package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MimeLyc/bilingual-news/internal/config"
	"github.com/MimeLyc/bilingual-news/internal/translator"
	"github.com/MimeLyc/bilingual-news/pkg/log"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status, code := "Server is running", http.StatusOK
	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			log.Warn("Health check: store unavailable: %v", err)
			status, code = "Database unavailable", http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": s.now().UTC(),
		"service":   serviceName,
	})
}

// articleText is the request body of the tag and translation routes. Only
// the side named by the route's direction is read.
type articleText struct {
	EnglishTitle   string   `json:"englishTitle"`
	EnglishContent string   `json:"englishContent"`
	EnglishTags    []string `json:"englishTags"`
	TeluguTitle    string   `json:"teluguTitle"`
	TeluguContent  string   `json:"teluguContent"`
	TeluguTags     []string `json:"teluguTags"`
}

func (a articleText) request(direction translator.Direction) translator.Request {
	if direction == translator.TeluguToEnglish {
		return translator.Request{
			SourceTitle:   a.TeluguTitle,
			SourceContent: a.TeluguContent,
			SourceTags:    a.TeluguTags,
			Direction:     direction,
		}
	}
	return translator.Request{
		SourceTitle:   a.EnglishTitle,
		SourceContent: a.EnglishContent,
		SourceTags:    a.EnglishTags,
		Direction:     direction,
	}
}

func displayName(key string) string {
	if key == "" {
		return ""
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

func (s *Server) handleGenerateTags(direction translator.Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body articleText
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		req := body.request(direction)
		if strings.TrimSpace(req.SourceTitle) == "" && strings.TrimSpace(req.SourceContent) == "" {
			writeError(w, http.StatusBadRequest, displayName(direction.SourceKey())+" title or content is required to generate tags")
			return
		}

		tags := s.translator.GenerateTags(r.Context(), req.SourceTitle, req.SourceContent, direction)
		writeJSON(w, http.StatusOK, map[string]any{
			direction.SourceKey() + "Tags": tags,
		})
	}
}

func (s *Server) handleTranslate(direction translator.Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body articleText
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}

		res, err := s.translator.TranslateBidirectional(r.Context(), body.request(direction))
		if err != nil {
			if translator.IsErrorType(err, translator.ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, displayName(direction.SourceKey())+" title and content are required")
				return
			}
			log.Error("Translation failed: %v", err)
			writeError(w, http.StatusInternalServerError, "translation service unavailable")
			return
		}
		writeJSON(w, http.StatusOK, translateResponse(direction, res))
	}
}

func translateResponse(direction translator.Direction, res translator.Result) map[string]any {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []translator.Warning{}
	}
	ret := map[string]any{
		direction.TargetKey() + "Title":   res.TargetTitle,
		direction.TargetKey() + "Content": res.TargetContent,
		direction.SourceKey() + "Tags":    res.SourceTags,
		direction.TargetKey() + "Tags":    res.TargetTags,
		"isFallback":                      res.IsFallback,
		"warnings":                        warnings,
	}
	if res.FallbackReason != "" {
		ret["fallbackReason"] = res.FallbackReason
	}
	return ret
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotImplemented, "settings store is not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		settings, err := s.settings.GetRuntimeSettings()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings.Masked())
	case http.MethodPut:
		var req config.RuntimeSettings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		saved, err := s.settings.UpdateRuntimeSettings(req)
		if err != nil {
			if errors.Is(err, config.ErrInvalidSettings) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if s.apply != nil {
			if err := s.apply(saved); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, saved.Masked())
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
