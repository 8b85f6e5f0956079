package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MimeLyc/bilingual-news/internal/news"
	"github.com/MimeLyc/bilingual-news/internal/translator"
	"github.com/MimeLyc/bilingual-news/pkg/log"
)

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listNews(w, r)
	case http.MethodPost:
		s.createNews(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := news.ListOptions{}

	var err error
	if opts.Limit, err = queryInt(query.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if opts.Offset, err = queryInt(query.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	if raw := query.Get("category"); raw != "" {
		if opts.Category, err = news.ParseCategory(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	articles, err := s.store.ListArticles(r.Context(), opts)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if articles == nil {
		articles = []*news.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("invalid integer")
	}
	return n, nil
}

func (s *Server) createNews(w http.ResponseWriter, r *http.Request) {
	article := news.Article{IsPublished: true}
	if err := json.NewDecoder(r.Body).Decode(&article); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	article.ID = 0
	article.Views = 0
	flagFallbackContent(&article)

	if err := s.store.CreateArticle(r.Context(), &article); err != nil {
		writeStoreError(w, err)
		return
	}
	log.Info("Created article %d (needs translation: %t)", article.ID, article.NeedsTranslation)
	writeJSON(w, http.StatusCreated, article)
}

// flagFallbackContent marks articles whose translated side still carries the
// unavailable marker, and infers the source language from it when the client
// did not send one.
func flagFallbackContent(a *news.Article) {
	for _, d := range []translator.Direction{translator.EnglishToTelugu, translator.TeluguToEnglish} {
		marker := translator.UnavailableMarker(d.Target())
		title, content := a.TeluguTitle, a.TeluguContent
		if d == translator.TeluguToEnglish {
			title, content = a.EnglishTitle, a.EnglishContent
		}
		if !strings.HasPrefix(strings.TrimSpace(title), strings.TrimSpace(marker)) &&
			!strings.HasPrefix(strings.TrimSpace(content), strings.TrimSpace(marker)) {
			continue
		}
		a.NeedsTranslation = true
		a.IsAutoTranslated = true
		if strings.TrimSpace(a.SourceLanguage) == "" {
			a.SourceLanguage = d.SourceKey()
		}
		return
	}
}

func (s *Server) handleNewsByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	raw := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/news/"), "/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid news id")
		return
	}

	if err := s.store.IncrementViews(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	article, err := s.store.GetArticle(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func writeStoreError(w http.ResponseWriter, err error) {
	var verr *news.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, news.ErrNotFound):
		writeError(w, http.StatusNotFound, "News not found")
	case errors.Is(err, news.ErrDuplicateLink):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error("Store error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
