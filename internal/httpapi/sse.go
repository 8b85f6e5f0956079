package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MimeLyc/bilingual-news/internal/jobs"
)

const streamInterval = time.Second

// handleJobStream pushes the job list as server-sent events once per
// interval. With ?active=true only pending and running jobs are sent.
func (s *Server) handleJobStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func() bool {
		list := s.queue.List()
		if activeOnly {
			list = activeJobs(list)
		}
		payload, err := json.Marshal(list)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "event: jobs\ndata: %s\n\n", payload); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send() {
		return
	}

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if !send() {
				return
			}
		}
	}
}

func activeJobs(list []*jobs.RetranslationJob) []*jobs.RetranslationJob {
	ret := make([]*jobs.RetranslationJob, 0, len(list))
	for _, job := range list {
		if job != nil && !job.Terminal() {
			ret = append(ret, job)
		}
	}
	return ret
}
