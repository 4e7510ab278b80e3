package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/outreach-pipeline/internal/types"
)

// maxBodyBytes caps intake request bodies
const maxBodyBytes = 64 << 10

// acceptedResponse is returned when an event has been published
type acceptedResponse struct {
	Topic string `json:"topic"`
	JobID string `json:"jobId,omitempty"`
}

// handleGetJob returns the stored state of a job
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "store not configured")
		return
	}

	job, err := s.jobs.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		s.log.Errorw("failed to load job", "job_id", r.PathValue("id"), "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "job not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}

// handleSubmitQuery publishes a job.query.received event
func (s *Server) handleSubmitQuery(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "event bus not configured")
		return
	}

	var payload types.QueryReceived
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	payload.Normalize()
	if err := payload.Validate(); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			missing := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				missing = append(missing, fe.Field())
			}
			s.jsonResponse(w, http.StatusBadRequest, map[string]any{"error": "missing required fields", "fields": missing})
			return
		}
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.events.Publish(r.Context(), types.TopicJobQueryReceived, payload); err != nil {
		s.log.Errorw("failed to publish query", "job_id", payload.JobID, "error", err)
		s.errorResponse(w, http.StatusBadGateway, "failed to publish event")
		return
	}

	s.jsonResponse(w, http.StatusAccepted, acceptedResponse{Topic: types.TopicJobQueryReceived, JobID: payload.JobID})
}

// handleTrigger publishes one of the email trigger topics with an empty payload
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "event bus not configured")
		return
	}

	topic := r.PathValue("topic")
	if topic != types.TopicEmailApprovalRequired && topic != types.TopicEmailScheduleCompleted {
		s.errorResponse(w, http.StatusNotFound, "unknown trigger topic")
		return
	}

	if err := s.events.Publish(r.Context(), topic, nil); err != nil {
		s.log.Errorw("failed to publish trigger", "topic", topic, "error", err)
		s.errorResponse(w, http.StatusBadGateway, "failed to publish event")
		return
	}

	s.jsonResponse(w, http.StatusAccepted, acceptedResponse{Topic: topic})
}
