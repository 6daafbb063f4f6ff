package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/schedkit/webhook-relay/call"
)

// scheduleCallRequest is the JSON body for POST /v1/calls
type scheduleCallRequest struct {
	Phone string    `json:"phone"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	At    time.Time `json:"scheduled_at"`
}

// rescheduleCallRequest is the JSON body for PUT /v1/calls/{id}
type rescheduleCallRequest struct {
	At time.Time `json:"scheduled_at"`
}

// callResponse represents a call in the API
type callResponse struct {
	ID          string    `json:"id"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCallResponse(c call.Call) callResponse {
	return callResponse{
		ID:          c.ID,
		Phone:       c.Phone,
		Email:       c.Email,
		Name:        c.Name,
		ScheduledAt: c.ScheduledAt,
		Status:      c.Status.String(),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// postCall handles POST /v1/calls
func postCall(callService call.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req scheduleCallRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		c, err := callService.Schedule(r.Context(), call.ScheduleRequest{
			Phone: req.Phone,
			Email: req.Email,
			Name:  req.Name,
			At:    req.At,
		})
		if err != nil {
			http.Error(w, err.Error(), callErrorStatus(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(toCallResponse(c))
	})
}

// getCall handles GET /v1/calls/{id}
func getCall(callService call.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := callService.GetStatus(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), callErrorStatus(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(toCallResponse(c))
	})
}

// putCall handles PUT /v1/calls/{id}
func putCall(callService call.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rescheduleCallRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		c, err := callService.Reschedule(r.Context(), chi.URLParam(r, "id"), req.At)
		if err != nil {
			http.Error(w, err.Error(), callErrorStatus(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(toCallResponse(c))
	})
}

// deleteCall handles DELETE /v1/calls/{id}
func deleteCall(callService call.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := callService.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
			http.Error(w, err.Error(), callErrorStatus(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func callErrorStatus(err error) int {
	switch {
	case errors.Is(err, call.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, call.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
