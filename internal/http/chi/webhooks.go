package chi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/schedkit/webhook-relay/sources"
	"github.com/schedkit/webhook-relay/webhook"
)

/* HTTP layer DTOs for the webhook pipeline
 * Separate from domain entities to avoid leaking internal structure
 */

// webhookSuccessResponse is returned when the pipeline delivered downstream
type webhookSuccessResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	WebhookID string `json:"webhookId"`
}

// webhookErrorResponse is returned for any pipeline failure
type webhookErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// maxBodySize caps inbound webhook payloads at 1 MiB
const maxBodySize = 1 << 20

// postWebhook handles POST /webhooks/{source}
func postWebhook(webhookService webhook.UseCase, sourceLoader *sources.Loader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := chi.URLParam(r, "source")

		source, err := sourceLoader.Get(tag)
		if err != nil {
			http.Error(w, fmt.Sprintf("unknown webhook source: %s", tag), http.StatusNotFound)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		result := webhookService.Process(r.Context(), source, body, r.Header)

		writeResult(w, result)
	})
}

// writeResult renders a DeliveryResult as the HTTP response.
// Pure mapping: the status code and message depend only on the result.
func writeResult(w http.ResponseWriter, result webhook.DeliveryResult) {
	w.Header().Set("Content-Type", "application/json")

	if result.Success {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(webhookSuccessResponse{
			Success:   true,
			Message:   "Webhook processed successfully",
			WebhookID: result.WebhookID,
		})
		return
	}

	status, message := statusForResult(result)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(webhookErrorResponse{
		Success: false,
		Message: message,
		Error:   result.Error,
	})
}

func statusForResult(result webhook.DeliveryResult) (int, string) {
	switch result.WebhookID {
	case webhook.WebhookIDInvalidSignature:
		return http.StatusUnauthorized, "Invalid webhook signature"
	case webhook.WebhookIDInvalidJSON:
		return http.StatusBadRequest, "Invalid JSON payload"
	case webhook.WebhookIDInvalidPayload:
		return http.StatusBadRequest, "Invalid payload structure"
	default:
		return http.StatusInternalServerError, "Webhook processing failed"
	}
}
