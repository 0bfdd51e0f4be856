package webhook

import (
	"encoding/json"
	"net/http"
)

// Responder renders pipeline results for one entry point. Every method
// returns the status it wrote.
type Responder interface {
	MethodNotAllowed(w http.ResponseWriter) int
	Unauthorized(w http.ResponseWriter) int
	Ignored(w http.ResponseWriter, eventName string) int
	Success(w http.ResponseWriter, invoiceNumber string) int
	Failure(w http.ResponseWriter) int
}

type errorResponse struct {
	Error string `json:"error"`
}

type notifySuccessResponse struct {
	Status string `json:"status"`
	Order  string `json:"order"`
}

type notifyIgnoredResponse struct {
	Status string `json:"status"`
}

type webhookSuccessResponse struct {
	Message       string `json:"message"`
	InvoiceNumber string `json:"invoiceNumber"`
}

type webhookIgnoredResponse struct {
	Message   string `json:"message"`
	EventName string `json:"eventName"`
}

// NotifyResponder answers the /notify-order shape.
type NotifyResponder struct{}

func (NotifyResponder) MethodNotAllowed(w http.ResponseWriter) int {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return http.StatusMethodNotAllowed
}

func (NotifyResponder) Unauthorized(w http.ResponseWriter) int {
	return writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
}

func (NotifyResponder) Ignored(w http.ResponseWriter, _ string) int {
	return writeJSON(w, http.StatusOK, notifyIgnoredResponse{Status: "ignored"})
}

func (NotifyResponder) Success(w http.ResponseWriter, invoiceNumber string) int {
	return writeJSON(w, http.StatusOK, notifySuccessResponse{Status: "success", Order: invoiceNumber})
}

func (NotifyResponder) Failure(w http.ResponseWriter) int {
	return writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Processing failed"})
}

// WebhookResponder answers the /order-webhook shape.
type WebhookResponder struct{}

func (WebhookResponder) MethodNotAllowed(w http.ResponseWriter) int {
	return writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
}

func (WebhookResponder) Unauthorized(w http.ResponseWriter) int {
	return writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
}

func (WebhookResponder) Ignored(w http.ResponseWriter, eventName string) int {
	return writeJSON(w, http.StatusOK, webhookIgnoredResponse{Message: "Event ignored", EventName: eventName})
}

func (WebhookResponder) Success(w http.ResponseWriter, invoiceNumber string) int {
	return writeJSON(w, http.StatusOK, webhookSuccessResponse{
		Message:       "Order processed successfully",
		InvoiceNumber: invoiceNumber,
	})
}

func (WebhookResponder) Failure(w http.ResponseWriter) int {
	return writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)

	return status
}
