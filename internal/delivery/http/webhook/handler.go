package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/tumbleweedd/two_services_system/order_notifier/internal/domain/models"
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/services/dispatch"
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/services/event"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/logger"
)

const (
	NotifyRoute  = "/notify-order"
	WebhookRoute = "/order-webhook"
)

type Verifier interface {
	Verify(body []byte, signature string) error
}

type orderDispatcher interface {
	Dispatch(ctx context.Context, order *models.Order) []dispatch.Outcome
}

type Recorder interface {
	ObserveRequest(route string, status int)
}

type Handler struct {
	log logger.Logger

	route      string
	responder  Responder
	verifier   Verifier
	dispatcher orderDispatcher
	recorder   Recorder
}

// NewHandler builds the pipeline for one entry point. A nil verifier accepts
// unsigned deliveries; a nil recorder disables request metrics.
func NewHandler(
	log logger.Logger,
	route string,
	responder Responder,
	verifier Verifier,
	dispatcher orderDispatcher,
	recorder Recorder,
) *Handler {
	return &Handler{
		log:        log,
		route:      route,
		responder:  responder,
		verifier:   verifier,
		dispatcher: dispatcher,
		recorder:   recorder,
	}
}

func (h *Handler) Route() string {
	return h.route
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.serve(w, r)

	if h.recorder != nil {
		h.recorder.ObserveRequest(h.route, status)
	}
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) (status int) {
	const op = "delivery.http.webhook.serve"

	ctx := r.Context()
	log := h.log.With(
		logger.String("op", op),
		logger.String("route", h.route),
		logger.String("request_id", middleware.GetReqID(ctx)),
	)

	defer func() {
		if rec := recover(); rec != nil {
			log.ErrorContext(ctx, "unhandled failure",
				logger.String("panic", fmt.Sprint(rec)),
				logger.String("stack", string(debug.Stack())),
			)
			status = h.responder.Failure(w)
		}
	}()

	if r.Method != http.MethodPost {
		return h.responder.MethodNotAllowed(w)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.ErrorContext(ctx, "failed to read body", logger.Err(err))

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request too large"})
		}

		return h.responder.Failure(w)
	}

	if h.verifier != nil {
		if err = h.verifier.Verify(body, r.Header.Get(event.SignatureHeader)); err != nil {
			log.WarnContext(ctx, "rejected delivery", logger.Err(err))
			return h.responder.Unauthorized(w)
		}
	}

	raw, err := event.Parse(body)
	if err != nil {
		log.ErrorContext(ctx, "failed to parse delivery", logger.Err(err))
		return h.responder.Failure(w)
	}

	log.InfoContext(ctx, "Received webhook: "+raw.EventName, logger.String("event_name", raw.EventName))

	if err = event.Filter(raw); err != nil {
		return h.responder.Ignored(w, raw.EventName)
	}

	order := event.Normalize(raw.Content)

	// a client hanging up must not cut the fan-out short
	h.dispatcher.Dispatch(context.WithoutCancel(ctx), order)

	return h.responder.Success(w, order.InvoiceNumber)
}
