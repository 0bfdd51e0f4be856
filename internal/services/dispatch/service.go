package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tumbleweedd/two_services_system/order_notifier/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_notifier/internal/lib/errors"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/logger"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_dispatch.go

// Dispatcher performs exactly one side effect for a completed order.
type Dispatcher interface {
	Channel() models.Channel
	Dispatch(ctx context.Context, order *models.Order) error
}

type FailureReporter interface {
	Report(ctx context.Context, failure *models.DispatchFailure) error
}

type Recorder interface {
	ObserveDispatch(channel, outcome string, elapsed time.Duration)
}

type Outcome struct {
	Channel  models.Channel
	Err      error
	Duration time.Duration
}

type Service struct {
	log      logger.Logger
	reporter FailureReporter
	recorder Recorder
	timeout  time.Duration

	dispatchers []Dispatcher
}

func New(
	log logger.Logger,
	reporter FailureReporter,
	recorder Recorder,
	timeout time.Duration,
	dispatchers ...Dispatcher,
) *Service {
	return &Service{
		log:         log,
		reporter:    reporter,
		recorder:    recorder,
		timeout:     timeout,
		dispatchers: dispatchers,
	}
}

func (s *Service) Channels() []models.Channel {
	channels := make([]models.Channel, 0, len(s.dispatchers))
	for _, d := range s.dispatchers {
		channels = append(channels, d.Channel())
	}

	return channels
}

// Dispatch runs every dispatcher concurrently. A failing dispatcher is logged
// and reported; it never stops the others and Dispatch itself never fails.
func (s *Service) Dispatch(ctx context.Context, order *models.Order) []Outcome {
	const op = "services.dispatch.Dispatch"

	outcomes := make([]Outcome, len(s.dispatchers))

	var g errgroup.Group
	for i, d := range s.dispatchers {
		i, d := i, d
		g.Go(func() error {
			outcomes[i] = s.run(ctx, d, order)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}

	s.log.InfoContext(ctx, op,
		logger.String("invoice_number", order.InvoiceNumber),
		logger.Int("dispatchers", len(outcomes)),
		logger.Int("failed", failed),
	)

	return outcomes
}

func (s *Service) run(ctx context.Context, d Dispatcher, order *models.Order) (outcome Outcome) {
	const op = "services.dispatch.run"

	channel := d.Channel()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("%s: %s dispatcher panicked: %v", op, channel, r)
		}

		outcome.Channel = channel
		outcome.Duration = time.Since(start)

		result := OutcomeSucceeded
		if outcome.Err != nil {
			result = OutcomeFailed
			s.fail(ctx, channel, order, outcome.Err)
		}

		if s.recorder != nil {
			s.recorder.ObserveDispatch(string(channel), result, outcome.Duration)
		}
	}()

	outcome.Err = d.Dispatch(ctx, order)

	return outcome
}

func (s *Service) fail(ctx context.Context, channel models.Channel, order *models.Order, err error) {
	const op = "services.dispatch.fail"

	failure := &models.DispatchFailure{
		EventUUID:     uuid.New(),
		InvoiceNumber: order.InvoiceNumber,
		Channel:       channel,
		Error:         err.Error(),
		OccurredAt:    time.Now().UTC(),
	}

	var channelErr *internalErrors.ChannelError
	if errors.As(err, &channelErr) {
		if json.Valid(channelErr.Payload) {
			failure.Payload = channelErr.Payload
		}
		failure.Response = string(channelErr.Response)
	}

	s.log.ErrorContext(ctx, op,
		logger.String("channel", string(channel)),
		logger.String("invoice_number", order.InvoiceNumber),
		logger.String("payload", string(failure.Payload)),
		logger.String("response", failure.Response),
		logger.Err(err),
	)

	if s.reporter == nil {
		return
	}

	// the dispatcher's own deadline may already be spent
	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if reportErr := s.reporter.Report(reportCtx, failure); reportErr != nil {
		s.log.ErrorContext(ctx, op,
			logger.String("channel", string(channel)),
			logger.String("failure_event", failure.UUID()),
			logger.String("report error", reportErr.Error()),
		)
	}
}

// LogReporter is used when no broker is configured: failures only reach the log.
type LogReporter struct {
	log logger.Logger
}

func NewLogReporter(log logger.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) Report(ctx context.Context, failure *models.DispatchFailure) error {
	const op = "services.dispatch.LogReporter.Report"

	r.log.WarnContext(ctx, op,
		logger.String("failure_event", failure.UUID()),
		logger.String("channel", string(failure.Channel)),
		logger.String("invoice_number", failure.InvoiceNumber),
	)

	return nil
}
