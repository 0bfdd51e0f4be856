package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapp "github.com/tumbleweedd/two_services_system/order_notifier/internal/app/http"
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/config"
	notifierHTTP "github.com/tumbleweedd/two_services_system/order_notifier/internal/delivery/http"
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/delivery/http/webhook"
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/services/dispatch"
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/services/dispatch/chat"
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/services/dispatch/email"
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/services/dispatch/fulfillment"
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/services/dispatch/logreport"
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/services/event"
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/services/variant"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/brokers/kafka/producer"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/httpclient"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/logger"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/metrics"
)

type App struct {
	log logger.Logger

	HTTPServer *httpapp.App
	producer   *producer.Producer
}

// Deps are the process-level collaborators of the router.
type Deps struct {
	// Report receives the order report of the log dispatcher.
	Report   io.Writer
	Reporter dispatch.FailureReporter
	Registry *prometheus.Registry
}

func NewApp(log logger.Logger, cfg *config.Config) (*App, error) {
	const op = "app.NewApp"

	app := &App{log: log}

	var reporter dispatch.FailureReporter = dispatch.NewLogReporter(log)
	if cfg.KafkaEnabled() {
		p, err := producer.NewProducer(log, cfg.Kafka.FailureTopic, cfg.Kafka.Brokers)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		app.producer = p
		reporter = p
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router, err := NewRouter(log, cfg, Deps{
		Report:   os.Stdout,
		Reporter: reporter,
		Registry: registry,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%s: %w", op, err), app.closeProducer())
	}

	app.HTTPServer = httpapp.NewApp(log, router, cfg.HTTP)

	return app, nil
}

// NewRouter wires the pipeline from configuration. Channels whose settings
// are absent are left out entirely.
func NewRouter(log logger.Logger, cfg *config.Config, deps Deps) (http.Handler, error) {
	const op = "app.NewRouter"

	var (
		metricsRoute http.Handler
		dispatchRec  dispatch.Recorder
		requestRec   webhook.Recorder
	)
	if deps.Registry != nil {
		m := metrics.New(deps.Registry)
		metricsRoute = metrics.Handler(deps.Registry)
		dispatchRec = m
		requestRec = m
	}

	dispatchers, err := buildDispatchers(log, cfg, deps.Report)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	svc := dispatch.New(log, deps.Reporter, dispatchRec, cfg.Dispatch.Timeout, dispatchers...)

	channels := make([]string, 0, len(dispatchers))
	for _, channel := range svc.Channels() {
		channels = append(channels, string(channel))
	}
	log.Info("dispatchers enabled", logger.Any("channels", channels))

	var verifier webhook.Verifier
	if cfg.SignatureRequired() {
		verifier = event.NewHMACVerifier(cfg.Webhook.SigningSecret)
	} else {
		log.Warn("webhook signing secret not set, deliveries are not authenticated")
	}

	handlers := []*webhook.Handler{
		webhook.NewHandler(log, webhook.NotifyRoute, webhook.NotifyResponder{}, verifier, svc, requestRec),
		webhook.NewHandler(log, webhook.WebhookRoute, webhook.WebhookResponder{}, verifier, svc, requestRec),
	}

	return notifierHTTP.NewHandler(log, cfg.HTTP, metricsRoute, handlers...).InitRoutes(), nil
}

func buildDispatchers(log logger.Logger, cfg *config.Config, report io.Writer) ([]dispatch.Dispatcher, error) {
	if report == nil {
		report = io.Discard
	}

	client := httpclient.New(cfg.Dispatch.Timeout)

	dispatchers := []dispatch.Dispatcher{logreport.New(log, report)}

	if cfg.ChatEnabled() {
		dispatchers = append(dispatchers, chat.New(log, client, cfg.Chat.WebhookURL))
	}

	if cfg.EmailEnabled() {
		dispatchers = append(dispatchers, email.New(log, client, email.Config{
			APIKey:         cfg.Email.APIKey,
			To:             cfg.Email.NotificationEmail,
			From:           cfg.Email.From,
			BaseURL:        cfg.Email.BaseURL,
			FulfillmentURL: cfg.Email.FulfillmentURL,
		}))
	}

	if cfg.FulfillmentEnabled() {
		mapper, err := variant.NewMapper(cfg.Fulfillment.Variants)
		if err != nil {
			return nil, fmt.Errorf("fulfillment variants: %w", err)
		}

		dispatchers = append(dispatchers, fulfillment.New(
			log, client, mapper, cfg.Fulfillment.APIKey, cfg.Fulfillment.BaseURL, cfg.Fulfillment.PerItemVariants,
		))
	}

	return dispatchers, nil
}

func (a *App) Stop(ctx context.Context) error {
	const op = "app.Stop"

	var errs []error

	if err := a.HTTPServer.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%s: stop http server: %w", op, err))
	}

	a.log.Info("http server stopped")

	if err := a.closeProducer(); err != nil {
		errs = append(errs, fmt.Errorf("%s: close kafka producer: %w", op, err))
	}

	return errors.Join(errs...)
}

func (a *App) closeProducer() error {
	if a.producer == nil {
		return nil
	}

	if err := a.producer.Close(); err != nil {
		return err
	}

	a.log.Info("kafka producer closed")

	return nil
}
