package main

import (
	"net/http"
	"os"

	"github.com/agrilink/agrilink-go/accounts"
	"github.com/agrilink/agrilink-go/catalog"
	"github.com/agrilink/agrilink-go/internal/config"
	"github.com/agrilink/agrilink-go/session"
	"github.com/agrilink/agrilink-go/token/filestore"
	"github.com/agrilink/agrilink-go/transport"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// app wires the full client stack: token file store, transport pipeline
// (bearer → request-id → logging, with metrics and refresh on the response
// side), accounts service, and the session manager on top.
type app struct {
	config   config.Config
	sessions *session.Manager
	catalog  *catalog.Service
	signal   *transport.InvalidationSignal
	logger   zerolog.Logger
}

func newApp() (*app, error) {
	cfg := config.New()

	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	store := filestore.New(cfg.GetTokenPath())
	signal := transport.NewInvalidationSignal()
	metrics := transport.NewMetrics(prometheus.DefaultRegisterer)
	loggingStage := transport.NewLoggingStage(logger)

	client, err := transport.New(cfg.GetBaseURL(),
		transport.WithHTTPClient(&http.Client{Timeout: cfg.GetRequestTimeout()}),
		transport.WithRequestStages(
			transport.NewBearerStage(store),
			transport.RequestIDStage(),
			loggingStage,
		),
		transport.WithResponseStages(
			loggingStage,
			metrics.Stage(),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] building transport")
	}
	// Last response stage: the retried request re-enters the full pipeline.
	client.AddResponseStages(transport.NewRefreshStage(client, store, signal,
		transport.WithRefreshMetrics(metrics),
		transport.WithRefreshLogger(logger),
	))

	sessions, err := session.NewManager(accounts.NewService(client), store, signal,
		session.WithLogger(logger),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] building session manager")
	}

	return &app{
		config:   cfg,
		sessions: sessions,
		catalog:  catalog.NewService(client),
		signal:   signal,
		logger:   logger,
	}, nil
}
