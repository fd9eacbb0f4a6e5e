// Package main is the entry point for the Gray Logic switcher core.
//
// The switcher core keeps a live mirror of one video switcher's state,
// translates it into a family-independent schema, and drives derived outputs
// and indicator feedback from it. It exposes that state over HTTP, a
// websocket feed, and MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-switcher/internal/api"
	"github.com/nerrad567/gray-logic-switcher/internal/feedback"
	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/metrics"
	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-switcher/internal/mapping"
	"github.com/nerrad567/gray-logic-switcher/internal/session"
	"github.com/nerrad567/gray-logic-switcher/internal/transport"
)

// Version information, set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// defaultConfigPath is the default location for the configuration file.
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until the context is cancelled or
// the connection to the unit drops.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // startup sequence
	log := logging.Default()
	log.Info("starting Gray Logic switcher core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"site_id", cfg.Site.ID,
		"device_url", cfg.Device.URL,
	)

	m := metrics.New()
	checks := make(map[string]api.HealthChecker)
	topics := mqtt.Topics{Site: cfg.Site.ID}

	// Publisher stays a nil interface when MQTT is disabled.
	var publisher feedback.Publisher
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, cfg.Site.ID)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("closing MQTT connection")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		topics = mqttClient.Topics()
		publisher = mqttClient
		checks["mqtt"] = mqttClient
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", mqttClient.ID(),
		)
	}

	var journals []session.Journal
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		journals = append(journals, influxClient)
		checks["influxdb"] = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	hub := api.NewHub(log.Component("api"))
	relay := feedback.NewRelay(topics, publisher, hub, 0)
	relay.SetLogger(log.Component("feedback"))
	journals = append(journals, relay)

	conn, err := transport.Dial(ctx, transport.Options{
		URL:              cfg.Device.URL,
		HandshakeTimeout: time.Duration(cfg.Device.HandshakeTimeout) * time.Second,
		WriteTimeout:     time.Duration(cfg.Device.WriteTimeout) * time.Second,
		MaxMessageSize:   cfg.Device.MaxMessageSize,
	})
	if err != nil {
		return fmt.Errorf("connecting to device: %w", err)
	}
	defer func() {
		log.Info("closing device connection")
		if closeErr := conn.Close(); closeErr != nil {
			log.Error("error closing device connection", "error", closeErr)
		}
	}()
	conn.SetLogger(log.Component("transport"))
	log.Info("device connected", "url", cfg.Device.URL)

	opts := []session.Option{
		session.WithLogger(log.Component("session")),
		session.WithMetrics(m),
		session.WithJournal(feedback.Journals(journals...)),
		session.WithLatchWindow(cfg.GetLatchWindow()),
		session.WithBatchSize(cfg.Session.BatchSize),
		session.WithInboxSize(cfg.Session.InboxSize),
	}
	if cfg.Device.Family != "" {
		family, famErr := mapping.ParseFamily(cfg.Device.Family)
		if famErr != nil {
			return fmt.Errorf("device family: %w", famErr)
		}
		opts = append(opts, session.WithFamily(family))
	}

	sess := session.New(conn, relay, opts...)
	conn.SetHandler(sess.Deliver)

	if mqttClient != nil {
		commander := feedback.NewCommander(topics, sess)
		commander.SetLogger(log.Component("commands"))
		if subErr := mqttClient.Subscribe(topics.AllCommands(), byte(cfg.MQTT.QoS), commander.Handle); subErr != nil {
			return fmt.Errorf("subscribing to commands: %w", subErr)
		}
	}

	deps := api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log.Component("api"),
		Session: sess,
		Hub:     hub,
		Checks:  checks,
		Version: version,
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = m.Handler()
		deps.MetricsPath = cfg.Metrics.Path
	}
	apiServer, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	go hub.Run(runCtx)
	go relay.Run(runCtx)

	if err := apiServer.Start(runCtx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("closing API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Losing the unit ends the session; a supervisor restarts the process.
	connLost := make(chan struct{})
	go func() {
		select {
		case <-conn.Done():
			close(connLost)
			stop()
		case <-runCtx.Done():
		}
	}()

	conn.Start()
	log.Info("Gray Logic switcher core started", "session_id", sess.ID())

	if err := sess.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("session: %w", err)
	}

	select {
	case <-connLost:
		if ctx.Err() == nil {
			return errors.New("device connection lost")
		}
	default:
	}

	log.Info("shutdown signal received, stopping services")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
