// Package logging provides structured logging for the switcher core.
//
// It wraps log/slog with JSON output for production, text output for
// development, and default service/version fields on every entry.
//
// Logging is configured via the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	sess := session.New(conn, owner, session.WithLogger(logger.Component("session")))
//
// Never log secrets such as the MQTT password or the InfluxDB token.
package logging
