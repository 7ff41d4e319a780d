// Package logging configures the process-wide slog logger.
//
// The handler chain adds request-scoped fields carried on the context
// (request_id, session, instance, model) to every record logged through a
// *Context method, and redacts secrets when redaction is enabled:
//
//   - values under keys such as api_key, token or authorization keep only
//     a short prefix
//   - bearer tokens, api_key parameters, e-mail addresses and URL
//     passwords are masked inside any string value
//
// # Usage
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
//	if err != nil {
//		return err
//	}
//	logger.Install()
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "chat completed") // includes request_id
package logging
