// Package server provides the HTTP server of the chat relay.
//
// The server ties the API handlers, health endpoints and metrics endpoint
// to one mux and wraps it in the middleware chain:
//
//	Recovery(Logging(RequestID(Tracing(CORS(mux)))))
//
// # Basic Usage
//
//	srv := server.New(cfg, server.Dependencies{
//	    Chat:    orchestrator,
//	    Models:  manager,
//	    Status:  manager,
//	    Theme:   themes,
//	    Health:  checker,
//	    Metrics: collector,
//	})
//
//	ctx, stop := cli.SetupSignalHandler()
//	defer stop()
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until ctx is cancelled, then drains open requests for up to
// server.shutdown_timeout. The write timeout defaults to zero because chat
// replies are long-lived event streams; each stream is bounded by
// chat.stream_timeout instead.
//
// The chat endpoints are additionally wrapped in a per-client rate limiter
// when server.rate_limit sets a rate or a concurrency bound. When
// server.tls names a certificate the listener serves HTTPS, and the
// certificate is reloaded from disk when its files change.
package server
