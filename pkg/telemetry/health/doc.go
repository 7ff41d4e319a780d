// Package health serves the liveness and readiness probes.
//
// Liveness (/health) answers 200 while the process runs. Readiness (/ready)
// runs the registered checks concurrently, each bounded by the configured
// check timeout, and answers 503 unless all pass. The relay registers a
// "backend" check that succeeds when the failover manager can resolve a
// healthy instance:
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("backend", manager.Ready)
//	checker.Register(mux, cfg.Telemetry.Health, version, commit, buildTime)
package health
