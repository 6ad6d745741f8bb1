// Package telemetry provides observability instrumentation for hydrate.
//
// It integrates structured logging (zerolog), tracing (OpenTelemetry),
// metrics (Prometheus), and event publishing into one unit that the CLI
// wires into the convergence engine through an engine.Reporter adapter.
//
// # Usage
//
// Initialize telemetry at startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceVersion = version
//	cfg.Tracing.Enabled = true
//
//	tel, err := telemetry.New(cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
// Expose Prometheus metrics for the duration of a run:
//
//	if addr != "" {
//	    tel.Metrics.StartServer(addr)
//	}
//
// Feed the engine's progress into all pillars at once:
//
//	loop := engine.NewLoop(scanner, filter, pool, engine.LoopConfig{
//	    Reporter: telemetry.NewReporter(ctx, tel),
//	})
//
// The engine itself never imports this package; it only sees the Reporter
// interface.
package telemetry
