// Package server wires the LinkSan HTTP service together.
//
// Server Lifecycle:
//  1. Build the logger from configuration
//  2. Load rules from LINKSAN_RULES_PATH, or the embedded defaults
//  3. Create metrics, tracing and the rule refresh service
//  4. Set up middleware (recovery, tracing, metrics, CORS, rate limiting)
//  5. Register routes and serve until the context is cancelled
//  6. Shut down gracefully and flush logs
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
