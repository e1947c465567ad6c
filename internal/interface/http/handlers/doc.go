// Package handlers contains reusable HTTP pieces for the tracker API.
//
// # Health Checks
//
// The CompositeHealthChecker runs named checks in parallel:
//
//	checker := handlers.NewCompositeHealthChecker("0.1.0")
//	checker.AddCheck("store", handlers.NewStoreCheck(store))
//
//	status := checker.Check(ctx)
//	if !status.Healthy {
//	    log.Printf("health check failed: %s", status.Message)
//	}
//
// # Middleware
//
//	auth := handlers.NewBasicAuth("me", bcryptHash, "tracker")
//
//	handler := handlers.ChainHandler(
//	    mux,
//	    handlers.SecurityHeadersMiddleware,
//	    handlers.NoCacheMiddleware,
//	    auth.Middleware,
//	)
package handlers
