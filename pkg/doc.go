// Package pkg provides shared utilities for the softportal emulator.
//
// This package contains common functionality used across the portal engine,
// the toy store and the report transports, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error types for portal and transport failures
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with a component tag:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentPortal, "toy inserted", "slot", 0)
//
// # Errors
//
// Failures are reported as sentinel values, wrapped with context:
//
//	if errors.Is(err, pkg.ErrToyNotFound) {
//	    // Slot stays empty
//	}
package pkg
