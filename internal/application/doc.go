// Package application wires a resolved configuration into the diagnostics
// HTTP server: handler, router, middleware and server timeouts.
package application
