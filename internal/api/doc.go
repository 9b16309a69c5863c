// Package api serves read-only diagnostics for the resolved configuration
// over HTTP.
package api
