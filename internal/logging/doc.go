// Package logging builds the process zap logger from the resolved
// configuration: colored console sinks gated by verbosity and size-rotated
// JSON file sinks.
package logging
