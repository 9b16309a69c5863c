// Package config resolves the process configuration once at startup. Sources
// are layered with precedence: CLI overrides > environment variables >
// working directory > user config directory > home directory. Within one
// directory TOML beats JSON which beats YAML. Resolution runs in two phases:
// the first finds the environment, the second adds environment-scoped files
// and variables on top.
package config
