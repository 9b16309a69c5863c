// Package identity normalises the two names every configuration lookup is keyed
// on: the service name and the deployment environment. Both derive a file-name
// form (kebab-case) and an environment-variable prefix form (UPPER_SNAKE_CASE)
// so that file discovery and environment discovery always agree on naming.
package identity
