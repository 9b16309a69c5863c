// Package sources discovers and reads the raw inputs of configuration
// resolution. A Definition describes one input (a file in one of three formats,
// a namespace of environment variables, or a candidate file that was checked
// and found absent). A Manifest orders definitions by precedence: when two
// definitions set the same key, the later one wins.
//
// Discovery searches, lowest precedence first:
//
//	home directory < user configuration directory < working directory
//
// and within each location YAML < JSON < TOML. One environment-variable
// namespace is appended last so that it overrides every file.
package sources
