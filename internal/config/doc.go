// Package config loads the kakeibo client configuration by merging three
// sources in priority order: environment variables, command-line flags, and
// an optional JSON file. Later sources fill only fields the earlier ones
// left empty (mergo semantics), and the merged result is validated before
// use.
package config
