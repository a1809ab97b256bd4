// Package types defines the ResponseStore interface, the service Config,
// and the standard errors shared by the store, the HTTP layer, and the CLI.
package types
