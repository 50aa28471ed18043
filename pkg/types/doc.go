// Package types defines the in-memory Frame handed to the table loader,
// the toolkit Config, and the standard errors shared by the decimator, the
// connection helpers and the loader.
package types
