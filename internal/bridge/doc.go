// Package bridge assembles a connection manager and its transport from a
// loaded configuration.
package bridge
