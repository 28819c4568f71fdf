// Package ingress exposes the bridge over HTTP.
//
// POST /orders accepts a JSON order and reports whether it was handed to the
// refbox transport. GET /health reports the connection state, and
// POST /connect and POST /disconnect drive the connection manager.
//
// Supervise drains the manager's error channel so abnormal disconnects are
// logged even when nobody is sending orders.
package ingress
