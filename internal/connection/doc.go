// Package connection implements the refbox Connection Manager.
//
// The Connection Manager:
//   - Owns one streaming transport to the refbox (TCP or WebSocket tunnel)
//   - Tracks Disconnected / Connecting / Connected from transport callbacks
//   - Translates and sends orders only while Connected
//   - Reports abnormal disconnects as *ConnectionError on Errors()
//
// Connect and Disconnect are requests: they return immediately and the state
// changes when the transport reports back. Nothing is retried automatically.
package connection
