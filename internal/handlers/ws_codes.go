// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the process log stream.
const (
	InvalidProcessIDError = 3003 // Process id in the WS URL is not a number or names no known deck.
)
