// Package queue defines message payloads exchanged over the message broker.
package queue

// APIRequestEvent is published after every request served under /api. It
// carries enough context for downstream consumers to build access logs or
// traffic analytics without touching the service itself.
type APIRequestEvent struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	Route     string `json:"route"`
	Status    int    `json:"status"`
	Version   string `json:"version"`
	RemoteIP  string `json:"remote_ip"`
	LatencyMS int64  `json:"latency_ms"`
	Cache     string `json:"cache,omitempty"`
	ServedAt  string `json:"served_at"`
}
