package models

import "time"

// HealthResponse reports process health while a run is active.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// RunStatusResponse reports queue progress for the status endpoint.
type RunStatusResponse struct {
	Pending   int    `json:"pending"`
	Current   string `json:"current,omitempty"`
	Attempted int    `json:"attempted"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
}
