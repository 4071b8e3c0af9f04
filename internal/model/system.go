package model

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// BreakerStatus describes the state of one upstream circuit breaker.
type BreakerStatus struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	Requests            uint32 `json:"requests"`
	ConsecutiveFailures uint32 `json:"consecutiveFailures"`
}
