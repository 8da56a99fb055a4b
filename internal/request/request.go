package request

// SendMessageRequest is the JSON body for a direct send.
type SendMessageRequest struct {
	To         string `json:"to"`
	Body       string `json:"body"`
	FromNumber string `json:"fromNumber,omitempty"`
}

// SchedulerRequest represents the JSON body for scheduler control.
type SchedulerRequest struct {
	// Action controls the scheduler. Allowed values:
	// - "start": begin periodic reconcile passes
	// - "stop":  stop scheduling new passes
	Action string `json:"action"`
}
