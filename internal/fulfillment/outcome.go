package fulfillment

// Reason names the stage that ended an attempt early. The zero value means
// the attempt ran to classification.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonForcedSimulation Reason = "forced simulation"
	ReasonInitialization   Reason = "initialization failure"
	ReasonNavigation       Reason = "navigation failure"
	ReasonChallenge        Reason = "challenge"
	ReasonInputField       Reason = "input field issues"
	ReasonSubmission       Reason = "form submission issues"
	ReasonProcessing       Reason = "processing error"
)

// Outcome is the terminal result of one attempt. Success is always true;
// Simulated and ActualSuccess carry what really happened.
type Outcome struct {
	Success       bool   `json:"success"`
	Simulated     bool   `json:"simulated"`
	Message       string `json:"message"`
	ActualSuccess *bool  `json:"actualSuccess,omitempty"`
	Error         string `json:"error,omitempty"`
	Reason        Reason `json:"reason,omitempty"`
}

// StageFailed reports whether a workflow stage cut the attempt short.
// Forced simulation is a configured choice, not a failure.
func (o Outcome) StageFailed() bool {
	return o.Reason != ReasonNone && o.Reason != ReasonForcedSimulation
}
