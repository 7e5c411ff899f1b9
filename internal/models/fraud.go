package models

// FraudChecks records which individual check families passed.
type FraudChecks struct {
	EmailCheck    bool `json:"emailCheck"`
	AmountCheck   bool `json:"amountCheck"`
	VelocityCheck bool `json:"velocityCheck"`
}

// FraudCheckResult is the outcome of one scoring run. The score is an
// additive accumulation of weighted signals, not a normalized probability.
// It is logged to the audit trail but never persisted as its own entity.
type FraudCheckResult struct {
	RiskScore float64     `json:"riskScore"`
	IsBlocked bool        `json:"isBlocked"`
	Reasons   []string    `json:"reasons"`
	Checks    FraudChecks `json:"checks"`
}
