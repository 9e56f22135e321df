package models

// ApplyResult represents the outcome of a label attachment attempt on a single message
type ApplyResult int

const (
	ResultFailed ApplyResult = iota
	ResultApplied
	ResultAlreadyLabeled
)
