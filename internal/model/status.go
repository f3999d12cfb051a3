package model

import "fmt"

// ApprovalStatus is shared by stock movements, product requests and reversal
// requests. pending is the only non-terminal state.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s ApprovalStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseApprovalStatus converts a query-string value; empty means "no filter".
func ParseApprovalStatus(value string) (*ApprovalStatus, error) {
	if value == "" {
		return nil, nil
	}
	status := ApprovalStatus(value)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status %q", value)
	}
	return &status, nil
}
