package model

import (
	"fmt"
)

// Status is the traffic-light verdict for a single clause
type Status string

// Clause status constants
const (
	StatusPass     Status = "PASS"
	StatusWarning  Status = "WARNING"
	StatusCritical Status = "CRITICAL"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPass, StatusWarning, StatusCritical:
		return true
	}
	return false
}

// ErrorTypeUnrelatedDocuments tags an audit rejected because the uploads
// are not a policy/contract pair.
const ErrorTypeUnrelatedDocuments = "UNRELATED_DOCUMENTS"

// ClauseAnalysis is the verdict for one contract clause
type ClauseAnalysis struct {
	ClauseName            string `json:"clause_name"`
	ContractText          string `json:"contract_text"`
	PolicyRule            string `json:"policy_rule"`
	Status                Status `json:"status"`
	RemediationSuggestion string `json:"remediation_suggestion,omitempty"`
}

// AuditSummary aggregates the clause verdicts
type AuditSummary struct {
	RiskScore           int `json:"risk_score"` // 0-100, 100 = fully compliant
	CriticalViolations  int `json:"critical_violations"`
	TotalClausesChecked int `json:"total_clauses_checked"`
}

// AuditResponse is the successful outcome of an audit
type AuditResponse struct {
	AuditSummary   AuditSummary     `json:"audit_summary"`
	ClauseAnalysis []ClauseAnalysis `json:"clause_analysis"`
}

// Validate checks the summary against the clause list.
func (r *AuditResponse) Validate() error {
	s := r.AuditSummary
	if s.RiskScore < 0 || s.RiskScore > 100 {
		return fmt.Errorf("risk_score %d out of range [0,100]", s.RiskScore)
	}
	if s.CriticalViolations < 0 {
		return fmt.Errorf("critical_violations %d is negative", s.CriticalViolations)
	}
	if s.TotalClausesChecked < 0 {
		return fmt.Errorf("total_clauses_checked %d is negative", s.TotalClausesChecked)
	}

	critical := 0
	for i, c := range r.ClauseAnalysis {
		if c.ClauseName == "" {
			return fmt.Errorf("clause_analysis[%d].clause_name is empty", i)
		}
		if !c.Status.Valid() {
			return fmt.Errorf("clause_analysis[%d].status: invalid status %q", i, c.Status)
		}
		if c.Status == StatusCritical {
			critical++
		}
	}

	if s.CriticalViolations != critical {
		return fmt.Errorf("critical_violations is %d but %d clauses are CRITICAL", s.CriticalViolations, critical)
	}
	if s.TotalClausesChecked != len(r.ClauseAnalysis) {
		return fmt.Errorf("total_clauses_checked is %d but clause_analysis has %d entries", s.TotalClausesChecked, len(r.ClauseAnalysis))
	}
	return nil
}

// ValidationError is the alternate outcome of an audit: the model decided
// the documents cannot be audited against each other.
type ValidationError struct {
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorType, e.Message)
}
