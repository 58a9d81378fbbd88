package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/lexai/backend/model"
)

const defaultUnrelatedMessage = "The uploaded documents do not appear to be a policy and a contract that can be audited against each other."

// fenceRe matches a markdown code fence block (``` or ~~~) with an optional
// language tag and captures the content between the fences.
var fenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})[^\\n]*\\n(.*?)(?:`{3}|~{3})\\s*$")

// stripMarkdownFences removes fences some models wrap around JSON even when
// told not to.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// Wire shapes with pointer fields so a missing key can be told apart from
// a zero value.
type rawSummary struct {
	RiskScore           *int `json:"risk_score"`
	CriticalViolations  *int `json:"critical_violations"`
	TotalClausesChecked *int `json:"total_clauses_checked"`
}

type rawClause struct {
	ClauseName            *string       `json:"clause_name"`
	ContractText          *string       `json:"contract_text"`
	PolicyRule            *string       `json:"policy_rule"`
	Status                *model.Status `json:"status"`
	RemediationSuggestion *string       `json:"remediation_suggestion"`
}

type rawAudit struct {
	AuditSummary   *rawSummary  `json:"audit_summary"`
	ClauseAnalysis *[]rawClause `json:"clause_analysis"`
}

// ParseAuditOutput turns raw model text into exactly one outcome: a valid
// *model.AuditResponse, a *model.ValidationError when the model rejected
// the documents, or a *ParseError for anything else.
func ParseAuditOutput(raw string) (*model.AuditResponse, error) {
	text := stripMarkdownFences(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil || fields == nil {
		return nil, &ParseError{Reason: "response is not a JSON object", Raw: raw, Err: err}
	}

	if rejection := unrelatedDocuments(fields); rejection != nil {
		return nil, rejection
	}

	var ra rawAudit
	if err := json.Unmarshal([]byte(text), &ra); err != nil {
		return nil, &ParseError{Reason: "response does not match the audit schema", Raw: raw, Err: err}
	}

	resp, err := ra.toModel()
	if err != nil {
		return nil, &ParseError{Reason: "missing required field", Raw: raw, Err: err}
	}
	if err := resp.Validate(); err != nil {
		return nil, &ParseError{Reason: "inconsistent audit", Raw: raw, Err: err}
	}
	return resp, nil
}

// unrelatedDocuments returns the rejection carried by fields, if any.
func unrelatedDocuments(fields map[string]json.RawMessage) *model.ValidationError {
	rawType, ok := fields["error_type"]
	if !ok {
		return nil
	}
	var errorType string
	if err := json.Unmarshal(rawType, &errorType); err != nil || errorType != model.ErrorTypeUnrelatedDocuments {
		return nil
	}

	message := defaultUnrelatedMessage
	for _, key := range []string{"message", "error"} {
		var s string
		if err := json.Unmarshal(fields[key], &s); err == nil && strings.TrimSpace(s) != "" {
			message = s
			break
		}
	}
	return &model.ValidationError{ErrorType: errorType, Message: message}
}

func (ra *rawAudit) toModel() (*model.AuditResponse, error) {
	if ra.AuditSummary == nil {
		return nil, fmt.Errorf("audit_summary")
	}
	s := ra.AuditSummary
	switch {
	case s.RiskScore == nil:
		return nil, fmt.Errorf("audit_summary.risk_score")
	case s.CriticalViolations == nil:
		return nil, fmt.Errorf("audit_summary.critical_violations")
	case s.TotalClausesChecked == nil:
		return nil, fmt.Errorf("audit_summary.total_clauses_checked")
	}
	if ra.ClauseAnalysis == nil {
		return nil, fmt.Errorf("clause_analysis")
	}

	clauses := make([]model.ClauseAnalysis, 0, len(*ra.ClauseAnalysis))
	for i, c := range *ra.ClauseAnalysis {
		switch {
		case c.ClauseName == nil:
			return nil, fmt.Errorf("clause_analysis[%d].clause_name", i)
		case c.ContractText == nil:
			return nil, fmt.Errorf("clause_analysis[%d].contract_text", i)
		case c.PolicyRule == nil:
			return nil, fmt.Errorf("clause_analysis[%d].policy_rule", i)
		case c.Status == nil:
			return nil, fmt.Errorf("clause_analysis[%d].status", i)
		}
		clause := model.ClauseAnalysis{
			ClauseName:   *c.ClauseName,
			ContractText: *c.ContractText,
			PolicyRule:   *c.PolicyRule,
			Status:       *c.Status,
		}
		if c.RemediationSuggestion != nil {
			clause.RemediationSuggestion = *c.RemediationSuggestion
		}
		clauses = append(clauses, clause)
	}

	return &model.AuditResponse{
		AuditSummary: model.AuditSummary{
			RiskScore:           *s.RiskScore,
			CriticalViolations:  *s.CriticalViolations,
			TotalClausesChecked: *s.TotalClausesChecked,
		},
		ClauseAnalysis: clauses,
	}, nil
}
