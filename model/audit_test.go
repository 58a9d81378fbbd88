package model

import (
	"strings"
	"testing"
)

func validResponse() *AuditResponse {
	return &AuditResponse{
		AuditSummary: AuditSummary{
			RiskScore:           40,
			CriticalViolations:  1,
			TotalClausesChecked: 2,
		},
		ClauseAnalysis: []ClauseAnalysis{
			{
				ClauseName:            "Payment Terms",
				ContractText:          "Payment is due within 90 days.",
				PolicyRule:            "Payment must be due within 30 days.",
				Status:                StatusCritical,
				RemediationSuggestion: "Reduce the payment window to 30 days.",
			},
			{
				ClauseName:   "Governing Law",
				ContractText: "This agreement is governed by the laws of Delaware.",
				PolicyRule:   "Contracts must name a US governing law.",
				Status:       StatusPass,
			},
		},
	}
}

func TestStatusValid(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPass, true},
		{StatusWarning, true},
		{StatusCritical, true},
		{"pass", false},
		{"", false},
		{"HIGH", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("Status(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestAuditResponseValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *AuditResponse)
		wantErr string
	}{
		{
			name:   "consistent response",
			mutate: func(r *AuditResponse) {},
		},
		{
			name:    "risk score above range",
			mutate:  func(r *AuditResponse) { r.AuditSummary.RiskScore = 101 },
			wantErr: "risk_score",
		},
		{
			name:    "risk score below range",
			mutate:  func(r *AuditResponse) { r.AuditSummary.RiskScore = -1 },
			wantErr: "risk_score",
		},
		{
			name:    "critical count mismatch",
			mutate:  func(r *AuditResponse) { r.AuditSummary.CriticalViolations = 2 },
			wantErr: "critical_violations",
		},
		{
			name:    "total count mismatch",
			mutate:  func(r *AuditResponse) { r.AuditSummary.TotalClausesChecked = 5 },
			wantErr: "total_clauses_checked",
		},
		{
			name:    "unknown status",
			mutate:  func(r *AuditResponse) { r.ClauseAnalysis[1].Status = "OK" },
			wantErr: "invalid status",
		},
		{
			name:    "missing clause name",
			mutate:  func(r *AuditResponse) { r.ClauseAnalysis[0].ClauseName = "" },
			wantErr: "clause_name",
		},
		{
			name: "empty clause list",
			mutate: func(r *AuditResponse) {
				r.ClauseAnalysis = nil
				r.AuditSummary = AuditSummary{RiskScore: 100}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validResponse()
			tt.mutate(r)

			err := r.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{ErrorType: ErrorTypeUnrelatedDocuments, Message: "one file is a recipe"}
	if got := err.Error(); got != "UNRELATED_DOCUMENTS: one file is a recipe" {
		t.Errorf("Unexpected message: %s", got)
	}
}
