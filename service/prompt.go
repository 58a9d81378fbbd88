package service

import (
	"strings"
)

const auditPreamble = "You are an expert legal auditor.\n\n"

// validationClause must come first: the model decides whether the audit
// makes sense before doing any of it.
const validationClause = `STEP 1 - VALIDATION:
Before auditing, decide whether BOTH documents are plausibly legal or business documents: one should read like a policy (internal rules, guidelines, standards) and the other like a contract (an agreement between parties).
If either document is clearly unrelated (for example a recipe, a poem, a personal letter, a news article, marketing copy), do not audit. Respond with ONLY this JSON object and nothing else:
{"error_type": "UNRELATED_DOCUMENTS", "message": "<one sentence explaining which document is unrelated and why>"}
`

const swapClause = `STEP 2 - DOCUMENT ROLES:
The two documents may have been provided in swapped order. Determine internally which one is the general policy (the ground truth rules) and which one is the specific agreement. Always audit the specific agreement against the general policy, regardless of the order they appear in above.
`

const auditTask = `STEP 3 - AUDIT:
Compare the agreement against the policy clause by clause. For every clause you check, quote the agreement text exactly and cite the specific policy rule it is checked against. Mark a clause PASS when it complies, WARNING when it is ambiguous or partially compliant, and CRITICAL when it violates the policy. Give a remediation suggestion for every clause that is not PASS.
`

// outputFormatClause is the JSON schema shown to the model.
const outputFormatClause = `OUTPUT FORMAT:
Return ONLY a JSON object that strictly matches this structure. No prose, no explanation, no markdown code fences.
{
  "audit_summary": {
    "risk_score": <integer 0-100, where 100 is fully compliant>,
    "critical_violations": <integer, the number of clauses with status CRITICAL>,
    "total_clauses_checked": <integer, the number of entries in clause_analysis>
  },
  "clause_analysis": [
    {
      "clause_name": "<short label, e.g. Payment Terms>",
      "contract_text": "<exact text from the agreement>",
      "policy_rule": "<the specific policy rule it is checked against>",
      "status": "PASS" | "WARNING" | "CRITICAL",
      "remediation_suggestion": "<how to fix it; omit when status is PASS>"
    }
  ]
}
`

// BuildAuditPrompt assembles the audit instructions around the two texts.
// It is pure: the same inputs always give the same prompt.
func BuildAuditPrompt(policyText, contractText string) string {
	var sb strings.Builder

	sb.WriteString(auditPreamble)

	sb.WriteString("DOCUMENT 1 (provided as the GROUND TRUTH POLICY):\n")
	sb.WriteString("<<<BEGIN DOCUMENT 1>>>\n")
	sb.WriteString(policyText)
	sb.WriteString("\n<<<END DOCUMENT 1>>>\n\n")

	sb.WriteString("DOCUMENT 2 (provided as the CONTRACT TO AUDIT):\n")
	sb.WriteString("<<<BEGIN DOCUMENT 2>>>\n")
	sb.WriteString(contractText)
	sb.WriteString("\n<<<END DOCUMENT 2>>>\n\n")

	sb.WriteString(validationClause)
	sb.WriteString("\n")
	sb.WriteString(swapClause)
	sb.WriteString("\n")
	sb.WriteString(auditTask)
	sb.WriteString("\n")
	sb.WriteString(outputFormatClause)

	return sb.String()
}
