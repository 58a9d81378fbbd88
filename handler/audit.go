package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexai/backend/model"
	"github.com/lexai/backend/pkg/logger"
)

// ContractAuditor runs one audit of a contract against a policy.
type ContractAuditor interface {
	Audit(ctx context.Context, policy, contract []byte) (*model.AuditResponse, error)
}

type AuditHandler struct {
	auditor   ContractAuditor
	maxMemory int64
}

// NewAuditHandler builds the audit endpoint. uploadLimit is the largest
// body accepted and is kept in memory while parsing.
func NewAuditHandler(auditor ContractAuditor, uploadLimit int64) *AuditHandler {
	return &AuditHandler{auditor: auditor, maxMemory: multipartMemory(uploadLimit)}
}

// AuditContract handles POST /audit-contract with the multipart files
// policy_file and contract_file.
func (h *AuditHandler) AuditContract(c *gin.Context) {
	if err := parseForm(c, h.maxMemory); err != nil {
		if isTooLarge(err) {
			respondError(c, err)
			return
		}
		badRequest(c, "Expected a multipart form with policy_file and contract_file")
		return
	}

	policy, err := readFormFile(c, "policy_file")
	if err != nil {
		h.fileError(c, "policy_file", err)
		return
	}
	contract, err := readFormFile(c, "contract_file")
	if err != nil {
		h.fileError(c, "contract_file", err)
		return
	}

	logger.Debug(c.Request.Context(), "audit request received",
		"policy_bytes", len(policy),
		"contract_bytes", len(contract),
	)

	resp, err := h.auditor.Audit(c.Request.Context(), policy, contract)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuditHandler) fileError(c *gin.Context, field string, err error) {
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		badRequest(c, fmt.Sprintf("%s is required", field))
	case isTooLarge(err):
		respondError(c, err)
	default:
		respondError(c, fmt.Errorf("reading %s: %w", field, err))
	}
}

// readFormFile reads an uploaded part fully into memory.
func readFormFile(c *gin.Context, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return readPart(header)
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
