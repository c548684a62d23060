package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/safient/safient-escrow/internal/api/shared/constants"
	"github.com/safient/safient-escrow/internal/api/shared/dto"
	"github.com/safient/safient-escrow/internal/api/shared/executor"
)

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// CreateTransfer creates an escrow or regular transfer
	// POST /api/v1/transfers
	CreateTransfer(c *gin.Context)

	// ListTransfers lists transfers, newest first
	// GET /api/v1/transfers?user=<address>&limit=<limit>
	// Runs an opportunistic sweep first when enabled
	ListTransfers(c *gin.Context)

	// GetTransfer returns a transfer with its protection window state
	// GET /api/v1/transfers/:id
	GetTransfer(c *gin.Context)

	// GetTransferHistory returns the status transitions of a transfer
	// GET /api/v1/transfers/:id/history
	GetTransferHistory(c *gin.Context)

	// ReclaimTransfer returns escrowed funds to the sender
	// POST /api/v1/transfers/:id/reclaim
	ReclaimTransfer(c *gin.Context)

	// ReleaseTransfer pays an expired escrow to the recipient
	// POST /api/v1/transfers/:id/release
	ReleaseTransfer(c *gin.Context)

	// Sweep releases every expired escrow
	// GET|POST /api/v1/sweep
	Sweep(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{
		executor: exec,
	}
}

// CreateTransfer creates a transfer
func (h *handler) CreateTransfer(c *gin.Context) {
	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	input, err := req.Validate()
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.executor.CreateTransfer(c.Request.Context(), *input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListTransfers lists transfers
func (h *handler) ListTransfers(c *gin.Context) {
	queryParams, err := ParseListTransfersQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	resp, err := h.executor.ListTransfers(c.Request.Context(), queryParams.Address, queryParams.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetTransfer returns the status view of a transfer
func (h *handler) GetTransfer(c *gin.Context) {
	transferID, ok := transferIDParam(c)
	if !ok {
		return
	}

	resp, err := h.executor.GetTransferStatus(c.Request.Context(), transferID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetTransferHistory returns the history of a transfer
func (h *handler) GetTransferHistory(c *gin.Context) {
	transferID, ok := transferIDParam(c)
	if !ok {
		return
	}

	resp, err := h.executor.GetTransferHistory(c.Request.Context(), transferID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReclaimTransfer reclaims an escrow
func (h *handler) ReclaimTransfer(c *gin.Context) {
	transferID, ok := transferIDParam(c)
	if !ok {
		return
	}

	var req dto.ReclaimTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.executor.ReclaimTransfer(c.Request.Context(), transferID, strings.TrimSpace(req.SenderSecret))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReleaseTransfer releases an expired escrow
func (h *handler) ReleaseTransfer(c *gin.Context) {
	transferID, ok := transferIDParam(c)
	if !ok {
		return
	}

	resp, err := h.executor.ReleaseTransfer(c.Request.Context(), transferID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Sweep runs a sweep pass
func (h *handler) Sweep(c *gin.Context) {
	resp, err := h.executor.Sweep(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Service: constants.SERVICE_NAME,
	})
}

func transferIDParam(c *gin.Context) (string, bool) {
	transferID := strings.TrimSpace(c.Param("id"))
	if transferID == "" {
		respondBadRequest(c, "Transfer ID is required")
		return "", false
	}
	return transferID, true
}
