package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
	"ledgerly/internal/services"
	"ledgerly/internal/store"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for recording a transaction.
type CreateTransactionRequest struct {
	Kind        models.TransactionKind `json:"kind" binding:"required,transaction_kind"`
	Amount      int64                  `json:"amount" binding:"required"`
	Description string                 `json:"description" binding:"omitempty,max=500"`
	Category    string                 `json:"category" binding:"omitempty,max=100"`
	Date        time.Time              `json:"date" binding:"required"`
}

// CreateTransaction handles recording a new transaction.
// @Summary     Record a transaction
// @Description Record a money movement
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, req.Kind, req.Amount, req.Description, req.Category, req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"kind": req.Kind, "amount": req.Amount, "category": req.Category})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetTransactions handles listing transactions for the authenticated user.
// @Summary     Get transactions
// @Description Get a paginated list of transactions for the authenticated user
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       from      query string false "Start date (RFC 3339)"
// @Param       to        query string false "End date (RFC 3339)"
// @Param       category  query string false "Filter by category"
// @Param       kind      query string false "Filter by kind (income/expense)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter store.TransactionFilter
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from must be an RFC 3339 timestamp"))
			return
		}
		filter.FromDate = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must be an RFC 3339 timestamp"))
			return
		}
		filter.ToDate = &t
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}
	if v := c.Query("kind"); v != "" {
		switch v {
		case "income", "expense":
			k := models.TransactionKind(v)
			filter.Kind = &k
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "kind must be income or expense"))
			return
		}
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransaction handles fetching a single transaction by ID.
// @Summary     Get a transaction
// @Description Get a transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}
