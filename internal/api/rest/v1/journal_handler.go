package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"

	"github.com/gin-gonic/gin"
)

// JournalHandler defines the interface for reading the operation journal
type JournalHandler interface {
	ListOperations(ctx *gin.Context)
	GetOperationByID(ctx *gin.Context)
}

type journalHandler struct {
	repo journal.Repository
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(repo journal.Repository) JournalHandler {
	return &journalHandler{repo: repo}
}

// ListOperations handles the GET request to list journal records
// @Summary List completed operations
// @Description Fetch journal records filtered by operation, algorithm, outcome and creation time, newest first unless sorted otherwise.
// @Tags Journal
// @Produce json
// @Param operation query string false "Operation"
// @Param algorithm query string false "Algorithm"
// @Param outcome query string false "Outcome (buffer, key, boolean, error)"
// @Param since query string false "Created at or after (RFC3339)"
// @Param limit query int false "Limit the number of results"
// @Param offset query int false "Offset the results"
// @Param sortBy query string false "Sort by a specific field"
// @Param sortOrder query string false "Sort order (asc/desc)"
// @Success 200 {array} OperationRecordResponse
// @Failure 400 {object} ErrorResponse
// @Router /operations [get]
func (handler *journalHandler) ListOperations(ctx *gin.Context) {
	query := journal.NewOperationQuery()

	if operation := ctx.Query("operation"); len(operation) > 0 {
		query.Operation = operation
	}
	if algorithm := ctx.Query("algorithm"); len(algorithm) > 0 {
		query.Algorithm = algorithm
	}
	if outcome := ctx.Query("outcome"); len(outcome) > 0 {
		query.Outcome = outcome
	}
	if since := ctx.Query("since"); len(since) > 0 {
		parsedTime, err := time.Parse(time.RFC3339, since)
		if err != nil {
			badRequest(ctx, "invalid since: %v", err)
			return
		}
		query.Since = parsedTime
	}
	if limit := ctx.Query("limit"); len(limit) > 0 {
		n, err := strconv.Atoi(limit)
		if err != nil {
			badRequest(ctx, "invalid limit: %v", err)
			return
		}
		query.Limit = n
	}
	if offset := ctx.Query("offset"); len(offset) > 0 {
		n, err := strconv.Atoi(offset)
		if err != nil {
			badRequest(ctx, "invalid offset: %v", err)
			return
		}
		query.Offset = n
	}
	if sortBy := ctx.Query("sortBy"); len(sortBy) > 0 {
		query.SortBy = sortBy
	}
	if sortOrder := ctx.Query("sortOrder"); len(sortOrder) > 0 {
		query.SortOrder = sortOrder
	}

	if err := query.Validate(); err != nil {
		badRequest(ctx, "%v", err)
		return
	}

	records, err := handler.repo.List(ctx.Request.Context(), query)
	if err != nil {
		respondError(ctx, err)
		return
	}

	listResponse := make([]OperationRecordResponse, 0, len(records))
	for _, record := range records {
		listResponse = append(listResponse, newOperationRecordResponse(record))
	}
	ctx.JSON(http.StatusOK, listResponse)
}

// GetOperationByID handles the GET request to fetch one journal record
// @Summary Retrieve a completed operation by ID
// @Tags Journal
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} OperationRecordResponse
// @Failure 404 {object} ErrorResponse
// @Router /operations/{id} [get]
func (handler *journalHandler) GetOperationByID(ctx *gin.Context) {
	record, err := handler.repo.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, newOperationRecordResponse(record))
}
