package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MGTheTrain/crypto-dispatch/internal/app"
	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"

	"github.com/gin-gonic/gin"
)

type validatable interface {
	Validate() error
}

var cryptoCauses = []error{
	cryptoDomain.ErrBackendFailure,
	cryptoDomain.ErrUnsupportedAlgorithm,
	cryptoDomain.ErrInvalidParameters,
	cryptoDomain.ErrKeyMismatch,
	cryptoDomain.ErrInvalidAccess,
	cryptoDomain.ErrUnsupportedFormat,
	cryptoDomain.ErrMalformedKeyData,
	cryptoDomain.ErrMalformedSignature,
	cryptoDomain.ErrOperationFailed,
	cryptoDomain.ErrNotExtractable,
}

// bindRequest decodes and validates the JSON body. It writes a 400 response and
// returns false when the body is unusable.
func bindRequest(ctx *gin.Context, request validatable) bool {
	if err := ctx.ShouldBindJSON(request); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	if err := request.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return false
	}
	return true
}

func badRequest(ctx *gin.Context, format string, args ...interface{}) {
	ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: fmt.Sprintf(format, args...)})
}

// respondError maps err onto a status code: unknown IDs give 404, requests the
// crypto layer rejected give 422.
func respondError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrKeyNotFound), errors.Is(err, journal.ErrRecordNotFound):
		status = http.StatusNotFound
	default:
		for _, cause := range cryptoCauses {
			if errors.Is(err, cause) {
				status = http.StatusUnprocessableEntity
				break
			}
		}
	}
	ctx.JSON(status, ErrorResponse{Message: err.Error()})
}
