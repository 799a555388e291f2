package v1

import (
	"net/http"

	"github.com/MGTheTrain/crypto-dispatch/internal/app"
	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"

	"github.com/gin-gonic/gin"
)

// OperationHandler defines the interface for the data operations of the dispatcher
type OperationHandler interface {
	Digest(ctx *gin.Context)
	Encrypt(ctx *gin.Context)
	Decrypt(ctx *gin.Context)
	Sign(ctx *gin.Context)
	Verify(ctx *gin.Context)
}

type operationHandler struct {
	dispatcher cryptoDomain.Dispatcher
	keys       *app.KeyRegistry
}

// NewOperationHandler creates a new OperationHandler
func NewOperationHandler(dispatcher cryptoDomain.Dispatcher, keys *app.KeyRegistry) OperationHandler {
	return &operationHandler{
		dispatcher: dispatcher,
		keys:       keys,
	}
}

// Digest handles the POST request to hash data
// @Summary Hash data
// @Description Compute the digest of base64 encoded data with SHA-1, SHA-2 or SHA-3.
// @Tags Operation
// @Accept json
// @Produce json
// @Param requestBody body DigestRequest true "Digest request"
// @Success 200 {object} BufferResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /digest [post]
func (handler *operationHandler) Digest(ctx *gin.Context) {
	var request DigestRequest
	if !bindRequest(ctx, &request) {
		return
	}

	alg, err := request.Algorithm.ToSpec().Normalize(cryptoDomain.OpDigest)
	if err != nil {
		badRequest(ctx, "invalid algorithm: %v", err)
		return
	}

	result, err := app.Run(ctx.Request.Context(), handler.dispatcher, &cryptoDomain.Request{
		Operation: cryptoDomain.OpDigest,
		Algorithm: alg,
		Data:      request.Data,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, BufferResponse{Data: result.Buffer()})
}

// Encrypt handles the POST request to encrypt data with a registered key
// @Summary Encrypt data
// @Tags Operation
// @Accept json
// @Produce json
// @Param requestBody body CipherRequest true "Encrypt request"
// @Success 200 {object} BufferResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /encrypt [post]
func (handler *operationHandler) Encrypt(ctx *gin.Context) {
	handler.keyed(ctx, cryptoDomain.OpEncrypt)
}

// Decrypt handles the POST request to decrypt data with a registered key
// @Summary Decrypt data
// @Tags Operation
// @Accept json
// @Produce json
// @Param requestBody body CipherRequest true "Decrypt request"
// @Success 200 {object} BufferResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /decrypt [post]
func (handler *operationHandler) Decrypt(ctx *gin.Context) {
	handler.keyed(ctx, cryptoDomain.OpDecrypt)
}

// Sign handles the POST request to sign or MAC data with a registered key
// @Summary Sign data
// @Tags Operation
// @Accept json
// @Produce json
// @Param requestBody body CipherRequest true "Sign request"
// @Success 200 {object} BufferResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sign [post]
func (handler *operationHandler) Sign(ctx *gin.Context) {
	handler.keyed(ctx, cryptoDomain.OpSign)
}

func (handler *operationHandler) keyed(ctx *gin.Context, op cryptoDomain.Operation) {
	var request CipherRequest
	if !bindRequest(ctx, &request) {
		return
	}

	alg, err := request.Algorithm.ToSpec().Normalize(op)
	if err != nil {
		badRequest(ctx, "invalid algorithm: %v", err)
		return
	}

	entry, err := handler.keys.Get(request.KeyID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	result, err := app.Run(ctx.Request.Context(), handler.dispatcher, &cryptoDomain.Request{
		Operation: op,
		Algorithm: alg,
		Key:       entry.Key,
		Data:      request.Data,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, BufferResponse{Data: result.Buffer()})
}

// Verify handles the POST request to check a signature or MAC
// @Summary Verify a signature
// @Description A well-formed signature that does not match yields valid=false; a malformed one is rejected with 422.
// @Tags Operation
// @Accept json
// @Produce json
// @Param requestBody body VerifyRequest true "Verify request"
// @Success 200 {object} VerifyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /verify [post]
func (handler *operationHandler) Verify(ctx *gin.Context) {
	var request VerifyRequest
	if !bindRequest(ctx, &request) {
		return
	}

	alg, err := request.Algorithm.ToSpec().Normalize(cryptoDomain.OpVerify)
	if err != nil {
		badRequest(ctx, "invalid algorithm: %v", err)
		return
	}

	entry, err := handler.keys.Get(request.KeyID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	result, err := app.Run(ctx.Request.Context(), handler.dispatcher, &cryptoDomain.Request{
		Operation: cryptoDomain.OpVerify,
		Algorithm: alg,
		Key:       entry.Key,
		Signature: request.Signature,
		Data:      request.Data,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, VerifyResponse{Valid: result.Boolean()})
}
