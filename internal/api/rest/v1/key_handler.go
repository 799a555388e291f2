package v1

import (
	"encoding/pem"
	"fmt"
	"net/http"

	"github.com/MGTheTrain/crypto-dispatch/internal/app"
	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/infrastructure/cryptography"

	"github.com/gin-gonic/gin"
)

// KeyHandler defines the interface for handling key-related operations
type KeyHandler interface {
	Generate(ctx *gin.Context)
	Import(ctx *gin.Context)
	ListMetadata(ctx *gin.Context)
	GetMetadataByID(ctx *gin.Context)
	ExportByID(ctx *gin.Context)
	DeleteByID(ctx *gin.Context)
}

type keyHandler struct {
	dispatcher cryptoDomain.Dispatcher
	keys       *app.KeyRegistry
}

// NewKeyHandler creates a new KeyHandler
func NewKeyHandler(dispatcher cryptoDomain.Dispatcher, keys *app.KeyRegistry) KeyHandler {
	return &keyHandler{
		dispatcher: dispatcher,
		keys:       keys,
	}
}

// Generate handles the POST request to generate a key
// @Summary Generate a key
// @Description Generate a secret key or key pair. Key pairs are registered as a private and a public key sharing a pair id.
// @Tags Key
// @Accept json
// @Produce json
// @Param requestBody body GenerateKeyRequest true "Key generation request"
// @Success 201 {array} KeyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /keys/generate [post]
func (handler *keyHandler) Generate(ctx *gin.Context) {
	var request GenerateKeyRequest
	if !bindRequest(ctx, &request) {
		return
	}

	alg, err := request.Algorithm.ToSpec().Normalize(cryptoDomain.OpGenerateKey)
	if err != nil {
		badRequest(ctx, "invalid algorithm: %v", err)
		return
	}
	usages, err := cryptoDomain.ParseUsages(request.Usages)
	if err != nil {
		badRequest(ctx, "invalid usages: %v", err)
		return
	}

	result, err := app.Run(ctx.Request.Context(), handler.dispatcher, &cryptoDomain.Request{
		Operation:   cryptoDomain.OpGenerateKey,
		Algorithm:   alg,
		Extractable: request.Extractable,
		Usages:      usages,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	var entries []*app.KeyEntry
	if key := result.Key(); key.Type() == cryptoDomain.KeyTypePrivate {
		entries, err = handler.keys.AddPair(key)
	} else {
		var entry *app.KeyEntry
		entry, err = handler.keys.Add(key)
		entries = []*app.KeyEntry{entry}
	}
	if err != nil {
		respondError(ctx, err)
		return
	}

	listResponse := make([]KeyResponse, 0, len(entries))
	for _, entry := range entries {
		listResponse = append(listResponse, newKeyResponse(entry))
	}
	ctx.JSON(http.StatusCreated, listResponse)
}

// Import handles the POST request to import a key
// @Summary Import a key
// @Description Import a raw, pkcs8, spki or jwk key. The algorithm may be omitted when the key data names it.
// @Tags Key
// @Accept json
// @Produce json
// @Param requestBody body ImportKeyRequest true "Key import request"
// @Success 201 {object} KeyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /keys/import [post]
func (handler *keyHandler) Import(ctx *gin.Context) {
	var request ImportKeyRequest
	if !bindRequest(ctx, &request) {
		return
	}

	var alg *cryptoDomain.Algorithm
	if request.Algorithm != nil {
		var err error
		alg, err = request.Algorithm.ToSpec().Normalize(cryptoDomain.OpImportKey)
		if err != nil {
			badRequest(ctx, "invalid algorithm: %v", err)
			return
		}
	}
	usages, err := cryptoDomain.ParseUsages(request.Usages)
	if err != nil {
		badRequest(ctx, "invalid usages: %v", err)
		return
	}

	result, err := app.Run(ctx.Request.Context(), handler.dispatcher, &cryptoDomain.Request{
		Operation:   cryptoDomain.OpImportKey,
		Algorithm:   alg,
		Format:      cryptoDomain.KeyFormat(request.Format),
		KeyData:     request.Data(),
		Extractable: request.Extractable,
		Usages:      usages,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	entry, err := handler.keys.Add(result.Key())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, newKeyResponse(entry))
}

// ListMetadata handles the GET request to list registered keys
// @Summary List registered keys
// @Tags Key
// @Produce json
// @Success 200 {array} KeyResponse
// @Router /keys [get]
func (handler *keyHandler) ListMetadata(ctx *gin.Context) {
	entries := handler.keys.List()

	listResponse := make([]KeyResponse, 0, len(entries))
	for _, entry := range entries {
		listResponse = append(listResponse, newKeyResponse(entry))
	}
	ctx.JSON(http.StatusOK, listResponse)
}

// GetMetadataByID handles the GET request to describe a key by ID
// @Summary Retrieve key metadata by ID
// @Tags Key
// @Produce json
// @Param id path string true "Key ID"
// @Success 200 {object} KeyResponse
// @Failure 404 {object} ErrorResponse
// @Router /keys/{id} [get]
func (handler *keyHandler) GetMetadataByID(ctx *gin.Context) {
	entry, err := handler.keys.Get(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, newKeyResponse(entry))
}

// ExportByID handles the GET request to export an extractable key
// @Summary Export a key by ID
// @Description Export a key as jwk (default), raw, pkcs8 or spki. pkcs8 and spki are PEM encoded.
// @Tags Key
// @Produce application/json
// @Produce application/octet-stream
// @Produce application/x-pem-file
// @Param id path string true "Key ID"
// @Param format query string false "Key format"
// @Success 200 {file} file "Exported key"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /keys/{id}/export [get]
func (handler *keyHandler) ExportByID(ctx *gin.Context) {
	keyID := ctx.Param("id")

	format, err := cryptoDomain.ParseKeyFormat(ctx.DefaultQuery("format", string(cryptoDomain.FormatJWK)))
	if err != nil {
		badRequest(ctx, "invalid format: %v", err)
		return
	}

	entry, err := handler.keys.Get(keyID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	data, err := cryptography.ExportKey(entry.Key, format)
	if err != nil {
		respondError(ctx, err)
		return
	}

	switch format {
	case cryptoDomain.FormatJWK:
		ctx.Data(http.StatusOK, "application/json", data)
	case cryptoDomain.FormatRaw:
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.bin", keyID))
		ctx.Data(http.StatusOK, "application/octet-stream", data)
	default:
		blockType := "PUBLIC KEY"
		if format == cryptoDomain.FormatPKCS8 {
			blockType = "PRIVATE KEY"
		}
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.pem", keyID, format))
		ctx.Data(http.StatusOK, "application/x-pem-file", pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: data}))
	}
}

// DeleteByID handles the DELETE request to remove a key by ID
// @Summary Delete a key by ID
// @Tags Key
// @Produce json
// @Param id path string true "Key ID"
// @Success 204 {object} InfoResponse
// @Failure 404 {object} ErrorResponse
// @Router /keys/{id} [delete]
func (handler *keyHandler) DeleteByID(ctx *gin.Context) {
	keyID := ctx.Param("id")

	if err := handler.keys.Delete(keyID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusNoContent, InfoResponse{Message: fmt.Sprintf("deleted key with id %s", keyID)})
}
