package v1

import (
	"github.com/MGTheTrain/crypto-dispatch/internal/app"
	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all the API routes for version 1. The journal routes
// are only registered when repo is not nil.
func SetupRoutes(r *gin.Engine,
	dispatcher cryptoDomain.Dispatcher,
	keys *app.KeyRegistry,
	repo journal.Repository) {

	v1 := r.Group(BasePath)

	// Operation Routes
	operationHandler := NewOperationHandler(dispatcher, keys)
	v1.POST("/digest", operationHandler.Digest)
	v1.POST("/encrypt", operationHandler.Encrypt)
	v1.POST("/decrypt", operationHandler.Decrypt)
	v1.POST("/sign", operationHandler.Sign)
	v1.POST("/verify", operationHandler.Verify)

	// Keys Routes
	keyHandler := NewKeyHandler(dispatcher, keys)
	v1.POST("/keys/generate", keyHandler.Generate)
	v1.POST("/keys/import", keyHandler.Import)
	v1.GET("/keys", keyHandler.ListMetadata)
	v1.GET("/keys/:id", keyHandler.GetMetadataByID)
	v1.GET("/keys/:id/export", keyHandler.ExportByID)
	v1.DELETE("/keys/:id", keyHandler.DeleteByID)

	// Journal Routes
	if repo != nil {
		journalHandler := NewJournalHandler(repo)
		v1.GET("/operations", journalHandler.ListOperations)
		v1.GET("/operations/:id", journalHandler.GetOperationByID)
	}
}
