package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/imports"
	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

var sessionStore imports.SessionStore

func initSessionStore() {
	ttl := config.ImportSessionTTL()
	if config.UseRedisSessionStore() && config.GetRedisDB() != nil {
		sessionStore = imports.NewRedisSessionStore(config.GetRedisDB(), ttl)
		return
	}
	sessionStore = imports.NewMemorySessionStore(ttl)
}

// importPreviewRequest is the shared body of every preview endpoint;
// kind-specific fields are optional here and checked per kind.
type importPreviewRequest struct {
	Content string `json:"content" binding:"required"`
	Format  string `json:"format" binding:"omitempty,oneof=tsv csv"`
	// product-steps only: the target version.
	ProductName string `json:"productName"`
	VersionName string `json:"versionName"`
}

type importConfirmRequest struct {
	ImportToken string `json:"importToken" binding:"required"`
}

type importPreviewResponse struct {
	Success     bool            `json:"success"`
	Preview     any             `json:"preview"`
	Errors      []imports.Issue `json:"errors"`
	Warnings    []imports.Issue `json:"warnings"`
	ImportToken string          `json:"importToken"`
}

func delimiterFromFormat(format string) imports.Delimiter {
	if format == "tsv" {
		return imports.DelimiterTab
	}
	return imports.DelimiterComma
}

// validateImport runs the kind's parse+validate. payload is nil when
// the upload is invalid; the result is staged either way so confirm can
// re-surface the errors.
func validateImport(kind string, req *importPreviewRequest, table imports.RawTable, snap *imports.StoreSnapshot) (any, *imports.ValidationResult) {
	switch kind {
	case "equipment-matrix":
		return imports.ValidateEquipmentMatrix(table, snap)
	case "products":
		return imports.ValidateProducts(table, snap)
	case "product-steps":
		return imports.ValidateProductSteps(table, snap, req.ProductName, req.VersionName)
	case "orders":
		return imports.ValidateOrders(table, snap)
	case "production-history":
		return imports.ValidateProductionHistory(table, snap)
	case "production-data":
		return imports.ValidateProductionData(table, snap)
	}
	return nil, nil
}

func importPreviewHandler(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()
		_ = sessionStore.Sweep(ctx, time.Now())

		var req importPreviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
			return
		}

		snap, err := models.LoadStoreSnapshot(ctx)
		if err != nil {
			config.LogError(logger, "importHandlers.go", "importPreviewHandler", "LoadStoreSnapshot", kind, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read store"})
			return
		}

		table := imports.ParseDelimited(req.Content, delimiterFromFormat(req.Format))
		payload, result := validateImport(kind, &req, table, snap)
		if result == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown import kind"})
			return
		}

		session, err := imports.NewSession(kind, payload, result)
		if err != nil {
			config.LogError(logger, "importHandlers.go", "importPreviewHandler", "NewSession", kind, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage import"})
			return
		}
		if err := sessionStore.Put(ctx, session); err != nil {
			config.LogError(logger, "importHandlers.go", "importPreviewHandler", "sessionStore.Put", kind, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage import"})
			return
		}

		c.JSON(http.StatusOK, importPreviewResponse{
			Success:     result.Valid,
			Preview:     result.Preview,
			Errors:      result.Errors,
			Warnings:    result.Warnings,
			ImportToken: session.Token,
		})
	}
}

// executeImport replays the staged payload into the store and returns
// the per-entity creation counts.
func executeImport(ctx context.Context, session *imports.Session) (any, error) {
	ctx, span := tracer.Start(ctx, "import.commit")
	span.SetAttributes(attribute.String("import.kind", session.Kind))
	defer span.End()

	switch session.Kind {
	case "equipment-matrix":
		var payload imports.EquipmentMatrixPayload
		if err := json.Unmarshal(session.Payload, &payload); err != nil {
			return nil, err
		}
		return models.ExecuteEquipmentMatrixImport(ctx, &payload)
	case "products", "product-steps":
		var payload imports.ProductStepsPayload
		if err := json.Unmarshal(session.Payload, &payload); err != nil {
			return nil, err
		}
		return models.ExecuteProductStepsImport(ctx, &payload)
	case "orders":
		var payload imports.OrdersPayload
		if err := json.Unmarshal(session.Payload, &payload); err != nil {
			return nil, err
		}
		return models.ExecuteOrdersImport(ctx, &payload)
	case "production-history", "production-data":
		var payload imports.ProductionHistoryPayload
		if err := json.Unmarshal(session.Payload, &payload); err != nil {
			return nil, err
		}
		return models.ExecuteProductionHistoryImport(ctx, &payload)
	}
	return nil, errors.New("unknown import kind")
}

func importConfirmHandler(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()
		_ = sessionStore.Sweep(ctx, time.Now())

		var req importConfirmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "importToken is required"})
			return
		}

		session, err := sessionStore.Take(ctx, req.ImportToken)
		if err != nil {
			if errors.Is(err, utils.ErrorSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "import session not found or expired"})
				return
			}
			config.LogError(logger, "importHandlers.go", "importConfirmHandler", "sessionStore.Take", kind, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load import session"})
			return
		}
		if session.Kind != kind {
			// Wrong endpoint for this token; put the session back so
			// the right endpoint can still consume it.
			if putErr := sessionStore.Put(ctx, session); putErr != nil {
				config.LogError(logger, "importHandlers.go", "importConfirmHandler", "sessionStore.Put", kind, putErr)
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "import session not found or expired"})
			return
		}
		if !session.Result.Valid {
			// The staged validation failed; re-surface the original
			// errors. The caller must re-preview after fixing the data.
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"errors":  session.Result.Errors,
			})
			return
		}

		result, err := executeImport(ctx, session)
		if err != nil {
			// Rows inserted before the failure stay persisted; the
			// partial counts let the caller reconcile.
			config.LogError(logger, "importHandlers.go", "importConfirmHandler", "executeImport", kind, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   err.Error(),
				"result":  result,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"result":  result,
		})
	}
}
