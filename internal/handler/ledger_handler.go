package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/grachmannico95/payment-engine/internal/domain"
	"github.com/grachmannico95/payment-engine/internal/service"
	"github.com/grachmannico95/payment-engine/pkg/logger"
)

type LedgerHandler struct {
	service service.EngineService
	logger  *logger.Logger
}

func NewLedgerHandler(svc service.EngineService, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		service: svc,
		logger:  log,
	}
}

// Upload accepts a `type,client,tx,amount` CSV and starts processing it.
func (h *LedgerHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	h.logger.Info(ctx, "Handling transaction upload")

	file, err := c.FormFile("file")
	if err != nil {
		h.logger.Error(ctx, "Failed to get file from request",
			"error", err,
		)
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "file is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		h.logger.Error(ctx, "Failed to open file",
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to open file",
		})
	}
	defer src.Close()

	uploadID, err := h.service.UploadTransactions(ctx, src)
	if err != nil {
		h.logger.Error(ctx, "Failed to start transaction processing",
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to upload transactions",
		})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"upload_id": uploadID,
		"status":    "processing",
	})
}

// GetAccounts returns the final account snapshots of one upload.
func (h *LedgerHandler) GetAccounts(c echo.Context) error {
	ctx := c.Request().Context()

	uploadID := c.QueryParam("upload_id")
	if uploadID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "upload_id is required",
		})
	}

	snapshots, err := h.service.GetSnapshots(ctx, uploadID)
	if err != nil {
		if errors.Is(err, domain.ErrUploadNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "upload not found",
			})
		}

		h.logger.Error(ctx, "Failed to get account snapshots",
			"upload_id", uploadID,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get accounts",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"upload_id": uploadID,
		"accounts":  snapshots,
	})
}

// GetUpload reports the processing status of one upload.
func (h *LedgerHandler) GetUpload(c echo.Context) error {
	ctx := c.Request().Context()

	uploadID := c.QueryParam("upload_id")
	if uploadID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "upload_id is required",
		})
	}

	upload, err := h.service.GetUploadStatus(ctx, uploadID)
	if err != nil {
		if errors.Is(err, domain.ErrUploadNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "upload not found",
			})
		}

		h.logger.Error(ctx, "Failed to get upload status",
			"upload_id", uploadID,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get upload",
		})
	}

	return c.JSON(http.StatusOK, upload)
}
