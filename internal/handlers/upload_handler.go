package handlers

import (
	"fmt"
	"net/http"

	"github.com/agamariel/cocapremium/internal/apperr"
	"github.com/agamariel/cocapremium/internal/models"
	"github.com/agamariel/cocapremium/internal/services"
	"github.com/labstack/echo/v4"
)

// ProofFormField - имя поля multipart с файлом чека.
const ProofFormField = "paymentProof"

const (
	// proofCacheControl - чеки неизменяемы, их имя уникально.
	proofCacheControl = "public, max-age=31536000, immutable"
	// proofCSP запрещает чеку выполнять скрипты и загружать что-либо с нашего origin.
	proofCSP = "sandbox; default-src 'none'"
)

// UploadHandler принимает и отдаёт файлы чеков.
type UploadHandler struct {
	uploads  services.UploadService
	maxBytes int64
}

// NewUploadHandler создаёт новый экземпляр UploadHandler.
func NewUploadHandler(uploads services.UploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{uploads: uploads, maxBytes: maxBytes}
}

// UploadProof обрабатывает POST /api/upload/payment-proof.
func (h *UploadHandler) UploadProof(c echo.Context) error {
	fh, err := c.FormFile(ProofFormField)
	if err != nil {
		return apperr.Validation(models.FieldPaymentProof, "No se ha subido ningún archivo")
	}

	// тип и размер проверяем по заголовку до открытия файла
	contentType := fh.Header.Get(echo.HeaderContentType)
	if err := services.CheckProof(contentType, fh.Size, h.maxBytes); err != nil {
		return err
	}

	file, err := fh.Open()
	if err != nil {
		return apperr.Upload(err)
	}
	defer file.Close()

	url, err := h.uploads.UploadProof(c.Request().Context(), services.ProofUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        file,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, models.UploadResponse{URL: url}, "Comprobante subido correctamente")
}

// GetProof обрабатывает GET /api/proofs/:name.
func (h *UploadHandler) GetProof(c echo.Context) error {
	blob, err := h.uploads.GetProof(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}

	header := c.Response().Header()
	header.Set("Cache-Control", proofCacheControl)
	header.Set("Content-Security-Policy", proofCSP)
	header.Set("X-Content-Type-Options", "nosniff")

	// то, что не является допустимым изображением, только скачивается
	contentType, ok := models.ProofImageType(blob.ContentType)
	if !ok {
		header.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", blob.Name))
		return c.Blob(http.StatusOK, echo.MIMEOctetStream, blob.Data)
	}
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", blob.Name))
	return c.Blob(http.StatusOK, contentType, blob.Data)
}
