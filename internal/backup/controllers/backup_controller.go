package controllers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/backup/services"
	"github.com/c14220110/mediflow-backend/internal/common/middlewares"
	"github.com/c14220110/mediflow-backend/internal/common/response"
)

// maxBackupSize membatasi ukuran dokumen restore yang dibaca dari body.
const maxBackupSize = 32 << 20

type BackupController struct {
	Service *services.BackupService
}

func NewBackupController(service *services.BackupService) *BackupController {
	return &BackupController{Service: service}
}

// Export mengirim dokumen backup sebagai lampiran JSON.
func (bc *BackupController) Export(c echo.Context) error {
	doc, err := bc.Service.Export(middlewares.IdentityFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	name := fmt.Sprintf("mediflow_backup_%s.json", doc.Date.Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.JSON(http.StatusOK, doc)
}

// PreviewRestore memvalidasi dokumen dan mengembalikan jumlah data tanpa mengubah state.
func (bc *BackupController) PreviewRestore(c echo.Context) error {
	raw, err := readBody(c)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	p, err := bc.Service.PreviewRestore(middlewares.IdentityFrom(c), raw)
	if err != nil {
		return response.Error(c, err)
	}
	return response.JSON(c, http.StatusOK, "Backup is valid", p)
}

// CommitRestore mengganti seluruh data dengan isi dokumen.
func (bc *BackupController) CommitRestore(c echo.Context) error {
	raw, err := readBody(c)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "Invalid request payload", nil)
	}
	p, err := bc.Service.CommitRestore(c.Request().Context(), middlewares.IdentityFrom(c), raw)
	return response.Committed(c, http.StatusOK, "Backup restored successfully", p, err)
}

func readBody(c echo.Context) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request().Body, maxBackupSize))
}
