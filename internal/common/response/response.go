package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/common/errs"
)

// Kode error yang stabil untuk frontend.
const (
	CodeValidationError         = "VALIDATION_ERROR"
	CodeInvalidTransition       = "INVALID_TRANSITION"
	CodeResourceNotFound        = "RESOURCE_NOT_FOUND"
	CodeUnderpayment            = "UNDERPAYMENT"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodePersistenceError        = "PERSISTENCE_ERROR"
	CodeRestoreFormatError      = "RESTORE_FORMAT_ERROR"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeInternalError           = "INTERNAL_ERROR"
)

// JSON mengirim struktur standar: { "status": HTTP_CODE, "message": "...", "data": ... }
func JSON(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// Fail mengirim error dengan kode stabil.
func Fail(c echo.Context, status int, code, message string, data interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"status":  status,
		"code":    code,
		"message": message,
		"data":    data,
	})
}

// Error memetakan error domain ke HTTP status.
func Error(c echo.Context, err error) error {
	status, code := Classify(err)
	var data interface{}
	var under *errs.UnderpaymentError
	if errors.As(err, &under) {
		data = map[string]interface{}{"remaining": under.Remaining}
	}
	return Fail(c, status, code, err.Error(), data)
}

// Committed dipakai setelah mutasi: kegagalan simpan tetap 200 dengan peringatan.
func Committed(c echo.Context, status int, message string, data interface{}, err error) error {
	if err == nil {
		return JSON(c, status, message, data)
	}
	if errs.IsPersistence(err) {
		return c.JSON(status, map[string]interface{}{
			"status":  status,
			"code":    CodePersistenceError,
			"message": message + " (not saved to storage: " + err.Error() + ")",
			"data":    data,
		})
	}
	return Error(c, err)
}

func Classify(err error) (int, string) {
	var (
		validation *errs.ValidationError
		transition *errs.InvalidTransitionError
		reference  *errs.ReferenceError
		under      *errs.UnderpaymentError
		authz      *errs.AuthorizationError
		persist    *errs.PersistenceError
		restore    *errs.RestoreFormatError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, CodeValidationError
	case errors.As(err, &transition):
		return http.StatusConflict, CodeInvalidTransition
	case errors.As(err, &reference):
		return http.StatusNotFound, CodeResourceNotFound
	case errors.As(err, &under):
		return http.StatusUnprocessableEntity, CodeUnderpayment
	case errors.As(err, &authz):
		return http.StatusForbidden, CodeInsufficientPermissions
	case errors.As(err, &restore):
		return http.StatusBadRequest, CodeRestoreFormatError
	case errors.As(err, &persist):
		return http.StatusInternalServerError, CodePersistenceError
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}
