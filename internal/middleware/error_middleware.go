package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// HandleAPIError maps a service error onto a status code and error envelope
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())
		if field := apperrors.Field(err); field != "" {
			detail = detail.WithField(field)
		}
		return http.StatusBadRequest, withCode(detail, err)
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, withCode(dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error()), err)
	case errors.Is(err, apperrors.ErrDuplicateKey):
		return http.StatusConflict, withCode(dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, err.Error()), err)
	case errors.Is(err, apperrors.ErrInactiveEntity):
		return http.StatusUnprocessableEntity, withCode(dto.NewErrorDetail(dto.ErrorCodeResourceInactive, err.Error()), err)
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid username or password")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// withCode attaches the domain code of a CustomError, e.g. DUPLICATE_ENROLLMENT
func withCode(detail *dto.ErrorDetail, err error) *dto.ErrorDetail {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Code != "" {
		return detail.WithDetails(map[string]string{"reason": ce.Code})
	}
	return detail
}
