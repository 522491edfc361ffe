package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sahilkr01/drcuberstore/internal/kvstore"
	"go.uber.org/zap"
)

// storageFailure replies to a failed write of the persistent store. Quota and
// availability problems are recoverable and reported as such.
func storageFailure(c echo.Context, log *zap.Logger, err error, msg string) error {
	switch {
	case errors.Is(err, kvstore.ErrQuotaExceeded):
		log.Warn(msg, zap.Error(err))
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "storage quota exceeded"})
	case errors.Is(err, kvstore.ErrUnavailable):
		log.Error(msg, zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage unavailable, try again"})
	default:
		log.Error(msg, zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
	}
}
