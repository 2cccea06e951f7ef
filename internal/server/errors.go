package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agendamed/agenda/internal/service"
)

// writeError maps domain errors onto HTTP responses. Conflicts always
// name the blocking entities so the client can highlight them.
func writeError(c echo.Context, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": verr.Error(),
			"field": verr.Field,
		})
	}

	var nerr *service.NotFoundError
	if errors.As(err, &nerr) {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": nerr.Error(),
		})
	}

	var cerr *service.ConflictError
	if errors.As(err, &cerr) {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":                 cerr.Error(),
			"colliding_slot_ids":    cerr.CollidingSlotIDs,
			"colliding_booking_ids": cerr.CollidingBookingIDs,
		})
	}

	var berr *service.BatchValidationError
	if errors.As(err, &berr) {
		failures := make([]map[string]interface{}, 0, len(berr.Failures))
		for _, f := range berr.Failures {
			failures = append(failures, map[string]interface{}{
				"index": f.Index,
				"error": f.Err.Error(),
			})
		}
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":    berr.Error(),
			"failures": failures,
		})
	}

	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "internal error",
	})
}
