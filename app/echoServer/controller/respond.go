package controller

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/apperr"
)

// Status maps a service error code to the HTTP status and the message shown to clients.
func Status(err error) (int, string) {
	switch apperr.Code(err) {
	case apperr.ErrNotFound:
		return http.StatusNotFound, "not found"
	case apperr.ErrNotOwner:
		return http.StatusForbidden, "forbidden"
	case apperr.ErrAlreadyReserved:
		return http.StatusConflict, "vehicle is not available"
	case apperr.ErrNotReserved:
		return http.StatusConflict, "vehicle is not reserved"
	case apperr.ErrBooked:
		return http.StatusConflict, "vehicle is currently booked"
	case apperr.ErrPaymentRequired:
		return http.StatusPaymentRequired, "payment required"
	case apperr.ErrPaymentFailed:
		return http.StatusBadGateway, "ledger payment failed"
	case apperr.ErrInvalidPayload:
		return http.StatusBadRequest, "invalid payload"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// Fail writes err as a JSON error. Unknown errors are logged with the request id.
func Fail(c echo.Context, log *slog.Logger, op string, err error) error {
	status, msg := Status(err)
	if status == http.StatusInternalServerError || status == http.StatusBadGateway {
		log.Error(op,
			"err", err,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"path", c.Path(),
			"method", c.Request().Method,
		)
		return c.JSON(status, echo.Map{"message": msg})
	}
	log.Warn(op, "err", err, "status", status)
	return c.JSON(status, echo.Map{"message": msg, "error": err.Error()})
}
