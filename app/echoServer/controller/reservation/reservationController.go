package reservation

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/jwtx"
	reservationsvc "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/reservation"
)

type Controller struct {
	Svc reservationsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Reserve holds a vehicle for the caller and returns the payment instructions.
// @Summary      Reserve vehicle
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Vehicle id"
// @Success      201  {object}  reservationsvc.Reservation
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any "already reserved"
// @Router       /v1/vehicles/{id}/reserve [post]
func (h *Controller) Reserve(c echo.Context) error {
	r, err := h.Svc.Reserve(c.Request().Context(), c.Param("id"), jwtx.Principal(c), time.Now().UTC())
	if err != nil {
		return controller.Fail(c, h.Log, "reserve", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"vehicle_id":  r.VehicleID,
		"status":      "RESERVED",
		"deadline":    r.Deadline.Format(time.RFC3339),
		"hold_period": h.Svc.HoldPeriod().String(),
		"memo":        r.Memo,
		"amount":      r.Amount,
		"pay_to":      r.PayTo,
	})
}

// VerifyPayment checks the ledger block the caller paid in.
// @Summary      Submit payment
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string      true  "Vehicle id"
// @Param        payload  body  PaymentReq  true  "Ledger block of the transfer"
// @Success      200  {object}  map[string]any
// @Failure      402  {object}  map[string]any "no matching transfer"
// @Failure      502  {object}  map[string]any "ledger unavailable"
// @Router       /v1/vehicles/{id}/payments [post]
func (h *Controller) VerifyPayment(c echo.Context) error {
	var req PaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	if err := h.Svc.VerifyPayment(c.Request().Context(), c.Param("id"), jwtx.Principal(c), *req.BlockIndex); err != nil {
		return controller.Fail(c, h.Log, "verify payment", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment verified"})
}

// POST /v1/vehicles/:id/purchase
func (h *Controller) Purchase(c echo.Context) error {
	v, err := h.Svc.ConfirmPurchase(c.Request().Context(), c.Param("id"), jwtx.Principal(c))
	if err != nil {
		return controller.Fail(c, h.Log, "purchase", err)
	}
	return c.JSON(http.StatusOK, v)
}

// POST /v1/vehicles/:id/cancel
// A 502 means the reservation was released but its refund is still owed.
func (h *Controller) Cancel(c echo.Context) error {
	if err := h.Svc.Cancel(c.Request().Context(), c.Param("id"), jwtx.Principal(c)); err != nil {
		return controller.Fail(c, h.Log, "cancel", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled"})
}
