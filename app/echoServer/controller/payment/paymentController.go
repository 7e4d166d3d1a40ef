package payment

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller"
	vehiclesvc "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/vehicle"
)

// Controller exposes what a buyer needs to build a ledger transfer.
type Controller struct {
	Svc vehiclesvc.Service
	Log *slog.Logger
}

// GET /v1/reservation-fee
func (h *Controller) ReservationFee(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"reservation_fee": h.Svc.ReservationFee()})
}

// GET /v1/address
func (h *Controller) ServiceAddress(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"address": h.Svc.ServiceAddress().Hex()})
}

// GET /v1/address/:principal
func (h *Controller) AddressOf(c echo.Context) error {
	a, err := h.Svc.AddressOf(c.Param("principal"))
	if err != nil {
		return controller.Fail(c, h.Log, "address of", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"principal": c.Param("principal"), "address": a.Hex()})
}
