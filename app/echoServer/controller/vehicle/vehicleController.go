package vehicle

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/jwtx"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
	vehiclesvc "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/vehicle"
)

type Controller struct {
	Svc vehiclesvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Create lists a new vehicle owned by the caller.
// @Summary      Add vehicle
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  model.VehiclePayload  true  "Vehicle payload"
// @Success      201  {object}  model.Vehicle
// @Failure      400  {object}  map[string]any
// @Router       /v1/vehicles [post]
func (h *Controller) Create(c echo.Context) error {
	var req model.VehiclePayload
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	principal := jwtx.Principal(c)

	v, err := h.Svc.Add(c.Request().Context(), principal, req)
	if err != nil {
		return controller.Fail(c, h.Log, "vehicle create", err)
	}
	return c.JSON(http.StatusCreated, v)
}

// GET /v1/vehicles
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return controller.Fail(c, h.Log, "vehicle list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/vehicles/:id
func (h *Controller) Detail(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	v, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return controller.Fail(c, h.Log, "vehicle detail", err)
	}
	return c.JSON(http.StatusOK, v)
}

// GET /v1/vehicles/search?max_price=&model=&company=&top_speed=
func (h *Controller) Search(c echo.Context) error {
	var req SearchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid query"})
	}
	if req.filters() != 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "exactly one of max_price, model, company, top_speed is required"})
	}

	var (
		rows []model.Vehicle
		err  error
		ctx  = c.Request().Context()
	)
	switch {
	case req.MaxPrice != "":
		maxPrice, perr := strconv.ParseUint(req.MaxPrice, 10, 64)
		if perr != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid max_price"})
		}
		rows, err = h.Svc.ByMaxPrice(ctx, maxPrice)
	case req.Model != "":
		rows, err = h.Svc.ByModel(ctx, req.Model)
	case req.Company != "":
		rows, err = h.Svc.ByCompany(ctx, req.Company)
	default:
		rows, err = h.Svc.ByTopSpeed(ctx, req.TopSpeed)
	}
	if err != nil {
		return controller.Fail(c, h.Log, "vehicle search", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// DELETE /v1/vehicles/:id  (creator only)
func (h *Controller) Delete(c echo.Context) error {
	id, err := h.Svc.Delete(c.Request().Context(), c.Param("id"), jwtx.Principal(c))
	if err != nil {
		return controller.Fail(c, h.Log, "vehicle delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}
