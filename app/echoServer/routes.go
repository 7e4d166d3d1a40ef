package echoServer

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller/auth"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller/payment"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller/reservation"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller/vehicle"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/jwtx"
	jwtutil "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/jwt"
)

type C struct {
	Auth        *auth.Controller
	Vehicle     *vehicle.Controller
	Reservation *reservation.Controller
	Payment     *payment.Controller
	JWTSecret   string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	pub.GET("/vehicles", c.Vehicle.List)
	pub.GET("/vehicles/search", c.Vehicle.Search)
	pub.GET("/vehicles/:id", c.Vehicle.Detail)

	// payment details
	pub.GET("/reservation-fee", c.Payment.ReservationFee)
	pub.GET("/address", c.Payment.ServiceAddress)
	pub.GET("/address/:principal", c.Payment.AddressOf)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization",
		ParseTokenFunc: func(_ echo.Context, header string) (interface{}, error) {
			return jwtutil.ParseAuth(header, c.JWTSecret)
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			ctx.Logger().Warnf("[AUTH] %v req_id=%s ip=%s", err, ctx.Response().Header().Get(echo.HeaderXRequestID), ctx.RealIP())
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		},
	}))
	authed.Use(jwtx.RequirePrincipal)

	authed.POST("/vehicles", c.Vehicle.Create)
	authed.DELETE("/vehicles/:id", c.Vehicle.Delete)

	authed.POST("/vehicles/:id/reserve", c.Reservation.Reserve)
	authed.POST("/vehicles/:id/payments", c.Reservation.VerifyPayment)
	authed.POST("/vehicles/:id/purchase", c.Reservation.Purchase)
	authed.POST("/vehicles/:id/cancel", c.Reservation.Cancel)
}
