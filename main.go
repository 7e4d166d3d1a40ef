// Package main Car Bazar API.
//
// @title           Car Bazar API
// @version         1.0
// @description     Vehicle marketplace: list cars, reserve them, pay on the ledger and buy.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer"
	authctrl "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller/auth"
	paymentctrl "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller/payment"
	reservationctrl "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller/reservation"
	vehiclectrl "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller/vehicle"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/validation"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/config"
	authrepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/auth"
	claimrepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/claim"
	eventsrepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/events"
	ledgerrepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/ledger"
	vehiclerepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/vehicle"
	authsvc "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/auth"
	paymentsvc "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/payment"
	reservationsvc "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/reservation"
	vehiclesvc "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/vehicle"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/address"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/database"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/keylock"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/observability"
)

// devLedgerFee is the transfer fee of the in-process ledger used with STORE=memory.
const devLedgerFee = 10_000

type stores struct {
	vehicles vehiclerepo.Store
	claims   claimrepo.Store
	users    authrepo.Repo
	ledger   ledgerrepo.Client
	close    func()
}

func main() {

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OtelEndpoint)
	if err != nil {
		log.Error("tracing setup failed", "err", err)
		os.Exit(1)
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error("store setup failed", "err", err)
		os.Exit(1)
	}
	defer st.close()

	pub := eventsrepo.Nop()
	if cfg.KafkaBroker != "" {
		pub = eventsrepo.NewKafka(cfg.KafkaBroker, cfg.KafkaTopic)
		log.Info("publishing events", "broker", cfg.KafkaBroker, "topic", cfg.KafkaTopic)
	}

	// services
	pay, err := paymentsvc.New(st.ledger, cfg.ServicePrincipal, cfg.VerifyWindow, log)
	if err != nil {
		log.Error("payment service", "err", err)
		os.Exit(1)
	}
	locks := keylock.New()
	sweeper := reservationsvc.NewSweeper(st.vehicles, cfg.SweepInterval, log)
	rs := reservationsvc.New(st.vehicles, st.claims, pay, pub, sweeper, reservationsvc.Config{
		HoldPeriod:     cfg.HoldPeriod,
		ReservationFee: cfg.ReservationFee,
		Locks:          locks,
	}, log)
	vs := vehiclesvc.New(st.vehicles, pub, vehiclesvc.Config{
		ReservationFee: cfg.ReservationFee,
		ServiceAddress: pay.ServiceAddress(),
		Locks:          locks,
	}, log)
	as := authsvc.New(st.users, cfg.JWTSecret)

	// reservations that lapsed while the process was down
	if n, err := sweeper.SweepOnce(ctx, time.Now().UTC()); err != nil {
		log.Error("startup sweep", "err", err)
	} else if n > 0 {
		log.Info("startup sweep released reservations", "count", n)
	}
	go sweeper.Run(ctx)

	// controllers
	val := validation.New()
	v := val.Engine()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	vehicleC := &vehiclectrl.Controller{Svc: vs, V: v, Log: log}
	reservationC := &reservationctrl.Controller{Svc: rs, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: vs, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e, log)
	e.Validator = val

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":          "ok",
			"service_address": pay.ServiceAddress().Hex(),
			"hold_period":     rs.HoldPeriod().String(),
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:        authC,
		Vehicle:     vehicleC,
		Reservation: reservationC,
		Payment:     paymentC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		log.Info("starting server", "port", port, "env", cfg.Env, "store", cfg.Store)
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	sweeper.Stop()
	if err := pub.Close(); err != nil {
		log.Error("event publisher close", "err", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown", "err", err)
	}
}

// openStores picks Postgres and the remote ledger, or in-process fakes with STORE=memory.
func openStores(ctx context.Context, cfg config.App, log *slog.Logger) (*stores, error) {
	if cfg.InMemory() {
		self, err := address.FromPrincipal(cfg.ServicePrincipal, address.DefaultSubaccount)
		if err != nil {
			return nil, err
		}
		log.Warn("running with in-memory stores and ledger; state is lost on exit")
		return &stores{
			vehicles: vehiclerepo.NewMemory(),
			claims:   claimrepo.NewMemory(),
			users:    authrepo.NewMemory(),
			ledger:   ledgerrepo.NewMemory(self.Bytes(), devLedgerFee),
			close:    func() {},
		}, nil
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		vehicles: vehiclerepo.NewPostgres(db),
		claims:   claimrepo.NewPostgres(db),
		users:    authrepo.New(db),
		ledger:   ledgerrepo.NewHTTP(cfg.LedgerURL, cfg.LedgerAPIKey),
		close:    db.Close,
	}, nil
}
