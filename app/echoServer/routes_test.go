package echoServer

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	authctrl "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller/auth"
	paymentctrl "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller/payment"
	reservationctrl "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller/reservation"
	vehiclectrl "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/controller/vehicle"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/app/echoServer/validation"
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
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/keylock"
)

const secret = "test-secret"

type harness struct {
	e      *echo.Echo
	ledger *ledgerrepo.Memory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := slog.Default()

	servicePrincipal := address.EncodePrincipal([]byte{0xca, 0xfe})
	self, err := address.FromPrincipal(servicePrincipal, address.DefaultSubaccount)
	require.NoError(t, err)

	ledger := ledgerrepo.NewMemory(self.Bytes(), 10)
	pay, err := paymentsvc.New(ledger, servicePrincipal, 1, log)
	require.NoError(t, err)

	vehicles := vehiclerepo.NewMemory()
	locks := keylock.New()
	pub := &eventsrepo.Recorder{}
	rs := reservationsvc.New(vehicles, claimrepo.NewMemory(), pay, pub, nil,
		reservationsvc.Config{ReservationFee: 5, Locks: locks}, log)
	vs := vehiclesvc.New(vehicles, pub,
		vehiclesvc.Config{ReservationFee: 5, ServiceAddress: self, Locks: locks}, log)

	val := validation.New()
	e := echo.New()
	RegisterMiddlewares(e, log)
	e.Validator = val
	Register(e, C{
		Auth:        &authctrl.Controller{Svc: authsvc.New(authrepo.NewMemory(), secret), V: val.Engine(), Log: log},
		Vehicle:     &vehiclectrl.Controller{Svc: vs, V: val.Engine(), Log: log},
		Reservation: &reservationctrl.Controller{Svc: rs, V: val.Engine(), Log: log},
		Payment:     &paymentctrl.Controller{Svc: vs, Log: log},
		JWTSecret:   secret,
	})
	return &harness{e: e, ledger: ledger}
}

func (h *harness) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		dec := json.NewDecoder(rec.Body)
		dec.UseNumber()
		_ = dec.Decode(&out)
	}
	return rec.Code, out
}

func (h *harness) register(t *testing.T, email, username string) (token, principal string) {
	t.Helper()
	code, body := h.do(t, http.MethodPost, "/v1/users/register", "", map[string]string{
		"email": email, "username": username, "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code, body)
	user := body["user"].(map[string]any)
	return body["token"].(string), user["principal"].(string)
}

func TestRoutes_ReservePayPurchase(t *testing.T) {
	h := newHarness(t)
	sellerTok, _ := h.register(t, "seller@example.com", "seller")
	buyerTok, buyer := h.register(t, "buyer@example.com", "buyer")

	code, car := h.do(t, http.MethodPost, "/v1/vehicles", sellerTok, map[string]any{
		"name": "Roadster", "image_url": "https://img.example.com/r.png", "model": "R1",
		"price": 1000, "engine_capacity": "electric", "top_speed": "410 km/h", "company_name": "Tesla",
	})
	require.Equal(t, http.StatusCreated, code, car)
	id := car["id"].(string)

	code, res := h.do(t, http.MethodPost, "/v1/vehicles/"+id+"/reserve", buyerTok, nil)
	require.Equal(t, http.StatusCreated, code, res)
	require.Equal(t, json.Number("1005"), res["amount"])

	code, _ = h.do(t, http.MethodPost, "/v1/vehicles/"+id+"/reserve", sellerTok, nil)
	require.Equal(t, http.StatusConflict, code)

	code, _ = h.do(t, http.MethodPost, "/v1/vehicles/"+id+"/purchase", buyerTok, nil)
	require.Equal(t, http.StatusPaymentRequired, code)

	code, _ = h.do(t, http.MethodDelete, "/v1/vehicles/"+id, sellerTok, nil)
	require.Equal(t, http.StatusConflict, code)

	from, err := address.FromPrincipal(buyer, address.DefaultSubaccount)
	require.NoError(t, err)
	payTo, err := address.ParseHex(res["pay_to"].(string))
	require.NoError(t, err)
	memo, err := strconv.ParseUint(res["memo"].(json.Number).String(), 10, 64)
	require.NoError(t, err)

	wrong := h.ledger.Append(from.Bytes(), payTo.Bytes(), 1004, memo)
	code, _ = h.do(t, http.MethodPost, "/v1/vehicles/"+id+"/payments", buyerTok, map[string]any{"block_index": wrong})
	require.Equal(t, http.StatusPaymentRequired, code)

	idx := h.ledger.Append(from.Bytes(), payTo.Bytes(), 1005, memo)
	code, body := h.do(t, http.MethodPost, "/v1/vehicles/"+id+"/payments", buyerTok, map[string]any{"block_index": idx})
	require.Equal(t, http.StatusOK, code, body)

	code, sold := h.do(t, http.MethodPost, "/v1/vehicles/"+id+"/purchase", buyerTok, nil)
	require.Equal(t, http.StatusOK, code, sold)
	require.Equal(t, buyer, sold["owner"])
}

func TestRoutes_PublicAndAuth(t *testing.T) {
	h := newHarness(t)

	code, _ := h.do(t, http.MethodPost, "/v1/vehicles", "", map[string]any{"name": "x"})
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = h.do(t, http.MethodPost, "/v1/vehicles", "not-a-jwt", map[string]any{"name": "x"})
	require.Equal(t, http.StatusUnauthorized, code)

	code, body := h.do(t, http.MethodGet, "/v1/vehicles", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "data")

	code, body = h.do(t, http.MethodGet, "/v1/reservation-fee", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, json.Number("5"), body["reservation_fee"])

	code, body = h.do(t, http.MethodGet, "/v1/address/2vxsx-fae", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "1c7a48ba6a562aa9eaa2481a9049cdf0433b9738c992d698c31d8abf89cadc79", body["address"])

	code, _ = h.do(t, http.MethodGet, "/v1/address/bogus", "", nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodGet, "/v1/vehicles/missing", "", nil)
	require.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(t, http.MethodGet, "/v1/vehicles/search", "", nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodGet, "/v1/vehicles/search?company=tesla", "", nil)
	require.Equal(t, http.StatusOK, code)
}

func TestRoutes_LoginAndCancel(t *testing.T) {
	h := newHarness(t)
	sellerTok, _ := h.register(t, "seller@example.com", "seller")

	code, body := h.do(t, http.MethodPost, "/v1/users/login", "", map[string]string{
		"email": "seller@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code, body)
	require.NotEmpty(t, body["token"])

	code, _ = h.do(t, http.MethodPost, "/v1/users/login", "", map[string]string{
		"email": "seller@example.com", "password": "wrong-pass",
	})
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = h.do(t, http.MethodPost, "/v1/users/register", "", map[string]string{
		"email": "seller@example.com", "username": "other", "password": "secret123",
	})
	require.Equal(t, http.StatusConflict, code)

	code, car := h.do(t, http.MethodPost, "/v1/vehicles", sellerTok, map[string]any{
		"name": "Civic", "image_url": "https://img.example.com/c.png", "model": "EX",
		"price": 300, "engine_capacity": "1.5L", "top_speed": "200 km/h", "company_name": "Honda",
	})
	require.Equal(t, http.StatusCreated, code, car)
	id := car["id"].(string)

	code, _ = h.do(t, http.MethodPost, "/v1/vehicles/"+id+"/cancel", sellerTok, nil)
	require.Equal(t, http.StatusConflict, code)

	code, _ = h.do(t, http.MethodPost, "/v1/vehicles/"+id+"/reserve", sellerTok, nil)
	require.Equal(t, http.StatusCreated, code)

	code, _ = h.do(t, http.MethodPost, "/v1/vehicles/"+id+"/payments", sellerTok, map[string]any{})
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodPost, "/v1/vehicles/"+id+"/cancel", sellerTok, nil)
	require.Equal(t, http.StatusOK, code)

	code, body = h.do(t, http.MethodDelete, "/v1/vehicles/"+id, sellerTok, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, id, body["id"])
}
