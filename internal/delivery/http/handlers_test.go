package http

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"github.com/farmsight/backend/internal/domain"
	"github.com/farmsight/backend/internal/repository/postgres"
	"github.com/farmsight/backend/internal/service"
)

// stubBackend is a scripted geocoding backend.
type stubBackend struct {
	coords domain.Coordinates
	err    error
}

func (s stubBackend) Name() string { return "stub" }

func (s stubBackend) Geocode(ctx context.Context, location string) (domain.Coordinates, error) {
	if s.err != nil {
		return domain.Coordinates{}, s.err
	}
	return s.coords, nil
}

// errorTransport fails every outbound request, standing in for an unreachable
// weather upstream.
type errorTransport struct{}

func (errorTransport) RoundTrip(*nethttp.Request) (*nethttp.Response, error) {
	return nil, errors.New("upstream unreachable")
}

func newTestAppWithGeocoder(t *testing.T, backend service.Geocoder) (*fiber.App, *postgres.MockRepository) {
	t.Helper()

	repo := postgres.NewMockRepository()
	authSvc := service.NewAuthService(repo, "test-secret", time.Hour)
	geocodeSvc := service.NewGeocodeServiceFromBackends(backend)
	weatherSvc := service.NewWeatherService(&nethttp.Client{Transport: errorTransport{}})
	dashboardSvc := service.NewDashboardService(geocodeSvc, weatherSvc, service.NewAdviceService(), repo, "Nashik", 7)

	app := fiber.New()
	SetupRoutes(app, NewHandler(HandlerDeps{
		AuthSvc:      authSvc,
		FarmSvc:      service.NewFarmService(repo),
		ExpenseSvc:   service.NewExpenseService(repo),
		DashboardSvc: dashboardSvc,
		GeocodeSvc:   geocodeSvc,
		WeatherSvc:   weatherSvc,
		ReportSvc:    service.NewReportService(repo),
		Repo:         repo,
		TokenTTL:     time.Hour,
	}))
	return app, repo
}

// newTestApp builds the app with every upstream unreachable, the state the
// demo-data fallback is designed for.
func newTestApp(t *testing.T) (*fiber.App, *postgres.MockRepository) {
	t.Helper()
	return newTestAppWithGeocoder(t, stubBackend{err: service.ErrNoResults})
}

func jsonRequest(method, target, body string) *nethttp.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func testRequest(t *testing.T, app *fiber.App, req *nethttp.Request, wantStatus int) *nethttp.Response {
	t.Helper()
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d", req.Method, req.URL.Path, wantStatus, resp.StatusCode)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *nethttp.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func loginDemo(t *testing.T, app *fiber.App) *nethttp.Cookie {
	t.Helper()
	resp := testRequest(t, app,
		jsonRequest(nethttp.MethodPost, "/api/v1/auth/login", `{"email":"demo@farmsight.io","password":"demo1234"}`),
		nethttp.StatusOK)
	resp.Body.Close()
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("login response did not set the session cookie")
	return nil
}

func TestHealthCheck(t *testing.T) {
	app, _ := newTestApp(t)

	resp := testRequest(t, app, httptest.NewRequest(nethttp.MethodGet, "/health", nil), nethttp.StatusOK)
	var body struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	decodeJSON(t, resp, &body)
	if body.Status != "ok" || body.Service != "farmsight-backend" {
		t.Errorf("unexpected health payload: %+v", body)
	}
}

func TestLoginPageIsPublic(t *testing.T) {
	app, _ := newTestApp(t)

	resp := testRequest(t, app, httptest.NewRequest(nethttp.MethodGet, "/login", nil), nethttp.StatusOK)
	var body struct {
		Page string `json:"page"`
	}
	decodeJSON(t, resp, &body)
	if body.Page != "login" {
		t.Errorf("expected login page payload, got %+v", body)
	}
}

func TestExpensesPageRedirectsWithoutSession(t *testing.T) {
	app, _ := newTestApp(t)

	resp := testRequest(t, app, httptest.NewRequest(nethttp.MethodGet, "/expenses", nil), nethttp.StatusFound)
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}

	// An invalid session is treated the same as none.
	req := httptest.NewRequest(nethttp.MethodGet, "/expenses", nil)
	req.AddCookie(&nethttp.Cookie{Name: SessionCookie, Value: "garbage"})
	resp = testRequest(t, app, req, nethttp.StatusFound)
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestExpensesPageWithSession(t *testing.T) {
	app, _ := newTestApp(t)
	cookie := loginDemo(t, app)

	req := httptest.NewRequest(nethttp.MethodGet, "/expenses", nil)
	req.AddCookie(cookie)
	resp := testRequest(t, app, req, nethttp.StatusOK)

	var body struct {
		Page     string                `json:"page"`
		User     domain.User           `json:"user"`
		Farms    []domain.Farm         `json:"farms"`
		Expenses []domain.Expense      `json:"expenses"`
		Summary  domain.ExpenseSummary `json:"summary"`
	}
	decodeJSON(t, resp, &body)

	if body.Page != "expenses" {
		t.Errorf("expected expenses page, got %q", body.Page)
	}
	if body.User.Email != "demo@farmsight.io" {
		t.Errorf("unexpected page user: %+v", body.User)
	}
	if len(body.Farms) != 1 || body.Farms[0].ID != "demo-farm" {
		t.Errorf("expected the seeded demo farm, got %+v", body.Farms)
	}
}

func TestAPIRoutesRequireSession(t *testing.T) {
	app, _ := newTestApp(t)

	routes := []struct {
		method string
		path   string
	}{
		{nethttp.MethodGet, "/api/v1/auth/me"},
		{nethttp.MethodGet, "/api/v1/farms"},
		{nethttp.MethodPost, "/api/v1/farms"},
		{nethttp.MethodGet, "/api/v1/farms/demo-farm/weather"},
		{nethttp.MethodGet, "/api/v1/expenses"},
		{nethttp.MethodGet, "/api/v1/expenses/export"},
	}
	for _, route := range routes {
		testRequest(t, app, httptest.NewRequest(route.method, route.path, nil), nethttp.StatusUnauthorized)
	}

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-token")
	testRequest(t, app, req, nethttp.StatusUnauthorized)
}

func TestRegisterLoginFlow(t *testing.T) {
	app, _ := newTestApp(t)

	registerBody := `{"name":"Ravi Kale","email":"ravi@example.com","phone":"+91 9822000000","password":"longpassword1"}`
	resp := testRequest(t, app, jsonRequest(nethttp.MethodPost, "/api/v1/auth/register", registerBody), nethttp.StatusCreated)

	var created struct {
		Success bool `json:"success"`
		Data    struct {
			User  domain.User `json:"user"`
			Token string      `json:"token"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &created)
	if !created.Success || created.Data.User.ID == "" || created.Data.Token == "" {
		t.Fatalf("unexpected register payload: %+v", created)
	}

	// The token gates API routes via the Authorization header.
	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+created.Data.Token)
	resp = testRequest(t, app, req, nethttp.StatusOK)

	var me struct {
		Data domain.User `json:"data"`
	}
	decodeJSON(t, resp, &me)
	if me.Data.Email != "ravi@example.com" {
		t.Errorf("expected the registered account, got %+v", me.Data)
	}

	// Duplicate registration conflicts.
	testRequest(t, app, jsonRequest(nethttp.MethodPost, "/api/v1/auth/register", registerBody), nethttp.StatusConflict)

	// Wrong password is rejected without detail.
	testRequest(t, app,
		jsonRequest(nethttp.MethodPost, "/api/v1/auth/login", `{"email":"ravi@example.com","password":"wrongpassword"}`),
		nethttp.StatusUnauthorized)

	// Weak payloads never reach the service.
	testRequest(t, app,
		jsonRequest(nethttp.MethodPost, "/api/v1/auth/register", `{"name":"X","email":"not-an-email","password":"short"}`),
		nethttp.StatusBadRequest)
}

func TestLogoutClearsSession(t *testing.T) {
	app, _ := newTestApp(t)
	cookie := loginDemo(t, app)

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(cookie)
	resp := testRequest(t, app, req, nethttp.StatusOK)
	resp.Body.Close()

	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected logout to clear the session cookie")
	}
}

func TestFarmEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	cookie := loginDemo(t, app)

	createBody := `{"name":"River Plot","district":"Pune","village":"Khed","land_size_acres":2.5,"soil_type":"loamy","irrigation_type":"drip","crops":["rice"]}`
	req := jsonRequest(nethttp.MethodPost, "/api/v1/farms", createBody)
	req.AddCookie(cookie)
	resp := testRequest(t, app, req, nethttp.StatusCreated)

	var created struct {
		Data domain.Farm `json:"data"`
	}
	decodeJSON(t, resp, &created)
	if created.Data.ID == "" || created.Data.OwnerID != "demo-user" {
		t.Fatalf("unexpected farm payload: %+v", created.Data)
	}
	if len(created.Data.Code) != 8 {
		t.Errorf("expected an 8 character farm code, got %q", created.Data.Code)
	}

	req = httptest.NewRequest(nethttp.MethodGet, "/api/v1/farms", nil)
	req.AddCookie(cookie)
	resp = testRequest(t, app, req, nethttp.StatusOK)
	var listing struct {
		Data  []domain.Farm `json:"data"`
		Count int           `json:"count"`
	}
	decodeJSON(t, resp, &listing)
	if listing.Count != 2 {
		t.Errorf("expected demo farm plus the new one, got %d", listing.Count)
	}

	req = httptest.NewRequest(nethttp.MethodGet, "/api/v1/farms/"+created.Data.ID, nil)
	req.AddCookie(cookie)
	resp = testRequest(t, app, req, nethttp.StatusOK)
	var fetched struct {
		Data domain.Farm `json:"data"`
	}
	decodeJSON(t, resp, &fetched)
	if fetched.Data.Name != "River Plot" {
		t.Errorf("unexpected farm: %+v", fetched.Data)
	}

	req = httptest.NewRequest(nethttp.MethodGet, "/api/v1/farms/does-not-exist", nil)
	req.AddCookie(cookie)
	testRequest(t, app, req, nethttp.StatusNotFound)

	// Another account cannot read the demo farm.
	otherBody := `{"name":"Meena Joshi","email":"meena@example.com","password":"greenfields8"}`
	resp = testRequest(t, app, jsonRequest(nethttp.MethodPost, "/api/v1/auth/register", otherBody), nethttp.StatusCreated)
	var other struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &other)

	req = httptest.NewRequest(nethttp.MethodGet, "/api/v1/farms/demo-farm", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+other.Data.Token)
	testRequest(t, app, req, nethttp.StatusForbidden)

	// Descriptor fields are validated.
	req = jsonRequest(nethttp.MethodPost, "/api/v1/farms", `{"district":"Pune"}`)
	req.AddCookie(cookie)
	testRequest(t, app, req, nethttp.StatusBadRequest)

	req = jsonRequest(nethttp.MethodPost, "/api/v1/farms", `{"name":"Plot","district":"Pune","soil_type":"volcanic"}`)
	req.AddCookie(cookie)
	testRequest(t, app, req, nethttp.StatusBadRequest)
}

func TestFarmWeatherFallsBackToDemoData(t *testing.T) {
	app, _ := newTestApp(t)
	cookie := loginDemo(t, app)

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/farms/demo-farm/weather", nil)
	req.AddCookie(cookie)
	resp := testRequest(t, app, req, nethttp.StatusOK)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Farm       domain.Farm            `json:"farm"`
			Weather    domain.WeatherSnapshot `json:"weather"`
			Advisories []domain.Advisory      `json:"advisories"`
			Notice     string                 `json:"notice"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &body)

	if body.Data.Notice != service.DemoDataNotice {
		t.Errorf("expected notice %q, got %q", service.DemoDataNotice, body.Data.Notice)
	}
	if !body.Data.Weather.IsMock {
		t.Error("expected the demo snapshot when upstreams are unreachable")
	}
	if body.Data.Weather.Current.TemperatureC != 28.0 {
		t.Errorf("unexpected demo conditions: %+v", body.Data.Weather.Current)
	}
	if len(body.Data.Weather.Forecast) != 7 {
		t.Errorf("expected 7 demo forecast days, got %d", len(body.Data.Weather.Forecast))
	}
	if len(body.Data.Advisories) == 0 {
		t.Error("expected at least the all-clear advisory")
	}
	if body.Data.Farm.ID != "demo-farm" {
		t.Errorf("expected the requested farm in the payload, got %+v", body.Data.Farm)
	}
}

func TestWeatherHistoryEndpoint(t *testing.T) {
	app, repo := newTestApp(t)
	cookie := loginDemo(t, app)

	record := domain.WeatherRecord{
		FarmID:       "demo-farm",
		TemperatureC: 29.5,
		Humidity:     70,
		RecordedAt:   time.Now().Add(-2 * time.Hour),
	}
	if err := repo.SaveWeatherRecord(context.Background(), record); err != nil {
		t.Fatalf("seed record failed: %v", err)
	}

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/farms/demo-farm/weather/history", nil)
	req.AddCookie(cookie)
	resp := testRequest(t, app, req, nethttp.StatusOK)
	var body struct {
		Data  []domain.WeatherRecord `json:"data"`
		Count int                    `json:"count"`
	}
	decodeJSON(t, resp, &body)
	if body.Count != 1 || body.Data[0].TemperatureC != 29.5 {
		t.Errorf("unexpected history payload: %+v", body)
	}

	// A narrower window excludes the record.
	req = httptest.NewRequest(nethttp.MethodGet, "/api/v1/farms/demo-farm/weather/history?hours=1", nil)
	req.AddCookie(cookie)
	resp = testRequest(t, app, req, nethttp.StatusOK)
	decodeJSON(t, resp, &body)
	if body.Count != 0 {
		t.Errorf("expected no records within 1 hour, got %d", body.Count)
	}
}

func TestExpenseEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	cookie := loginDemo(t, app)

	createBody := `{"farm_id":"demo-farm","category":"seeds","description":"Onion seed bags","quantity":10,"unit_price":150,"incurred_on":"2026-08-20"}`
	req := jsonRequest(nethttp.MethodPost, "/api/v1/expenses", createBody)
	req.AddCookie(cookie)
	resp := testRequest(t, app, req, nethttp.StatusCreated)

	var created struct {
		Data domain.Expense `json:"data"`
	}
	decodeJSON(t, resp, &created)
	if created.Data.ID == "" || created.Data.Amount != 1500 {
		t.Fatalf("unexpected expense payload: %+v", created.Data)
	}

	// Unknown farm, unknown category, malformed date.
	req = jsonRequest(nethttp.MethodPost, "/api/v1/expenses",
		`{"farm_id":"no-such-farm","category":"seeds","description":"Bags","amount":100,"incurred_on":"2026-08-20"}`)
	req.AddCookie(cookie)
	testRequest(t, app, req, nethttp.StatusNotFound)

	req = jsonRequest(nethttp.MethodPost, "/api/v1/expenses",
		`{"farm_id":"demo-farm","category":"entertainment","description":"Radio","amount":100,"incurred_on":"2026-08-20"}`)
	req.AddCookie(cookie)
	testRequest(t, app, req, nethttp.StatusBadRequest)

	req = jsonRequest(nethttp.MethodPost, "/api/v1/expenses",
		`{"farm_id":"demo-farm","category":"seeds","description":"Bags","amount":100,"incurred_on":"20/08/2026"}`)
	req.AddCookie(cookie)
	testRequest(t, app, req, nethttp.StatusBadRequest)

	req = httptest.NewRequest(nethttp.MethodGet, "/api/v1/expenses", nil)
	req.AddCookie(cookie)
	resp = testRequest(t, app, req, nethttp.StatusOK)
	var listing struct {
		Data  []domain.Expense `json:"data"`
		Count int              `json:"count"`
	}
	decodeJSON(t, resp, &listing)
	if listing.Count != 1 {
		t.Errorf("expected 1 expense, got %d", listing.Count)
	}

	req = httptest.NewRequest(nethttp.MethodGet, "/api/v1/expenses/summary", nil)
	req.AddCookie(cookie)
	resp = testRequest(t, app, req, nethttp.StatusOK)
	var summary struct {
		Data domain.ExpenseSummary `json:"data"`
	}
	decodeJSON(t, resp, &summary)
	if summary.Data.GrandTotal != 1500 || summary.Data.Count != 1 {
		t.Errorf("unexpected summary: %+v", summary.Data)
	}

	updateBody := `{"category":"fertilizer","description":"NPK bags","amount":2480,"incurred_on":"2026-08-21"}`
	req = jsonRequest(nethttp.MethodPut, "/api/v1/expenses/"+created.Data.ID, updateBody)
	req.AddCookie(cookie)
	resp = testRequest(t, app, req, nethttp.StatusOK)
	var updated struct {
		Data domain.Expense `json:"data"`
	}
	decodeJSON(t, resp, &updated)
	if updated.Data.Category != "fertilizer" || updated.Data.Amount != 2480 {
		t.Errorf("unexpected updated expense: %+v", updated.Data)
	}

	req = httptest.NewRequest(nethttp.MethodDelete, "/api/v1/expenses/"+created.Data.ID, nil)
	req.AddCookie(cookie)
	testRequest(t, app, req, nethttp.StatusOK)

	req = jsonRequest(nethttp.MethodPut, "/api/v1/expenses/"+created.Data.ID, updateBody)
	req.AddCookie(cookie)
	testRequest(t, app, req, nethttp.StatusNotFound)
}

func TestExpenseExport(t *testing.T) {
	app, _ := newTestApp(t)
	cookie := loginDemo(t, app)

	createBody := `{"farm_id":"demo-farm","category":"labor","description":"Weeding crew","amount":1250,"incurred_on":"2026-08-18"}`
	req := jsonRequest(nethttp.MethodPost, "/api/v1/expenses", createBody)
	req.AddCookie(cookie)
	testRequest(t, app, req, nethttp.StatusCreated)

	req = httptest.NewRequest(nethttp.MethodGet, "/api/v1/expenses/export", nil)
	req.AddCookie(cookie)
	resp := testRequest(t, app, req, nethttp.StatusOK)
	defer resp.Body.Close()

	if ct := resp.Header.Get(fiber.HeaderContentType); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type %q", ct)
	}
	disposition := resp.Header.Get(fiber.HeaderContentDisposition)
	if !strings.Contains(disposition, "attachment") || !strings.Contains(disposition, ".xlsx") {
		t.Errorf("unexpected content disposition %q", disposition)
	}

	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatalf("export did not parse as a workbook: %v", err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue("Expenses", "A1"); v != "Date" {
		t.Errorf("unexpected workbook header, got %q", v)
	}
	// Farm IDs are replaced with farm names in the export.
	if v, _ := f.GetCellValue("Expenses", "B2"); v != "Green Valley Farm" {
		t.Errorf("expected the demo farm name, got %q", v)
	}
}

func TestGeocodeProxy(t *testing.T) {
	app, _ := newTestApp(t)

	testRequest(t, app, httptest.NewRequest(nethttp.MethodGet, "/api/v1/geo/geocode", nil), nethttp.StatusBadRequest)
	testRequest(t, app, httptest.NewRequest(nethttp.MethodGet, "/api/v1/geo/geocode?location=Atlantis", nil), nethttp.StatusNotFound)

	resolving, _ := newTestAppWithGeocoder(t, stubBackend{coords: domain.Coordinates{Latitude: 19.99, Longitude: 73.78}})
	resp := testRequest(t, resolving, httptest.NewRequest(nethttp.MethodGet, "/api/v1/geo/geocode?location=Nashik", nil), nethttp.StatusOK)
	var body struct {
		Data domain.Coordinates `json:"data"`
	}
	decodeJSON(t, resp, &body)
	if body.Data.Latitude != 19.99 || body.Data.Longitude != 73.78 {
		t.Errorf("unexpected coordinates: %+v", body.Data)
	}
}

func TestForecastProxy(t *testing.T) {
	app, _ := newTestApp(t)

	badQueries := []string{
		"/api/v1/weather/forecast",
		"/api/v1/weather/forecast?lat=abc&lon=73",
		"/api/v1/weather/forecast?lat=95&lon=73",
		"/api/v1/weather/forecast?lat=20&lon=200",
	}
	for _, target := range badQueries {
		testRequest(t, app, httptest.NewRequest(nethttp.MethodGet, target, nil), nethttp.StatusBadRequest)
	}

	// Unlike the farm dashboard, the proxy reports upstream failure honestly.
	testRequest(t, app,
		httptest.NewRequest(nethttp.MethodGet, "/api/v1/weather/forecast?lat=19.95&lon=73.79", nil),
		nethttp.StatusBadGateway)
}
