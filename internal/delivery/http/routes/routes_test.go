package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blue-collar-portal/internal/delivery/http/handler"
	"blue-collar-portal/internal/delivery/http/middleware"
	"blue-collar-portal/internal/delivery/http/routes"
	v1 "blue-collar-portal/internal/delivery/http/routes/v1"
	"blue-collar-portal/internal/dispatch"
	"blue-collar-portal/internal/domain/company"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/infrastructure/notify"
	"blue-collar-portal/internal/pkg/jwt"
	"blue-collar-portal/internal/repository/memory"
	"blue-collar-portal/internal/usecase/inbox"
	"blue-collar-portal/internal/usecase/moderation"
	"blue-collar-portal/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type envelope struct {
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testServer struct {
	t        *testing.T
	app      *fiber.App
	jwt      *jwt.HMACService
	admin    uuid.UUID
	employer uuid.UUID
	seeker   uuid.UUID
	company  uuid.UUID
	industry uuid.UUID
}

func newTestServer(t *testing.T, checks map[string]handler.Pinger) *testServer {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	repos := store.Repos()
	ctx := context.Background()

	s := &testServer{
		t:        t,
		jwt:      jwt.NewHMACService("test-secret", time.Hour),
		admin:    uuid.New(),
		employer: uuid.New(),
		seeker:   uuid.New(),
		industry: uuid.New(),
	}
	ind := s.industry
	for _, u := range []user.User{
		{ID: s.admin, Email: "admin@example.com", Role: user.RoleAdmin},
		{ID: s.employer, Email: "boss@example.com", Role: user.RoleEmployer},
		{ID: s.seeker, Email: "seeker@example.com", Role: user.RoleJobSeeker, IndustryID: &ind},
	} {
		if err := repos.Users.Create(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	c := &company.Company{OwnerUserID: s.employer, Name: "Harbor Logistics", VerificationStatus: company.VerificationApproved}
	if err := repos.Companies.Create(ctx, c); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	s.company = c.ID

	engine := moderation.NewEngine(moderation.Deps{
		Store:      store,
		Notifier:   notify.NewGateway(repos.Notifications, nil, logger),
		Dispatcher: dispatch.Inline{Logger: logger},
		Logger:     logger,
	}, moderation.DefaultPolicy())

	s.app = fiber.New()
	s.app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	s.app.Use(middleware.NewErrorMiddleware(logger).Middleware())

	routes.NewRegistry(handler.NewHealthHandler(checks), v1.Handlers{
		Listings:      handler.NewListingHandler(engine),
		Reports:       handler.NewReportHandler(engine),
		Appeals:       handler.NewAppealHandler(engine),
		Companies:     handler.NewCompanyHandler(engine),
		Audit:         handler.NewAuditHandler(engine),
		Notifications: handler.NewNotificationHandler(inbox.NewService(repos.Notifications)),
		WS:            ws.NewHandler(ws.NewHub(logger), logger, middleware.CtxUserIDKey),
	}, middleware.NewAuthMiddleware(s.jwt)).Register(s.app)

	return s
}

func (s *testServer) token(id uuid.UUID, role user.Role) string {
	s.t.Helper()
	tok, err := s.jwt.GenerateAccessToken(id, string(role))
	if err != nil {
		s.t.Fatalf("GenerateAccessToken: %v", err)
	}
	return tok
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		s.t.Fatalf("%s %s: decode body: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func (s *testServer) createListing() uuid.UUID {
	s.t.Helper()
	status, env := s.do(http.MethodPost, "/api/v1/listings", s.token(s.employer, user.RoleEmployer), map[string]any{
		"company_id":  s.company,
		"title":       "Forklift operator",
		"description": "Operate forklifts on the night shift at the north warehouse.",
		"location":    "Port Klang",
		"industry_id": s.industry,
	})
	if status != http.StatusCreated {
		s.t.Fatalf("create listing status=%d message=%q", status, env.Message)
	}
	var data struct {
		Listing struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"listing"`
		Degraded bool `json:"screening_degraded"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		s.t.Fatalf("decode listing: %v", err)
	}
	if data.Listing.Status != "PENDING" || !data.Degraded {
		s.t.Fatalf("expected degraded PENDING screening, got %+v", data)
	}
	return data.Listing.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, map[string]handler.Pinger{"database": stubPinger{}})
	status, env := s.do(http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("expected healthy, got %d %+v", status, env)
	}

	s = newTestServer(t, map[string]handler.Pinger{"redis": stubPinger{err: errors.New("connection refused")}})
	status, env = s.do(http.MethodGet, "/health", "", nil)
	if status != http.StatusServiceUnavailable || env.Success {
		t.Fatalf("expected 503, got %d %+v", status, env)
	}
	var checks map[string]string
	_ = json.Unmarshal(env.Data, &checks)
	if checks["redis"] != "connection refused" {
		t.Fatalf("unexpected checks: %v", checks)
	}
}

func TestAuth_MissingAndInvalidToken(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(http.MethodGet, "/api/v1/listings", "", nil)
	if status != http.StatusUnauthorized || env.Success {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	status, _ = s.do(http.MethodGet, "/api/v1/listings", "not-a-jwt", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", status)
	}

	status, _ = s.do(http.MethodGet, "/api/v1/listings", s.token(uuid.New(), user.RoleSystem), nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for system role token, got %d", status)
	}
}

func TestListings_RoleGuards(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createListing()

	status, _ := s.do(http.MethodPost, "/api/v1/listings/"+id.String()+"/approve", s.token(s.seeker, user.RoleJobSeeker), nil)
	if status != http.StatusForbidden {
		t.Fatalf("seeker approve: expected 403, got %d", status)
	}
	status, _ = s.do(http.MethodPost, "/api/v1/listings/"+id.String()+"/approve", s.token(s.employer, user.RoleEmployer), nil)
	if status != http.StatusForbidden {
		t.Fatalf("employer approve: expected 403, got %d", status)
	}
	status, _ = s.do(http.MethodGet, "/api/v1/listings", s.token(s.employer, user.RoleEmployer), nil)
	if status != http.StatusForbidden {
		t.Fatalf("employer list all: expected 403, got %d", status)
	}
}

func TestListings_CreateValidationFields(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(http.MethodPost, "/api/v1/listings", s.token(s.employer, user.RoleEmployer), map[string]any{
		"company_id":  s.company,
		"title":       "x",
		"description": "too short",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	var data struct {
		Fields []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	got := map[string]bool{}
	for _, f := range data.Fields {
		got[f.Field] = true
	}
	for _, want := range []string{"title", "description", "industry_id"} {
		if !got[want] {
			t.Fatalf("missing field error %q in %+v", want, data.Fields)
		}
	}
}

func TestListings_ApproveFlowAndConflict(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createListing()
	admin := s.token(s.admin, user.RoleAdmin)

	status, env := s.do(http.MethodPost, "/api/v1/listings/"+id.String()+"/approve", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d %q", status, env.Message)
	}
	var l struct {
		Status   string `json:"status"`
		IsActive bool   `json:"is_active"`
	}
	_ = json.Unmarshal(env.Data, &l)
	if l.Status != "APPROVED" || !l.IsActive {
		t.Fatalf("unexpected listing after approve: %+v", l)
	}

	status, env = s.do(http.MethodPost, "/api/v1/listings/"+id.String()+"/approve", admin, nil)
	if status != http.StatusConflict {
		t.Fatalf("second approve: expected 409, got %d", status)
	}
	var conflict struct {
		Entity        string    `json:"entity"`
		ID            uuid.UUID `json:"id"`
		CurrentStatus string    `json:"current_status"`
	}
	if err := json.Unmarshal(env.Data, &conflict); err != nil {
		t.Fatalf("decode conflict: %v", err)
	}
	if conflict.Entity != "listing" || conflict.ID != id || conflict.CurrentStatus != "APPROVED" {
		t.Fatalf("unexpected conflict payload: %+v", conflict)
	}

	status, env = s.do(http.MethodGet, "/api/v1/notifications?unread=true", s.token(s.employer, user.RoleEmployer), nil)
	if status != http.StatusOK {
		t.Fatalf("notifications: expected 200, got %d", status)
	}
	var page struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
	}
	_ = json.Unmarshal(env.Data, &page)
	found := false
	for _, n := range page.Items {
		if n.Title == "Listing approved" {
			found = true
		}
	}
	if !found {
		t.Fatalf("employer inbox missing approval notice: %+v", page.Items)
	}

	status, env = s.do(http.MethodPost, "/api/v1/notifications/read-all", s.token(s.employer, user.RoleEmployer), nil)
	if status != http.StatusOK {
		t.Fatalf("read-all: expected 200, got %d %q", status, env.Message)
	}
}

func TestListings_RejectRequiresReason(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createListing()
	admin := s.token(s.admin, user.RoleAdmin)

	status, _ := s.do(http.MethodPost, "/api/v1/listings/"+id.String()+"/reject", admin, map[string]string{"reason": "no"})
	if status != http.StatusBadRequest {
		t.Fatalf("short reason: expected 400, got %d", status)
	}

	status, env := s.do(http.MethodPost, "/api/v1/listings/"+id.String()+"/reject", admin, map[string]string{"reason": "Salary information is misleading."})
	if status != http.StatusOK {
		t.Fatalf("reject: expected 200, got %d %q", status, env.Message)
	}

	status, env = s.do(http.MethodPost, "/api/v1/listings/"+id.String()+"/appeal", s.token(s.employer, user.RoleEmployer), map[string]string{
		"explanation": "We corrected the salary range and would like the listing to be reconsidered by the team.",
	})
	if status != http.StatusConflict {
		t.Fatalf("appeal on final rejection: expected 409, got %d %q", status, env.Message)
	}
}

func TestListings_BadPathParams(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.token(s.admin, user.RoleAdmin)

	status, _ := s.do(http.MethodPost, "/api/v1/listings/not-a-uuid/approve", admin, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad uuid: expected 400, got %d", status)
	}
	status, _ = s.do(http.MethodPost, "/api/v1/listings/"+uuid.NewString()+"/approve", admin, nil)
	if status != http.StatusNotFound {
		t.Fatalf("unknown listing: expected 404, got %d", status)
	}
}

func TestReports_SuspendAndAppealOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createListing()
	admin := s.token(s.admin, user.RoleAdmin)
	employer := s.token(s.employer, user.RoleEmployer)

	if status, _ := s.do(http.MethodPost, "/api/v1/listings/"+id.String()+"/approve", admin, nil); status != http.StatusOK {
		t.Fatalf("approve: %d", status)
	}

	status, env := s.do(http.MethodPost, "/api/v1/reports", s.token(s.seeker, user.RoleJobSeeker), map[string]any{
		"listing_id":  id,
		"type":        "SCAM",
		"description": "They asked me to pay a registration fee before the interview.",
	})
	if status != http.StatusCreated {
		t.Fatalf("file report: expected 201, got %d %q", status, env.Message)
	}
	var created struct {
		Report struct {
			ID uuid.UUID `json:"id"`
		} `json:"report"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil || created.Report.ID == uuid.Nil {
		t.Fatalf("decode report: %v %s", err, env.Data)
	}

	status, env = s.do(http.MethodPost, "/api/v1/listings/"+id.String()+"/suspend", admin, map[string]any{
		"reason":    "Charging applicants a fee.",
		"report_id": created.Report.ID,
	})
	if status != http.StatusOK {
		t.Fatalf("suspend: expected 200, got %d %q", status, env.Message)
	}

	status, env = s.do(http.MethodPost, "/api/v1/listings/"+id.String()+"/appeal", employer, map[string]string{
		"explanation": "The fee was a deposit for safety boots which we refund in the first paycheck.",
	})
	if status != http.StatusCreated {
		t.Fatalf("appeal: expected 201, got %d %q", status, env.Message)
	}
	var appealed struct {
		Appeal struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"appeal"`
		Listing struct {
			Status string `json:"status"`
		} `json:"listing"`
	}
	if err := json.Unmarshal(env.Data, &appealed); err != nil {
		t.Fatalf("decode appeal: %v", err)
	}
	if appealed.Listing.Status != "APPEALED" || appealed.Appeal.Status != "PENDING" {
		t.Fatalf("unexpected appeal result: %+v", appealed)
	}

	status, _ = s.do(http.MethodPatch, "/api/v1/appeals/"+appealed.Appeal.ID.String(), admin, map[string]string{
		"decision": "REJECT",
		"notes":    "Deposits are not allowed under the posting rules.",
	})
	if status != http.StatusOK {
		t.Fatalf("decide appeal: expected 200, got %d", status)
	}

	status, env = s.do(http.MethodPost, "/api/v1/listings/"+id.String()+"/appeal", employer, map[string]string{
		"explanation": "Trying again with the same explanation because we still disagree with the outcome.",
	})
	if status != http.StatusConflict {
		t.Fatalf("re-appeal: expected 409, got %d %q", status, env.Message)
	}
}
