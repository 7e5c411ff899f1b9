package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/escrow-platform/backend/internal/errs"
	"github.com/escrow-platform/backend/internal/models"
	"github.com/escrow-platform/backend/internal/rbac"
	"github.com/escrow-platform/backend/internal/repositories"
	"github.com/escrow-platform/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUserStore struct {
	users map[int64]*models.User
}

func (s *stubUserStore) Create(context.Context, *models.User) error { return nil }

func (s *stubUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errs.NotFoundf("user %d not found", id)
	}
	return u, nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return nil, errs.NotFoundf("user %s not found", email)
}

func (s *stubUserStore) CountByEmail(context.Context, string) (int, error) { return 0, nil }

type stubDealStore struct {
	deals []models.DealWithParties
}

func (s *stubDealStore) Create(context.Context, *models.Deal) error { return nil }

func (s *stubDealStore) GetByID(_ context.Context, id int64) (*models.Deal, error) {
	return nil, errs.NotFoundf("deal %d not found", id)
}

func (s *stubDealStore) GetByIDWithParties(_ context.Context, id int64) (*models.DealWithParties, error) {
	return nil, errs.NotFoundf("deal %d not found", id)
}

func (s *stubDealStore) List(context.Context, repositories.DealFilter) ([]models.DealWithParties, error) {
	return s.deals, nil
}

func (s *stubDealStore) UpdateStatus(context.Context, int64, string) error { return nil }

func (s *stubDealStore) Resolve(context.Context, int64, string, int64) error { return nil }
func (s *stubDealStore) CountRecentByUser(context.Context, int64, time.Time) (int, error) {
	return 0, nil
}

type responseEnvelope struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

func decodeBody(t *testing.T, body io.Reader) (responseEnvelope, string) {
	t.Helper()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env, string(raw)
}

func newAdminTestApp(t *testing.T) *fiber.App {
	t.Helper()
	log := zap.NewNop()

	users := &stubUserStore{users: map[int64]*models.User{
		1: {ID: 1, Email: "admin@example.com", Role: rbac.RoleAdmin, IsActive: true},
		7: {ID: 7, Email: "bob@example.com", Role: rbac.RoleUser, IsActive: true},
	}}
	deals := &stubDealStore{deals: []models.DealWithParties{{
		Deal: models.Deal{
			ID:       42,
			BuyerID:  7,
			SellerID: 8,
			Title:    "secret dispute",
			Amount:   decimal.NewFromInt(500),
			Currency: "USD",
			Status:   models.DealStatusDisputed,
		},
		BuyerEmail:  "bob@example.com",
		SellerEmail: "carol@example.com",
	}}}

	userService := services.NewUserService(users, nil, nil, "test-secret", time.Hour, log)
	dealService := services.NewDealService(deals, users, nil, nil, nil, nil, log)
	h := NewAdminHandler(dealService, userService, log)

	app := fiber.New()
	app.Get("/admin/disputes", h.GetDisputes)
	app.Get("/admin/deals", h.GetAllDeals)
	return app
}

func TestGetDisputesRejectsNonPrivilegedActor(t *testing.T) {
	app := newAdminTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/disputes?adminId=7", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	env, raw := decodeBody(t, resp.Body)
	assert.Equal(t, "admin or moderator role required", env.Error)
	assert.False(t, env.OK)
	assert.Nil(t, env.Data)
	assert.NotContains(t, raw, "secret dispute")
}

func TestGetDisputesRequiresAdminID(t *testing.T) {
	app := newAdminTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/disputes", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	env, raw := decodeBody(t, resp.Body)
	assert.Equal(t, "adminId is required", env.Error)
	assert.NotContains(t, raw, "secret dispute")
}

func TestGetDisputesAllowsAdmin(t *testing.T) {
	app := newAdminTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/disputes?adminId=1", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	env, raw := decodeBody(t, resp.Body)
	assert.True(t, env.OK)
	assert.True(t, strings.Contains(raw, "secret dispute"))
}

func TestGetAllDealsRejectsNonPrivilegedActor(t *testing.T) {
	app := newAdminTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/deals?adminId=7", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	_, raw := decodeBody(t, resp.Body)
	assert.NotContains(t, raw, "secret dispute")
}

func TestGetAllDealsRejectsUnknownActor(t *testing.T) {
	app := newAdminTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/deals?adminId=999", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
