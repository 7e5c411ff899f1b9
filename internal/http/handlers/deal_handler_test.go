package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/escrow-platform/backend/internal/services"
)

func newDealTestApp(t *testing.T) *fiber.App {
	t.Helper()
	log := zap.NewNop()

	dealService := services.NewDealService(&stubDealStore{}, &stubUserStore{}, nil, nil, nil, nil, log)
	h := NewDealHandler(dealService, log)

	app := fiber.New()
	app.Get("/deals/:id", h.GetDeal)
	app.Post("/deals/:id/fund", h.FundDeal)
	return app
}

func TestGetDealMalformedIDIsRejected(t *testing.T) {
	app := newDealTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/deals/abc", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	env, _ := decodeBody(t, resp.Body)
	assert.Equal(t, "invalid deal id", env.Error)
	assert.False(t, env.OK)
	assert.Nil(t, env.Data)
}

func TestGetDealUnknownIDIsNotFound(t *testing.T) {
	app := newDealTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/deals/123", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	env, _ := decodeBody(t, resp.Body)
	assert.Equal(t, "deal 123 not found", env.Error)
}

func TestFundDealMalformedIDStopsBeforeService(t *testing.T) {
	app := newDealTestApp(t)

	req := httptest.NewRequest("POST", "/deals/abc/fund", strings.NewReader(`{"userId":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	env, _ := decodeBody(t, resp.Body)
	assert.Equal(t, "invalid deal id", env.Error)
}
