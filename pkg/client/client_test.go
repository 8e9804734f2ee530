package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bobox/internal/httpapi"
	"bobox/internal/unit"
)

func newTestAPI(t *testing.T) *Client {
	t.Helper()
	log, _ := test.NewNullLogger()
	store := unit.NewStore()
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.Dependencies{
		Log:    log,
		Store:  store,
		Engine: unit.NewEngine(store),
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL + "/")
	c.HTTPClient = srv.Client()
	return c
}

func TestClient_Lifecycle(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()

	u, err := c.Create(ctx, "Capsule-A02", unit.KindCapsule)
	require.NoError(t, err)
	assert.Equal(t, unit.StatusAvailable, u.Status)

	u, err = c.UpdateStatus(ctx, u.ID, unit.StatusOccupied)
	require.NoError(t, err)
	assert.Equal(t, unit.StatusOccupied, u.Status)

	_, err = c.UpdateStatus(ctx, u.ID, unit.StatusAvailable)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "INVALID_STATE_TRANSITION", apiErr.Code)
	assert.ElementsMatch(t, []unit.Status{unit.StatusCleaningInProgress, unit.StatusMaintenanceNeeded}, apiErr.Allowed)

	got, err := c.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, unit.StatusOccupied, got.Status)

	tr, err := c.Transitions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, tr.Next, 2)
	assert.Equal(t, unit.StatusCleaningInProgress, tr.Next[0].Status)
}

func TestClient_ListFilter(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()

	a, err := c.Create(ctx, "Capsule-A01", unit.KindCapsule)
	require.NoError(t, err)
	_, err = c.Create(ctx, "Forest-Cabin-1", unit.KindCabin)
	require.NoError(t, err)
	_, err = c.UpdateStatus(ctx, a.ID, unit.StatusMaintenanceNeeded)
	require.NoError(t, err)

	all, err := c.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	broken, err := c.List(ctx, unit.StatusMaintenanceNeeded)
	require.NoError(t, err)
	require.Len(t, broken, 1)
	assert.Equal(t, a.ID, broken[0].ID)

	_, err = c.List(ctx, "nonsense")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestClient_NotFound(t *testing.T) {
	c := newTestAPI(t)
	_, err := c.Get(context.Background(), "no-such-unit")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "unit api: status=404 code=NOT_FOUND: Unit not found", apiErr.Error())
}

func TestClient_Statuses(t *testing.T) {
	c := newTestAPI(t)
	infos, err := c.Statuses(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 4)
	assert.Equal(t, "Cleaning In Progress", infos[2].DisplayName)
}

func TestClient_NonEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Get(context.Background(), "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "bad gateway", apiErr.Message)
	assert.Empty(t, apiErr.Code)
}
