package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conwetlab/privatedatasets-backend/config"
	"github.com/conwetlab/privatedatasets-backend/pkg/acl"
	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
	"github.com/conwetlab/privatedatasets-backend/pkg/handler"
	"github.com/conwetlab/privatedatasets-backend/pkg/hook"
	"github.com/conwetlab/privatedatasets-backend/pkg/mock"
	"github.com/conwetlab/privatedatasets-backend/pkg/service"
)

type handlerEnv struct {
	mux     *http.ServeMux
	repo    *mock.Repository
	catalog *mock.Catalog
}

func newHandlerEnv() *handlerEnv {
	cfg := &config.AppConfig{}
	cfg.Parser.Name = "fiware"
	cfg.Server.InstanceHost = "data.example.org"

	cfg.Policy.SearchableDefault = true

	repo := mock.NewRepository()
	catalog := mock.NewCatalog()
	engine := acl.NewACL(repo, catalog, catalog, &mock.Noticer{})
	svc := service.NewService(cfg, repo, catalog, engine, &mock.Indexer{})
	hooks := hook.NewHooks(svc, engine, &mock.Indexer{}, cfg.Policy)

	return &handlerEnv{
		mux:     handler.NewHandler(svc, hooks).Mux(),
		repo:    repo,
		catalog: catalog,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, mux *http.ServeMux, req *http.Request) (int, envelope) {
	t.Helper()

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)

	var body envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return recorder.Code, body
}

func acquiredRequest(payload string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/action/package_acquired", strings.NewReader(payload))
}

func TestPackageAcquired(t *testing.T) {
	env := newHandlerEnv()
	env.catalog.Datasets["ds-1"] = &datamodel.Dataset{
		ID: "ds-1", State: "active", Private: true, CreatorUserID: "u-1",
	}
	env.catalog.Users["u-1"] = &datamodel.User{ID: "u-1", Name: "alice"}

	status, body := doRequest(t, env.mux, acquiredRequest(
		`{"customer_name": "bob", "resources": [{"url": "http://data.example.org/dataset/ds-1"}]}`))

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
	assert.Equal(t, "null", string(body.Result))
	assert.Equal(t, []string{"bob"}, env.catalog.Datasets["ds-1"].AllowedUsers)
}

func TestPackageAcquired_Warnings(t *testing.T) {
	env := newHandlerEnv()

	status, body := doRequest(t, env.mux, acquiredRequest(
		`{"customer_name": "bob", "resources": [{"url": "http://data.example.org/dataset/ds-missing"}]}`))

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)

	var result struct {
		Warns []string `json:"warns"`
	}
	require.NoError(t, json.Unmarshal(body.Result, &result))
	assert.Equal(t, []string{"Dataset ds-missing was not found in this instance"}, result.Warns)
}

func TestPackageAcquired_MalformedPayload(t *testing.T) {
	env := newHandlerEnv()

	status, body := doRequest(t, env.mux, acquiredRequest(`{"resources": []}`))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, body.Success)
	assert.Equal(t, "customer_name not found in the request", body.Error.Message)
}

func TestRevokeAccess(t *testing.T) {
	env := newHandlerEnv()
	env.catalog.Datasets["ds-1"] = &datamodel.Dataset{
		ID: "ds-1", State: "active", Private: true, CreatorUserID: "u-1",
		AllowedUsers: []string{"bob"},
	}
	env.catalog.Users["u-1"] = &datamodel.User{ID: "u-1", Name: "alice"}

	req := httptest.NewRequest(http.MethodPost, "/api/action/revoke_access", strings.NewReader(
		`{"customer_name": "bob", "resources": [{"url": "http://data.example.org/dataset/ds-1"}]}`))
	status, body := doRequest(t, env.mux, req)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
	assert.Empty(t, env.catalog.Datasets["ds-1"].AllowedUsers)
}

func TestAcquisitionsList(t *testing.T) {
	env := newHandlerEnv()
	env.catalog.Users["alice"] = &datamodel.User{ID: "u-alice", Name: "alice"}
	env.catalog.Datasets["ds-1"] = &datamodel.Dataset{ID: "ds-1", State: "active", Private: true, Title: "First"}
	env.repo.Seed("ds-1", "alice")

	req := httptest.NewRequest(http.MethodGet, "/acquired-datasets", nil)
	req.Header.Set("X-Actor-Name", "alice")
	req.Header.Set("X-Actor-Id", "u-alice")
	status, body := doRequest(t, env.mux, req)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)

	var datasets []*datamodel.Dataset
	require.NoError(t, json.Unmarshal(body.Result, &datasets))
	if assert.Len(t, datasets, 1) {
		assert.Equal(t, "ds-1", datasets[0].ID)
		assert.Equal(t, "First", datasets[0].Title)
	}
}

func TestAcquisitionsList_Anonymous(t *testing.T) {
	env := newHandlerEnv()

	req := httptest.NewRequest(http.MethodGet, "/acquired-datasets", nil)
	status, body := doRequest(t, env.mux, req)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, body.Success)
}

func TestAcquisitionsList_OtherUser(t *testing.T) {
	env := newHandlerEnv()

	req := httptest.NewRequest(http.MethodGet, "/acquired-datasets?user=bob", nil)
	req.Header.Set("X-Actor-Name", "alice")
	req.Header.Set("X-Actor-Id", "u-alice")
	status, _ := doRequest(t, env.mux, req)

	assert.Equal(t, http.StatusForbidden, status)
}

func TestAcquisitionsList_UnknownUser(t *testing.T) {
	env := newHandlerEnv()

	req := httptest.NewRequest(http.MethodGet, "/acquired-datasets", nil)
	req.Header.Set("X-Actor-Name", "ghost")
	status, body := doRequest(t, env.mux, req)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body.Error.Message, "User ghost does not exist")
}

func TestMux_MethodRouting(t *testing.T) {
	env := newHandlerEnv()

	recorder := httptest.NewRecorder()
	env.mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/action/package_acquired", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)

	recorder = httptest.NewRecorder()
	env.mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/action/unknown_action", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
