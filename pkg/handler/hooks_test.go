package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
)

func hookRequest(path, payload string) *http.Request {
	return httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
}

func TestDatasetCreated(t *testing.T) {
	env := newHandlerEnv()

	req := hookRequest("/api/hooks/dataset/created",
		`{"id": "ds-1", "private": true, "allowed_users": ["bob", "carol"]}`)
	status, body := doRequest(t, env.mux, req)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
	assert.Equal(t, []string{"bob", "carol"}, env.repo.Users("ds-1"))
}

func TestDatasetCreated_InvalidFields(t *testing.T) {
	env := newHandlerEnv()

	req := hookRequest("/api/hooks/dataset/created",
		`{"id": "ds-1", "private": false, "allowed_users": ["bob"]}`)
	status, body := doRequest(t, env.mux, req)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error.Message, "This field is only valid when you create a private dataset")
}

func TestDatasetDeleted(t *testing.T) {
	env := newHandlerEnv()
	env.repo.Seed("ds-1", "bob")

	req := hookRequest("/api/hooks/dataset/deleted", `{"id": "ds-1"}`)
	status, _ := doRequest(t, env.mux, req)

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, env.repo.Users("ds-1"))
}

func TestDatasetShown(t *testing.T) {
	env := newHandlerEnv()

	payload := `{"id": "ds-1", "private": true, "creator_user_id": "u-1",
		"allowed_users": ["bob"], "acquire_url": "http://store.example.org/offering/1"}`

	// outsider: hidden fields are gone from the response
	status, body := doRequest(t, env.mux, hookRequest("/api/hooks/dataset/shown", payload))
	assert.Equal(t, http.StatusOK, status)

	var redacted datamodel.Dataset
	require.NoError(t, json.Unmarshal(body.Result, &redacted))
	assert.Nil(t, redacted.AllowedUsers)
	assert.Empty(t, redacted.AcquireURL)

	// creator: hidden fields survive
	req := hookRequest("/api/hooks/dataset/shown", payload)
	req.Header.Set("X-Actor-Name", "alice")
	req.Header.Set("X-Actor-Id", "u-1")
	status, body = doRequest(t, env.mux, req)
	assert.Equal(t, http.StatusOK, status)

	var visible datamodel.Dataset
	require.NoError(t, json.Unmarshal(body.Result, &visible))
	assert.Equal(t, []string{"bob"}, visible.AllowedUsers)
}

func TestDatasetsSearched(t *testing.T) {
	env := newHandlerEnv()

	payload := `{"results": [
		{"id": "ds-private", "state": "active", "private": true, "creator_user_id": "u-1",
		 "allowed_users": ["bob"], "resources": [{"id": "r-1"}]}
	]}`

	req := hookRequest("/api/hooks/dataset/searched", payload)
	req.Header.Set("X-Actor-Name", "carol")
	req.Header.Set("X-Actor-Id", "u-3")
	status, body := doRequest(t, env.mux, req)
	assert.Equal(t, http.StatusOK, status)

	var filtered struct {
		Results []*datamodel.Dataset `json:"results"`
	}
	require.NoError(t, json.Unmarshal(body.Result, &filtered))
	require.Len(t, filtered.Results, 1)
	assert.Nil(t, filtered.Results[0].AllowedUsers)
	assert.Nil(t, filtered.Results[0].Resources)
}

func TestDatasetIndexed(t *testing.T) {
	env := newHandlerEnv()

	status, body := doRequest(t, env.mux, hookRequest("/api/hooks/dataset/indexed",
		`{"id": "ds-1", "private": true, "searchable": false}`))
	assert.Equal(t, http.StatusOK, status)

	var result map[string]string
	require.NoError(t, json.Unmarshal(body.Result, &result))
	assert.Equal(t, "private", result["capacity"])

	status, body = doRequest(t, env.mux, hookRequest("/api/hooks/dataset/indexed",
		`{"id": "ds-2", "private": true}`))
	assert.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body.Result, &result))
	assert.Equal(t, "public", result["capacity"])
}

func TestHookEndpoints_MalformedBody(t *testing.T) {
	env := newHandlerEnv()

	status, body := doRequest(t, env.mux, hookRequest("/api/hooks/dataset/created", `not json`))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid dataset format", body.Error.Message)
}
