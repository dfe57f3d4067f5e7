package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/conwetlab/privatedatasets-backend/config"
	"github.com/conwetlab/privatedatasets-backend/pkg/constant"
	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
	"github.com/conwetlab/privatedatasets-backend/pkg/errdomain"
	custom_logger "github.com/conwetlab/privatedatasets-backend/pkg/logger"
)

const (
	maxRetryCount = 3
	retryDelay    = 100 * time.Millisecond
)

// CatalogAPIClient talks to the host catalog's JSON action API
// (POST /api/3/action/<name>) and translates its error envelope into
// the local error taxonomy. It implements external.CatalogClient.
type CatalogAPIClient struct {
	*resty.Client
}

// NewCatalogClient returns an initialized catalog action-API client.
func NewCatalogClient(ctx context.Context, catalogConfig *config.CatalogConfig) *CatalogAPIClient {
	logger, _ := custom_logger.GetZapLogger(ctx)

	r := resty.New().
		SetLogger(logger.Sugar()).
		SetBaseURL(catalogConfig.URL).
		SetTimeout(catalogConfig.Timeout).
		SetTransport(&http.Transport{
			DisableKeepAlives: true,
		}).
		SetRetryCount(maxRetryCount).
		SetRetryWaitTime(retryDelay)

	if catalogConfig.APIKey != "" {
		r.SetHeader("Authorization", catalogConfig.APIKey)
	}

	return &CatalogAPIClient{Client: r}
}

// actionEnvelope is the catalog's response wrapper.
type actionEnvelope struct {
	Success bool                       `json:"success"`
	Result  json.RawMessage            `json:"result"`
	Error   map[string]json.RawMessage `json:"error"`
}

func (c *CatalogAPIClient) call(ctx context.Context, reqCtx datamodel.RequestContext, action string, payload any, out any) error {
	var envelope actionEnvelope

	req := c.R().SetContext(ctx).
		SetBody(payload).
		SetResult(&envelope).
		SetError(&envelope)
	if name := reqCtx.ActorName(); name != "" {
		req.SetHeader(constant.HeaderActorNameKey, name)
	}
	if reqCtx.BypassAuth {
		req.SetHeader(constant.HeaderBypassAuthKey, "true")
	}
	if reqCtx.InternalCallback {
		req.SetHeader(constant.HeaderCallbackKey, "true")
	}

	resp, err := req.Post("/api/3/action/" + action)
	if err != nil {
		return errors.Wrapf(err, "couldn't reach the catalog action %s", action)
	}

	if resp.IsError() || !envelope.Success {
		return translateActionError(action, resp.StatusCode(), envelope.Error)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return errors.Wrapf(err, "malformed %s result", action)
		}
	}
	return nil
}

func translateActionError(action string, statusCode int, errFields map[string]json.RawMessage) error {
	switch statusCode {
	case http.StatusNotFound:
		return errors.Wrap(errdomain.ErrNotFound, action)
	case http.StatusForbidden, http.StatusUnauthorized:
		return errors.Wrap(errdomain.ErrNotAuthorized, action)
	}

	// a 409 carries the catalog's field -> messages validation dict
	if statusCode == http.StatusConflict || statusCode == http.StatusBadRequest {
		fields := map[string][]string{}
		for field, raw := range errFields {
			if field == "__type" {
				continue
			}
			var msgs []string
			if err := json.Unmarshal(raw, &msgs); err == nil {
				fields[field] = msgs
				continue
			}
			var msg string
			if err := json.Unmarshal(raw, &msg); err == nil {
				fields[field] = []string{msg}
			}
		}
		return &errdomain.ValidationError{Fields: fields}
	}

	return fmt.Errorf("catalog action %s failed with status %d", action, statusCode)
}

// PackageShow fetches a dataset snapshot through the catalog show API.
func (c *CatalogAPIClient) PackageShow(ctx context.Context, reqCtx datamodel.RequestContext, id string) (*datamodel.Dataset, error) {
	var dataset datamodel.Dataset
	if err := c.call(ctx, reqCtx, "package_show", map[string]string{"id": id}, &dataset); err != nil {
		return nil, err
	}
	return &dataset, nil
}

// PackageUpdate persists a dataset through the catalog update API.
func (c *CatalogAPIClient) PackageUpdate(ctx context.Context, reqCtx datamodel.RequestContext, dataset *datamodel.Dataset) (*datamodel.Dataset, error) {
	var updated datamodel.Dataset
	if err := c.call(ctx, reqCtx, "package_update", dataset, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UserShow fetches a user snapshot. The lookup itself needs no
// authorization, so the call bypasses the catalog's auth layer.
func (c *CatalogAPIClient) UserShow(ctx context.Context, id string) (*datamodel.User, error) {
	var user datamodel.User
	reqCtx := datamodel.RequestContext{BypassAuth: true}
	if err := c.call(ctx, reqCtx, "user_show", map[string]string{"id": id}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// HasOrgPermission asks the catalog whether a user holds a permission
// in an organization.
func (c *CatalogAPIClient) HasOrgPermission(ctx context.Context, orgID string, userName string, permission string) (bool, error) {
	var result struct {
		Authorized bool `json:"authorized"`
	}
	reqCtx := datamodel.RequestContext{BypassAuth: true}
	payload := map[string]string{"org_id": orgID, "user_name": userName, "permission": permission}
	if err := c.call(ctx, reqCtx, "org_permission_check", payload, &result); err != nil {
		if errors.Is(err, errdomain.ErrNotFound) || errors.Is(err, errdomain.ErrNotAuthorized) {
			return false, nil
		}
		return false, err
	}
	return result.Authorized, nil
}
