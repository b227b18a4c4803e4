// Package client implements a very simple wrapper for the mintwatch web API.
package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
)

var (
	// ErrBadRequest defines the "bad request" error.
	ErrBadRequest = errors.New("bad request")
	// ErrInternalServerError defines the "internal server error" error.
	ErrInternalServerError = errors.New("internal server error")
	// ErrNotFound defines the "not found" error.
	ErrNotFound = errors.New("not found")
	// ErrServiceUnavailable defines the "service unavailable" error.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrUnknownError defines the "unknown error" error.
	ErrUnknownError = errors.New("unknown error")
)

// MintAPI is an API wrapper over the web API of a mintwatch daemon.
type MintAPI struct {
	client  *resty.Client
	baseURL string
}

// NewMintAPI returns a new *MintAPI with the given baseURL and optional resty client.
func NewMintAPI(baseURL string, httpClient ...*resty.Client) *MintAPI {
	client := resty.New()
	if len(httpClient) > 0 {
		client = httpClient[0]
	}

	return &MintAPI{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// BaseURL returns the baseURL of the API.
func (api *MintAPI) BaseURL() string {
	return api.baseURL
}

type errorResponse struct {
	Error string `json:"error"`
}

func (api *MintAPI) do(ctx context.Context, method, route string, query map[string]string, reqObj, resObj interface{}) error {
	errRes := &errorResponse{}

	req := api.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(resObj).
		SetError(errRes)
	if reqObj != nil {
		req.SetBody(reqObj)
	}

	res, err := req.Execute(method, api.baseURL+"/"+route)
	if err != nil {
		return errors.Wrapf(err, "%s %s failed", method, route)
	}
	if !res.IsError() {
		return nil
	}

	return interpretError(res, errRes)
}

func interpretError(res *resty.Response, errRes *errorResponse) error {
	switch res.StatusCode() {
	case http.StatusBadRequest:
		return errors.Wrap(ErrBadRequest, errRes.Error)
	case http.StatusNotFound:
		return errors.Wrap(ErrNotFound, res.Request.URL)
	case http.StatusInternalServerError:
		return errors.Wrap(ErrInternalServerError, errRes.Error)
	case http.StatusServiceUnavailable:
		return errors.Wrap(ErrServiceUnavailable, errRes.Error)
	}

	return errors.Wrapf(ErrUnknownError, "status %d: %s", res.StatusCode(), errRes.Error)
}
