package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/Edwinhr716/maxtext/envconfig"
)

type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient returns a client for the inspection server at host.
func NewClient(host string) *Client {
	return &Client{
		base: &url.URL{Scheme: "http", Host: host},
		http: http.DefaultClient,
	}
}

// ClientFromEnvironment returns a client for the host selected by
// MAXTEXT_HOST.
func ClientFromEnvironment() *Client {
	return NewClient(envconfig.Host)
}

func (c *Client) do(ctx context.Context, method, path string, reqData, respData any) error {
	var reqBody io.Reader
	if reqData != nil {
		data, err := json.Marshal(reqData)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reqBody)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= http.StatusBadRequest {
		apiError := Error{Code: int32(response.StatusCode)}
		if err := json.Unmarshal(body, &apiError); err != nil {
			apiError.Message = string(body)
		}
		return apiError
	}

	if respData != nil {
		return json.Unmarshal(body, respData)
	}
	return nil
}

// Resolve maps a tensor's logical axes to mesh axes on the server.
func (c *Client) Resolve(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error) {
	var resp ResolveResponse
	if err := c.do(ctx, http.MethodPost, "/api/resolve", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Plan builds a full sharding plan for a model shape on the server.
func (c *Client) Plan(ctx context.Context, req *PlanRequest) (*PlanResponse, error) {
	var resp PlanResponse
	if err := c.do(ctx, http.MethodPost, "/api/plan", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Config fetches the loaded configuration.
func (c *Client) Config(ctx context.Context) (*ConfigResponse, error) {
	var resp ConfigResponse
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Version reports the server version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var resp VersionResponse
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}

// Heartbeat checks that the server is reachable.
func (c *Client) Heartbeat(ctx context.Context) error {
	return c.do(ctx, http.MethodHead, "/", nil, nil)
}
