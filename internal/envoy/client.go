// Package envoy is the HTTP client for the Enphase Envoy local API.
//
// The gateway exposes a JSON API over HTTPS with a self-signed certificate
// and bearer-token auth. Three endpoints are used: live meter status, energy
// totals, and the ensemble device inventory.
package envoy

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/xtxerr/gridwatch/internal/logging"
)

// Sentinel errors for API failures.
var (
	// ErrUnauthorized means the gateway rejected the bearer token.
	ErrUnauthorized = errors.New("envoy: unauthorized")

	// ErrUnexpectedStatus means the gateway answered with a status code the
	// client does not handle.
	ErrUnexpectedStatus = errors.New("envoy: unexpected status")
)

// Endpoint paths on the gateway.
const (
	pathLiveStatus = "/ivp/livedata/status"
	pathEnergy     = "/ivp/pdm/energy"
	pathInventory  = "/ivp/ensemble/inventory"
)

// DefaultTimeout is the per-request timeout when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is the gateway base URL, e.g. "https://envoy.local".
	BaseURL string

	// Token is the bearer token for the local API.
	Token string

	// InsecureSkipVerify disables certificate verification. The Envoy
	// serves a self-signed certificate, so this is normally required.
	InsecureSkipVerify bool

	// Timeout is the per-request timeout. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Client talks to one Envoy gateway. Safe for concurrent use.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
	log   *slog.Logger
}

// NewClient creates a Client for the configured gateway.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		base:  base,
		token: cfg.Token,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		log: logging.Component("envoy"),
	}, nil
}

// FetchStatus fetches the live meter status.
func (c *Client) FetchStatus(ctx context.Context) (*LiveStatus, error) {
	var status LiveStatus
	if err := c.getJSON(ctx, pathLiveStatus, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// FetchEnergy fetches the production and consumption energy totals.
func (c *Client) FetchEnergy(ctx context.Context) (*Energy, error) {
	var energy Energy
	if err := c.getJSON(ctx, pathEnergy, &energy); err != nil {
		return nil, err
	}
	return &energy, nil
}

// FetchInventory fetches the ensemble device inventory.
func (c *Client) FetchInventory(ctx context.Context) ([]InventoryRow, error) {
	var rows []InventoryRow
	if err := c.getJSON(ctx, pathInventory, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into out.
// The endpoint path is joined onto the base URL, so a base with a path prefix
// (a reverse proxy in front of the gateway) keeps its prefix.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	u := c.base.JoinPath(path)

	c.log.Debug("fetching", "url", u.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("get %s: %w", path, ErrUnauthorized)
	default:
		return fmt.Errorf("get %s: status %d: %w", path, resp.StatusCode, ErrUnexpectedStatus)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
