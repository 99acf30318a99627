// Package gateway talks to the two remote collaborators: the manifest API
// (deliveries, trucks, expense types) and the spreadsheet ingestion API
// (trip and fuel batches). Every failure is returned as a *RemoteError that
// matches exactly one remote sentinel from package common.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
)

const maxBodySize = 8 << 20

type Options struct {
	ManifestURL     string
	ManifestToken   string
	ManifestTimeout time.Duration

	TripsURL      string
	FuelURL       string
	IngestTimeout time.Duration
}

type Client struct {
	opts     Options
	manifest *http.Client
	ingest   *http.Client
	log      logging.Logger
}

func NewClient(opts Options, log logging.Logger) *Client {
	return &Client{
		opts:     opts,
		manifest: &http.Client{Timeout: opts.ManifestTimeout},
		ingest:   &http.Client{Timeout: opts.IngestTimeout},
		log:      log,
	}
}

// FetchManifest returns today's and any other deliveries the manifest API
// assigns to driver.
func (c *Client) FetchManifest(ctx context.Context, driver string) (*Manifest, error) {
	u, err := c.manifestURL("/logistics/ldd-data", url.Values{"driver": {driver}})
	if err != nil {
		return nil, err
	}

	var resp manifestResponse
	if err := c.do(ctx, c.manifest, http.MethodGet, u, nil, c.manifestHeaders(), &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, serverRejected(resp.Message)
	}

	m := &Manifest{ExpenseTypes: resp.ExpenseTypes}
	for _, d := range resp.Data {
		if d.DeliveryID == "" {
			continue
		}
		m.Deliveries = append(m.Deliveries, d.toModel())
	}
	c.log.Debug(ctx, "manifest fetched", "driver", driver, "deliveries", len(m.Deliveries))
	return m, nil
}

func (c *Client) FetchTrucks(ctx context.Context) ([]string, error) {
	u, err := c.manifestURL("/maintenance/trucks", nil)
	if err != nil {
		return nil, err
	}

	var resp trucksResponse
	if err := c.do(ctx, c.manifest, http.MethodGet, u, nil, c.manifestHeaders(), &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, serverRejected(resp.Message)
	}
	return resp.Data, nil
}

// SubmitTrips posts one trip batch. key is sent as the idempotency key so
// the server can drop a batch it already accepted.
func (c *Client) SubmitTrips(ctx context.Context, key string, logs []TripPayload) (int, error) {
	body := struct {
		Logs []TripPayload `json:"logs"`
	}{Logs: logs}
	return c.submit(ctx, c.opts.TripsURL, key, body)
}

func (c *Client) SubmitFuel(ctx context.Context, key string, records []FuelPayload) (int, error) {
	body := struct {
		Records []FuelPayload `json:"records"`
	}{Records: records}
	return c.submit(ctx, c.opts.FuelURL, key, body)
}

// Ping reports whether the manifest host answers at all. Any HTTP response
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c.opts.ManifestURL == "" {
		return &RemoteError{Kind: common.ErrUnreachable, Message: "manifest URL is not configured"}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.opts.ManifestURL, nil)
	if err != nil {
		return &RemoteError{Kind: common.ErrUnreachable, Message: msgUnreachable, Cause: err}
	}
	resp, err := c.manifest.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *Client) submit(ctx context.Context, target, key string, body any) (int, error) {
	if target == "" {
		return 0, &RemoteError{Kind: common.ErrUnreachable, Message: "ingestion URL is not configured"}
	}
	headers := http.Header{}
	if key != "" {
		headers.Set(common.IdempotencyKeyHeaderName, key)
	}

	var resp ingestResponse
	if err := c.do(ctx, c.ingest, http.MethodPost, target, body, headers, &resp); err != nil {
		return 0, err
	}
	if !resp.Success {
		return 0, serverRejected(resp.Message)
	}
	return resp.Created, nil
}

func (c *Client) manifestHeaders() http.Header {
	h := http.Header{}
	if c.opts.ManifestToken != "" {
		h.Set(common.ManifestTokenHeaderName, c.opts.ManifestToken)
	}
	return h
}

func (c *Client) manifestURL(path string, q url.Values) (string, error) {
	if c.opts.ManifestURL == "" {
		return "", &RemoteError{Kind: common.ErrUnreachable, Message: "manifest URL is not configured"}
	}
	u, err := url.Parse(strings.TrimRight(c.opts.ManifestURL, "/") + path)
	if err != nil {
		return "", &RemoteError{Kind: common.ErrUnreachable, Message: msgUnreachable, Cause: err}
	}
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, target string, in any, headers http.Header, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &RemoteError{Kind: common.ErrServer, Message: msgEncode, Cause: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &RemoteError{Kind: common.ErrUnreachable, Message: msgUnreachable, Cause: err}
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", method, "url", target, "error", err)
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return mapTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp.StatusCode, extractMessage(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &RemoteError{Kind: common.ErrServer, Message: "the server sent a malformed response", Status: resp.StatusCode, Cause: err}
	}
	return nil
}

func extractMessage(raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}
