// Package airtable implements the records port against the Airtable REST
// API.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
)

// DefaultBaseURL is the public Airtable REST endpoint.
const DefaultBaseURL = "https://api.airtable.com/v0"

// batchSize is the Airtable limit on records per batch request.
const batchSize = 10

type Config struct {
	BaseURL string // defaults to DefaultBaseURL
	BaseID  string
	Token   string // personal access token
	// HTTPClient overrides the pooled default, mainly for tests.
	HTTPClient *http.Client
}

type Client struct {
	http    *http.Client
	baseURL string
	baseID  string
	token   string
}

var _ records.Store = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseID) == "" {
		return nil, errors.New("missing airtable base id")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("missing airtable token")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient()
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		baseID:  cfg.BaseID,
		token:   cfg.Token,
	}, nil
}

// newHTTPClient returns a client with connection pooling and keep-alive
// tuned for a single API host.
func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{Transport: transport}
}

type recordPayload struct {
	ID     string         `json:"id"`
	Fields records.Fields `json:"fields"`
}

type listResponse struct {
	Records []recordPayload `json:"records"`
	Offset  string          `json:"offset"`
}

func (c *Client) List(ctx context.Context, collection string, q records.Query, opts records.Options) ([]records.Record, error) {
	var out []records.Record
	offset := ""

	for {
		params := url.Values{}
		if f := formulaFor(q); f != "" {
			params.Set("filterByFormula", f)
		}
		if opts.MaxRecords > 0 {
			params.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
		}
		if offset != "" {
			params.Set("offset", offset)
		}

		body, err := c.do(ctx, http.MethodGet, collection, "", nil, params)
		if err != nil {
			return nil, err
		}
		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode list response: %w", err)
		}
		for _, rec := range page.Records {
			out = append(out, toRecord(rec))
		}
		if page.Offset == "" {
			return out, nil
		}
		offset = page.Offset
	}
}

func (c *Client) Create(ctx context.Context, collection string, fields records.Fields) (records.Record, error) {
	body, err := c.do(ctx, http.MethodPost, collection, "", map[string]any{"fields": fields}, nil)
	if err != nil {
		return records.Record{}, err
	}
	return decodeRecord(body)
}

func (c *Client) Update(ctx context.Context, collection, id string, fields records.Fields) (records.Record, error) {
	body, err := c.do(ctx, http.MethodPatch, collection, "/"+url.PathEscape(id), map[string]any{"fields": fields}, nil)
	if err != nil {
		return records.Record{}, err
	}
	return decodeRecord(body)
}

func (c *Client) Delete(ctx context.Context, collection, id string) (records.Record, error) {
	body, err := c.do(ctx, http.MethodDelete, collection, "/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return records.Record{}, err
	}
	var resp struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return records.Record{}, fmt.Errorf("decode delete response: %w", err)
	}
	return records.Record{ID: resp.ID}, nil
}

func (c *Client) BatchUpdate(ctx context.Context, collection string, updates []records.Update) ([]records.Record, error) {
	out := make([]records.Record, 0, len(updates))

	// The service caps batch writes; chunks go out sequentially.
	for start := 0; start < len(updates); start += batchSize {
		end := start + batchSize
		if end > len(updates) {
			end = len(updates)
		}
		chunk := updates[start:end]

		payload := make([]map[string]any, 0, len(chunk))
		for _, u := range chunk {
			payload = append(payload, map[string]any{"id": u.ID, "fields": u.Fields})
		}
		body, err := c.do(ctx, http.MethodPatch, collection, "", map[string]any{"records": payload}, nil)
		if err != nil {
			return nil, err
		}
		var resp listResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode batch response: %w", err)
		}
		for _, rec := range resp.Records {
			out = append(out, toRecord(rec))
		}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, collection, path string, body any, params url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%s/%s%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(collection), path)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, collection, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, remoteError(resp.StatusCode, raw)
	}
	return raw, nil
}

func decodeRecord(body []byte) (records.Record, error) {
	var rec recordPayload
	if err := json.Unmarshal(body, &rec); err != nil {
		return records.Record{}, fmt.Errorf("decode record: %w", err)
	}
	return toRecord(rec), nil
}

func toRecord(p recordPayload) records.Record {
	fields := p.Fields
	if fields == nil {
		fields = records.Fields{}
	}
	return records.Record{ID: p.ID, Fields: fields}
}

// errorPayload tolerates both shapes the service emits: an object with
// type/message, or a bare string.
type errorPayload struct {
	Kind    string
	Message string
}

func (e *errorPayload) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Message = s
		return nil
	}
	var obj struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.Kind = obj.Type
	e.Message = obj.Message
	return nil
}

func remoteError(status int, body []byte) error {
	var wrapper struct {
		Error errorPayload `json:"error"`
	}
	_ = json.Unmarshal(body, &wrapper)

	msg := strings.TrimSpace(wrapper.Error.Message)
	if msg == "" {
		msg = fmt.Sprintf("Error Airtable (%d)", status)
	}
	return &records.RemoteError{
		StatusCode: status,
		Kind:       wrapper.Error.Kind,
		Message:    msg,
	}
}
