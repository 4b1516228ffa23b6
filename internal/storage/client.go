package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	serrors "github.com/teachertools/satchel/internal/errors"
)

// Client speaks the envelope wire contract to a remote backend over HTTP.
// It only ever transmits opaque fields: salt, wrapped key material, and
// record ciphertext. TLS, authentication, and retry policy belong to the
// surrounding application; the provided http.Client is used as-is.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient builds a store client for the backend at baseURL.
// Passing a nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base URL: %v", serrors.ErrInvalidInput, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: base, http: httpClient}, nil
}

func (c *Client) endpoint(parts ...string) string {
	return c.base.JoinPath(parts...).String()
}

// do sends one JSON request and decodes the response body into out when
// out is non-nil. Status codes map onto the storage error taxonomy.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return serrors.ErrRecordNotFound
	case resp.StatusCode == http.StatusConflict:
		return serrors.ErrWrappedKeyConflict
	case resp.StatusCode >= 400:
		return fmt.Errorf("backend returned %s for %s %s", resp.Status, method, endpoint)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
		}
	}
	return nil
}

func (c *Client) SaveEnrollment(ctx context.Context, e Enrollment) error {
	err := c.do(ctx, http.MethodPost, c.endpoint("vault", "enrollment"), e, nil)
	if errors.Is(err, serrors.ErrWrappedKeyConflict) {
		return serrors.ErrAlreadyEnrolled
	}
	return err
}

func (c *Client) FetchEnrollment(ctx context.Context) (Enrollment, error) {
	var e Enrollment
	err := c.do(ctx, http.MethodGet, c.endpoint("vault", "enrollment"), nil, &e)
	if errors.Is(err, serrors.ErrRecordNotFound) {
		return Enrollment{}, serrors.ErrNotEnrolled
	}
	return e, err
}

func (c *Client) ReplaceEnrollment(ctx context.Context, e Enrollment) error {
	err := c.do(ctx, http.MethodPut, c.endpoint("vault", "enrollment"), e, nil)
	if errors.Is(err, serrors.ErrRecordNotFound) {
		return serrors.ErrNotEnrolled
	}
	return err
}

func (c *Client) SaveWrappedKey(ctx context.Context, k WrappedKey) error {
	k.Revision = 1
	return c.do(ctx, http.MethodPost, c.endpoint("vault", "keys", k.Purpose), k, nil)
}

func (c *Client) FetchWrappedKey(ctx context.Context, purpose string) (WrappedKey, error) {
	var k WrappedKey
	err := c.do(ctx, http.MethodGet, c.endpoint("vault", "keys", purpose), nil, &k)
	if errors.Is(err, serrors.ErrRecordNotFound) {
		return WrappedKey{}, fmt.Errorf("%w: purpose %q", serrors.ErrWrappedKeyNotFound, purpose)
	}
	return k, err
}

func (c *Client) ReplaceWrappedKey(ctx context.Context, k WrappedKey, expectedRevision int) error {
	k.Revision = expectedRevision + 1
	endpoint := c.endpoint("vault", "keys", k.Purpose) + "?expected_revision=" + strconv.Itoa(expectedRevision)
	err := c.do(ctx, http.MethodPut, endpoint, k, nil)
	if errors.Is(err, serrors.ErrRecordNotFound) {
		return fmt.Errorf("%w: purpose %q", serrors.ErrWrappedKeyNotFound, k.Purpose)
	}
	return err
}

func (c *Client) PutRecord(ctx context.Context, r RecordEnvelope) error {
	if r.ID == "" {
		return fmt.Errorf("%w: record id must not be empty", serrors.ErrInvalidInput)
	}
	return c.do(ctx, http.MethodPut, c.endpoint("records", r.ID), r, nil)
}

func (c *Client) GetRecord(ctx context.Context, id string) (RecordEnvelope, error) {
	var r RecordEnvelope
	err := c.do(ctx, http.MethodGet, c.endpoint("records", id), nil, &r)
	if errors.Is(err, serrors.ErrRecordNotFound) {
		return RecordEnvelope{}, fmt.Errorf("%w: %s", serrors.ErrRecordNotFound, id)
	}
	return r, err
}

func (c *Client) ListRecords(ctx context.Context) ([]RecordEnvelope, error) {
	var records []RecordEnvelope
	if err := c.do(ctx, http.MethodGet, c.endpoint("records"), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, c.endpoint("records", id), nil, nil)
	if errors.Is(err, serrors.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", serrors.ErrRecordNotFound, id)
	}
	return err
}
