package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPTransport calls a plain HTTP backend. Methods map to POST
// {base}/rpc/{method} with a JSON body; the presence service speaks this
// shape. A 404 maps to ErrNotFound, any other non-2xx status is a transport
// failure.
type HTTPTransport struct {
	base   string
	client *http.Client
}

func NewHTTPTransport(base string) *HTTPTransport {
	return &HTTPTransport{
		base: strings.TrimRight(base, "/"),
		// Per-call deadlines come from the caller's context.
		client: &http.Client{},
	}
}

func (t *HTTPTransport) Call(ctx context.Context, method string, req, resp any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	url := t.base + "/rpc/" + method
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call %s: %w", url, err)
	}
	defer httpResp.Body.Close()

	switch {
	case httpResp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case httpResp.StatusCode < 200 || httpResp.StatusCode > 299:
		return fmt.Errorf("call %s: status %d", url, httpResp.StatusCode)
	}
	if resp == nil {
		return nil
	}
	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, resp)
}
