// Package edr адаптирует JSON API защиты агентов к контракту апстрима.
package edr

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"fleetreport/internal/domain/upstream"
	"fleetreport/internal/infrastructure/upstream/transport"

	"golang.org/x/exp/slog"
)

const pageSize = "1000"

type Client struct {
	baseURL string
	apiKey  string
	http    *transport.Client
}

func New(cfg transport.Config, log *slog.Logger) *Client {
	log = log.With(slog.String("component", "edr"))
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    transport.New(cfg, log),
	}
}

func (c *Client) Fetch(ctx context.Context, service string, params upstream.Params) upstream.Result {
	q := url.Values{}
	q.Set("limit", pageSize)
	q.Set("sortBy", "createdAt")
	q.Set("sortOrder", "desc")
	for k, v := range params {
		q.Set(k, v)
	}

	header := http.Header{}
	header.Set("Authorization", "ApiToken "+c.apiKey)
	header.Set("Accept", "application/json")

	body, ferr := c.http.Get(ctx, service, c.baseURL+"/"+url.PathEscape(service)+"?"+q.Encode(), header)
	if ferr != nil {
		return upstream.Result{Err: ferr}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return upstream.Fail(upstream.KindDecode, service, "decode json: %v", err)
	}
	if errs, ok := payload["errors"].([]any); ok && len(errs) > 0 {
		return upstream.Fail(upstream.KindRemote, service, "%v", errs[0])
	}
	return upstream.Value(payload)
}
