// Package rmm адаптирует XML API RMM к контракту апстрима.
package rmm

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"fleetreport/internal/domain/shape"
	"fleetreport/internal/domain/upstream"
	"fleetreport/internal/infrastructure/upstream/transport"

	"github.com/clbanning/mxj/v2"
	"golang.org/x/exp/slog"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *transport.Client
}

func New(cfg transport.Config, log *slog.Logger) *Client {
	log = log.With(slog.String("component", "rmm"))
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    transport.New(cfg, log),
	}
}

func (c *Client) Fetch(ctx context.Context, service string, params upstream.Params) upstream.Result {
	body, ferr := c.http.Get(ctx, service, c.url(service, params), nil)
	if ferr != nil {
		return upstream.Result{Err: ferr}
	}

	m, err := mxj.NewMapXml(body)
	if err != nil {
		return upstream.Fail(upstream.KindDecode, service, "decode xml: %v", err)
	}
	payload := map[string]any(m)

	if res := shape.Map(payload["result"]); res != nil {
		if status := shape.String(res, "-status"); status != "" && !strings.EqualFold(status, "OK") {
			return upstream.Fail(upstream.KindRemote, service, "%s", remoteMessage(res, status))
		}
	}
	return upstream.Value(payload)
}

func (c *Client) url(service string, params upstream.Params) string {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("service", service)
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, params[k])
	}
	return c.baseURL + "/?" + q.Encode()
}

func remoteMessage(res shape.Record, status string) string {
	if e := shape.Map(res["error"]); e != nil {
		if msg := shape.String(e, "message", "errormessage"); msg != "" {
			return msg
		}
	}
	if msg := shape.String(res, "error", "message"); msg != "" {
		return msg
	}
	return "status " + status
}
