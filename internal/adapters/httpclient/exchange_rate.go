package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"fxconvert/internal/domain"
	fxhttp "fxconvert/internal/platform/http"
)

// Getter is the transport used by ExchangeRateClient.
type Getter interface {
	Get(ctx context.Context, url string) (*fxhttp.Response, error)
}

type ExchangeRateClient struct {
	http    Getter
	baseURL string
}

// FetchRate returns the latest record for base from <baseURL>/latest/<base>.
func (c *ExchangeRateClient) FetchRate(ctx context.Context, base string) (domain.RateRecord, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return domain.RateRecord{}, fmt.Errorf("failed to parse base URL: %w", err)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/latest/" + url.PathEscape(base)

	resp, err := c.http.Get(ctx, u.String())
	if err != nil {
		return domain.RateRecord{}, fmt.Errorf("failed to fetch rates for currency %q: %w", base, err)
	}

	var body domain.RateRecord
	if err = resp.DecodeJSON(&body); err != nil {
		if !resp.IsJSON() {
			return domain.RateRecord{}, fmt.Errorf("failed to decode response for currency %q (content type %q): %w", base, resp.Header.Get("Content-Type"), err)
		}
		return domain.RateRecord{}, fmt.Errorf("failed to decode response for currency %q: %w", base, err)
	}

	if body.Result != "success" {
		return domain.RateRecord{}, fmt.Errorf("%w for currency %q: %s", domain.ErrUpstreamResult, base, body.Result)
	}

	if body.Rates == nil {
		return domain.RateRecord{}, fmt.Errorf("%w for currency %q: response has no rates", domain.ErrUpstreamResult, base)
	}

	return body, nil
}

func NewExchangeRateClient(httpClient Getter, baseURL string) *ExchangeRateClient {
	return &ExchangeRateClient{http: httpClient, baseURL: baseURL}
}
