package network

import (
	"context"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

const defaultUserAgent = "quakecsv/1.0"

// Client wraps the HTTP client used for remote calls with a bounded
// per-request timeout and a stable User-Agent.
type Client struct {
	http      tls_client.HttpClient
	userAgent string
}

func NewClient(timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	jar, _ := fhttpcookiejar.New(nil)

	client, err := tls_client.NewHttpClient(
		tls_client.NewNoopLogger(),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(int(timeout.Seconds())),
		tls_client.WithCookieJar(jar),
	)
	if err != nil {
		return nil, err
	}

	return &Client{http: client, userAgent: defaultUserAgent}, nil
}

// Get issues a GET against target with default headers applied.
func (c *Client) Get(ctx context.Context, target string) (*fhttp.Response, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain;q=0.9, */*;q=0.8")
	return c.http.Do(req)
}
