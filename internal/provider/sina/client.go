package sina

import (
	"net/http"
)

const (
	defaultBaseURL = "https://hq.sinajs.cn"
	defaultReferer = "https://finance.sina.com.cn"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=sina_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches real-time A-share quotes from the Sina hq endpoint.
type Client struct {
	// baseURL is the base URL for the quote endpoint.
	baseURL string
	// httpClient performs the requests.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
}

// ClientOption is a configuration option for the Sina client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the quote endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Set(key, value)
			}
		}
	}
}

// NewClient creates a new Sina quote client.
func NewClient(options ...ClientOption) *Client {
	var client = &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	// Sina returns 456 without this Referer.
	client.header.Set("Referer", defaultReferer)
	for _, option := range options {
		option(client)
	}
	return client
}

// Name implements quote.Provider.
func (c *Client) Name() string { return "Sina" }
