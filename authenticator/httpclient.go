package authenticator

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// NewHTTPClient builds the outbound client used against the identity provider.
// An empty proxyURL falls back to the proxy environment variables.
func NewHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
