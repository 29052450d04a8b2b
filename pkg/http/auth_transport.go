package http

import (
	"net/http"

	"golang.org/x/oauth2"
)

// headerTransport sets one header on every outgoing request
type headerTransport struct {
	key       string
	value     string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set(t.key, t.value)

	return t.transport.RoundTrip(reqCopy)
}

func withHeaderTransport(key, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			key:       key,
			value:     value,
			transport: rt,
		}
	})
}

// WithAuthToken sets a static bearer token. An empty token leaves the transport untouched
// so that another auth layer, such as WithTokenSource, can be installed instead.
func WithAuthToken(token string) HttpOpts {
	if token == "" {
		return func(*httpConfig) {}
	}
	return withHeaderTransport("Authorization", "Bearer "+token)
}

// WithTokenSource authorizes requests with refreshed OAuth2 tokens, e.g. application default credentials
func WithTokenSource(ts oauth2.TokenSource) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &oauth2.Transport{Source: ts, Base: rt}
	})
}

// WithUserAgent identifies the service to upstream APIs and callback receivers
func WithUserAgent(agent string) HttpOpts {
	if agent == "" {
		return func(*httpConfig) {}
	}
	return withHeaderTransport("User-Agent", agent)
}
