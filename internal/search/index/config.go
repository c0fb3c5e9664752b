package index

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Default ports per backend, used when Port is zero.
const (
	DefaultOpenSearchPort = 9200
	DefaultTypesensePort  = 8108
)

// Config describes how to reach the search backend.
//
// A missing host falls back to localhost. Missing credentials produce
// unauthenticated requests.
type Config struct {
	Backend  string
	Protocol string
	Host     string
	Port     int
	Username string
	Password string
	APIKey   string

	// ConnectTimeout bounds TCP connection setup.
	ConnectTimeout time.Duration
	// RequestTimeout bounds calls whose context carries no deadline.
	RequestTimeout time.Duration
}

// BaseURL returns the backend root URL, e.g. "http://localhost:9200".
func (c Config) BaseURL() string {
	protocol := strings.TrimSuffix(strings.ToLower(c.Protocol), "://")
	if protocol == "" {
		protocol = "http"
	}

	host := c.Host
	if host == "" {
		host = "localhost"
	}

	port := c.Port
	if port == 0 {
		port = c.defaultPort()
	}

	return fmt.Sprintf("%s://%s", protocol, net.JoinHostPort(host, strconv.Itoa(port)))
}

func (c Config) defaultPort() int {
	if c.Backend == BackendTypesense {
		return DefaultTypesensePort
	}
	return DefaultOpenSearchPort
}

// transport returns the HTTP transport handed to the backend SDK, with
// ConnectTimeout applied to dialing and the TLS handshake.
func (c Config) transport() *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.ConnectTimeout > 0 {
		transport.DialContext = (&net.Dialer{Timeout: c.ConnectTimeout, KeepAlive: 30 * time.Second}).DialContext
		transport.TLSHandshakeTimeout = c.ConnectTimeout
	}
	return transport
}

// withRequestTimeout applies RequestTimeout when ctx carries no deadline.
func withRequestTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
