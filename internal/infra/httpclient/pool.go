package httpclient

import (
	"net/http"
	"time"
)

// sharedTransport is reused by every pooled client. The chat and embedding
// clients both talk to the OpenAI API host, so sharing one transport keeps
// their requests on warm connections.
var sharedTransport = &http.Transport{
	MaxIdleConns:          20,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       2 * time.Minute,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: time.Second,
	ForceAttemptHTTP2:     true,
}

// NewPooledClient returns an http.Client with the given overall request
// timeout, backed by the shared transport.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}
