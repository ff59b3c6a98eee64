// Package httpclient speaks the two WebDAV verbs this tool needs, PROPFIND
// and REPORT, over a plain http.Client.
package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/beevik/etree"

	davxml "github.com/cyp0633/freeslot/internal/xml"
)

// Wrapper wraps http.Client with the CalDAV requests this tool issues.
type Wrapper interface {
	DoPROPFIND(ctx context.Context, url string, depth int, props ...string) (*davxml.Multistatus, error)
	DoREPORT(ctx context.Context, url string, depth int, body *etree.Document) (*ReportResult, error)
}

type httpClientWrapper struct {
	client  *http.Client
	baseURL url.URL
	logger  *slog.Logger
}

// resolveURL resolves a URL string against the base URL
func (c *httpClientWrapper) resolveURL(urlStr string) (*url.URL, error) {
	ref, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL %q: %w", urlStr, err)
	}
	return c.baseURL.ResolveReference(ref), nil
}

// NewWrapper creates a new client wrapper with logging. Authentication is
// the transport's job, see BasicAuthTransport.
func NewWrapper(client *http.Client, baseURL url.URL, logger *slog.Logger) (Wrapper, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &httpClientWrapper{client: client, baseURL: baseURL, logger: logger}, nil
}
