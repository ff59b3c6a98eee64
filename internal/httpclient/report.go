package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/beevik/etree"
)

// ReportResult is the raw outcome of a REPORT request. A free-busy-query
// answers 200 with an iCalendar body while a calendar-query answers 207
// with a multistatus body, so interpretation is left to the caller.
type ReportResult struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// DoREPORT executes a CalDAV REPORT request with the given XML body.
// Non-2xx statuses are returned as a result, not an error: the caller uses
// them to decide whether a fallback query is worth trying.
func (c *httpClientWrapper) DoREPORT(ctx context.Context, urlStr string, depth int, body *etree.Document) (*ReportResult, error) {
	query, err := body.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize REPORT body: %w", err)
	}

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("starting REPORT request",
		"url", resolvedURL.String(),
		"depth", depth,
		"query", body.Root().Tag)

	req, err := http.NewRequestWithContext(ctx, "REPORT", resolvedURL.String(), strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	req.Header.Set("Depth", fmt.Sprintf("%d", depth))

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("REPORT request failed", "error", err)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("REPORT request complete",
		"status", resp.Status,
		"body_bytes", len(raw))

	return &ReportResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        raw,
	}, nil
}
