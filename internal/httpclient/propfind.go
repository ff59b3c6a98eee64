package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	davxml "github.com/cyp0633/freeslot/internal/xml"
)

// DoPROPFIND performs a PROPFIND request for the named properties and
// returns the parsed multistatus response.
func (c *httpClientWrapper) DoPROPFIND(ctx context.Context, urlStr string, depth int, props ...string) (*davxml.Multistatus, error) {
	c.logger.Debug("starting PROPFIND request",
		"url", urlStr,
		"depth", depth,
		"properties", props)

	body, err := davxml.Propfind(props...).WriteToString()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize PROPFIND body: %w", err)
	}

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "PROPFIND", resolvedURL.String(), strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	req.Header.Set("Depth", fmt.Sprintf("%d", depth))

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("PROPFIND request failed", "error", err)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMultiStatus {
		c.logger.Debug("unexpected PROPFIND status",
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return nil, fmt.Errorf("unexpected status for PROPFIND %s: %d", resolvedURL, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	ms, err := davxml.ParseMultistatus(raw)
	if err != nil {
		c.logger.Debug("failed to parse multistatus", "error", err)
		return nil, err
	}

	c.logger.Debug("PROPFIND request complete", "response_count", len(ms.Responses))
	return ms, nil
}
