package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cyp0633/freeslot/internal/httpclient"
	davxml "github.com/cyp0633/freeslot/internal/xml"
	"github.com/cyp0633/freeslot/interval"
)

// Source reports the busy ranges of calendars on one CalDAV server. It
// implements schedule.BusySource; the calendar id is the calendar URI.
type Source struct {
	wrapper httpclient.Wrapper
	logger  *slog.Logger
}

// NewSource builds a busy source talking to the given server with basic
// auth credentials.
func NewSource(location, username, password string, client *http.Client, logger *slog.Logger) (*Source, error) {
	baseURL, err := parseServerURL(location)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	wrapper, err := newAuthedWrapper(client, *baseURL, username, password, logger)
	if err != nil {
		return nil, err
	}
	return &Source{wrapper: wrapper, logger: logger}, nil
}

// NewSourceWithWrapper builds a busy source over an existing client
// wrapper, mainly for tests.
func NewSourceWithWrapper(wrapper httpclient.Wrapper, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{wrapper: wrapper, logger: logger}
}

// Busy returns the occupied ranges of one calendar over [from, to). It
// first asks the server itself via a free-busy-query REPORT; servers that
// do not implement that report get a calendar-query for the raw events
// instead, and the busy time is derived client-side.
func (s *Source) Busy(ctx context.Context, calendarID string, from, to time.Time) ([]interval.TimeRange, error) {
	res, err := s.wrapper.DoREPORT(ctx, calendarID, 0, davxml.FreeBusyQuery(from, to))
	if err != nil {
		return nil, err
	}

	switch {
	case res.StatusCode == http.StatusOK:
		return parseFreeBusy(res.Body)
	case freeBusyUnsupported(res.StatusCode):
		s.logger.Debug("free-busy-query not supported, falling back to calendar-query",
			"calendar", calendarID,
			"status", res.StatusCode)
		return s.busyFromEvents(ctx, calendarID, from, to)
	default:
		return nil, fmt.Errorf("free-busy-query on %s: unexpected status %d", calendarID, res.StatusCode)
	}
}

// freeBusyUnsupported reports whether the status is one a server uses to
// reject a report type it does not implement.
func freeBusyUnsupported(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusForbidden, http.StatusMethodNotAllowed, http.StatusNotImplemented:
		return true
	}
	return false
}

func (s *Source) busyFromEvents(ctx context.Context, calendarID string, from, to time.Time) ([]interval.TimeRange, error) {
	res, err := s.wrapper.DoREPORT(ctx, calendarID, 1, davxml.EventQuery(from, to))
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusMultiStatus {
		return nil, fmt.Errorf("calendar-query on %s: unexpected status %d", calendarID, res.StatusCode)
	}

	ms, err := davxml.ParseMultistatus(res.Body)
	if err != nil {
		return nil, err
	}

	var busy []interval.TimeRange
	for _, resp := range ms.Responses {
		data := resp.PropText("calendar-data")
		if data == "" {
			continue
		}
		ranges, err := eventBusyRanges(data, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", resp.Href, err)
		}
		busy = append(busy, ranges...)
	}
	return busy, nil
}
