// Package caldav finds a user's calendars on a CalDAV server and reports
// their busy time.
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/cyp0633/freeslot/internal/httpclient"
)

// CalendarInfo describes one calendar collection found on the server.
type CalendarInfo struct {
	URI      string
	Name     string
	Color    string
	ReadOnly bool
}

// DNSResolver interface for mocking DNS lookups in tests
type DNSResolver interface {
	LookupSRV(ctx context.Context, service, proto, name string) (cname string, addrs []*net.SRV, err error)
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// Config holds configuration for FindCalendars
type Config struct {
	Resolver DNSResolver
	Client   *http.Client
	Logger   *slog.Logger
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Resolver: &net.Resolver{},
		Client:   http.DefaultClient,
	}
}

// FindCalendars locates the user's calendar collections starting from a
// server URL. Discovery follows the usual client walk: the given path, DNS
// SRV records, the caldav well-known URL and finally the server root, each
// probed for current-user-principal, then calendar-home-set, then a depth-1
// listing of the home.
func FindCalendars(ctx context.Context, location, username, password string) ([]CalendarInfo, error) {
	return FindCalendarsWithConfig(ctx, location, username, password, DefaultConfig())
}

// FindCalendarsWithConfig allows injecting custom configuration for testing
func FindCalendarsWithConfig(ctx context.Context, location, username, password string, cfg *Config) ([]CalendarInfo, error) {
	baseURL, err := parseServerURL(location)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	wrapper, err := newAuthedWrapper(cfg.Client, *baseURL, username, password, logger)
	if err != nil {
		return nil, err
	}

	principalURL, err := findPrincipal(ctx, wrapper, baseURL, location, cfg.Resolver, logger)
	if err != nil {
		return nil, err
	}

	homeURL, err := findCalendarHome(ctx, wrapper, principalURL)
	if err != nil {
		return nil, err
	}

	return listCalendars(ctx, wrapper, homeURL)
}

func parseServerURL(location string) (*url.URL, error) {
	if location == "" {
		return nil, fmt.Errorf("invalid URL")
	}
	baseURL, err := url.Parse(location)
	if err != nil || baseURL.Host == "" || (baseURL.Scheme != "http" && baseURL.Scheme != "https") {
		return nil, fmt.Errorf("invalid URL %q", location)
	}
	return baseURL, nil
}

// newAuthedWrapper wires basic auth into the client's transport chain and
// wraps it for WebDAV use.
func newAuthedWrapper(client *http.Client, baseURL url.URL, username, password string, logger *slog.Logger) (httpclient.Wrapper, error) {
	if client == nil {
		client = &http.Client{}
	}
	authed := *client
	authed.Transport = httpclient.NewBasicAuthTransport(username, password, client.Transport, logger)

	wrapper, err := httpclient.NewWrapper(&authed, baseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client wrapper: %w", err)
	}
	return wrapper, nil
}

// candidateLocations builds the ordered list of URLs worth probing for the
// principal, logic from thunderbird.
func candidateLocations(ctx context.Context, baseURL *url.URL, location string, resolver DNSResolver) []string {
	var locations []string

	// 1. Direct location if a path was given.
	if baseURL.Path != "/" && baseURL.Path != "" {
		locations = append(locations, location)
	}

	// 2. DNS SRV, secure first.
	if resolver != nil {
		for _, prefix := range []string{"_caldavs._tcp.", "_caldav._tcp."} {
			host := prefix + baseURL.Hostname()
			_, addrs, err := resolver.LookupSRV(ctx, "", "", host)
			if err != nil {
				continue
			}

			// A TXT record may carry the context path.
			var path string
			txts, _ := resolver.LookupTXT(ctx, host)
			for _, txt := range txts {
				if strings.HasPrefix(txt, "path=") {
					path = txt[5:]
					break
				}
			}

			scheme := "http"
			if prefix == "_caldavs._tcp." {
				scheme = "https"
			}
			for _, addr := range addrs {
				locations = append(locations, fmt.Sprintf("%s://%s:%d%s", scheme, addr.Target, addr.Port, path))
			}
		}
	}

	// 3. Well-known URL, then the server root.
	locations = append(locations, baseURL.JoinPath(".well-known", "caldav").String())
	locations = append(locations, baseURL.JoinPath("/").String())

	return locations
}

func findPrincipal(ctx context.Context, wrapper httpclient.Wrapper, baseURL *url.URL, location string, resolver DNSResolver, logger *slog.Logger) (string, error) {
	for _, candidate := range candidateLocations(ctx, baseURL, location, resolver) {
		ms, err := wrapper.DoPROPFIND(ctx, candidate, 0, "current-user-principal")
		if err != nil {
			logger.Debug("principal probe failed", "url", candidate, "error", err)
			continue
		}
		for _, resp := range ms.Responses {
			if principal := resp.PropHref("current-user-principal"); principal != "" {
				return resolveHref(candidate, principal), nil
			}
		}
	}
	return "", fmt.Errorf("could not find current-user-principal")
}

func findCalendarHome(ctx context.Context, wrapper httpclient.Wrapper, principalURL string) (string, error) {
	ms, err := wrapper.DoPROPFIND(ctx, principalURL, 0, "calendar-home-set")
	if err != nil {
		return "", fmt.Errorf("failed to get calendar-home-set: %w", err)
	}
	for _, resp := range ms.Responses {
		if home := resp.PropHref("calendar-home-set"); home != "" {
			return resolveHref(principalURL, home), nil
		}
	}
	return "", fmt.Errorf("no calendar-home-set found")
}

func listCalendars(ctx context.Context, wrapper httpclient.Wrapper, homeURL string) ([]CalendarInfo, error) {
	ms, err := wrapper.DoPROPFIND(ctx, homeURL, 1,
		"resourcetype",
		"displayname",
		"calendar-color",
		"current-user-privilege-set")
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	calendars := make([]CalendarInfo, 0, len(ms.Responses))
	for _, resp := range ms.Responses {
		if !resp.IsCalendar() {
			continue
		}
		calendars = append(calendars, CalendarInfo{
			URI:      resolveHref(homeURL, resp.Href),
			Name:     resp.PropText("displayname"),
			Color:    resp.PropText("calendar-color"),
			ReadOnly: !resp.CanWrite(),
		})
	}
	sort.Slice(calendars, func(i, j int) bool { return calendars[i].Name < calendars[j].Name })
	return calendars, nil
}

// resolveHref makes a possibly relative href absolute against the URL it
// was found at.
func resolveHref(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	relative, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(relative).String()
}
