package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/freeslot/caldav"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListOptionsFlag(t *testing.T) {
	out, err := execute(t, "-O")
	require.NoError(t, err)
	assert.Contains(t, out, "days_forward")
	assert.Contains(t, out, "meeting_length_minutes")
}

func TestListAndCalendarAreExclusive(t *testing.T) {
	_, err := execute(t, "-l", "-c", "work", "--server", "http://cal.example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestRequiresListOrCalendar(t *testing.T) {
	_, err := execute(t, "--server", "http://cal.example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-c or -l")
}

func TestRequiresServer(t *testing.T) {
	t.Setenv("FREESLOT_SERVER", "")
	_, err := execute(t, "-l")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--server")
}

func TestLoadOptionsOverrides(t *testing.T) {
	flags := &cliFlags{overrides: []string{"days_forward=7", "show_24hr=1"}}
	opts, err := loadOptions(flags)
	require.NoError(t, err)
	assert.Equal(t, 7, opts.DaysForward)
	assert.True(t, opts.Show24Hr)

	flags = &cliFlags{overrides: []string{"days_forward"}}
	_, err = loadOptions(flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NAME=VALUE")

	flags = &cliFlags{overrides: []string{"nope=1"}}
	_, err = loadOptions(flags)
	assert.Error(t, err)
}

func TestResolveCalendars(t *testing.T) {
	found := []caldav.CalendarInfo{
		{URI: "https://cal.example/alex/work/", Name: "Work"},
		{URI: "https://cal.example/alex/home/", Name: "Home"},
	}

	chosen, notFound, err := resolveCalendars(found, []string{"Work", "https://cal.example/alex/home/", "Gym"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cal.example/alex/work/",
		"https://cal.example/alex/home/",
	}, chosen)
	assert.Equal(t, []string{"Gym"}, notFound)
}

func TestResolveCalendarsAmbiguousName(t *testing.T) {
	found := []caldav.CalendarInfo{
		{URI: "https://cal.example/alex/work/", Name: "Calendar"},
		{URI: "https://cal.example/alex/home/", Name: "Calendar"},
	}

	_, _, err := resolveCalendars(found, []string{"Calendar"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use its URI")

	// The URI form stays usable even when names collide.
	chosen, notFound, err := resolveCalendars(found, []string{"https://cal.example/alex/work/"})
	require.NoError(t, err)
	assert.Empty(t, notFound)
	assert.Equal(t, []string{"https://cal.example/alex/work/"}, chosen)
}
