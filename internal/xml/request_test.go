package xml

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropfind(t *testing.T) {
	doc := Propfind("resourcetype", "displayname", "calendar-color", "no-such-prop")

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "propfind", root.Tag)
	assert.Equal(t, "D", root.Space)
	assert.Equal(t, DAV, root.SelectAttrValue("xmlns:D", ""))
	assert.Equal(t, CalDAV, root.SelectAttrValue("xmlns:C", ""))
	assert.Equal(t, AppleICal, root.SelectAttrValue("xmlns:A", ""))

	prop := findChild(root, "prop")
	require.NotNil(t, prop)
	require.Len(t, prop.ChildElements(), 3, "unknown properties are skipped")
	assert.NotNil(t, findChild(prop, "resourcetype"))
	assert.NotNil(t, findChild(prop, "displayname"))

	color := findChild(prop, "calendar-color")
	require.NotNil(t, color)
	assert.Equal(t, "A", color.Space)
}

func TestFreeBusyQuery(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	start := time.Date(2026, time.August, 24, 9, 0, 0, 0, loc)
	end := time.Date(2026, time.September, 7, 9, 0, 0, 0, loc)

	doc := FreeBusyQuery(start, end)

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "free-busy-query", root.Tag)
	assert.Equal(t, "C", root.Space)

	timeRange := findChild(root, "time-range")
	require.NotNil(t, timeRange)
	assert.Equal(t, "20260824T130000Z", timeRange.SelectAttrValue("start", ""))
	assert.Equal(t, "20260907T130000Z", timeRange.SelectAttrValue("end", ""))
}

func TestEventQuery(t *testing.T) {
	start := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)

	doc := EventQuery(start, end)

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "calendar-query", root.Tag)

	prop := findChild(root, "prop")
	require.NotNil(t, prop)
	assert.NotNil(t, findChild(prop, "calendar-data"))

	filter := findChild(root, "filter")
	require.NotNil(t, filter)
	vcal := findChild(filter, "comp-filter")
	require.NotNil(t, vcal)
	assert.Equal(t, "VCALENDAR", vcal.SelectAttrValue("name", ""))
	vevent := findChild(vcal, "comp-filter")
	require.NotNil(t, vevent)
	assert.Equal(t, "VEVENT", vevent.SelectAttrValue("name", ""))

	timeRange := findChild(vevent, "time-range")
	require.NotNil(t, timeRange)
	assert.Equal(t, "20260824T000000Z", timeRange.SelectAttrValue("start", ""))
	assert.Equal(t, "20260907T000000Z", timeRange.SelectAttrValue("end", ""))
}

func TestRequestsSerialize(t *testing.T) {
	for name, doc := range map[string]interface{ WriteToString() (string, error) }{
		"propfind":  Propfind("resourcetype"),
		"free-busy": FreeBusyQuery(time.Now(), time.Now().Add(time.Hour)),
	} {
		out, err := doc.WriteToString()
		require.NoError(t, err, name)
		assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`, name)
	}
}
