package xml

import (
	"time"

	"github.com/beevik/etree"
)

// utcStamp is the DATE-TIME form CalDAV time-range attributes require.
const utcStamp = "20060102T150405Z"

// propPrefixes maps the property names this tool requests to the namespace
// prefix they are declared under.
var propPrefixes = map[string]string{
	"resourcetype":               davPrefix,
	"displayname":                davPrefix,
	"current-user-principal":     davPrefix,
	"current-user-privilege-set": davPrefix,
	"calendar-home-set":          calPrefix,
	"calendar-data":              calPrefix,
	"calendar-color":             applePrefix,
	"getetag":                    davPrefix,
}

// Propfind builds a PROPFIND request body asking for the named properties.
// Unknown property names are skipped rather than rejected.
func Propfind(props ...string) *etree.Document {
	doc, root := newRequest(davPrefix, "propfind")
	root.CreateAttr("xmlns:"+applePrefix, AppleICal)

	prop := addChild(root, davPrefix, "prop")
	for _, name := range props {
		prefix, ok := propPrefixes[name]
		if !ok {
			continue
		}
		addChild(prop, prefix, name)
	}
	return doc
}

// FreeBusyQuery builds a free-busy-query REPORT body over [start, end).
func FreeBusyQuery(start, end time.Time) *etree.Document {
	doc, root := newRequest(calPrefix, "free-busy-query")
	timeRange := addChild(root, calPrefix, "time-range")
	timeRange.CreateAttr("start", start.UTC().Format(utcStamp))
	timeRange.CreateAttr("end", end.UTC().Format(utcStamp))
	return doc
}

// EventQuery builds a calendar-query REPORT body that fetches the calendar
// data of every VEVENT intersecting [start, end). It is the fallback for
// servers that do not implement free-busy-query.
func EventQuery(start, end time.Time) *etree.Document {
	doc, root := newRequest(calPrefix, "calendar-query")

	prop := addChild(root, davPrefix, "prop")
	addChild(prop, davPrefix, "getetag")
	addChild(prop, calPrefix, "calendar-data")

	filter := addChild(root, calPrefix, "filter")
	vcal := addChild(filter, calPrefix, "comp-filter")
	vcal.CreateAttr("name", "VCALENDAR")
	vevent := addChild(vcal, calPrefix, "comp-filter")
	vevent.CreateAttr("name", "VEVENT")
	timeRange := addChild(vevent, calPrefix, "time-range")
	timeRange.CreateAttr("start", start.UTC().Format(utcStamp))
	timeRange.CreateAttr("end", end.UTC().Format(utcStamp))

	return doc
}
