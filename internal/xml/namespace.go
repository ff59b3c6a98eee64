// Package xml builds the WebDAV request documents this tool sends and
// parses the multistatus responses it gets back. Elements are matched by
// local tag name because servers disagree about namespace prefixes.
package xml

import "github.com/beevik/etree"

// Namespace definitions for CalDAV and WebDAV
const (
	// DAV is the WebDAV namespace
	DAV = "DAV:"
	// CalDAV is the CalDAV namespace
	CalDAV = "urn:ietf:params:xml:ns:caldav"
	// AppleICal is the Apple iCal namespace, used for calendar-color
	AppleICal = "http://apple.com/ns/ical/"
)

// Prefixes used in outgoing request documents.
const (
	davPrefix   = "D"
	calPrefix   = "C"
	applePrefix = "A"
)

// newRequest starts a request document whose root carries the given prefix
// and declares the D and C namespaces.
func newRequest(prefix, tag string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(tag)
	root.Space = prefix
	root.CreateAttr("xmlns:"+davPrefix, DAV)
	root.CreateAttr("xmlns:"+calPrefix, CalDAV)
	return doc, root
}

func addChild(parent *etree.Element, prefix, tag string) *etree.Element {
	child := parent.CreateElement(tag)
	child.Space = prefix
	return child
}

// findChild returns the first child element with the given local tag,
// regardless of its namespace prefix.
func findChild(parent *etree.Element, tag string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

func findChildren(parent *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range parent.ChildElements() {
		if child.Tag == tag {
			out = append(out, child)
		}
	}
	return out
}
