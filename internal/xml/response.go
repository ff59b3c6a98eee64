package xml

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Multistatus is a parsed 207 Multi-Status body.
type Multistatus struct {
	Responses []Response
}

// Response is one response element of a multistatus body. Property lookups
// only consider propstat blocks whose status is 200.
type Response struct {
	Href string

	okProps []*etree.Element
}

// ParseMultistatus parses a multistatus response body.
func ParseMultistatus(body []byte) (*Multistatus, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("failed to parse multistatus body: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "multistatus" {
		return nil, fmt.Errorf("unexpected multistatus root: %v", rootTag(root))
	}

	var ms Multistatus
	for _, respElem := range findChildren(root, "response") {
		resp := Response{}
		if href := findChild(respElem, "href"); href != nil {
			resp.Href = strings.TrimSpace(href.Text())
		}
		for _, propstat := range findChildren(respElem, "propstat") {
			status := findChild(propstat, "status")
			if status == nil || !strings.Contains(status.Text(), "200") {
				continue
			}
			if prop := findChild(propstat, "prop"); prop != nil {
				resp.okProps = append(resp.okProps, prop.ChildElements()...)
			}
		}
		ms.Responses = append(ms.Responses, resp)
	}
	return &ms, nil
}

func rootTag(root *etree.Element) string {
	if root == nil {
		return "(none)"
	}
	return root.Tag
}

func (r *Response) prop(tag string) *etree.Element {
	for _, p := range r.okProps {
		if p.Tag == tag {
			return p
		}
	}
	return nil
}

// PropText returns the text of the named property, or "" when the property
// was not returned with a 200 status.
func (r *Response) PropText(tag string) string {
	p := r.prop(tag)
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.Text())
}

// PropHref returns the href nested inside the named property. Properties
// like current-user-principal and calendar-home-set carry their value this
// way.
func (r *Response) PropHref(tag string) string {
	p := r.prop(tag)
	if p == nil {
		return ""
	}
	href := findChild(p, "href")
	if href == nil {
		return ""
	}
	return strings.TrimSpace(href.Text())
}

// IsCalendar reports whether the resourcetype property marks this resource
// as a CalDAV calendar collection.
func (r *Response) IsCalendar() bool {
	rt := r.prop("resourcetype")
	return rt != nil && findChild(rt, "calendar") != nil
}

// CanWrite reports whether the current-user-privilege-set grants any write
// privilege on this resource.
func (r *Response) CanWrite() bool {
	privSet := r.prop("current-user-privilege-set")
	if privSet == nil {
		return false
	}
	for _, priv := range findChildren(privSet, "privilege") {
		for _, grant := range priv.ChildElements() {
			if strings.HasPrefix(grant.Tag, "write") {
				return true
			}
		}
	}
	return false
}
