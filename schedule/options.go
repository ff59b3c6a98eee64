// Package schedule turns a weekly working-hours template and one or more
// busy calendars into a list of bookable meeting windows.
package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/spf13/viper"
)

var (
	// ErrUnknownOption marks a configuration key that is not part of the schema.
	ErrUnknownOption = errors.New("unknown configuration option")
	// ErrInvalidValue marks a configuration value of the wrong shape.
	ErrInvalidValue = errors.New("invalid configuration value")
)

// Options is the full, validated configuration record. Weekday keys in Days
// are stored lowercase ("mon".."sun"); matching is case-insensitive because
// viper lowercases configuration keys.
type Options struct {
	LocalTimezone         string                `mapstructure:"local_timezone"`
	ShowTimezone          string                `mapstructure:"show_timezone"`
	ShowTimezoneName      *string               `mapstructure:"show_timezone_name"`
	Days                  map[string][][]string `mapstructure:"days"`
	DaysForward           int                   `mapstructure:"days_forward"`
	HoursTillFirstMeeting int                   `mapstructure:"hours_till_first_meeting"`
	MeetingLengthMinutes  int                   `mapstructure:"meeting_length_minutes"`
	MeetingSpareBefore    int                   `mapstructure:"meeting_spare_before"`
	MeetingSpareAfter     int                   `mapstructure:"meeting_spare_after"`
	Show24Hr              bool                  `mapstructure:"show_24hr"`
	WeekStartsOnSunday    bool                  `mapstructure:"week_starts_on_sunday"`
}

// TimezoneLabel returns the display-timezone label, if one is configured.
func (o *Options) TimezoneLabel() mo.Option[string] {
	if o.ShowTimezoneName == nil || *o.ShowTimezoneName == "" {
		return mo.None[string]()
	}
	return mo.Some(*o.ShowTimezoneName)
}

// MeetingLength returns the minimum meeting length, which also anchors the
// slot rounding grid.
func (o *Options) MeetingLength() time.Duration {
	return time.Duration(o.MeetingLengthMinutes) * time.Minute
}

type optionKind int

const (
	kindInt optionKind = iota
	kindBool
	kindString
	kindDays
)

func (k optionKind) String() string {
	switch k {
	case kindInt:
		return "int"
	case kindBool:
		return "bool"
	case kindDays:
		return "weekday map"
	default:
		return "string"
	}
}

type schemaEntry struct {
	name string
	kind optionKind
}

// schema is the process-wide table of recognized options, in listing order.
// It is constant data; nothing mutates it after init.
var schema = []schemaEntry{
	{"days_forward", kindInt},
	{"hours_till_first_meeting", kindInt},
	{"meeting_length_minutes", kindInt},
	{"meeting_spare_before", kindInt},
	{"meeting_spare_after", kindInt},
	{"show_timezone", kindString},
	{"show_24hr", kindBool},
	{"show_timezone_name", kindString},
	{"week_starts_on_sunday", kindBool},
	{"local_timezone", kindString},
	{"days", kindDays},
}

var weekdayTokens = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

var weekdayByToken = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

// DefaultOptions returns the built-in configuration: a 14-day horizon, 3
// hours of lead time, 30-minute meetings, office hours Mon-Thu 9-5 and Fri
// 9-2 in Pacific time.
func DefaultOptions() Options {
	label := "PT"
	return Options{
		LocalTimezone:         "America/Los_Angeles",
		ShowTimezone:          "America/Los_Angeles",
		ShowTimezoneName:      &label,
		DaysForward:           14,
		HoursTillFirstMeeting: 3,
		MeetingLengthMinutes:  30,
		MeetingSpareBefore:    0,
		MeetingSpareAfter:     0,
		Show24Hr:              false,
		WeekStartsOnSunday:    false,
		Days: map[string][][]string{
			"mon": {{"9am", "5pm"}},
			"tue": {{"9am", "5pm"}},
			"wed": {{"9am", "5pm"}},
			"thu": {{"9am", "5pm"}},
			"fri": {{"9am", "2pm"}},
			"sat": {},
			"sun": {},
		},
	}
}

// OptionInfo describes one schema entry for the option listing.
type OptionInfo struct {
	Name    string
	Default string
	Type    string
}

// Schema lists the recognized options with their defaults, in a stable order.
func Schema() []OptionInfo {
	defaults := DefaultOptions()
	infos := make([]OptionInfo, 0, len(schema))
	for _, entry := range schema {
		infos = append(infos, OptionInfo{
			Name:    entry.name,
			Default: defaults.format(entry.name),
			Type:    entry.kind.String(),
		})
	}
	return infos
}

func (o *Options) format(name string) string {
	switch name {
	case "days_forward":
		return strconv.Itoa(o.DaysForward)
	case "hours_till_first_meeting":
		return strconv.Itoa(o.HoursTillFirstMeeting)
	case "meeting_length_minutes":
		return strconv.Itoa(o.MeetingLengthMinutes)
	case "meeting_spare_before":
		return strconv.Itoa(o.MeetingSpareBefore)
	case "meeting_spare_after":
		return strconv.Itoa(o.MeetingSpareAfter)
	case "show_timezone":
		return o.ShowTimezone
	case "show_24hr":
		return strconv.FormatBool(o.Show24Hr)
	case "show_timezone_name":
		if o.ShowTimezoneName == nil {
			return ""
		}
		return *o.ShowTimezoneName
	case "week_starts_on_sunday":
		return strconv.FormatBool(o.WeekStartsOnSunday)
	case "local_timezone":
		return o.LocalTimezone
	case "days":
		keys := make([]string, 0, len(o.Days))
		for k := range o.Days {
			if len(o.Days[k]) > 0 {
				keys = append(keys, k)
			}
		}
		sort.Slice(keys, func(i, j int) bool {
			return weekdayOrder(keys[i]) < weekdayOrder(keys[j])
		})
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			spans := make([]string, 0, len(o.Days[k]))
			for _, w := range o.Days[k] {
				spans = append(spans, strings.Join(w, "-"))
			}
			parts = append(parts, fmt.Sprintf("%s %s", strings.ToUpper(k[:1])+k[1:], strings.Join(spans, ",")))
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func weekdayOrder(token string) int {
	for i, t := range weekdayTokens {
		if t == token {
			return i
		}
	}
	return len(weekdayTokens)
}

func findSchemaEntry(name string) (schemaEntry, bool) {
	lower := strings.ToLower(name)
	for _, entry := range schema {
		if entry.name == lower {
			return entry, true
		}
	}
	return schemaEntry{}, false
}

// Set applies a single NAME=VALUE style override, parsed according to the
// schema. Booleans accept 0/1 as well as true/false, matching the original
// command line behavior.
func (o *Options) Set(name, value string) error {
	entry, ok := findSchemaEntry(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}

	switch entry.kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidValue, entry.name, value)
		}
		o.setInt(entry.name, n)
	case kindBool:
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be a boolean, got %q", ErrInvalidValue, entry.name, value)
		}
		o.setBool(entry.name, b)
	case kindString:
		o.setString(entry.name, value)
	case kindDays:
		var days map[string][][]string
		if err := json.Unmarshal([]byte(value), &days); err != nil {
			return fmt.Errorf("%w: %s must be a JSON weekday map: %v", ErrInvalidValue, entry.name, err)
		}
		o.Days = lowercaseDayKeys(days)
	}
	return nil
}

func parseBool(value string) (bool, error) {
	if n, err := strconv.Atoi(value); err == nil {
		return n != 0, nil
	}
	switch strings.ToLower(value) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", value)
}

func (o *Options) setInt(name string, n int) {
	switch name {
	case "days_forward":
		o.DaysForward = n
	case "hours_till_first_meeting":
		o.HoursTillFirstMeeting = n
	case "meeting_length_minutes":
		o.MeetingLengthMinutes = n
	case "meeting_spare_before":
		o.MeetingSpareBefore = n
	case "meeting_spare_after":
		o.MeetingSpareAfter = n
	}
}

func (o *Options) setBool(name string, b bool) {
	switch name {
	case "show_24hr":
		o.Show24Hr = b
	case "week_starts_on_sunday":
		o.WeekStartsOnSunday = b
	}
}

func (o *Options) setString(name, value string) {
	switch name {
	case "show_timezone":
		o.ShowTimezone = value
	case "local_timezone":
		o.LocalTimezone = value
	case "show_timezone_name":
		if value == "" {
			o.ShowTimezoneName = nil
		} else {
			o.ShowTimezoneName = &value
		}
	}
}

func lowercaseDayKeys(days map[string][][]string) map[string][][]string {
	out := make(map[string][][]string, len(days))
	for k, v := range days {
		out[strings.ToLower(k)] = v
	}
	return out
}

// Load reads a JSON configuration file and overlays it on the defaults.
// Keys absent from the file keep their default; a key the schema does not
// recognize is rejected. The days map is replaced wholesale when present,
// not merged.
func Load(path string) (Options, error) {
	opts := DefaultOptions()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return opts, fmt.Errorf("failed to read configuration %s: %w", path, err)
	}

	for _, key := range v.AllKeys() {
		top := key
		if i := strings.Index(key, "."); i >= 0 {
			top = key[:i]
		}
		if _, ok := findSchemaEntry(top); !ok {
			return opts, fmt.Errorf("%w: %q in %s", ErrUnknownOption, top, path)
		}
	}

	var file Options
	if err := v.UnmarshalExact(&file); err != nil {
		return opts, fmt.Errorf("%w: %s: %v", ErrInvalidValue, path, err)
	}

	for _, entry := range schema {
		if !v.IsSet(entry.name) {
			continue
		}
		switch entry.name {
		case "days_forward":
			opts.DaysForward = file.DaysForward
		case "hours_till_first_meeting":
			opts.HoursTillFirstMeeting = file.HoursTillFirstMeeting
		case "meeting_length_minutes":
			opts.MeetingLengthMinutes = file.MeetingLengthMinutes
		case "meeting_spare_before":
			opts.MeetingSpareBefore = file.MeetingSpareBefore
		case "meeting_spare_after":
			opts.MeetingSpareAfter = file.MeetingSpareAfter
		case "show_timezone":
			opts.ShowTimezone = file.ShowTimezone
		case "show_24hr":
			opts.Show24Hr = file.Show24Hr
		case "show_timezone_name":
			opts.ShowTimezoneName = file.ShowTimezoneName
		case "week_starts_on_sunday":
			opts.WeekStartsOnSunday = file.WeekStartsOnSunday
		case "local_timezone":
			opts.LocalTimezone = file.LocalTimezone
		case "days":
			opts.Days = lowercaseDayKeys(file.Days)
		}
	}

	return opts, nil
}

// Validate checks the assembled configuration before any interval work
// starts: timezones must resolve, numbers must be sane and every template
// key must be a recognized weekday with well-formed clock pairs.
func (o *Options) Validate() error {
	if _, err := time.LoadLocation(o.LocalTimezone); err != nil {
		return fmt.Errorf("%w: local_timezone: %v", ErrInvalidValue, err)
	}
	if _, err := time.LoadLocation(o.ShowTimezone); err != nil {
		return fmt.Errorf("%w: show_timezone: %v", ErrInvalidValue, err)
	}
	if o.DaysForward < 1 {
		return fmt.Errorf("%w: days_forward must be at least 1, got %d", ErrInvalidValue, o.DaysForward)
	}
	if o.MeetingLengthMinutes < 1 {
		return fmt.Errorf("%w: meeting_length_minutes must be at least 1, got %d", ErrInvalidValue, o.MeetingLengthMinutes)
	}
	if o.HoursTillFirstMeeting < 0 {
		return fmt.Errorf("%w: hours_till_first_meeting must not be negative", ErrInvalidValue)
	}
	if o.MeetingSpareBefore < 0 || o.MeetingSpareAfter < 0 {
		return fmt.Errorf("%w: meeting spare padding must not be negative", ErrInvalidValue)
	}

	for token, windows := range o.Days {
		if _, ok := weekdayByToken[token]; !ok {
			return fmt.Errorf("%w: unrecognized weekday %q in days", ErrInvalidValue, token)
		}
		for _, w := range windows {
			if len(w) != 2 {
				return fmt.Errorf("%w: window for %s must be a [start, end] pair, got %v", ErrInvalidValue, token, w)
			}
			for _, clock := range w {
				if _, _, err := parseClock(clock); err != nil {
					return fmt.Errorf("%w: window for %s: %v", ErrInvalidValue, token, err)
				}
			}
		}
	}
	return nil
}
