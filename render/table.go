package render

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/cyp0633/freeslot/caldav"
	"github.com/cyp0633/freeslot/schedule"
)

// CalendarTable prints the discovered calendars, one row per calendar.
func CalendarTable(w io.Writer, calendars []caldav.CalendarInfo) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Id", "Name", "Access"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, cal := range calendars {
		access := "read-write"
		if cal.ReadOnly {
			access = "read-only"
		}
		table.Append([]string{cal.URI, cal.Name, access})
	}
	table.Render()
}

// OptionTable prints the recognized configuration options with their
// defaults.
func OptionTable(w io.Writer, infos []schedule.OptionInfo) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Option name", "Type", "Default value"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, info := range infos {
		table.Append([]string{info.Name, info.Type, info.Default})
	}
	table.Render()
}
