// Command freeslot prints the meeting slots left open by one or more
// CalDAV calendars.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyp0633/freeslot/caldav"
	"github.com/cyp0633/freeslot/render"
	"github.com/cyp0633/freeslot/schedule"
)

type cliFlags struct {
	list        bool
	listOptions bool
	calendars   []string
	configPath  string
	overrides   []string
	server      string
	username    string
	password    string
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	cmd := &cobra.Command{
		Use:   "freeslot",
		Short: "Compute meeting availability from CalDAV calendars",
		Long: `freeslot subtracts the busy time of one or more CalDAV calendars from a
weekly working-hours template and prints the remaining bookable slots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.list, "list", "l", false, "list calendars")
	cmd.Flags().StringArrayVarP(&flags.calendars, "calendar", "c", nil, "choose a calendar for busy times (multiple allowed)")
	cmd.Flags().StringVarP(&flags.configPath, "time-config", "t", "", "configuration JSON file")
	cmd.Flags().StringArrayVarP(&flags.overrides, "opt", "o", nil, "override a configuration option as NAME=VALUE (multiple allowed), see -O")
	cmd.Flags().BoolVarP(&flags.listOptions, "list-options", "O", false, "list possible configuration options")
	cmd.Flags().StringVar(&flags.server, "server", os.Getenv("FREESLOT_SERVER"), "CalDAV server URL (env FREESLOT_SERVER)")
	cmd.Flags().StringVar(&flags.username, "username", os.Getenv("FREESLOT_USERNAME"), "CalDAV username (env FREESLOT_USERNAME)")
	cmd.Flags().StringVar(&flags.password, "password", os.Getenv("FREESLOT_PASSWORD"), "CalDAV password (env FREESLOT_PASSWORD)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(cmd *cobra.Command, flags *cliFlags) error {
	out := cmd.OutOrStdout()

	if flags.listOptions {
		render.OptionTable(out, schedule.Schema())
		return nil
	}

	if flags.list && len(flags.calendars) > 0 {
		return fmt.Errorf("options -l and -c are mutually exclusive")
	}
	if !flags.list && len(flags.calendars) == 0 {
		return fmt.Errorf("must set either -c or -l")
	}
	if flags.server == "" {
		return fmt.Errorf("must set --server or FREESLOT_SERVER")
	}

	logger := newLogger(cmd, flags.verbose)

	opts, err := loadOptions(flags)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cfg := caldav.DefaultConfig()
	cfg.Logger = logger
	found, err := caldav.FindCalendarsWithConfig(ctx, flags.server, flags.username, flags.password, cfg)
	if err != nil {
		return fmt.Errorf("calendar discovery failed: %w", err)
	}

	if flags.list {
		render.CalendarTable(out, found)
		return nil
	}

	chosen, notFound, err := resolveCalendars(found, flags.calendars)
	if err != nil {
		return err
	}
	if len(notFound) > 0 {
		fmt.Fprintf(out, "Calendars %v not found! Possible calendars are:\n", notFound)
		render.CalendarTable(out, found)
		return fmt.Errorf("unknown calendars: %s", strings.Join(notFound, ", "))
	}

	src, err := caldav.NewSource(flags.server, flags.username, flags.password, http.DefaultClient, logger)
	if err != nil {
		return err
	}

	free, err := schedule.Plan(ctx, src, chosen, opts, time.Now())
	if err != nil {
		return err
	}

	return render.Schedule(out, free, opts)
}

func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// loadOptions assembles the configuration: built-in defaults, then the
// configuration file, then -o overrides, validated as a whole.
func loadOptions(flags *cliFlags) (schedule.Options, error) {
	opts := schedule.DefaultOptions()
	if flags.configPath != "" {
		var err error
		opts, err = schedule.Load(flags.configPath)
		if err != nil {
			return opts, err
		}
	}

	for _, entry := range flags.overrides {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			return opts, fmt.Errorf("configuration overrides must look like NAME=VALUE, got %q", entry)
		}
		if err := opts.Set(name, value); err != nil {
			return opts, err
		}
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// resolveCalendars matches the requested calendar ids against the
// discovered list, by URI or by display name. A display name shared by
// several calendars is an error rather than an arbitrary pick; the URI is
// always unambiguous.
func resolveCalendars(found []caldav.CalendarInfo, requested []string) (chosen, notFound []string, err error) {
	byURI := make(map[string]bool, len(found))
	nameCount := make(map[string]int, len(found))
	byName := make(map[string]string, len(found))
	for _, cal := range found {
		byURI[cal.URI] = true
		if cal.Name != "" {
			nameCount[cal.Name]++
			byName[cal.Name] = cal.URI
		}
	}

	for _, id := range requested {
		switch {
		case byURI[id]:
			chosen = append(chosen, id)
		case nameCount[id] > 1:
			return nil, nil, fmt.Errorf("calendar name %q matches %d calendars, use its URI instead", id, nameCount[id])
		case nameCount[id] == 1:
			chosen = append(chosen, byName[id])
		default:
			notFound = append(notFound, id)
		}
	}
	return chosen, notFound, nil
}
