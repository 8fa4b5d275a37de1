package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/picklepass/internal/config"
	"github.com/iliyamo/picklepass/internal/model"
	"github.com/iliyamo/picklepass/internal/repository"
	"github.com/iliyamo/picklepass/internal/schedule"
)

type scheduleOptions struct {
	facility string
	start    string
	days     int
	pages    int
	latency  time.Duration
	asJSON   bool
}

// NewScheduleCmd prints a facility's schedule by driving the pager the same
// way a client scrolling the schedule would.
func NewScheduleCmd() *cobra.Command {
	var o scheduleOptions
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the generated session schedule of a facility",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("latency") {
				o.latency = cfg.PageLatency
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			return runSchedule(cmd, o, schedule.NewGenerator(loc))
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.facility, "facility", repository.LegacyFacilitySlug, "facility slug")
	f.StringVar(&o.start, "start", "", "first date, YYYY-MM-DD (default today)")
	f.IntVar(&o.days, "days", schedule.DefaultPageDays, "days per page")
	f.IntVar(&o.pages, "pages", 1, "number of pages to load")
	f.DurationVar(&o.latency, "latency", 0, "simulated delay before each following page")
	f.BoolVar(&o.asJSON, "json", false, "print day blocks as JSON")
	return cmd
}

func runSchedule(cmd *cobra.Command, o scheduleOptions, gen *schedule.Generator) error {
	if _, err := repository.NewFacilityRepo().FindBySlug(o.facility); err != nil {
		return fmt.Errorf("unknown facility %q", o.facility)
	}
	if o.days < 1 || o.pages < 1 {
		return fmt.Errorf("days and pages must be positive")
	}
	start := gen.Today(time.Now())
	if o.start != "" {
		var err error
		if start, err = gen.ParseDate(o.start); err != nil {
			return fmt.Errorf("invalid --start %q: %w", o.start, err)
		}
	}

	p := schedule.NewPager(gen, o.facility, start, o.days, o.latency)
	for i := 1; i < o.pages; i++ {
		if _, err := p.NextPage(cmd.Context()); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p.Days())
	}
	for _, b := range p.Days() {
		printDay(out, gen, b)
	}
	return nil
}

func printDay(w io.Writer, gen *schedule.Generator, b model.DayBlock) {
	d, _ := gen.ParseDate(b.DateISO)
	fmt.Fprintf(w, "%s %s\n", b.DateISO, d.Weekday().String()[:3])
	for _, s := range b.Sessions {
		fmt.Fprintf(w, "  %s-%s  %-28s %2d/%-2d  %s\n",
			s.StartISO[11:16], s.EndISO[11:16], s.Title, s.Booked, s.Capacity, s.ID)
	}
}
