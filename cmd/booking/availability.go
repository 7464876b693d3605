package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
)

type availabilityOptions struct {
	kind     string
	date     string
	start    string
	end      string
	timeslot string
	resource string
	slots    bool
}

func newAvailabilityCmd(opts *rootOptions) *cobra.Command {
	a := &availabilityOptions{}

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "List free resources for a date and time window",
		Example: `  booking availability --kind room --date 2026-10-19 --start 09:00 --end 10:00
  booking availability --kind desk --date 2026-10-19 --timeslot morning
  booking availability --kind room --date 2026-10-19 --resource room-fuji --slots`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			s, err := openStorage(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStorage(s, logger)
			service := newBookingService(s, cfg, logger)

			kind, err := booking.ParseKind(a.kind)
			if err != nil {
				return err
			}
			date, err := booking.ParseDate(a.date)
			if err != nil {
				return err
			}
			var interval *booking.Interval
			if a.start != "" || a.end != "" {
				parsed, err := booking.ParseInterval(a.start, a.end)
				if err != nil {
					return err
				}
				interval = &parsed
			}

			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer out.Flush()

			if a.slots {
				if a.resource == "" {
					return fmt.Errorf("--slots requires --resource")
				}
				window := booking.FullDay
				if interval != nil {
					window = *interval
				}
				free, err := service.FreeSlots(ctx, kind, a.resource, date, window)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "RESOURCE\tFREE\n")
				for _, slot := range free {
					fmt.Fprintf(out, "%s\t%s\n", a.resource, slot)
				}
				return nil
			}

			ids, err := service.FindAvailable(ctx, application.AvailabilityQuery{
				Kind:       kind,
				Date:       date,
				Interval:   interval,
				TimeslotID: a.timeslot,
				ResourceID: a.resource,
			})
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintf(out, "no %s available on %s\n", kind, booking.FormatDate(date))
				return nil
			}
			fmt.Fprintf(out, "KIND\tDATE\tRESOURCES\n")
			fmt.Fprintf(out, "%s\t%s\t%s\n", kind, booking.FormatDate(date), strings.Join(ids, ", "))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&a.kind, "kind", string(booking.KindRoom), "desk, room or equipment")
	flags.StringVar(&a.date, "date", "", "booking date (YYYY-MM-DD)")
	flags.StringVar(&a.start, "start", "", "window start (HH:MM)")
	flags.StringVar(&a.end, "end", "", "window end (HH:MM)")
	flags.StringVar(&a.timeslot, "timeslot", "", "timeslot id instead of --start/--end")
	flags.StringVar(&a.resource, "resource", "", "only check this resource")
	flags.BoolVar(&a.slots, "slots", false, "print the free gaps of --resource")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
