package main

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/config"
	"github.com/example/workspace-booking/internal/persistence"
)

//go:embed demo_seed.json
var demoSeedJSON []byte

type seedFile struct {
	Employees []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"employees"`
	Resources []struct {
		Kind string `json:"kind"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"resources"`
	Holidays []struct {
		Date           string `json:"date"`
		Description    string `json:"description"`
		BookingAllowed bool   `json:"booking_allowed"`
	} `json:"holidays"`
	Timeslots []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"timeslots"`
}

// parseSeed decodes a JSON seed document into reference data.
func parseSeed(r io.Reader) (persistence.SeedData, error) {
	var file seedFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return persistence.SeedData{}, fmt.Errorf("invalid seed file: %w", err)
	}

	var data persistence.SeedData
	for _, e := range file.Employees {
		role, err := booking.ParseRole(e.Role)
		if err != nil {
			return persistence.SeedData{}, fmt.Errorf("employee %s: %w", e.ID, err)
		}
		data.Employees = append(data.Employees, booking.Employee{ID: e.ID, Name: e.Name, Role: role})
	}
	for _, r := range file.Resources {
		kind, err := booking.ParseKind(r.Kind)
		if err != nil {
			return persistence.SeedData{}, fmt.Errorf("resource %s: %w", r.ID, err)
		}
		data.Resources = append(data.Resources, booking.Resource{Kind: kind, ID: r.ID, Name: r.Name})
	}
	for _, h := range file.Holidays {
		date, err := booking.ParseDate(h.Date)
		if err != nil {
			return persistence.SeedData{}, fmt.Errorf("holiday %q: %w", h.Date, err)
		}
		data.Holidays = append(data.Holidays, booking.Holiday{Date: date, Description: h.Description, BookingAllowed: h.BookingAllowed})
	}
	for _, ts := range file.Timeslots {
		interval, err := booking.ParseInterval(ts.Start, ts.End)
		if err != nil {
			return persistence.SeedData{}, fmt.Errorf("timeslot %s: %w", ts.ID, err)
		}
		data.Timeslots = append(data.Timeslots, booking.Timeslot{ID: ts.ID, Name: ts.Name, Interval: interval})
	}
	return data, nil
}

func demoSeed() (persistence.SeedData, error) {
	return parseSeed(bytes.NewReader(demoSeedJSON))
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load employees, resources, holidays and timeslots",
		Long:  "Load reference data from a JSON seed file, or the built-in demo data when --file is omitted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.Storage == config.StorageMemory {
				return fmt.Errorf("seeding the memory backend has no lasting effect")
			}

			data, err := demoSeed()
			if path != "" {
				f, openErr := os.Open(path)
				if openErr != nil {
					return openErr
				}
				defer f.Close()
				data, err = parseSeed(f)
			}
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := openStorage(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStorage(s, logger)

			if err := persistence.Seed(ctx, s, data); err != nil {
				return fmt.Errorf("failed to seed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d employees, %d resources, %d holidays, %d timeslots\n",
				len(data.Employees), len(data.Resources), len(data.Holidays), len(data.Timeslots))
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "JSON seed file")
	return cmd
}
