package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itihaas-labs/timeline-server/internal/model"
	"github.com/itihaas-labs/timeline-server/internal/query"
)

var (
	eventsYear      string
	eventsStartYear string
	eventsEndYear   string
	eventsDate      string
	eventsTags      []string
	eventsNear      string
	eventsSkip      int
	eventsLimit     int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Query events from the command line",
	Long:  "Runs the query resolver directly with operator (unrestricted) entitlement. Useful for inspecting what a given filter returns.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		temporal, err := query.ParseTemporal(eventsYear, eventsStartYear, eventsEndYear, eventsDate)
		if err != nil {
			return err
		}
		spatial, err := query.ParseSpatial(eventsNear, cfg.Domain.SpatialRadiusDeg)
		if err != nil {
			return err
		}

		periods, err := st.ListPeriods(ctx)
		if err != nil {
			return err
		}
		entitled := make([]string, len(periods))
		for i, p := range periods {
			entitled[i] = p.ID
		}

		resolver := query.NewResolver(st, cfg.Domain.DefaultLimit)
		events, err := resolver.Query(ctx, query.Request{
			Temporal:  temporal,
			Tags:      eventsTags,
			Spatial:   spatial,
			PeriodIDs: entitled,
			Page:      query.Page{Skip: eventsSkip, Limit: eventsLimit},
		})
		if err != nil {
			return err
		}

		for _, e := range events {
			fmt.Printf("%s  %-40s  %s\n", formatSpan(e.Temporal), e.Title, strings.Join(e.Tags, ","))
		}
		fmt.Printf("%d events\n", len(events))
		return nil
	},
}

func formatSpan(t model.Temporal) string {
	if t.Kind == model.EventInterval && t.Interval != nil {
		return fmt.Sprintf("%s–%s", formatYear(t.Interval.StartYear), formatYear(t.Interval.EndYear))
	}
	return formatYear(t.EffectiveYear())
}

func formatYear(y int) string {
	if y < 0 {
		return fmt.Sprintf("%d BCE", -y)
	}
	return fmt.Sprintf("%d", y)
}

func init() {
	eventsCmd.Flags().StringVar(&eventsYear, "year", "", "single year filter")
	eventsCmd.Flags().StringVar(&eventsStartYear, "start-year", "", "range start year")
	eventsCmd.Flags().StringVar(&eventsEndYear, "end-year", "", "range end year")
	eventsCmd.Flags().StringVar(&eventsDate, "date", "", "exact date filter (YYYY-MM-DD)")
	eventsCmd.Flags().StringSliceVar(&eventsTags, "tags", nil, "tag filter (OR semantics)")
	eventsCmd.Flags().StringVar(&eventsNear, "near", "", "proximity filter as lat,lng")
	eventsCmd.Flags().IntVar(&eventsSkip, "skip", 0, "result window offset")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 0, "result window size (default from config)")
	rootCmd.AddCommand(eventsCmd)
}
