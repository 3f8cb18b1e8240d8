package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/itihaas-labs/timeline-server/internal/model"
	"github.com/itihaas-labs/timeline-server/internal/query"
	"github.com/rotisserie/eris"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all events to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		periods, err := st.ListPeriods(ctx)
		if err != nil {
			return err
		}
		periodNames := make(map[string]string, len(periods))
		entitled := make([]string, len(periods))
		for i, p := range periods {
			periodNames[p.ID] = p.Name
			entitled[i] = p.ID
		}

		resolver := query.NewResolver(st, 0)
		events, err := resolver.Query(ctx, query.Request{PeriodIDs: entitled})
		if err != nil {
			return err
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Events")
		if err != nil {
			return eris.Wrap(err, "export: add sheet")
		}

		header := sheet.AddRow()
		for _, h := range []string{"Title", "Type", "Span", "Location", "Period", "Tags", "Summary"} {
			header.AddCell().Value = h
		}

		for _, e := range events {
			row := sheet.AddRow()
			row.AddCell().Value = e.Title
			row.AddCell().Value = string(e.Temporal.Kind)
			row.AddCell().Value = formatSpan(e.Temporal)
			row.AddCell().Value = formatLocation(e.Location)
			row.AddCell().Value = periodNames[e.PeriodID]
			row.AddCell().Value = strings.Join(e.Tags, ", ")
			row.AddCell().Value = e.Summary
		}

		if err := file.Save(exportOut); err != nil {
			return eris.Wrap(err, "export: save workbook")
		}
		zap.L().Info("export complete", zap.String("path", exportOut), zap.Int("events", len(events)))
		return nil
	},
}

func formatLocation(l model.Location) string {
	switch l.Kind {
	case model.LocationArea:
		if l.Area != nil {
			return l.Area.Name + " (" + string(l.Area.Scope) + ")"
		}
	case model.LocationPoint:
		if l.Point != nil && l.Point.PlaceName != "" {
			return l.Point.PlaceName
		}
	}
	return ""
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "events.xlsx", "output file path")
	rootCmd.AddCommand(exportCmd)
}
