/*
main.go - Offline badge-swipe report

PURPOSE:
  Runs the same pipeline as the server on one file without a database:
  decode, extract, merge, rank. Prints the high-traffic ranking, or one
  person's reference-month summary, and can write the .xlsx report.

USAGE:
  swipes -file in.xlsx [-interval 5] [-limit 2] [-reference-month first_inserted]
         [-search s] [-person id] [-out report.xlsx] [-json]

  -interval and -limit read like the UI's number inputs: "15min" is 15,
  text or 0 is the minimum, and values are clamped to their range.

EXIT CODES:
  0 success, 1 processing error, 2 usage error
*/
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/warp/traffic-engine/attendance"
	"github.com/warp/traffic-engine/jalali"
	"github.com/warp/traffic-engine/logging"
	"github.com/warp/traffic-engine/sheet"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "swipes: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("swipes", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "Swipe export (.xlsx or .csv)")
	interval := fs.String("interval", strconv.Itoa(attendance.DefaultMergeInterval), "Merge interval in minutes")
	limit := fs.String("limit", strconv.Itoa(attendance.DefaultTrafficLimit), "Visits per day before a day counts as high traffic")
	refMonth := fs.String("reference-month", string(attendance.FirstInserted), "first_inserted or earliest_date")
	search := fs.String("search", "", "Filter the ranking by name or id")
	person := fs.String("person", "", "Print the month summary of one person")
	out := fs.String("out", "", "Write the ranking as an .xlsx report")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	level := fs.String("log-level", "warn", "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *file == "" {
		fmt.Fprintln(stderr, "swipes: -file is required")
		fs.Usage()
		return errUsage
	}
	lvl, err := logging.ParseLevel(*level)
	if err != nil {
		return err
	}
	strategy, err := attendance.ParseReferenceMonthStrategy(*refMonth)
	if err != nil {
		return err
	}
	logger := logging.New(stderr, lvl, "text")

	params := attendance.Params{
		MergeIntervalMinutes: attendance.ParseBound(*interval, attendance.MinMergeInterval, attendance.MaxMergeInterval),
		TrafficLimit:         attendance.ParseBound(*limit, attendance.MinTrafficLimit, attendance.MaxTrafficLimit),
		ReferenceMonth:       strategy,
	}

	view, err := load(*file, params, logger)
	if err != nil {
		return err
	}

	if *out != "" {
		if err := writeReport(*out, view.Report()); err != nil {
			return err
		}
		logger.Info("report written", "path", *out)
	}

	if *person != "" {
		s, err := view.Summary(*person)
		if err != nil {
			return fmt.Errorf("%s: %w", *person, err)
		}
		if *asJSON {
			return encodeJSON(stdout, s)
		}
		return printSummary(stdout, s)
	}

	rows := attendance.ReportRows(view.Search(*search))
	if *asJSON {
		return encodeJSON(stdout, rows)
	}
	return printRanking(stdout, rows)
}

func load(path string, params attendance.Params, logger *slog.Logger) (attendance.View, error) {
	f, err := os.Open(path)
	if err != nil {
		return attendance.View{}, err
	}
	defer f.Close()

	events, err := sheet.Decode(f, path)
	if err != nil {
		return attendance.View{}, err
	}
	ws := attendance.NewWorkspace(params)
	ds := attendance.Ingest(events)
	if err := ws.Restore(ds); err != nil {
		return attendance.View{}, err
	}
	logger.Info("file loaded", "path", path, "rows", ds.Rows(), "people", ds.Len())
	return ws.View(), nil
}

func writeReport(path string, rows []attendance.ReportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := sheet.WriteReport(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRanking(w io.Writer, rows []attendance.ReportRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tHIGH-TRAFFIC DAYS\tACTIVE DAYS\tSHARE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", r.ID, r.Name, r.HighTrafficDays, r.ActiveDays, r.Share().StringFixed(2))
	}
	return tw.Flush()
}

func printSummary(w io.Writer, s attendance.MonthSummary) error {
	month := jalali.Date{Day: 1, Month: s.Month, Year: s.Year}.MonthName()
	fmt.Fprintf(w, "%s (%s) - %s %d\n", s.Name, s.PersonID, month, s.Year)
	fmt.Fprintf(w, "days: %d  none: %d  normal: %d  high: %d\n",
		s.TotalDays, s.Counts.None, s.Counts.Normal, s.Counts.High)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, d := range s.HighTrafficDays {
		fmt.Fprintf(tw, "%s\t%s\t%d visits\n", d.Date, jalali.Friendly(d.Date), len(d.Entries))
		for _, e := range d.Entries {
			fmt.Fprintf(tw, "\t%s\t%s\n", e.Time, e.Description)
		}
	}
	return tw.Flush()
}
