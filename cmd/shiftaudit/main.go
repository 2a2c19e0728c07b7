/*
main.go - Schedule audit command

PURPOSE:
  Compares persisted shift occurrences against what each contract's
  weekly pattern says should exist, and prints one row per contract
  with the drift counts. Intended for cron jobs and operator checks
  against a live database.

USAGE:
  shiftaudit -db=./shifts.db -all
  shiftaudit -db=./shifts.db -contract=<id>

EXIT CODES:
  0  audit ran (rows may still report drift)
  1  internal failure (database, expansion)
  2  usage error (no target, or both -all and -contract)

SEE ALSO:
  - shifts/audit.go: Reporter
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/shifts"
	"github.com/warp/shift-engine/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "shifts.db", "SQLite database path")
	all := flag.Bool("all", false, "Audit every contract")
	contractID := flag.String("contract", "", "Audit a single contract by ID")
	flag.Parse()

	if *all == (*contractID != "") {
		fmt.Fprintln(os.Stderr, "shiftaudit: exactly one of -all or -contract is required")
		flag.Usage()
		os.Exit(2)
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shiftaudit: open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	reporter := shifts.NewReporter(store, store)
	ctx := context.Background()

	var results []shifts.AuditResult
	if *all {
		results, err = reporter.AuditAllContracts(ctx)
	} else {
		var one *shifts.AuditResult
		one, err = reporter.AuditContract(ctx, *contractID)
		if one != nil {
			results = []shifts.AuditResult{*one}
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "shiftaudit: %v\n", err)
		os.Exit(1)
	}

	printReport(os.Stdout, results)
}

func printReport(out *os.File, results []shifts.AuditResult) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CONTRACT\tFACILITY\tEXPECTED\tPERSISTED\tMISSING\tDUPLICATES\tFINALIZED-AT-RISK\tSTATUS")
	for i := range results {
		r := &results[i]
		status := "OK"
		if !r.Clean() {
			status = "DRIFT"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%d\t%s\n",
			r.ContractID, r.Facility, r.Expected, r.Persisted,
			dateList(r.Missing), dateList(r.Duplicates), r.FinalizedTouched, status)
	}
	w.Flush()
}

// dateList renders drift dates inline so a row stays greppable.
func dateList(dates []schedule.Date) string {
	if len(dates) == 0 {
		return "-"
	}
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}
