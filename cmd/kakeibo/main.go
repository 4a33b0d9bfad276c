// Command kakeibo prints billing schedules, recurring payments and savings
// progress, and can run the settlement sweep on demand.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"kakeibo/internal/cli"
	"kakeibo/internal/core"
	"kakeibo/internal/log"
	"kakeibo/internal/obligations"
	"kakeibo/internal/savings"
	"kakeibo/internal/services"
	"kakeibo/internal/settlement"
	"kakeibo/internal/storage"
)

const usage = `usage: kakeibo <command> [flags]

commands:
  obligations -month yyyy-MM   upcoming debits and credits per account
  recurring   -month yyyy-MM   recurring payments occurring in a month
  savings     -month yyyy-MM   savings goal progress
  settle                       settle card transactions whose payment date has passed
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cli.LoadEnvFile()
	// Reports go to stdout, logs to stderr.
	logger := cli.SetupLogger("info", os.Stderr)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, os.Stderr)

	store, err := cli.OpenStore(logger, cfg)
	if err != nil {
		logger.Error("Failed to open storage", log.FieldError, err)
		os.Exit(1)
	}

	var publisher settlement.Publisher
	if os.Args[1] == "settle" {
		if client := cli.OpenPublisher(logger, cfg); client != nil {
			defer client.Close()
			publisher = client
		}
	}

	err = run(context.Background(), os.Stdout, logger, store, publisher, os.Args[1], os.Args[2:], time.Now())
	store.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes one subcommand. publisher may be nil, in which case settlements
// are not announced.
func run(ctx context.Context, w io.Writer, logger *log.Logger, store storage.Store, publisher settlement.Publisher, cmd string, args []string, now time.Time) error {
	ledger := services.NewLedger(store)

	switch cmd {
	case "obligations":
		month, err := parseMonthFlag(cmd, args, now)
		if err != nil {
			return err
		}
		accounts, err := ledger.Obligations(ctx, month)
		if err != nil {
			return err
		}
		printObligations(w, accounts)
	case "recurring":
		month, err := parseMonthFlag(cmd, args, now)
		if err != nil {
			return err
		}
		lines, err := ledger.RecurringPaymentsForMonth(ctx, month)
		if err != nil {
			return err
		}
		printRecurring(w, lines)
	case "savings":
		month, err := parseMonthFlag(cmd, args, now)
		if err != nil {
			return err
		}
		progress, err := ledger.SavingsProgress(ctx, month)
		if err != nil {
			return err
		}
		printSavings(w, progress)
	case "settle":
		opts := []settlement.Option{settlement.WithLogger(logger.WithComponent(log.ComponentSettlement))}
		if publisher != nil {
			opts = append(opts, settlement.WithPublisher(publisher))
		}
		reconciler := settlement.NewReconciler(store, opts...)
		result, err := reconciler.SettleOverdue(ctx, now)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "checked %d, settled %d, failed %d\n", result.Checked, len(result.Settled), len(result.Failures))
		for _, f := range result.Failures {
			fmt.Fprintf(w, "  %s: %v\n", f.TransactionID, f.Err)
		}
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
	return nil
}

func parseMonthFlag(cmd string, args []string, now time.Time) (core.Month, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	month := fs.String("month", string(core.MonthOf(now)), "calendar month as yyyy-MM")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return core.ParseMonth(*month)
}

func printObligations(w io.Writer, accounts []obligations.AccountObligations) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	if len(accounts) == 0 {
		fmt.Fprintln(tw, "no obligations")
		return
	}
	for _, acc := range accounts {
		fmt.Fprintf(tw, "%s\t\t\t%d\n", acc.Account.Name, acc.Total)
		for _, e := range acc.Entries {
			date := e.Date.String()
			if !e.Dated() {
				date = "-"
			}
			label := e.PaymentMethod.Name
			if e.Kind == obligations.Recurring {
				label = recurringLabel(e.Recurring)
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\n", date, e.Kind, label, e.Total)
			if e.Kind == obligations.CardBilling {
				fmt.Fprintf(tw, "  \t\tperiod %s..%s, %d purchases, %d recurring\t\n",
					e.Period.Start, e.Period.End, len(e.Transactions), len(e.Recurring))
			}
		}
	}
}

func recurringLabel(items []obligations.RecurringItem) string {
	if len(items) == 1 {
		return items[0].Payment.Name
	}
	return fmt.Sprintf("%s +%d", items[0].Payment.Name, len(items)-1)
}

func printRecurring(w io.Writer, lines []services.RecurringLine) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	if len(lines) == 0 {
		fmt.Fprintln(tw, "no recurring payments")
		return
	}
	for _, line := range lines {
		for _, d := range line.Dates {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", d, line.Payment.Type, line.Payment.Name, line.Amount)
		}
	}
}

func printSavings(w io.Writer, progress []savings.Status) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	if len(progress) == 0 {
		fmt.Fprintln(tw, "no savings goals")
		return
	}
	fmt.Fprintln(tw, "goal\tmonthly\tsaved\tremaining\ttarget")
	for _, s := range progress {
		mark := ""
		if s.Reached {
			mark = " (reached)"
		}
		fmt.Fprintf(tw, "%s%s\t%d\t%d\t%d\t%s\n",
			s.Goal.Name, mark, s.MonthlyShare, s.Accumulated, s.Remaining, s.Goal.TargetMonth())
	}
}
