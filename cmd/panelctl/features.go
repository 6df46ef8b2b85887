// ABOUTME: panelctl commands for panel features: status, terms, tariffs, wallet and settings
// ABOUTME: Thin presenters over panel.Client; failures surface as notices

package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/2389/delegate-panel/internal/panel"
)

func (a *app) cmdStatus(ctx context.Context) error {
	st, err := a.panel.Status(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Tariff:   %s\n", orDash(st.Tariff))
	if st.TariffExpires != "" {
		fmt.Printf("Expires:  %s\n", st.TariffExpires)
	}
	fmt.Printf("Balance:  %s\n", orDash(st.Balance))
	if st.AgreedToTerms {
		fmt.Printf("Terms:    %s\n", color.GreenString("accepted"))
	} else {
		fmt.Printf("Terms:    %s (run 'panelctl terms accept')\n", color.YellowString("not accepted"))
	}
	if st.AuthURL != "" {
		fmt.Printf("Connect:  %s\n", st.AuthURL)
	}
	return nil
}

func (a *app) cmdTerms(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "accept" {
		if err := a.panel.AcceptTerms(ctx); err != nil {
			return err
		}
		ok("Terms accepted")
		return nil
	}
	if len(args) > 0 {
		return fmt.Errorf("unknown terms command: %s", args[0])
	}

	st, err := a.panel.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Println(st.Terms)
	return nil
}

func (a *app) cmdTariffs(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "buy" {
		if err := requireArgs(args[1:], 1, "tariffs buy <tariff-id>"); err != nil {
			return err
		}
		msg, err := a.panel.PurchaseTariff(ctx, args[1])
		if err != nil {
			return err
		}
		ok("%s", orDash(msg))
		return nil
	}
	if len(args) > 0 && args[0] != "list" {
		return fmt.Errorf("unknown tariffs command: %s", args[0])
	}

	tariffs, err := a.panel.Tariffs(ctx)
	if err != nil {
		return err
	}
	if len(tariffs) == 0 {
		fmt.Println("No tariffs available")
		return nil
	}

	for i, t := range tariffs {
		if i > 0 {
			fmt.Println()
		}
		title := fmt.Sprintf("%s (%s)  %.0f RUB", t.Name, t.ID, t.PriceRub)
		if t.DurationDays != nil {
			title += fmt.Sprintf(" / %d days", *t.DurationDays)
		}
		if t.Current {
			green.Println(title + "  [current]")
		} else {
			yellow.Println(title)
		}
		if t.Description != "" {
			fmt.Printf("  %s\n", t.Description)
		}
		for _, f := range t.Features {
			if f.Active {
				fmt.Printf("  %s %s\n", green.Sprint("+"), f.Text)
			} else {
				faint.Printf("  - %s\n", f.Text)
			}
		}
	}
	return nil
}

func (a *app) cmdWallet(ctx context.Context) error {
	w, err := a.panel.Wallet(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Balance: %s\n", orDash(w.Balance))
	if len(w.Transactions) == 0 {
		fmt.Println("No transactions")
		return nil
	}

	fmt.Println()
	tw := newTable(stdout())
	fmt.Fprintln(tw, "  DATE\tAMOUNT\tBALANCE\tDESCRIPTION")
	fmt.Fprintln(tw, "  ----\t------\t-------\t-----------")
	for _, t := range w.Transactions {
		amount := color.RedString(t.Amount)
		if t.Credit() {
			amount = color.GreenString(t.Amount)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", t.CreatedAt, amount, t.BalanceAfter, t.Description)
	}
	return tw.Flush()
}

func (a *app) cmdSettings(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "show" {
		s, err := a.panel.Settings(ctx)
		if err != nil {
			return err
		}
		printSettings(s)
		return nil
	}

	switch args[0] {
	case "timezone":
		if err := requireArgs(args[1:], 1, "settings timezone <zone>"); err != nil {
			return err
		}
		s, err := a.panel.Settings(ctx)
		if err != nil {
			return err
		}
		msg, err := a.panel.SetTimezone(ctx, args[1], &s)
		if err != nil {
			return err
		}
		if msg == "" {
			msg = "Timezone saved"
		}
		ok("%s", msg)
		return nil
	case "reset":
		fs := newFlags("settings reset")
		yes := fs.BoolP("yes", "y", false, "confirm deleting everything")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if !*yes {
			return fmt.Errorf("full reset deletes every account, rule and template and cannot be undone; rerun with --yes")
		}
		if err := a.panel.FullReset(ctx); err != nil {
			return err
		}
		ok("All data deleted")
		return nil
	default:
		return fmt.Errorf("unknown settings command: %s", args[0])
	}
}

func printSettings(s panel.Settings) {
	current := "not set"
	if s.Timezone != "" {
		current = s.Label()
	}
	fmt.Printf("Timezone: %s\n", current)
	fmt.Println()
	fmt.Println("Available timezones:")

	tw := newTable(stdout())
	for _, tz := range s.Available {
		mark := " "
		if tz.Value == s.Timezone {
			mark = "*"
		}
		fmt.Fprintf(tw, "  %s %s\t%s\n", mark, tz.Value, tz.Label)
	}
	tw.Flush()
}
