// ABOUTME: panelctl accounts subcommands: list, alias, sync and disconnect
// ABOUTME: Talks to the roster service; listing reads the cached snapshot

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/delegate-panel/internal/roster"
)

func (a *app) cmdAccounts(ctx context.Context, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return a.listAccounts(ctx, args)
	}

	switch args[0] {
	case "list":
		return a.listAccounts(ctx, args[1:])
	case "alias":
		if err := requireArgs(args[1:], 1, "accounts alias <id> [alias]"); err != nil {
			return err
		}
		id, err := parseAccountID(args[1])
		if err != nil {
			return err
		}
		alias := strings.Join(args[2:], " ")
		if err := a.roster.SetAlias(ctx, id, alias); err != nil {
			return err
		}
		if strings.TrimSpace(alias) == "" {
			ok("Alias cleared for account %d", id)
		} else {
			ok("Account %d is now %q", id, strings.TrimSpace(alias))
		}
		return nil
	case "sync":
		if err := requireArgs(args[1:], 1, "accounts sync <id>"); err != nil {
			return err
		}
		id, err := parseAccountID(args[1])
		if err != nil {
			return err
		}
		res, err := a.roster.Sync(ctx, id)
		if err != nil {
			return err
		}
		ok("%s", orDash(res.Message))
		fmt.Printf("  Chats: %d\n", res.ChatCount)
		return nil
	case "disconnect":
		fs := newFlags("accounts disconnect")
		yes := fs.BoolP("yes", "y", false, "confirm disconnecting the account")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireArgs(fs.Args(), 1, "accounts disconnect <id> --yes"); err != nil {
			return err
		}
		id, err := parseAccountID(fs.Arg(0))
		if err != nil {
			return err
		}
		if !*yes {
			return fmt.Errorf("disconnecting account %d revokes every delegate's access to it; rerun with --yes", id)
		}
		if err := a.roster.Disconnect(ctx, id); err != nil {
			return err
		}
		ok("Account %d disconnected", id)
		return nil
	default:
		return fmt.Errorf("unknown accounts command: %s", args[0])
	}
}

func (a *app) listAccounts(ctx context.Context, args []string) error {
	fs := newFlags("accounts list")
	refresh := fs.BoolP("refresh", "r", false, "re-fetch the account list instead of using the cached snapshot")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	list := a.roster.List
	if *refresh {
		list = a.roster.Refresh
	}
	accounts, err := list(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Println("No accounts connected")
		return nil
	}

	w := newTable(stdout())
	fmt.Fprintln(w, "  ID\tNAME\tPROFILE\tCHATS\tSTATUS")
	fmt.Fprintln(w, "  --\t----\t-------\t-----\t------")
	for _, acc := range accounts {
		name := acc.DisplayName
		if acc.IsActiveDefault {
			name += " *"
		}
		chats := "-"
		if acc.ChatCount != nil {
			chats = strconv.Itoa(*acc.ChatCount)
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n",
			acc.ID, name, orDash(acc.ProfileID), chats, statusColor(acc.Status))
	}
	return w.Flush()
}

// statusColor renders an account's token status by severity.
func statusColor(s roster.Status) string {
	label := orDash(s.Label)
	switch s.Severity {
	case roster.SeverityOK:
		return color.GreenString(label)
	case roster.SeverityWarning:
		return color.YellowString(label)
	case roster.SeverityError:
		return color.RedString(label)
	default:
		return label
	}
}
