// ABOUTME: panelctl rules subcommands: list, show, invite, grant and revoke
// ABOUTME: grant edits a delegate's account scope through the permission editor

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/delegate-panel/internal/delegation"
	"github.com/2389/delegate-panel/internal/roster"
)

func (a *app) cmdRules(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.listRules(ctx)
	}

	switch args[0] {
	case "list":
		return a.listRules(ctx)
	case "show":
		return a.showRule(ctx, args[1:])
	case "invite":
		return a.inviteRule(ctx, args[1:])
	case "grant":
		return a.grantRule(ctx, args[1:])
	case "revoke":
		if err := requireArgs(args[1:], 1, "rules revoke <rule-id>"); err != nil {
			return err
		}
		id, err := parseUUID("rule", args[1])
		if err != nil {
			return err
		}
		if err := a.rules.Revoke(ctx, id); err != nil {
			return err
		}
		ok("Rule %s revoked", id)
		return nil
	default:
		return fmt.Errorf("unknown rules command: %s", args[0])
	}
}

func (a *app) listRules(ctx context.Context) error {
	rules, err := a.rules.Rules(ctx)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		fmt.Println("No delegation rules")
		return nil
	}

	w := newTable(stdout())
	fmt.Fprintln(w, "  ID\tLABEL\tDELEGATE\tREPLY\tACCOUNTS")
	fmt.Fprintln(w, "  --\t-----\t--------\t-----\t--------")
	for _, r := range rules {
		delegate := color.YellowString("pending")
		if r.Accepted && r.DelegateDisplayName != nil {
			delegate = *r.DelegateDisplayName
		}
		reply := "no"
		if r.Permissions.CanReply {
			reply = "yes"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Label, delegate, reply, orDash(r.Summary))
	}
	return w.Flush()
}

func (a *app) showRule(ctx context.Context, args []string) error {
	if err := requireArgs(args, 1, "rules show <rule-id>"); err != nil {
		return err
	}
	id, err := parseUUID("rule", args[0])
	if err != nil {
		return err
	}

	ed, err := a.rules.Editor(ctx, id)
	if err != nil {
		return err
	}
	printEditor(ed)
	return nil
}

func printEditor(ed delegation.Editor) {
	r := ed.Rule
	fmt.Printf("Rule:      %s\n", r.Label)
	fmt.Printf("ID:        %s\n", r.ID)
	if r.Accepted && r.DelegateDisplayName != nil {
		fmt.Printf("Delegate:  %s\n", *r.DelegateDisplayName)
	} else {
		fmt.Printf("Delegate:  %s\n", color.YellowString("pending"))
		if r.InviteLink != nil {
			fmt.Printf("Invite:    %s\n", *r.InviteLink)
		}
		if r.InviteSecret != nil {
			fmt.Printf("Password:  %s\n", *r.InviteSecret)
		}
	}
	fmt.Printf("Can reply: %t\n", ed.Selection.CanReply)
	if r.Permissions.Accounts.IsAll() {
		fmt.Println("Accounts:  all, including accounts connected later")
	} else {
		fmt.Println("Accounts:")
	}

	if len(ed.Roster) == 0 {
		faint.Println("  (no accounts connected)")
		return
	}
	for _, acc := range ed.Roster {
		mark := "[ ]"
		if ed.Selection.Checked.Has(acc.ID) {
			mark = green.Sprint("[x]")
		}
		fmt.Printf("  %s %d  %s\n", mark, acc.ID, acc.DisplayName)
	}
}

func (a *app) inviteRule(ctx context.Context, args []string) error {
	fs := newFlags("rules invite")
	label := fs.StringP("label", "l", "", "rule label shown to you and the delegate")
	secret := fs.String("password", "", "password the delegate must enter to accept")
	canReply := fs.Bool("can-reply", false, "allow the delegate to reply (server default when omitted)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *label == "" && fs.NArg() > 0 {
		*label = strings.Join(fs.Args(), " ")
	}

	inv := delegation.Invite{Label: *label, Secret: *secret}
	if fs.Changed("can-reply") {
		inv.CanReply = canReply
	}

	out, err := a.rules.IssueInvite(ctx, inv)
	if err != nil {
		return err
	}
	ok("Invite created")
	fmt.Printf("  Link: %s\n", out.Link)
	if out.Code != "" {
		fmt.Printf("  Code: %s\n", out.Code)
	}
	return nil
}

// grantRule loads the editor, applies flag edits to the selection and saves.
func (a *app) grantRule(ctx context.Context, args []string) error {
	fs := newFlags("rules grant")
	accountsFlag := fs.String("accounts", "", "comma-separated account ids to allow (replaces the selection)")
	all := fs.Bool("all", false, "allow every account, including ones connected later")
	add := fs.String("add", "", "comma-separated account ids to add")
	remove := fs.String("remove", "", "comma-separated account ids to remove")
	canReply := fs.Bool("can-reply", false, "allow the delegate to reply")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireArgs(fs.Args(), 1, "rules grant <rule-id> [--accounts ids | --all] [--add ids] [--remove ids] [--can-reply]"); err != nil {
		return err
	}
	if *all && fs.Changed("accounts") {
		return fmt.Errorf("%w: --all and --accounts are exclusive", errUsage)
	}
	id, err := parseUUID("rule", fs.Arg(0))
	if err != nil {
		return err
	}

	ed, err := a.rules.Editor(ctx, id)
	if err != nil {
		return err
	}

	sel := ed.Selection
	if fs.Changed("can-reply") {
		sel.CanReply = *canReply
	}
	switch {
	case *all:
		sel.Checked = delegation.NewIDSet(roster.IDs(ed.Roster)...)
	case fs.Changed("accounts"):
		ids, err := parseAccountIDs(*accountsFlag)
		if err != nil {
			return err
		}
		if err := checkOnRoster(ids, ed.Roster); err != nil {
			return err
		}
		sel.Checked = delegation.NewIDSet(ids...)
	}
	if err := toggleIDs(&sel, *add, ed.Roster, true); err != nil {
		return err
	}
	if err := toggleIDs(&sel, *remove, ed.Roster, false); err != nil {
		return err
	}

	scope, err := a.rules.Save(ctx, id, sel, ed.Roster)
	if err != nil {
		return err
	}
	ok("Permissions saved for %q", ed.Rule.Label)
	if scope.Accounts.IsAll() {
		fmt.Println("  Accounts:  all")
	} else {
		fmt.Printf("  Accounts:  %s\n", scope.Accounts)
	}
	fmt.Printf("  Can reply: %t\n", scope.CanReply)
	return nil
}

// toggleIDs adds (want=true) or removes ids from sel, flipping only those
// not already in the wanted state.
func toggleIDs(sel *delegation.Selection, raw string, accounts []roster.Account, want bool) error {
	ids, err := parseAccountIDs(raw)
	if err != nil {
		return err
	}
	if err := checkOnRoster(ids, accounts); err != nil {
		return err
	}
	for _, id := range ids {
		if sel.Checked.Has(id) != want {
			sel.Toggle(id)
		}
	}
	return nil
}

// checkOnRoster rejects ids that are not connected accounts.
func checkOnRoster(ids []roster.AccountID, accounts []roster.Account) error {
	known := delegation.NewIDSet(roster.IDs(accounts)...)
	for _, id := range ids {
		if !known.Has(id) {
			return fmt.Errorf("account %d: %w", id, roster.ErrUnknownAccount)
		}
	}
	return nil
}
