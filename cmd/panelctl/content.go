// ABOUTME: panelctl commands for message templates and per-account auto-replies
// ABOUTME: Create and edit take their fields from flags; listings print tables

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/2389/delegate-panel/internal/panel"
	"github.com/2389/delegate-panel/internal/roster"
)

func (a *app) cmdTemplates(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		return a.listTemplates(ctx)
	}

	switch args[0] {
	case "add":
		fs := newFlags("templates add")
		name := fs.StringP("name", "n", "", "template name")
		text := fs.StringP("text", "t", "", "template text")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		id, err := a.panel.CreateTemplate(ctx, *name, *text)
		if err != nil {
			return err
		}
		ok("Template %d created", id)
		return nil
	case "edit":
		fs := newFlags("templates edit")
		name := fs.StringP("name", "n", "", "template name")
		text := fs.StringP("text", "t", "", "template text")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireArgs(fs.Args(), 1, "templates edit <id> --name <name> --text <text>"); err != nil {
			return err
		}
		id, err := parseTemplateID(fs.Arg(0))
		if err != nil {
			return err
		}
		if err := a.panel.UpdateTemplate(ctx, id, *name, *text); err != nil {
			return err
		}
		ok("Template %d updated", id)
		return nil
	case "rm":
		if err := requireArgs(args[1:], 1, "templates rm <id>"); err != nil {
			return err
		}
		id, err := parseTemplateID(args[1])
		if err != nil {
			return err
		}
		if err := a.panel.DeleteTemplate(ctx, id); err != nil {
			return err
		}
		ok("Template %d deleted", id)
		return nil
	default:
		return fmt.Errorf("unknown templates command: %s", args[0])
	}
}

func (a *app) listTemplates(ctx context.Context) error {
	templates, err := a.panel.Templates(ctx)
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		fmt.Println("No templates")
		return nil
	}

	w := newTable(stdout())
	fmt.Fprintln(w, "  ID\tNAME\tTEXT")
	fmt.Fprintln(w, "  --\t----\t----")
	for _, t := range templates {
		fmt.Fprintf(w, "  %d\t%s\t%s\n", t.ID, t.Name, truncate(t.Text, 60))
	}
	return w.Flush()
}

func parseTemplateID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid template id %q", s)
	}
	return id, nil
}

func (a *app) cmdAutoReplies(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: panelctl autoreplies [list|add|edit|rm] ...", errUsage)
	}

	switch args[0] {
	case "list":
		if err := requireArgs(args[1:], 1, "autoreplies list <account-id>"); err != nil {
			return err
		}
		account, err := parseAccountID(args[1])
		if err != nil {
			return err
		}
		return a.listAutoReplies(ctx, account)
	case "add":
		fs := newFlags("autoreplies add")
		in := autoReplyFlags(fs)
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireArgs(fs.Args(), 1, "autoreplies add <account-id> --name <name> --text <reply> [flags]"); err != nil {
			return err
		}
		account, err := parseAccountID(fs.Arg(0))
		if err != nil {
			return err
		}
		id, err := a.panel.CreateAutoReply(ctx, account, in.input())
		if err != nil {
			return err
		}
		ok("Auto-reply %s created", id)
		return nil
	case "edit":
		fs := newFlags("autoreplies edit")
		in := autoReplyFlags(fs)
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireArgs(fs.Args(), 1, "autoreplies edit <rule-id> --name <name> --text <reply> [flags]"); err != nil {
			return err
		}
		id, err := parseUUID("auto-reply", fs.Arg(0))
		if err != nil {
			return err
		}
		if err := a.panel.UpdateAutoReply(ctx, id, in.input()); err != nil {
			return err
		}
		ok("Auto-reply %s updated", id)
		return nil
	case "rm":
		if err := requireArgs(args[1:], 1, "autoreplies rm <rule-id>"); err != nil {
			return err
		}
		id, err := parseUUID("auto-reply", args[1])
		if err != nil {
			return err
		}
		if err := a.panel.DeleteAutoReply(ctx, id); err != nil {
			return err
		}
		ok("Auto-reply %s deleted", id)
		return nil
	default:
		return fmt.Errorf("unknown autoreplies command: %s", args[0])
	}
}

// autoReplyOptions holds the flag values for add and edit.
type autoReplyOptions struct {
	name     *string
	text     *string
	keywords *string
	match    *string
	delay    *int
	cooldown *int
	inactive *bool
}

func autoReplyFlags(fs *pflag.FlagSet) autoReplyOptions {
	return autoReplyOptions{
		name:     fs.StringP("name", "n", "", "rule name"),
		text:     fs.StringP("text", "t", "", "reply text"),
		keywords: fs.StringP("keywords", "k", "", "comma-separated trigger keywords"),
		match:    fs.StringP("match", "m", string(panel.MatchContainsAny), "match type: contains_any, exact or always"),
		delay:    fs.Int("delay", 0, "seconds to wait before replying"),
		cooldown: fs.Int("cooldown", panel.DefaultCooldownSeconds, "seconds before the rule fires again in the same chat"),
		inactive: fs.Bool("inactive", false, "create the rule switched off"),
	}
}

func (o autoReplyOptions) input() panel.AutoReplyInput {
	return panel.AutoReplyInput{
		Name:            *o.name,
		MatchType:       panel.MatchType(*o.match),
		Keywords:        panel.ParseKeywords(*o.keywords),
		ReplyText:       *o.text,
		DelaySeconds:    *o.delay,
		CooldownSeconds: *o.cooldown,
		Active:          !*o.inactive,
	}
}

func (a *app) listAutoReplies(ctx context.Context, account roster.AccountID) error {
	replies, err := a.panel.AutoReplies(ctx, account)
	if err != nil {
		return err
	}
	if len(replies) == 0 {
		fmt.Printf("No auto-replies for account %d\n", account)
		return nil
	}

	w := newTable(stdout())
	fmt.Fprintln(w, "  ID\tNAME\tMATCH\tKEYWORDS\tDELAY\tSTATE")
	fmt.Fprintln(w, "  --\t----\t-----\t--------\t-----\t-----")
	for _, r := range replies {
		state := color.GreenString("on")
		if !r.Active {
			state = faint.Sprint("off")
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%ds\t%s\n",
			r.ID, r.Name, r.MatchType, orDash(strings.Join(r.Keywords, ", ")), r.DelaySeconds, state)
	}
	return w.Flush()
}

// truncate shortens s to at most n runes for table cells.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
