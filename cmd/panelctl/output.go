// ABOUTME: Shared argument parsing and table output helpers for panelctl commands
// ABOUTME: Tables go to stdout through tabwriter; status markers use fatih/color

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/2389/delegate-panel/internal/roster"
)

var errUsage = errors.New("invalid arguments")

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	faint  = color.New(color.FgHiBlack)
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

// newFlags builds a subcommand flag set that reports errors instead of exiting.
func newFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	return fs
}

// parseFlags parses args and maps a help request to errUsage.
func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return errUsage
		}
		return err
	}
	return nil
}

func parseAccountID(s string) (roster.AccountID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid account id %q", s)
	}
	return roster.AccountID(id), nil
}

// parseAccountIDs parses a comma-separated id list; empty input is an empty list.
func parseAccountIDs(s string) ([]roster.AccountID, error) {
	var ids []roster.AccountID
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := parseAccountID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseUUID(kind, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q", kind, s)
	}
	return id, nil
}

// requireArgs checks the positional argument count.
func requireArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("%w: usage: panelctl %s", errUsage, usage)
	}
	return nil
}

// ok prints a success line.
func ok(format string, args ...any) {
	green.Printf("✓ "+format+"\n", args...)
}

// orDash returns "-" for empty strings in table cells.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func stdout() io.Writer { return os.Stdout }
