// ABOUTME: Operator CLI for the delegation panel: accounts, delegation rules, templates and billing
// ABOUTME: Every call goes through the request gateway; failures are printed as localized notices

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/2389/delegate-panel/internal/busy"
	"github.com/2389/delegate-panel/internal/cache"
	"github.com/2389/delegate-panel/internal/config"
	"github.com/2389/delegate-panel/internal/delegation"
	"github.com/2389/delegate-panel/internal/gateway"
	"github.com/2389/delegate-panel/internal/notice"
	"github.com/2389/delegate-panel/internal/panel"
	"github.com/2389/delegate-panel/internal/roster"
)

const banner = `
                         _      _   _
 _ __   __ _ _ __   ___| | ___| |_| |
| '_ \ / _' | '_ \ / _ \ |/ __| __| |
| |_) | (_| | | | |  __/ | (__| |_| |
| .__/ \__,_|_| |_|\___|_|\___|\__|_|
|_|
`

// app wires the services for one CLI invocation.
type app struct {
	logger  *slog.Logger
	notices *notice.Broadcaster
	roster  *roster.Service
	rules   *delegation.Service
	panel   *panel.Client
}

func main() {
	flags := pflag.NewFlagSet("panelctl", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	configPath := flags.StringP("config", "c", "", "config file (yaml, toml or jsonc)")
	server := flags.String("server", "", "panel server URL (overrides config)")
	prefix := flags.String("prefix", "", "panel path prefix (overrides config)")
	locale := flags.String("locale", "", "notice language, e.g. en or ru (overrides config)")
	verbose := flags.BoolP("verbose", "v", false, "debug logging")
	flags.Usage = printUsage

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	args := flags.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}
	cmd, args := args[0], args[1:]
	if cmd == "help" {
		printUsage()
		return
	}

	cfg, err := loadConfig(resolveConfigPath(*configPath))
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
	if *server != "" {
		cfg.Panel.ServerURL = *server
	}
	if flags.Changed("prefix") {
		cfg.Panel.PathPrefix = *prefix
	}
	if *locale != "" {
		cfg.Locale = *locale
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(cfg)
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}

	done := a.printNotices(ctx)
	err = a.run(ctx, cmd, args)
	a.notices.Close()
	<-done

	if err != nil {
		// Gateway failures were already shown as notices.
		if !errors.Is(err, gateway.ErrReported) {
			color.Red("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	a.logger.Debug("running command", "command", cmd, "args", args)

	switch cmd {
	case "status":
		return a.cmdStatus(ctx)
	case "terms":
		return a.cmdTerms(ctx, args)
	case "accounts":
		return a.cmdAccounts(ctx, args)
	case "rules":
		return a.cmdRules(ctx, args)
	case "templates":
		return a.cmdTemplates(ctx, args)
	case "autoreplies":
		return a.cmdAutoReplies(ctx, args)
	case "tariffs":
		return a.cmdTariffs(ctx, args)
	case "wallet":
		return a.cmdWallet(ctx)
	case "settings":
		return a.cmdSettings(ctx, args)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: panelctl [flags] <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  status                              Show tariff, balance and terms status")
	fmt.Println("  terms                               Show the user agreement")
	fmt.Println("  terms accept                        Accept the user agreement")
	fmt.Println("  accounts [--refresh]                List connected accounts")
	fmt.Println("  accounts alias <id> <alias>         Rename an account (empty alias clears it)")
	fmt.Println("  accounts sync <id>                  Recount an account's chats")
	fmt.Println("  accounts disconnect <id> --yes      Disconnect an account")
	fmt.Println("  rules                               List delegation rules")
	fmt.Println("  rules show <rule-id>                Show a rule's access scope")
	fmt.Println("  rules invite --label <name>         Issue a delegation invite link")
	fmt.Println("  rules grant <rule-id> [flags]       Edit which accounts a delegate may use")
	fmt.Println("  rules revoke <rule-id>              Revoke an invite or remove a delegate")
	fmt.Println("  templates [add|edit|rm]             Manage message templates")
	fmt.Println("  autoreplies list <account-id>       List an account's auto-replies")
	fmt.Println("  autoreplies [add|edit|rm]           Manage auto-replies")
	fmt.Println("  tariffs                             List tariff plans")
	fmt.Println("  tariffs buy <tariff-id>             Buy a tariff from the wallet balance")
	fmt.Println("  wallet                              Show balance and transactions")
	fmt.Println("  settings                            Show settings")
	fmt.Println("  settings timezone <zone>            Set the timezone")
	fmt.Println("  settings reset --yes                Delete all accounts, rules and templates")
	fmt.Println()
	yellow.Println("Flags:")
	fmt.Println("  -c, --config <path>     Config file (default: $PANEL_CONFIG or ~/.config/panel/config.yaml)")
	fmt.Println("      --server <url>      Panel server URL")
	fmt.Println("      --prefix <path>     Panel path prefix (default: /panel, / for a root mount)")
	fmt.Println("      --locale <lang>     Notice language (en, ru)")
	fmt.Println("  -v, --verbose           Debug logging")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  PANEL_INIT_DATA          Session credential (or ~/.config/panel/init-data)")
	fmt.Println("  PANEL_CONFIG             Config file path")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  panelctl --server https://bot.example.com accounts")
	fmt.Println("  panelctl rules invite --label 'Night manager' --can-reply")
	fmt.Println("  panelctl rules grant 4d7c9a52-... --accounts 1,3 --can-reply=false")
	fmt.Println("  panelctl rules grant 4d7c9a52-... --all")
	fmt.Println()
}

func newApp(cfg *config.Config) (*app, error) {
	logger := setupLogger(cfg.Logging)

	catalog, err := notice.NewCatalog(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("loading notice catalog: %w", err)
	}

	notices := notice.NewBroadcaster(logger)
	registry := cache.NewRegistry()

	gw := gateway.New(gateway.Options{
		ServerURL:        cfg.Panel.ServerURL,
		PathPrefix:       cfg.Panel.PathPrefix,
		Credential:       getInitData(cfg),
		CredentialHeader: cfg.Panel.CredentialHeader,
		Timeout:          cfg.Gateway.Timeout,
		RateLimit:        cfg.Gateway.RateLimit,
		Busy:             newBusyIndicator(busy.Mode(cfg.Gateway.BusyMode)),
		Notifier:         notices,
		Catalog:          catalog,
		Logger:           logger,
	})

	accounts := roster.NewService(gw, registry, roster.WithLogger(logger), roster.WithTTL(cfg.Cache.TTL))
	rules := delegation.NewService(gw, accounts, registry, delegation.WithLogger(logger), delegation.WithTTL(cfg.Cache.TTL))
	features := panel.NewClient(gw, registry, panel.WithLogger(logger), panel.WithTTL(cfg.Cache.TTL))

	logger.Debug("panelctl configured",
		"server", cfg.Panel.ServerURL,
		"prefix", cfg.Panel.PathPrefix,
		"locale", catalog.Lang(),
		"busy_mode", cfg.Gateway.BusyMode,
		"cache_keys", registry.Keys())

	return &app{
		logger:  logger,
		notices: notices,
		roster:  accounts,
		rules:   rules,
		panel:   features,
	}, nil
}

// printNotices prints every notice in red on stderr until the broadcaster
// is closed. The returned channel is closed once the printer has drained.
func (a *app) printNotices(ctx context.Context) <-chan struct{} {
	ch, _ := a.notices.Subscribe(ctx)
	done := make(chan struct{})
	red := color.New(color.FgRed)

	go func() {
		defer close(done)
		for n := range ch {
			red.Fprintf(os.Stderr, "✗ %s\n", n)
		}
	}()
	return done
}

// newBusyIndicator draws a spinner on stderr while calls are in flight, but
// only when stderr is a terminal.
func newBusyIndicator(mode busy.Mode) busy.Indicator {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return busy.New(mode, nil)
	}
	s := &spinner{out: os.Stderr}
	return busy.New(mode, s.toggle)
}

// loadConfig loads path, or returns defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// resolveConfigPath picks the config file: flag, then PANEL_CONFIG, then the
// first existing file in the XDG config directory. Empty means none.
func resolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if path := os.Getenv("PANEL_CONFIG"); path != "" {
		return path
	}

	dir := configDir()
	if dir == "" {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml", "config.toml", "config.jsonc", "config.json"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// configDir returns $XDG_CONFIG_HOME/panel or ~/.config/panel.
func configDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(base, "panel")
}

// getInitData returns the session credential: PANEL_INIT_DATA, then the
// config value, then the init-data file.
func getInitData(cfg *config.Config) string {
	// Check env var first
	if data := os.Getenv("PANEL_INIT_DATA"); data != "" {
		return data
	}
	if cfg.Panel.InitData != "" {
		return cfg.Panel.InitData
	}

	dir := configDir()
	if dir == "" {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(dir, "init-data"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
