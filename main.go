package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/cristianhs/one-on-one/internal/config"
	"github.com/cristianhs/one-on-one/internal/errors"
	"github.com/cristianhs/one-on-one/internal/obsidian"
	"github.com/cristianhs/one-on-one/internal/omnifocus"
	"github.com/cristianhs/one-on-one/internal/onepassword"
	"github.com/cristianhs/one-on-one/internal/service"
	"github.com/cristianhs/one-on-one/internal/slack"
	"github.com/cristianhs/one-on-one/internal/workspace"
)

var version = "0.1.0"

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func printHelp() {
	fmt.Printf(`one-on-one - Generate colleague onboarding artifacts

USAGE:
    one-on-one [OPTIONS] <name> <slack-handle>

ARGUMENTS:
    name            Colleague's full name (quote multi-word names)
    slack-handle    Colleague's Slack handle (without @)

OPTIONS:
    --help          Show this help information
    --version       Print version information
    --config        Path to config file (default: config.yaml)
    --dry-run       Run every transformation but write nothing

ARTIFACTS:
    <name>.ofocus-perspective           Task-manager perspective bundle
    One-to-One - <name>.kmmacros        Automation macro
    One-to-One - <name>.streamDeckAction  Control-pad button package

EXAMPLES:
    one-on-one "Jane Doe" jane.doe
    one-on-one --dry-run "Jane Doe" jane.doe
    one-on-one --config work.yaml "Jane Doe" jane.doe

A SLACK_TOKEN environment variable (or .env entry) skips the 1Password
CLI when fetching the profile photo.
`)
}

func main() {
	var showVersion bool
	var showHelp bool
	var configPath string
	var dryRun bool

	flag.BoolVar(&showVersion, "version", false, "Print version information")
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.StringVar(&configPath, "config", "config.yaml", "Path to config file")
	flag.BoolVar(&dryRun, "dry-run", false, "Run every transformation but write nothing")
	flag.Parse()

	if showHelp {
		printHelp()
		os.Exit(0)
	}
	if showVersion {
		fmt.Printf("one-on-one version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "Error: expected <name> and <slack-handle> arguments\n\n")
		printHelp()
		os.Exit(1)
	}
	fullName, handle := args[0], args[1]

	// Optional; a missing .env is not an error
	godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	ws := workspace.NewManager(cfg.Output.BaseFolder, dryRun)

	var photos service.PhotoFetcher
	if client := buildSlackClient(ctx, cfg); client != nil {
		photos = client
	}

	var tags service.TagManager
	if cfg.OmniFocus.ParentTagID != "" {
		tags = omnifocus.NewBridge(cfg.OmniFocus.ParentTagID)
	}

	var notes service.NoteWriter
	if vault := obsidian.NewVault(cfg.Obsidian.VaultPath, cfg.Obsidian.PeopleFolder); vault != nil {
		notes = vault
	}

	svc := service.New(cfg, ws, photos, tags, notes, dryRun)
	report, err := svc.Run(ctx, fullName, handle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printReport(report)
	if report.AllFailed() {
		os.Exit(1)
	}
}

// buildSlackClient resolves the API token and returns the directory
// client. Any failure here degrades to a run without a photo.
func buildSlackClient(ctx context.Context, cfg *config.Config) *slack.Client {
	op := onepassword.NewClient()
	token, err := op.GetSecret(ctx, cfg.Slack.OnePassword.ItemName, cfg.Slack.OnePassword.FieldName)
	if err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("! no Slack token available (%v), continuing without a photo", err)))
		return nil
	}
	return slack.NewClient(token, cfg.Slack.PhotoSize)
}

func printReport(r *service.Report) {
	title := fmt.Sprintf("One-on-one setup for %s (@%s)", r.Colleague, r.Handle)
	if r.DryRun {
		title += " [dry run]"
	}
	fmt.Println(headerStyle.Render(title))
	fmt.Println(subtleStyle.Render("  output: " + r.Dir))

	for _, a := range r.Artifacts {
		if a.Err != nil {
			detail := a.Err.Error()
			if appErr := errors.GetAppError(a.Err); appErr != nil {
				detail = appErr.Message
			}
			fmt.Println(failStyle.Render(fmt.Sprintf("  ✗ %-12s %s", a.Kind, detail)))
			continue
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("  ✓ %-12s %s", a.Kind, a.Name)))
	}

	if !r.HasPhoto {
		fmt.Println(warnStyle.Render("  ! no profile photo, template icons kept"))
	}
	for _, w := range r.Warnings {
		fmt.Println(warnStyle.Render("  ! " + w.Error()))
	}
	if r.NoteErr != nil {
		fmt.Println(warnStyle.Render("  ! vault note failed: " + r.NoteErr.Error()))
	}
}
