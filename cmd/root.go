package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/attache-dl/attache/internal/catalog"
	"github.com/attache-dl/attache/internal/config"
	"github.com/attache-dl/attache/internal/download"
	"github.com/attache-dl/attache/internal/jira"
	"github.com/attache-dl/attache/internal/logctx"
	"github.com/attache-dl/attache/internal/queue"
	"github.com/attache-dl/attache/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

// Version information - set via ldflags during build
var Version = "dev"

const listTimeout = 30 * time.Second

var (
	configPath string
	outputDir  string
	logLevel   string
)

// rootCmd is the whole program; attache has no subcommands.
var rootCmd = &cobra.Command{
	Use:   "attache [flags] ISSUE",
	Short: "Browse and download Jira issue attachments from the terminal",
	Long: `Attache lists the attachments of a Jira issue and downloads the
ones you pick, one at a time, with live progress.

The Jira base URL and credentials come from the config file or from
JIRA_* environment variables. Downloads land in a folder named after
the issue.`,
	Version:      Version,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the config file")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory to download into (default: ./ISSUE)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log verbosity: debug, info, warn or error")
	rootCmd.SetVersionTemplate("attache version {{.Version}}\n")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	issue := args[0]

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}
	if settings.BaseURL == "" {
		return errors.New("no Jira base URL configured: set base_url in the config file or JIRA_BASE_URL")
	}

	closeLog, err := setupLogging(settings)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := acquireLock(); err != nil {
		return err
	}
	defer releaseLock()

	folder := downloadFolder(outputDir, settings.DownloadDir, issue)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("create download folder: %w", err)
	}

	client := jira.NewClient(settings.BaseURL, settings.User, settings.Token)

	listCtx, cancel := context.WithTimeout(context.Background(), listTimeout)
	defer cancel()
	listed, err := client.ListAttachments(listCtx, issue)
	if err != nil {
		return err
	}
	if len(listed) == 0 {
		fmt.Printf("Issue %s has no attachments.\n", issue)
		return nil
	}

	items := make([]catalog.Item, 0, len(listed))
	for _, a := range listed {
		items = append(items, catalog.Item{
			Filename: a.Filename,
			Locator:  a.Content,
			Size:     a.Size,
			Created:  a.Created,
			MimeType: a.MimeType,
		})
	}
	cat := catalog.New(items)
	cat.InitFromDir(folder)

	logger := slog.Default()
	ctrl := queue.NewController(cat, func(id uuid.UUID, att catalog.Attachment, tx *download.Sender) {
		ctx := logctx.WithLogger(context.Background(),
			logger.With("transfer", id.String()[:8], "filename", att.Filename))
		go download.Run(ctx, client, att.Locator, filepath.Join(folder, att.Filename), tx)
	})

	slog.Info("starting attachment browser",
		"issue", issue,
		"folder", folder,
		"attachments", cat.Len(),
	)

	program := tea.NewProgram(tui.NewModel(issue, folder, cat, ctrl), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// loadSettings resolves the config file. An explicit --config path must
// exist; the default location is optional.
func loadSettings() (*config.Settings, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			path = ""
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return config.Load(path)
}

// setupLogging sends slog output to a file. The alternate screen owns the
// terminal, so nothing may write to stderr while the UI runs.
func setupLogging(settings *config.Settings) (func(), error) {
	dir := config.GetAttacheDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	logFile, err := os.OpenFile(filepath.Join(dir, "attache.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	handler := slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: settings.SlogLevel(),
	})
	slog.SetDefault(slog.New(handler))

	return func() { _ = logFile.Close() }, nil
}

// downloadFolder picks the directory attachments land in. An explicit
// --output flag is used as-is; the configured directory and the working
// directory both get a per-issue subfolder.
func downloadFolder(flagDir, configuredDir, issue string) string {
	switch {
	case flagDir != "":
		return flagDir
	case configuredDir != "":
		return filepath.Join(configuredDir, issue)
	}
	return issue
}
