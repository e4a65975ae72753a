package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/folio-cli/internal/config"
	"github.com/HaiFongPan/folio-cli/internal/foliator"
	"github.com/HaiFongPan/folio-cli/internal/form"
	"github.com/HaiFongPan/folio-cli/internal/intake"
	"github.com/HaiFongPan/folio-cli/internal/preview"
	"github.com/HaiFongPan/folio-cli/internal/r2"
	"github.com/HaiFongPan/folio-cli/internal/session"
	"github.com/HaiFongPan/folio-cli/internal/tui"
	tuiconfig "github.com/HaiFongPan/folio-cli/internal/tui/config"
	img "github.com/HaiFongPan/folio-cli/internal/tui/image"
	"github.com/HaiFongPan/folio-cli/internal/upload"
	"github.com/HaiFongPan/folio-cli/internal/utils"
)

const logDir = "/tmp/folio-cli"

var (
	cfgFile      string
	verbose      bool
	quiet        bool
	serverURL    string
	globalConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "folio-cli",
	Short: "Number the pages of a PDF with a remote foliation service",
	Long: `folio-cli sends PDF documents to a foliation service that stamps a folio
number on every page, previews the first numbered page and saves the result.

Example usage:
  folio-cli                                 # Interactive mode
  folio-cli submit acta.pdf --start-number 7
  folio-cli preview acta.pdf -o first.png
  folio-cli archive --url`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", fmt.Sprintf("config file (default is %s)", config.GetDefaultConfigPath()))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "foliation service URL (overrides config)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error
	globalConfig, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if serverURL != "" {
		globalConfig.Service.BaseURL = serverURL
		if err := config.Validate(globalConfig); err != nil {
			return fmt.Errorf("invalid --server: %w", err)
		}
	}

	setupLogging()
	return nil
}

// setupLogging configures the global logger based on config and flags
func setupLogging() {
	level := globalConfig.Log.Level
	if verbose {
		level = "debug"
	} else if quiet {
		level = "error"
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Invalid log level %s, using info", level)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	// Redirect all logs to file to prevent UI interference
	if err := os.MkdirAll(logDir, 0755); err != nil {
		logrus.Warnf("Failed to create log directory %s: %v", logDir, err)
	} else {
		logFile := filepath.Join(logDir, "app.log")
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logrus.Warnf("Failed to open log file %s: %v", logFile, err)
		} else {
			logrus.SetOutput(file)
		}
	}

	if globalConfig.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: quiet,
			FullTimestamp:    verbose,
		})
	}
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return globalConfig
}

// newPolicy builds the size policy from the limits section
func newPolicy(cfg *config.Config) intake.Policy {
	return intake.Policy{HardLimit: cfg.Limits.HardLimitBytes, SoftLimit: cfg.Limits.SoftLimitBytes}
}

// newSink returns where processed documents are saved, archiving to R2 when enabled
func newSink(cfg *config.Config) (upload.Sink, error) {
	dir := cfg.Output.Dir
	if dir == "" {
		dir = config.DefaultOutputDir()
	}
	local := utils.NewResultSaver(dir)
	if !cfg.Output.Archive {
		return local, nil
	}

	client, err := r2.NewClient(&cfg.R2)
	if err != nil {
		return nil, fmt.Errorf("failed to create R2 client: %w", err)
	}
	archiver := r2.NewArchiver(client.GetS3Client(), client.GetBucketName(), cfg.Output.ArchivePrefix)
	return r2.NewArchiveSink(local, archiver), nil
}

// runInteractive runs the foliation TUI
func runInteractive() error {
	cfg := globalConfig

	client, err := foliator.NewClient(&cfg.Service)
	if err != nil {
		return fmt.Errorf("failed to create foliation client: %w", err)
	}

	sink, err := newSink(cfg)
	if err != nil {
		return err
	}

	store, err := preview.NewStore("")
	if err != nil {
		return fmt.Errorf("failed to create preview store: %w", err)
	}
	defer store.Close()

	renderer := img.NewRenderer(cfg.UI.ImagePreviewMethod)
	userData := config.LoadUserData()

	// previews are decoded at the pixel size of the largest area they are drawn in
	scale := tuiconfig.PreviewPixelScale
	model := tui.NewModel(tui.Options{
		Config: cfg,
		Deps: session.Deps{
			Policy:        newPolicy(cfg),
			Form:          form.New(cfg.Form.Values()),
			Fetcher:       client,
			Submitter:     client,
			Sink:          sink,
			Store:         store,
			CountPages:    intake.CountPages,
			Debounce:      cfg.Limits.Debounce(),
			AdoptDelay:    cfg.Limits.AdoptDelay(),
			PreviewWidth:  cfg.UI.PreviewWidth * img.CellPixelWidth * scale,
			PreviewHeight: cfg.UI.PreviewHeight * img.CellPixelHeight * scale,
			ResultPrefix:  cfg.Output.Prefix,
		},
		Renderer: renderer,
		StartDir: userData.StartDirectory(),
	})
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())

	// Set program reference in model for direct messaging
	model.SetProgram(program)

	_, err = program.Run()

	if saveErr := userData.SetLastDirectory(model.LastDirectory()); saveErr != nil {
		logrus.WithError(saveErr).Warn("Failed to save user data")
	}
	return err
}
