package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gardar/tessera/pkg/tessera"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"

	cfgFile string
	cfg     Config
	logger  zerolog.Logger

	// flag values, applied over cfg when set
	flagLanguages string
	flagDataDir   string
	flagMode      string
	flagPSM       string
	flagWorkers   int
	flagDPI       float64
	flagWhitelist string
	flagBlacklist string
	flagDebug     bool
)

var rootCmd = &cobra.Command{
	Use:   "tessera",
	Short: "Recognize text with Tesseract and build searchable PDFs",
	Long: `tessera runs Tesseract OCR over images and PDFs.

It writes recognized text, bounding-box blocks, hOCR and searchable PDFs
with an invisible text layer over each page image.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the CLI. An interrupt cancels recognition still queued.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default $"+ConfigEnv+")")
	pf.StringVarP(&flagLanguages, "lang", "l", "", `language packs, e.g. "eng+fra"`)
	pf.StringVar(&flagDataDir, "tessdata-dir", "", "trained data directory")
	pf.StringVar(&flagMode, "oem", "", "engine mode: default, tesseract_only, lstm_only, combined")
	pf.StringVar(&flagPSM, "psm", "", "page segmentation mode, e.g. auto, single_line or 7")
	pf.IntVarP(&flagWorkers, "workers", "j", 0, "parallel engine instances")
	pf.Float64Var(&flagDPI, "dpi", 0, "resolution for rasterizing PDF input")
	pf.StringVar(&flagWhitelist, "whitelist", "", "only recognize these characters")
	pf.StringVar(&flagBlacklist, "blacklist", "", "never recognize these characters")
	pf.BoolVar(&flagDebug, "debug", false, "enable debug output")

	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(hocrCmd)
	rootCmd.AddCommand(pdfCmd)
	rootCmd.AddCommand(ocrpdfCmd)
	rootCmd.AddCommand(assembleCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(langsCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration and the logger before any subcommand.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &loaded); err != nil {
		return err
	}
	if err := loaded.validate(); err != nil {
		return err
	}
	cfg = loaded

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	logger.Debug().Str("languages", cfg.Languages).Int("workers", cfg.Workers).Msg("Configuration loaded")
	return nil
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cmd *cobra.Command, c *Config) error {
	flags := cmd.Flags()
	if flags.Changed("lang") {
		c.Languages = flagLanguages
	}
	if flags.Changed("tessdata-dir") {
		c.DataDir = flagDataDir
	}
	if flags.Changed("oem") {
		if err := c.Mode.UnmarshalText([]byte(flagMode)); err != nil {
			return err
		}
	}
	if flags.Changed("psm") {
		if err := c.PageSegMode.UnmarshalText([]byte(flagPSM)); err != nil {
			return err
		}
	}
	if flags.Changed("workers") {
		c.Workers = flagWorkers
	}
	if flags.Changed("dpi") {
		c.DPI = flagDPI
	}
	if flags.Changed("whitelist") {
		c.Whitelist = flagWhitelist
	}
	if flags.Changed("blacklist") {
		c.Blacklist = flagBlacklist
	}
	if flags.Changed("debug") {
		c.Debug = flagDebug
	}
	return nil
}

func sessionOptions() tessera.Options {
	rc := cfg.Recognition()
	pc := cfg.PDF()
	return tessera.Options{
		DataDir: cfg.DataDir,
		Mode:    cfg.Mode,
		Config:  &rc,
		PDF:     &pc,
		Logger:  logger,
	}
}

func openSession() (*tessera.Session, error) {
	return tessera.New(tessera.ParseLanguages(cfg.Languages), sessionOptions())
}

func openPool() (*tessera.Pool, error) {
	return tessera.NewPool(cfg.Workers, tessera.ParseLanguages(cfg.Languages), sessionOptions())
}
