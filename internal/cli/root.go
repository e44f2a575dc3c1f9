package cli

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/osrs-kit/spritefetch/internal/app"
	"github.com/osrs-kit/spritefetch/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "spritefetch",
	Short:   "Download item sprites from the OSRS wiki",
	Long:    `Spritefetch resolves item names against the Old School RuneScape wiki, downloads their icon sprites, and can produce bank-slot variants with the stack number cropped out.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd)

	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetApp() != nil {
			return nil
		}

		cfg, err := config.Load(rootCmd)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load configuration, using defaults")
			cfg, err = config.Load(nil)
			if err != nil {
				return err
			}
		}

		appCtx, err := app.New(cfg)
		if err != nil {
			return err
		}
		SetApp(appCtx)
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if appCtx := GetApp(); appCtx != nil {
			_ = appCtx.Close()
			SetApp(nil)
		}
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
