package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DreamingVaishu/AgriShield-AI/cmd/calibrate"
	"github.com/DreamingVaishu/AgriShield-AI/cmd/history"
	"github.com/DreamingVaishu/AgriShield-AI/cmd/scan"
	"github.com/DreamingVaishu/AgriShield-AI/cmd/serve"
	"github.com/DreamingVaishu/AgriShield-AI/cmd/sync"
	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "agrishield",
		Short: "AgriShield crop disease scanner CLI",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		rootCmd.PrintErrln(err)
	}

	subcommands := []*cobra.Command{
		scan.Command(settings),
		calibrate.Command(settings),
		history.Command(settings),
		sync.Command(settings),
		serve.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		normalized, err := conf.NormalizeLocale(settings.Main.Locale)
		if err != nil {
			return err
		}
		settings.Main.Locale = normalized
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Main.Locale, "locale", viper.GetString("main.locale"), "Locale for disease names and treatment text. Accepts full name or 2-letter code.")
	rootCmd.PersistentFlags().StringVar(&settings.Classifier.ModelPath, "model", viper.GetString("classifier.modelpath"), "Path to the TFLite model file")
	rootCmd.PersistentFlags().StringVar(&settings.Classifier.CataloguePath, "catalogue", viper.GetString("classifier.cataloguepath"), "Path to a custom disease catalogue YAML file")
	rootCmd.PersistentFlags().Float64Var(&settings.Location.Latitude, "latitude", viper.GetFloat64("location.latitude"), "Device latitude attached to scans")
	rootCmd.PersistentFlags().Float64Var(&settings.Location.Longitude, "longitude", viper.GetFloat64("location.longitude"), "Device longitude attached to scans")
	rootCmd.PersistentFlags().StringVar(&settings.Sync.URL, "sync-url", viper.GetString("sync.url"), "Ingest server URL for scan uploads")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
