package cmd

import (
	"fmt"
	"os"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/config"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dshpipe",
	Short: "Compile and check data pipeline topologies",
	Long: `dshpipe compiles declarative pipeline files into a validated graph of resources,
processors and the connections between them. Every reference is resolved against a
catalog of processor and resource realizations, and wiring that does not fit is
rejected before anything is deployed.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/dshpipe/dshpipe.yaml)")
	flags.String("catalog", "", "directory of realization files (default: read the catalog from the store)")
	flags.String("store", "", "path of the catalog and record store")
	flags.String("tenant", "", "tenant the pipeline is compiled for")
	flags.String("platform", "", "platform of the tenant")
	flags.String("realm", "", "realm of the platform")
	flags.StringP("output", "o", config.OutputText, "output format (text|yaml|json)")
	flags.String("log-level", "warn", "log level (debug|info|warn|error)")

	// Bind flags to viper
	viper.BindPFlag(config.KeyCatalog, flags.Lookup("catalog"))
	viper.BindPFlag(config.KeyStore, flags.Lookup("store"))
	viper.BindPFlag(config.KeyTenantName, flags.Lookup("tenant"))
	viper.BindPFlag(config.KeyTenantPlatform, flags.Lookup("platform"))
	viper.BindPFlag(config.KeyTenantRealm, flags.Lookup("realm"))
	viper.BindPFlag(config.KeyOutput, flags.Lookup("output"))
	viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	rootCmd.AddCommand(newPipelineCommand())
	rootCmd.AddCommand(newCatalogCommand())
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig(cmd *cobra.Command, args []string) error {
	// Logging first so config file discovery can be traced
	if err := logger.Init(viper.GetString(config.KeyLogLevel)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := config.Configure(viper.GetViper(), cfgFile); err != nil {
		return err
	}

	// The config file or environment may change the level
	if err := logger.Init(viper.GetString(config.KeyLogLevel)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}
