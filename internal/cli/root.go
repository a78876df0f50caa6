package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/mvp-joe/insert-this/internal/config"
)

var (
	cfgFile string
	verbose bool

	// appConfig is loaded before any subcommand runs.
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "insertthis",
	Short: "Insert references to files into JavaScript and TypeScript sources",
	Long: `insertthis adds a reference to a file (an image, a stylesheet, any asset)
at a position in a JavaScript or TypeScript document. Depending on what
surrounds the position it inserts an import plus the imported name, a JSX
<img> tag, or the relative path.

It runs as a one-shot command (insertthis plan) or as a language server
(insertthis lsp) that editors drive through workspace/executeCommand.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		configureLogging(cfg)
		appConfig = cfg
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .insertthis/config.yml in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads --config when given, otherwise the layered configuration
// for the working directory.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.LoadConfigFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// configureLogging sets up commonlog. Logs always go to a file or stderr,
// never stdout, which carries plan output and the LSP stream.
func configureLogging(cfg *config.Config) {
	verbosity := cfg.Log.Verbosity
	if verbose && verbosity < 2 {
		verbosity = 2
	}

	var path *string
	if cfg.Log.File != "" {
		path = &cfg.Log.File
	}
	commonlog.Configure(verbosity, path)
}
