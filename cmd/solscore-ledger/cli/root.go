package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/solscore-labs/solscore-ledger/pkg"
)

const configPathEnv = "SOLSCORE_CONFIG"

var cfgPath string

// Setup builds the command tree and executes the command selected by os.Args.
func Setup() error {
	root, err := newRootCmd()
	if err != nil {
		return err
	}
	return root.Execute()
}

func newRootCmd() (*cobra.Command, error) {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	defaultConfigPath := pkg.Getenv(configPathEnv, filepath.Join(homePath, "config.yml"))

	root := &cobra.Command{
		Use:          "solscore-ledger",
		Short:        "Staking, reward and treasury ledger for SolScore",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath,
		"path to the config file, also read from $"+configPathEnv)
	root.AddCommand(StartServerCmd(), DeriveCmd())

	return root, nil
}

func GetConfigPath() string {
	return cfgPath
}
