package main

import (
	"fmt"
	"os"

	"github.com/finternet/finternet-backend/utils"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "finternet-cli",
		Short:         "Developer tooling for the finternet ledger and payment services",
		Version:       utils.REVISION,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("env", utils.EnvPath, "Directory holding the .env file")

	root.AddCommand(tokenCmd())
	root.AddCommand(ratesCmd())
	root.AddCommand(whoamiCmd())

	return root
}

// loadConfig reads the same configuration the services use. The port is
// irrelevant for the CLI.
func loadConfig(cmd *cobra.Command) (*utils.Config, error) {
	envPath, _ := cmd.Flags().GetString("env")
	return utils.LoadConfig(envPath, 1)
}
