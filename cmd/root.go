package cmd

import (
	"fmt"
	"os"

	"github.com/averde/docnet/cmd/send"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "docnet",
		Short: "cluster communication tooling for the distributed document database",
		Long: fmt.Sprintf(`docnet (v%s)

Tooling for the cluster request-dispatch layer of the distributed
document database: send operations to servers, shard leaders and
concrete endpoints, with the same retry semantics the servers use
among themselves.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of docnet",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("docnet v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(send.SendCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
