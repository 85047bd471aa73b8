package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "Photo studio microservice",
	Long:  "A photo studio microservice for the public gallery, staff album management, and PayPal payment reconciliation.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
