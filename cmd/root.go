package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "auth",
	Short: "PetMatch authentication service",
	Long:  `Authentication and session-lifecycle service for PetMatch: owner and clinic registration, login, token verification, revocation, and password recovery.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
