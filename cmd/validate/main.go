// Validate runs one bulk validation pass, or verifies a single contact, and exits.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	rootCmd := &cobra.Command{
		Use:           "validate",
		Short:         "Send unverified customer contacts to the verification service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("hostname", "", "hostname reported to the verifier (defaults to VALIDATION_HOSTNAME)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(singleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
