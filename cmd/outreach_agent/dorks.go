package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/outreach-pipeline/internal/parsing"
	"github.com/spf13/cobra"
)

var dorksCmd = &cobra.Command{
	Use:   "dorks",
	Short: "Print the search terms for a role and location",
	Long:  "Print the deterministic search terms the query stage would store for a role, location and limit.",
	RunE:  runDorks,
}

var (
	dorksRole     string
	dorksLocation string
	dorksLimit    int
)

func init() {
	dorksCmd.Flags().StringVar(&dorksRole, "role", "", "Job role (required)")
	dorksCmd.Flags().StringVar(&dorksLocation, "location", "remote", "Job location")
	dorksCmd.Flags().IntVar(&dorksLimit, "limit", parsing.DefaultDorkCount, "Maximum number of search terms")

	rootCmd.AddCommand(dorksCmd)
}

func runDorks(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(dorksRole) == "" {
		return errors.New("--role is required")
	}

	for _, d := range parsing.GenerateDorks(dorksRole, dorksLocation, dorksLimit) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), d)
	}
	return nil
}
