package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/outreach-pipeline/internal/bus"
	"github.com/jonathan/outreach-pipeline/internal/config"
	"github.com/jonathan/outreach-pipeline/internal/observability"
	"github.com/jonathan/outreach-pipeline/internal/pipeline"
	"github.com/jonathan/outreach-pipeline/internal/rewriting"
	"github.com/spf13/cobra"
)

var generateVariationsCmd = &cobra.Command{
	Use:   "generate-variations",
	Short: "Run one variation generation pass",
	Long:  "Rewrite every scheduled email into three variations and store them. With --body the rewrite runs on the given text only and nothing is stored.",
	RunE:  runGenerateVariations,
}

var (
	variationsEmit           bool
	variationsBody           string
	variationsJobDescription string
)

func init() {
	generateVariationsCmd.Flags().BoolVar(&variationsEmit, "emit", false, "Publish email.variations.generated to NATS")
	generateVariationsCmd.Flags().StringVar(&variationsBody, "body", "", "Rewrite this draft instead of reading scheduled emails")
	generateVariationsCmd.Flags().StringVar(&variationsJobDescription, "job-description", "", "Job description used with --body")

	rootCmd.AddCommand(generateVariationsCmd)
}

func runGenerateVariations(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.APIKey == "" {
		return &config.ConfigurationError{Field: "GEMINI_API_KEY", Message: "is required to generate variations"}
	}
	adapter, closeAdapter, err := newAdapter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAdapter()

	printer := observability.NewPrinter(cmd.OutOrStdout())

	if variationsBody != "" {
		variants, err := rewriting.GenerateVariations(ctx, adapter, variationsJobDescription, variationsBody)
		if err != nil {
			return err
		}
		printer.PrintVariants("draft", variants)
		return nil
	}

	if cfg.DatabaseURL == "" {
		return &config.ConfigurationError{Field: "DATABASE_URL", Message: "is required unless --body is given"}
	}
	database, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	var events bus.Publisher
	if variationsEmit {
		client, err := bus.Connect(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer client.Close()
		events = client
	}

	stage := pipeline.NewVariationStage(database, adapter, events, pipeline.WithReadyStatus(cfg.EmailReadyStatus))
	result := stage.Run(ctx)
	printer.PrintVariationResult(result)

	if !result.Success {
		return errors.New(result.Error)
	}
	if result.Count == 0 {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No emails were rewritten")
	}
	return nil
}
