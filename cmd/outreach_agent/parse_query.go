package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-pipeline/internal/bus"
	"github.com/jonathan/outreach-pipeline/internal/observability"
	"github.com/jonathan/outreach-pipeline/internal/pipeline"
	"github.com/jonathan/outreach-pipeline/internal/types"
	"github.com/spf13/cobra"
)

var parseQueryCmd = &cobra.Command{
	Use:   "parse-query",
	Short: "Run the query parsing stage once",
	Long:  "Parse a free-text job search request into a role, location and search terms. Without GEMINI_API_KEY the fallback heuristic is used; with DATABASE_URL the job row is updated.",
	RunE:  runParseQuery,
}

var (
	parseQueryText  string
	parseQueryJobID string
	parseQueryLimit int
	parseQueryEmit  bool
	parseQueryJSON  bool
)

func init() {
	parseQueryCmd.Flags().StringVarP(&parseQueryText, "query", "q", "", "Free-text job search request (required)")
	parseQueryCmd.Flags().StringVar(&parseQueryJobID, "job-id", "", "Job id to update (default: a new UUID)")
	parseQueryCmd.Flags().IntVar(&parseQueryLimit, "limit", types.DefaultQueryLimit, "Result limit for the request")
	parseQueryCmd.Flags().BoolVar(&parseQueryEmit, "emit", false, "Publish job.query.processed to NATS")
	parseQueryCmd.Flags().BoolVar(&parseQueryJSON, "json", false, "Print the JobQuery as JSON")

	rootCmd.AddCommand(parseQueryCmd)
}

func runParseQuery(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	jobID := parseQueryJobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	limit := parseQueryLimit

	var store pipeline.JobStore
	database, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
		store = database
	}

	adapter, closeAdapter, err := newAdapter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAdapter()

	var events bus.Publisher
	if parseQueryEmit {
		client, err := bus.Connect(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer client.Close()
		events = client
	}

	stage := pipeline.NewQueryStage(store, adapter, events, pipeline.WithSmartDorks(cfg.SmartDorks))
	query, err := stage.Run(ctx, types.QueryReceived{Query: parseQueryText, JobID: jobID, Limit: &limit})
	if err != nil {
		return err
	}

	if parseQueryJSON {
		out, err := json.MarshalIndent(query, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintJobQuery(query)
	return nil
}
