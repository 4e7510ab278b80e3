package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-pipeline/internal/bus"
	"github.com/jonathan/outreach-pipeline/internal/types"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a job.query.received event",
	Long:  "Publish a job search request to NATS for a running worker to pick up. With --trigger an email trigger topic is published instead.",
	RunE:  runPublish,
}

var (
	publishQuery   string
	publishJobID   string
	publishLimit   int
	publishTrigger string
)

func init() {
	publishCmd.Flags().StringVarP(&publishQuery, "query", "q", "", "Free-text job search request")
	publishCmd.Flags().StringVar(&publishJobID, "job-id", "", "Job id (default: a new UUID)")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Result limit (omitted when zero)")
	publishCmd.Flags().StringVar(&publishTrigger, "trigger", "", "Publish an empty event on this email trigger topic instead")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	topic, payload, err := publishPayload()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := bus.Connect(cfg.NATSURL)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Publish(ctx, topic, payload); err != nil {
		return err
	}
	if err := client.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush %s: %w", topic, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Published %s\n", topic)
	return nil
}

// publishPayload validates the flags before any connection is made
func publishPayload() (string, any, error) {
	if publishTrigger != "" {
		switch publishTrigger {
		case types.TopicEmailApprovalRequired, types.TopicEmailScheduleCompleted:
			return publishTrigger, nil, nil
		default:
			return "", nil, fmt.Errorf("unknown trigger topic %q (want %s or %s)",
				publishTrigger, types.TopicEmailApprovalRequired, types.TopicEmailScheduleCompleted)
		}
	}

	payload := types.QueryReceived{Query: publishQuery, JobID: publishJobID}
	if payload.JobID == "" {
		payload.JobID = uuid.NewString()
	}
	if publishLimit != 0 {
		limit := publishLimit
		payload.Limit = &limit
	}
	payload.Normalize()
	if err := payload.Validate(); err != nil {
		return "", nil, fmt.Errorf("invalid %s payload: %w", types.TopicJobQueryReceived, err)
	}
	return types.TopicJobQueryReceived, payload, nil
}
