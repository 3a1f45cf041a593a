package commands

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as the AWS Lambda function handler",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	l, err := newLauncher(ctx, cfg)
	if err != nil {
		return err
	}

	slog.Info("lambda_handler_start", "region", cfg.Region)

	// Does not return; the runtime exits the process on fatal errors.
	lambda.Start(l.Handle)
	return nil
}
