package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"cmegrid/internal/config"
	"cmegrid/internal/container"
	"cmegrid/internal/report"
)

func main() {
	// Load environment variables from .env file
	config.LoadDotEnv(log.Default())

	appConfig, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := appConfig.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), appConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, appConfig *config.Config) error {
	appContainer, err := container.New(ctx, appConfig)
	if err != nil {
		return err
	}
	defer appContainer.Shutdown(ctx)

	result, err := appContainer.Service.Run(ctx, appContainer.RunRequest())
	if err != nil {
		return err
	}

	return report.Write(os.Stdout, report.Summary{
		RunID:       result.RunID.String(),
		Source:      result.Dataset.Source,
		Records:     result.Dataset.Len(),
		Classified:  result.Results.Total(),
		Fingerprint: result.Fingerprint.Short(),
		Pivot:       result.Pivot,
		Profiles:    result.Profiles,
		Artifacts:   result.Artifacts,
		RuntimeMs:   result.RuntimeMs,
	})
}
