package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/adapters/gateway"
	"github.com/secureguard/phishguard/internal/config"
	"github.com/secureguard/phishguard/internal/core"
	"github.com/secureguard/phishguard/internal/di"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run analyzes a single email read from a file or stdin and prints the verdict
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	cfg *config.Config,
	service *core.AnalysisService,
	classifier core.ContentClassifier,
) error {
	defer logger.Sync()

	// Read email from file or stdin
	var emailReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", flags.InputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	// Parse email
	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	from := msg.Header.Get("From")
	subject := gateway.DecodeSubject(msg.Header.Get("Subject"))

	body, err := gateway.ExtractText(msg)
	if err != nil {
		logger.Fatal("Failed to read email body", zap.Error(err))
	}

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", from)
	fmt.Printf("Subject: %s\n", subject)
	fmt.Printf("Body length: %d bytes\n", len(body))
	fmt.Printf("\n")

	fmt.Printf("=== Analysis ===\n")
	fmt.Printf("Classifier: %s\n", cfg.GetString("classifier.provider"))
	fmt.Printf("Threat intel: %s (fail %s)\n",
		cfg.GetString("intel.provider"),
		cfg.GetString("intel.fail_policy"))

	startTime := time.Now()

	incident, err := service.Analyze(context.Background(), core.AnalysisRequest{
		Sender:  from,
		Subject: subject,
		Body:    body,
	}, "cli")
	if err != nil {
		logger.Fatal("Failed to analyze email", zap.Error(err))
	}
	duration := time.Since(startTime)

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Incident ID: %s\n", incident.ID)
	fmt.Printf("Status: %s\n", incident.Status)
	fmt.Printf("Threat level: %s\n", incident.ThreatLevel)
	fmt.Printf("Confidence score: %.4f\n", incident.ConfidenceScore)
	fmt.Printf("URLs checked: %d\n", len(incident.URLs))
	fmt.Printf("Processing time: %v\n", duration)

	if len(incident.Report.Indicators) > 0 {
		fmt.Printf("\n=== Indicators ===\n")
		for _, indicator := range incident.Report.Indicators {
			fmt.Printf("[%s/%s] %s: %s\n", indicator.Type, indicator.Severity, indicator.Label, indicator.Message)
		}
	}

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}

	return nil
}
