package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/phishguard/phishing-detector/internal/config"
	"github.com/phishguard/phishing-detector/internal/core"
	"github.com/phishguard/phishing-detector/internal/features"
	"github.com/phishguard/phishing-detector/internal/logging"
	"github.com/phishguard/phishing-detector/internal/mailparse"
	"github.com/phishguard/phishing-detector/internal/pipeline"
	"github.com/phishguard/phishing-detector/internal/utils"
	"github.com/phishguard/phishing-detector/internal/whitelist"
	"go.uber.org/zap"
)

var (
	// Input flags
	inputFile = flag.String("file", "", "Input email file (use stdin if not specified)")
	scanURL   = flag.String("url", "", "Scan a bare URL instead of an email")

	// Model flags
	modelDir = flag.String("model-dir", "", "Directory holding the persisted model artifacts")

	// Detection flags
	whitelistDomains = flag.String("whitelist", "", "Comma-separated list of whitelisted domains")

	// Logging flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := loadConfig(logger)

	// Build the extraction pipeline
	parser := mailparse.NewParser(logger)
	text := utils.NewTextProcessor(logger)
	extractor := features.NewExtractor(parser, text, logger)

	// Parse whitelisted domains
	var whitelistedDomains []string
	if *whitelistDomains != "" {
		whitelistedDomains = strings.Split(*whitelistDomains, ",")
		for i, domain := range whitelistedDomains {
			whitelistedDomains[i] = strings.TrimSpace(domain)
		}
	} else {
		whitelistedDomains = cfg.GetDetector().WhitelistedDomains
	}
	if len(whitelistedDomains) > 0 {
		logger.Info("Using whitelisted domains", zap.Strings("domains", whitelistedDomains))
	}
	whitelistChecker := whitelist.NewChecker(whitelistedDomains, logger)

	// Create the detector service without an alert store; a one-shot scan
	// has nowhere to deliver alerts.
	service := core.NewDetectorService(extractor, nil, whitelistChecker, logger,
		cfg.GetDetector().AlertThreshold)

	// Load model artifacts
	dir := *modelDir
	if dir == "" {
		dir = cfg.GetModel().Dir
	}
	store := pipeline.NewStore(dir, logger)
	bundle, err := store.Load()
	if err != nil {
		logger.Warn("Failed to load model artifacts", zap.Error(err))
	} else {
		service.SetBundle(bundle)
	}

	info := service.ModelInfo()
	if !info.ClassifierLoaded {
		logger.Warn("No trained model available; verdicts will be neutral",
			zap.String("model_dir", dir))
	}

	if *scanURL != "" {
		runURLScan(service, *scanURL, info)
		return
	}
	runEmailScan(logger, service, info)
}

// loadConfig loads configuration from file when requested, defaults otherwise
func loadConfig(logger *zap.Logger) *config.Config {
	if *configFile != "" {
		cfg, err := config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
		return cfg
	}
	return config.NewFromViper(config.NewEmptyViper())
}

func runEmailScan(logger *zap.Logger, service *core.DetectorService, info core.ModelInfo) {
	// Read email from file or stdin
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	raw, err := io.ReadAll(emailReader)
	if err != nil {
		logger.Fatal("Failed to read email", zap.Error(err))
	}

	startTime := time.Now()
	result, err := service.ScoreEmail(context.Background(), string(raw))
	if err != nil {
		logger.Fatal("Failed to scan email", zap.Error(err))
	}
	duration := time.Since(startTime)

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", result.Sender)
	fmt.Printf("Subject: %s\n", result.Subject)
	fmt.Printf("URLs found: %d (%d suspicious)\n", result.URLCount, result.SuspiciousURLs)
	fmt.Printf("Email addresses found: %d\n", result.EmailAddresses)

	printVerdict(result.PredictionResult, info, duration)
}

func runURLScan(service *core.DetectorService, rawURL string, info core.ModelInfo) {
	startTime := time.Now()
	result, err := service.ScoreURL(context.Background(), rawURL)
	if err != nil {
		fmt.Printf("Failed to scan URL: %v\n", err)
		os.Exit(1)
	}
	duration := time.Since(startTime)

	fmt.Printf("\n=== URL Summary ===\n")
	fmt.Printf("URL: %s\n", result.URL)
	fmt.Printf("Domain: %s\n", result.Domain)
	fmt.Printf("Uses HTTPS: %t\n", result.UsesHTTPS)
	fmt.Printf("IP address host: %t\n", result.HasIP)
	fmt.Printf("Suspicious pattern: %t\n", result.SuspiciousPattern)
	fmt.Printf("Suspicious TLD: %t\n", result.SuspiciousTLD)

	printVerdict(result.PredictionResult, info, duration)
}

func printVerdict(p core.PredictionResult, info core.ModelInfo, duration time.Duration) {
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Is phishing: %t\n", p.IsPhishing)
	fmt.Printf("Confidence: %.4f\n", p.Confidence)
	fmt.Printf("Risk level: %s\n", p.RiskLevel)
	fmt.Printf("Model used: %s\n", p.ModelUsed)
	if info.ClassifierLoaded {
		fmt.Printf("Engine: %s (%d trees, %d vocabulary terms)\n",
			info.Engine, info.TreeCount, info.VocabularySize)
	}
	fmt.Printf("Processing time: %v\n", duration)
}
