package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/phishguard/phishing-detector/internal/classifier"
	"github.com/phishguard/phishing-detector/internal/config"
	"github.com/phishguard/phishing-detector/internal/features"
	"github.com/phishguard/phishing-detector/internal/logging"
	"github.com/phishguard/phishing-detector/internal/mailparse"
	"github.com/phishguard/phishing-detector/internal/pipeline"
	"github.com/phishguard/phishing-detector/internal/textproc"
	"github.com/phishguard/phishing-detector/internal/training"
	"github.com/phishguard/phishing-detector/internal/utils"
	"go.uber.org/zap"
)

var (
	// Corpus flags
	dataFile = flag.String("data", "", "Training corpus in JSON lines format (built-in seed corpus if not specified)")

	// Model flags
	modelDir   = flag.String("model-dir", "", "Directory to persist the trained model artifacts")
	engineName = flag.String("engine", "", "Boosting engine (hist, exact)")

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

	// Load the training corpus
	var samples []training.Sample
	if *dataFile != "" {
		samples, err = training.LoadJSONL(*dataFile)
		if err != nil {
			logger.Fatal("Failed to load training corpus", zap.Error(err), zap.String("file", *dataFile))
		}
		logger.Info("Loaded training corpus", zap.String("file", *dataFile), zap.Int("samples", len(samples)))
	} else {
		samples = training.SeedCorpus()
		logger.Info("Using built-in seed corpus", zap.Int("samples", len(samples)))
	}

	// Build the extraction pipeline
	parser := mailparse.NewParser(logger)
	text := utils.NewTextProcessor(logger)
	extractor := features.NewExtractor(parser, text, logger)

	// Select the boosting engine
	name := *engineName
	if name == "" {
		name = cfg.GetClassifier().Engine
	}
	params := classifier.DefaultParams()
	var engine classifier.Engine
	switch name {
	case "hist":
		engine = classifier.NewHistEngine(params, logger)
	case "exact":
		engine = classifier.NewExactEngine(params, logger)
	default:
		logger.Fatal("Unsupported classifier engine", zap.String("engine", name))
	}

	// Train the full pipeline
	trainer := training.NewTrainer(extractor, engine, textproc.DefaultOptions(), logger)
	bundle, eval, err := trainer.Train(samples)
	if err != nil {
		logger.Fatal("Training failed", zap.Error(err))
	}

	// Persist the model triple
	dir := *modelDir
	if dir == "" {
		dir = cfg.GetModel().Dir
	}
	store := pipeline.NewStore(dir, logger)
	if err := store.Save(bundle); err != nil {
		logger.Fatal("Failed to persist model artifacts", zap.Error(err))
	}
	logger.Info("Model artifacts persisted", zap.String("dir", dir))

	// Print evaluation
	fmt.Printf("\n=== Training ===\n")
	fmt.Printf("Engine: %s\n", bundle.Ensemble.Engine)
	fmt.Printf("Trees: %d\n", len(bundle.Ensemble.Trees))
	fmt.Printf("Vocabulary terms: %d\n", bundle.Vectorizer.Size())
	fmt.Printf("Train samples: %d\n", eval.TrainSize)
	fmt.Printf("Test samples: %d\n", eval.TestSize)

	fmt.Printf("\n=== Hold-out Evaluation ===\n")
	fmt.Printf("Confusion matrix: TP=%d FP=%d TN=%d FN=%d\n",
		eval.TruePositives, eval.FalsePositives, eval.TrueNegatives, eval.FalseNegatives)
	fmt.Printf("Precision: %.4f\n", eval.Precision)
	fmt.Printf("Recall: %.4f\n", eval.Recall)
	fmt.Printf("F1: %.4f\n", eval.F1)
	fmt.Printf("ROC-AUC: %.4f\n", eval.ROCAUC)
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
