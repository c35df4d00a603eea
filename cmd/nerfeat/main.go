// Command nerfeat builds a named-entity feature-extraction model from a
// training configuration file and serves an introspection API over it.
//
// Usage:
//
//	# Build from features.conf, write model.bin, serve introspection
//	./nerfeat
//
//	# Custom paths and port
//	TRAINING_CONFIG_FILE=my.conf MODEL_FILE=out.bin INTROSPECT_PORT=9090 ./nerfeat
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nerfeatures/internal/buildconfig"
	"nerfeatures/internal/features"
	"nerfeatures/internal/introspect"
	"nerfeatures/internal/logger"
	"nerfeatures/internal/metrics"
	"nerfeatures/internal/sentence"
)

func main() {
	cfg := buildconfig.Load()
	printBanner(cfg)
	log := logger.New("BUILD", cfg.LogLevel)

	m := metrics.New()

	cache, err := openBuildCache(cfg)
	if err != nil {
		log.Fatalf("open_cache", "could not open build cache: %v", err)
	}
	defer func() {
		if cache != nil {
			cache.Close() //nolint:errcheck // best-effort close on shutdown
		}
	}()

	model := features.NewModel()
	model.Cache = cache
	model.Metrics = m

	lines, err := readLines(cfg.TrainingConfigFile)
	if err != nil {
		log.Fatalf("read_config", "could not read %s: %v", cfg.TrainingConfigFile, err)
	}

	start := time.Now()
	if err := model.ParseConfig(lines); err != nil {
		m.ParseErrors.Add(1)
		log.Fatalf("parse_config", "%v", err)
	}
	m.RecordBuildLatency(time.Since(start))
	m.ProcessorsParsed.Store(int64(len(model.Processors)))
	log.Infof("parse_config", "parsed %d processors, %d total features, %d entity types in %s",
		len(model.Processors), model.TotalFeatures, len(model.EntityTypes.Names())-1, time.Since(start))

	if err := saveModel(model, cfg.ModelFile); err != nil {
		log.Fatalf("save_model", "could not write %s: %v", cfg.ModelFile, err)
	}
	log.Infof("save_model", "wrote model to %s", cfg.ModelFile)

	// Demonstrate the full train -> save -> load -> apply lifecycle: reload
	// the model we just wrote back from disk and run a sample sentence
	// through it, exactly as a downstream inference process would.
	demoModel, err := loadModel(cfg.ModelFile)
	if err != nil {
		log.Fatalf("load_model", "could not reload %s: %v", cfg.ModelFile, err)
	}
	demoModel.Metrics = m
	log.Infof("load_model", "reloaded model from %s", cfg.ModelFile)
	runDemoSentence(demoModel, log)

	srv := introspect.New(model, m, cfg.BindAddress, cfg.IntrospectPort, "")
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Fatalf("introspect_serve", "%v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown", "shutting down")
}

func openBuildCache(cfg *buildconfig.Config) (features.Cache, error) {
	if cfg.BuildCacheFile == "" {
		return features.NewMemoryCache(), nil
	}
	return features.NewBboltCache(cfg.BuildCacheFile)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // G703: path is a controlled config file path, not user input
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func loadModel(path string) (*features.Model, error) {
	f, err := os.Open(path) //nolint:gosec // G703: path is a controlled config file path, not user input
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return features.LoadModel(f)
}

// runDemoSentence pushes one hand-built sentence through the reloaded
// model, exercising ProcessSentence and ProcessEntities the way a caller
// in the inference path would, and logs the result.
func runDemoSentence(model *features.Model, log *logger.Logger) {
	words := []sentence.Word{
		{Form: "Barack", RawLemma: "barack", LemmaID: "barack", Tag: "NNP"},
		{Form: "Obama", RawLemma: "obama", LemmaID: "obama", Tag: "NNP"},
		{Form: "visited", RawLemma: "visit", LemmaID: "visit", Tag: "VBD"},
		{Form: "Prague", RawLemma: "prague", LemmaID: "prague", Tag: "NNP"},
		{Form: ".", RawLemma: ".", LemmaID: ".", Tag: "."},
	}
	sent := sentence.New(words)

	var scratch []byte
	model.ProcessSentence(sent, &scratch)

	entities := []sentence.NamedEntity{
		{Start: 0, Length: 2, Type: "PERSON"},
		{Start: 3, Length: 1, Type: "LOCATION"},
	}
	var buffer []byte
	model.ProcessEntities(sent, &entities, &buffer)

	var totalFeatures int
	for _, f := range sent.Features {
		totalFeatures += len(f)
	}
	log.Infof("demo_apply", "processed %d-token sample sentence: %d features emitted, %d entities after post-processing",
		len(words), totalFeatures, len(entities))
}

func saveModel(model *features.Model, path string) error {
	f, err := os.Create(path) //nolint:gosec // G703: path is a controlled config file path, not user input
	if err != nil {
		return err
	}
	defer f.Close()

	if err := features.SaveModel(model, f); err != nil {
		return err
	}
	return f.Sync()
}

func printBanner(cfg *buildconfig.Config) {
	fmt.Printf("nerfeat — named-entity feature extraction\n")
	fmt.Printf("  training config : %s\n", cfg.TrainingConfigFile)
	fmt.Printf("  model output    : %s\n", cfg.ModelFile)
	fmt.Printf("  introspect addr : %s:%d\n", cfg.BindAddress, cfg.IntrospectPort)
}
