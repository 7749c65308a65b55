package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"image-ocr-llm/clipboard"
	"image-ocr-llm/config"
	"image-ocr-llm/history"
	"image-ocr-llm/imaging"
	"image-ocr-llm/llm"
	"image-ocr-llm/logutil"
	"image-ocr-llm/ocr"
	"image-ocr-llm/pipeline"
)

var (
	outputDir     string
	workers       int
	noCorrect     bool
	copyResult    bool
	languagesFlag string
	modelFlag     string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "image-ocr-llm [image-or-directory]",
	Short: "Extract text from images with OCR and correct it with a local LLM",
	Long: `Extract text from images with Tesseract OCR and grammar-correct the
result with a locally hosted LLM server (Ollama).

With no argument, every image in the configured images directory is
processed (batch mode). With a file argument, that single image is
processed and the result printed. With a directory argument, that
directory is processed in batch mode.

Each processed image produces up to three artifacts in the output
directory: <name>_raw.txt, <name>_corrected.txt and <name>_result.json.
Batch runs additionally write a timestamped batch_result JSON summary.

Configuration comes from a .env file next to the executable (or the file
named by IMAGE_OCR_LLM), overridden by environment variables and flags.

Examples:
  image-ocr-llm                          # batch over the images directory
  image-ocr-llm scan.png                 # single image
  image-ocr-llm ./scans --workers 4      # parallel batch
  image-ocr-llm scan.png --no-correct    # OCR only, skip the LLM
  image-ocr-llm scan.png --copy          # copy corrected text to clipboard
  image-ocr-llm gui                      # desktop window
  image-ocr-llm capture --watch          # resident screen-capture mode`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		defer env.close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if len(args) == 1 {
			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("cannot access %s: %w", args[0], err)
			}
			if !info.IsDir() {
				return runSingle(ctx, env, args[0])
			}
			return runBatch(ctx, env, args[0])
		}
		return runBatch(ctx, env, env.cfg.ImagesDir)
	},
}

// runEnv bundles everything a processing command needs.
type runEnv struct {
	cfg       *config.Config
	processor *pipeline.Processor
	store     *history.Store
}

func (e *runEnv) close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

// setup loads configuration, wires logging, the OCR engine, the LLM
// client and the history store. Shared by the root, gui and capture
// commands.
func setup() (*runEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	applyFlagOverrides(cfg)

	logutil.Setup(cfg.EnableFileLogging)
	if verbose {
		log.SetOutput(os.Stderr)
	}

	log.Printf("OCR languages: %v", cfg.Languages)
	log.Printf("LLM model: %s", cfg.Model)
	log.Printf("Ollama host: %s", cfg.OllamaHost)

	env := &runEnv{cfg: cfg}

	var corrector pipeline.Corrector
	if !noCorrect {
		llm.Init(&llm.Config{
			Host:       cfg.OllamaHost,
			Model:      cfg.Model,
			TimeoutSec: cfg.LLMTimeoutSec,
			MaxRetries: cfg.LLMMaxRetries,
		})
		if err := llm.Ping(); err != nil {
			return nil, fmt.Errorf("%w\n\nTroubleshooting:\n"+
				"  1. Install Ollama: https://ollama.ai\n"+
				"  2. Start the server: ollama serve\n"+
				"  3. Pull the model: ollama pull %s\n"+
				"(or run with --no-correct to skip the LLM)", err, cfg.Model)
		}
		log.Printf("Ollama ping succeeded")
		corrector = &pipeline.OllamaCorrector{CorrectFunc: llm.Correct, ModelName: cfg.Model}
	}

	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			log.Printf("History disabled: %v", err)
		} else {
			env.store = store
		}
	}

	env.processor = &pipeline.Processor{
		Engine:            ocr.NewEngine(cfg.Languages, cfg.UseGPU),
		Corrector:         corrector,
		Template:          cfg.PromptTemplate,
		OutputDir:         cfg.OutputDir,
		SaveRawText:       cfg.SaveRawText,
		SaveCorrectedText: cfg.SaveCorrectedText,
		SaveJSONResult:    cfg.SaveJSONResult,
		Workers:           cfg.Workers,
	}
	if env.store != nil {
		env.processor.History = env.store
	}
	return env, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if languagesFlag != "" {
		cfg.Languages = splitLanguages(languagesFlag)
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
}

func splitLanguages(value string) []string {
	var langs []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			langs = append(langs, trimmed)
		}
	}
	return langs
}

func runSingle(ctx context.Context, env *runEnv, path string) error {
	if !imaging.IsImageFile(path) {
		return fmt.Errorf("unsupported image file: %s", path)
	}

	rec := env.processor.ProcessAndSave(ctx, path)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	if rec.Failed() {
		return fmt.Errorf("processing failed: %s", rec.Error)
	}

	if copyResult {
		copyRecord(rec)
	}
	return nil
}

func runBatch(ctx context.Context, env *runEnv, dir string) error {
	result, err := env.processor.ProcessDirectory(ctx, dir)
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		fmt.Printf("No image files found in %s\n", dir)
		return nil
	}

	fmt.Printf("Processed %d images: %d succeeded, %d failed\n",
		len(result.Records), result.Succeeded, result.Failed)
	if result.SummaryPath != "" {
		fmt.Printf("Batch summary: %s\n", result.SummaryPath)
	}
	return nil
}

// copyRecord copies the best available text to the clipboard.
func copyRecord(rec *pipeline.Record) {
	text := ""
	if rec.Correction != nil && rec.Correction.CorrectedText != "" {
		text = rec.Correction.CorrectedText
	} else if rec.OCR != nil {
		text = rec.OCR.RawText
	}
	if text == "" {
		return
	}
	if err := clipboard.Init(); err != nil {
		log.Printf("Clipboard unavailable: %v", err)
		return
	}
	if err := clipboard.Write(text); err != nil {
		log.Printf("Clipboard write failed: %v", err)
		return
	}
	fmt.Println("Copied to clipboard")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "",
		"Output directory for result artifacts (default: OUTPUT_DIR or ./output)")
	rootCmd.Flags().IntVar(&workers, "workers", 0,
		"Number of parallel OCR workers for batch mode (default: WORKERS or 1)")
	rootCmd.PersistentFlags().BoolVar(&noCorrect, "no-correct", false,
		"Skip LLM correction, OCR only")
	rootCmd.Flags().BoolVar(&copyResult, "copy", false,
		"Copy the corrected text to the clipboard (single-file mode)")
	rootCmd.PersistentFlags().StringVar(&languagesFlag, "langs", "",
		"Comma-separated Tesseract language codes (default: OCR_LANGUAGES or kor,eng)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "",
		"Ollama model name (default: OLLAMA_MODEL or mistral)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log progress to stderr")
}
