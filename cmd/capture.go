package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"image-ocr-llm/hotkey"
	"image-ocr-llm/screen"
	"image-ocr-llm/tray"
)

var watchMode bool

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture the screen and run it through the pipeline",
	Long: `Capture the full screen, OCR it, correct the text and copy the result
to the clipboard. The capture is saved to the images directory and
produces the same artifacts as a file run.

With --watch the tool stays resident with a tray icon; the configured
hotkey (HOTKEY, default ctrl+alt+s) or the tray menu triggers a capture.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		defer env.close()

		if watchMode {
			return runWatch(env)
		}
		return captureOnce(context.Background(), env, true)
	},
}

func captureOnce(ctx context.Context, env *runEnv, printRecord bool) error {
	path, err := screen.CaptureToFile(env.cfg.ImagesDir)
	if err != nil {
		return err
	}
	log.Printf("Screen captured: %s", path)

	rec := env.processor.ProcessAndSave(ctx, path)
	if rec.Failed() {
		return fmt.Errorf("processing failed: %s", rec.Error)
	}

	copyRecord(rec)

	if printRecord {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}
	return nil
}

// runWatch keeps the tool resident: tray menu plus global hotkey, each
// capture runs the full pipeline and lands in the clipboard.
func runWatch(env *runEnv) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	doCapture := func() {
		if err := captureOnce(ctx, env, false); err != nil {
			log.Printf("Capture failed: %v", err)
		}
	}

	go func() {
		if err := hotkey.Listen(env.cfg.Hotkey, doCapture); err != nil {
			log.Printf("Hotkey unavailable: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		hotkey.Stop()
		tray.Quit()
	}()

	fmt.Printf("Watching: press %s or use the tray menu to capture (Ctrl+C to quit)\n", env.cfg.Hotkey)

	// Blocks until Quit; must stay on the main goroutine.
	tray.Run(tray.Config{
		Title:     "Image OCR",
		Tooltip:   fmt.Sprintf("Image OCR - press %s to capture", env.cfg.Hotkey),
		OnCapture: doCapture,
		OnExit:    func() { hotkey.Stop() },
	})
	return nil
}

func init() {
	captureCmd.Flags().BoolVar(&watchMode, "watch", false,
		"Stay resident with a tray icon and global hotkey")
	rootCmd.AddCommand(captureCmd)
}
