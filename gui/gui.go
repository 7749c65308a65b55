// Package gui implements the desktop window: pick an image, preview it,
// run the OCR+correction pipeline with a progress bar, copy or save the
// results.
package gui

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"image-ocr-llm/clipboard"
	"image-ocr-llm/pipeline"
)

var imageFilter = storage.NewExtensionFileFilter([]string{
	".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff", ".webp",
})

// App holds the window state. One image is processed at a time.
type App struct {
	processor *pipeline.Processor
	corrector pipeline.Corrector

	window fyne.Window

	preview       *canvas.Image
	previewBox    *fyne.Container
	status        *widget.Label
	progress      *widget.ProgressBar
	rawText       *widget.Entry
	correctedText *widget.Entry
	processBtn    *widget.Button
	saveBtn       *widget.Button
	correctCheck  *widget.Check

	currentImage  string
	currentRecord *pipeline.Record
}

// Run opens the GUI and blocks until the window closes.
func Run(processor *pipeline.Processor) {
	if err := clipboard.Init(); err != nil {
		log.Printf("Clipboard unavailable: %v", err)
	}

	a := app.New()
	w := a.NewWindow("Image OCR + LLM Correction")
	w.Resize(fyne.NewSize(1000, 700))

	ui := &App{
		processor: processor,
		corrector: processor.Corrector,
		window:    w,
	}
	w.SetContent(ui.build())
	w.ShowAndRun()
}

func (ui *App) build() fyne.CanvasObject {
	ui.preview = canvas.NewImageFromResource(nil)
	ui.preview.FillMode = canvas.ImageFillContain
	ui.preview.SetMinSize(fyne.NewSize(360, 240))
	ui.previewBox = container.NewStack(ui.preview)

	openBtn := widget.NewButton("Open Image...", ui.openImage)

	ui.correctCheck = widget.NewCheck("LLM correction", nil)
	ui.correctCheck.SetChecked(ui.corrector != nil)
	if ui.corrector == nil {
		ui.correctCheck.Disable()
	}

	ui.processBtn = widget.NewButton("Process", ui.startProcessing)
	ui.processBtn.Disable()

	ui.saveBtn = widget.NewButton("Save Results", ui.saveResults)
	ui.saveBtn.Disable()

	ui.progress = widget.NewProgressBar()
	ui.progress.Hide()
	ui.status = widget.NewLabel("Select an image to begin")

	ui.rawText = widget.NewMultiLineEntry()
	ui.rawText.Wrapping = fyne.TextWrapWord
	ui.correctedText = widget.NewMultiLineEntry()
	ui.correctedText.Wrapping = fyne.TextWrapWord

	copyRaw := widget.NewButton("Copy Raw", func() { ui.copyText(ui.rawText.Text) })
	copyCorrected := widget.NewButton("Copy Corrected", func() { ui.copyText(ui.correctedText.Text) })

	rawPane := container.NewBorder(
		container.NewHBox(widget.NewLabel("Raw OCR text"), copyRaw),
		nil, nil, nil, ui.rawText)
	correctedPane := container.NewBorder(
		container.NewHBox(widget.NewLabel("Corrected text"), copyCorrected),
		nil, nil, nil, ui.correctedText)

	controls := container.NewVBox(
		openBtn,
		ui.previewBox,
		ui.correctCheck,
		ui.processBtn,
		ui.saveBtn,
		ui.progress,
		ui.status,
	)

	results := container.NewHSplit(rawPane, correctedPane)
	results.SetOffset(0.5)

	split := container.NewHSplit(controls, results)
	split.SetOffset(0.3)
	return split
}

func (ui *App) openImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()
		ui.setImage(path)
	}, ui.window)
	fd.SetFilter(imageFilter)
	fd.Show()
}

func (ui *App) setImage(path string) {
	ui.currentImage = path
	ui.currentRecord = nil

	ui.preview = canvas.NewImageFromFile(path)
	ui.preview.FillMode = canvas.ImageFillContain
	ui.preview.SetMinSize(fyne.NewSize(360, 240))
	ui.previewBox.Objects = []fyne.CanvasObject{ui.preview}
	ui.previewBox.Refresh()

	ui.rawText.SetText("")
	ui.correctedText.SetText("")
	ui.saveBtn.Disable()
	ui.processBtn.Enable()
	ui.status.SetText(filepath.Base(path))
}

func (ui *App) startProcessing() {
	if ui.currentImage == "" {
		return
	}

	ui.processBtn.Disable()
	ui.saveBtn.Disable()
	ui.progress.SetValue(0)
	ui.progress.Show()

	// Correction toggle applies per run.
	processor := *ui.processor
	if !ui.correctCheck.Checked {
		processor.Corrector = nil
	}
	processor.Progress = func(stage, filename string) {
		fyne.Do(func() { ui.showStage(stage) })
	}

	path := ui.currentImage
	go func() {
		rec := processor.ProcessImage(context.Background(), path)
		fyne.Do(func() { ui.showResult(rec) })
	}()
}

func (ui *App) showStage(stage string) {
	switch stage {
	case pipeline.StageOCR:
		ui.status.SetText("Running OCR...")
		ui.progress.SetValue(0.2)
	case pipeline.StageCorrection:
		ui.status.SetText("Correcting with LLM...")
		ui.progress.SetValue(0.6)
	case pipeline.StageDone:
		ui.progress.SetValue(1)
	}
}

func (ui *App) showResult(rec *pipeline.Record) {
	ui.currentRecord = rec
	ui.progress.Hide()
	ui.processBtn.Enable()

	if rec.Failed() {
		ui.status.SetText("Processing failed")
		dialog.ShowError(fmt.Errorf("%s", rec.Error), ui.window)
		return
	}

	ui.rawText.SetText(rec.OCR.RawText)
	if rec.Correction != nil {
		ui.correctedText.SetText(rec.Correction.CorrectedText)
	} else {
		ui.correctedText.SetText("")
	}

	ui.status.SetText(fmt.Sprintf("Done: %d words, confidence %.0f%%",
		rec.OCR.WordCount, rec.OCR.Confidence*100))
	ui.saveBtn.Enable()
}

func (ui *App) saveResults() {
	rec := ui.currentRecord
	if rec == nil || rec.Failed() {
		return
	}
	if err := ui.processor.SaveArtifacts(rec); err != nil {
		dialog.ShowError(err, ui.window)
		return
	}
	if ui.processor.History != nil {
		if err := ui.processor.History.Add(rec); err != nil {
			log.Printf("Failed to record history: %v", err)
		}
	}
	ui.status.SetText("Results saved to " + ui.processor.OutputDir)
}

func (ui *App) copyText(text string) {
	if text == "" {
		return
	}
	if err := clipboard.Write(text); err != nil {
		log.Printf("Clipboard write failed: %v", err)
		return
	}
	ui.status.SetText("Copied to clipboard")
}
