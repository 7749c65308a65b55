package cmd

import (
	"github.com/spf13/cobra"

	"image-ocr-llm/gui"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the desktop window",
	Long: `Open the desktop window: pick an image, preview it, run OCR and LLM
correction with a progress bar, then copy or save the results.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		defer env.close()

		gui.Run(env.processor)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}
