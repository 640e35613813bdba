// Command render turns a resume file into HTML, PNG or PDF with any catalog
// template, without running the server.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "render",
	Short:        "Render resumes with the built-in templates",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newRenderCmd(), newTemplatesCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
