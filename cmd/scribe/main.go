package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "scribe", Short: "Research a topic and write an article with an LLM"}

	root.AddCommand(serveCMD(), runCMD(), versionCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
