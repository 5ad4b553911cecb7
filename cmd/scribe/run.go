package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/anirudh-hegde/scribe/config"
	"github.com/anirudh-hegde/scribe/internal/pipeline"
	"github.com/anirudh-hegde/scribe/models"
	"github.com/anirudh-hegde/scribe/provider"
	"github.com/anirudh-hegde/scribe/tools/encyclopedia"
	"github.com/anirudh-hegde/scribe/tools/web_search"
)

// runCMD executes the whole pipeline once from the terminal: research, write,
// optional improve passes, export.
func runCMD() *cobra.Command {
	var (
		cfgPath      string
		language     string
		model        string
		depth        string
		improvements []string
		format       string
		output       string
	)
	var run = &cobra.Command{
		Use:   "run <topic>",
		Short: "Research a topic and write the article in one pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			llm, err := provider.New(cfg.LLM)
			if err != nil {
				return err
			}
			ctx := context.Background()
			if err := llm.Ping(ctx); err != nil {
				return fmt.Errorf("model provider connection test failed: %w", err)
			}

			var searcher web_search.WebSearcher
			if cfg.Search.APIKey != "" {
				searcher, err = web_search.NewWebSearcher(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey)
				if err != nil {
					return err
				}
			}
			var wiki *encyclopedia.Client
			if cfg.Encyclopedia.Enabled {
				wiki = encyclopedia.NewClient(cfg.Encyclopedia.Timeout)
			}

			logger := log.New(os.Stderr, "[PIPELINE] ", log.LstdFlags)
			pipe := pipeline.New(llm, searcher, wiki, cfg.LLM.Model, cfg.Search.MaxResults, logger)

			query := models.ResearchQuery{Topic: args[0], Language: models.Language(language)}
			sess, err := pipe.NewSession(query, model, models.ResearchDepth(depth))
			if err != nil {
				return err
			}
			if err := pipe.Research(ctx, sess); err != nil {
				return err
			}
			if err := pipe.WriteArticle(ctx, sess); err != nil {
				return err
			}
			for _, instruction := range improvements {
				if err := pipe.Improve(ctx, sess, instruction); err != nil {
					return err
				}
			}

			doc, filename, err := pipe.Export(sess, models.ExportFormat(format))
			if err != nil {
				return err
			}
			for _, warning := range sess.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
			}
			if output == "-" {
				fmt.Print(doc)
				return nil
			}
			if output == "" {
				output = filename
			}
			if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s (article v%d)\n", output, sess.Article.Version)
			return nil
		},
	}
	run.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	run.Flags().StringVar(&language, "language", string(models.LanguageEnglish), "article language")
	run.Flags().StringVar(&model, "model", "", "model name (defaults to llm.model from config)")
	run.Flags().StringVar(&depth, "depth", string(models.DepthBasic), "research depth: basic or detailed")
	run.Flags().StringArrayVar(&improvements, "improve", nil, "improvement instruction (repeatable)")
	run.Flags().StringVar(&format, "format", string(models.FormatMarkdown), "export format: text, markdown or html")
	run.Flags().StringVarP(&output, "output", "o", "", "output file (default derived from topic, - for stdout)")
	return run
}
