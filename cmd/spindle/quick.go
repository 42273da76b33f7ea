package main

import (
	"github.com/spf13/cobra"

	"github.com/use-agent/spindle/config"
	"github.com/use-agent/spindle/spider"
)

var (
	quickTemplate string
	quickLinks    bool
	quickImages   bool
	quickTables   bool
	quickForms    bool
	quickData     bool
	quickOutput   string
)

var quickCmd = &cobra.Command{
	Use:   "quick <url>",
	Short: "Crawl a single URL with default settings",
	Long: `Quick crawls one URL without a task document. By default it extracts
text and metadata; flags or --template enable more extractors.

Examples:
  spindle quick https://example.com
  spindle quick https://example.com --links --images
  spindle quick https://example.com --template comprehensive`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := config.NewTemplate(quickTemplate, args[0])
		if err != nil {
			return err
		}
		if quickLinks {
			doc.Extraction.ExtractLinks = true
		}
		if quickImages {
			doc.Extraction.ExtractImages = true
		}
		if quickTables {
			doc.Extraction.ExtractTables = true
		}
		if quickForms {
			doc.Extraction.ExtractForms = true
		}
		if quickData {
			doc.Extraction.ExtractStructuredData = true
		}

		sp, err := spider.New(doc.Spider, doc.Extraction, doc.LLM)
		if err != nil {
			return err
		}
		defer sp.Close()

		result, err := sp.Crawl(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeJSON(result, quickOutput)
	},
}

func init() {
	rootCmd.AddCommand(quickCmd)
	quickCmd.Flags().StringVarP(&quickTemplate, "template", "t", config.TemplateBasic, "Extraction template to start from")
	quickCmd.Flags().BoolVar(&quickLinks, "links", false, "Extract links")
	quickCmd.Flags().BoolVar(&quickImages, "images", false, "Extract images")
	quickCmd.Flags().BoolVar(&quickTables, "tables", false, "Extract tables")
	quickCmd.Flags().BoolVar(&quickForms, "forms", false, "Extract forms")
	quickCmd.Flags().BoolVar(&quickData, "structured", false, "Extract structured data")
	quickCmd.Flags().StringVarP(&quickOutput, "output", "o", "", "Write the result to this file instead of stdout")
}
