package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/use-agent/spindle/config"
)

var (
	initTemplate string
	initURL      string
	initForce    bool
)

var initCmd = &cobra.Command{
	Use:   "init <tasks.json>",
	Short: "Write a task document template",
	Long: `Init writes a ready-to-edit task document. Templates: basic, links,
images, comprehensive, llm.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !initForce {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}

		doc, err := config.NewTemplate(initTemplate, initURL)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write template: %w", err)
		}
		fmt.Printf("wrote %s template to %s\n", initTemplate, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initTemplate, "template", "t", config.TemplateBasic,
		fmt.Sprintf("Template to generate %v", config.TemplateNames()))
	initCmd.Flags().StringVarP(&initURL, "url", "u", "", "Target URL to seed the template with")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")
}
