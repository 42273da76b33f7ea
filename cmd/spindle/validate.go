package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/use-agent/spindle/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <tasks.json>",
	Short: "Validate a task document without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := config.LoadTaskDocument(args[0])
		if err != nil {
			return err
		}
		if err := doc.Validate(); err != nil {
			var ve *config.ValidationError
			if errors.As(err, &ve) {
				fmt.Printf("%s is invalid:\n", args[0])
				for _, issue := range ve.Issues {
					fmt.Printf("  - %s\n", issue)
				}
			}
			return err
		}
		fmt.Printf("%s is valid: %d task(s)\n", args[0], len(doc.Tasks))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
