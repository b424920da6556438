package cmd

import (
	"fmt"

	"rembot/pkg/prompts"

	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Validates the prompt pack and prints a short summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := prompts.LoadConfig()
		if err != nil {
			return err
		}

		pack, err := prompts.Load(cfg.Path)
		if err != nil {
			return err
		}

		fmt.Println(pack.Summary())

		return nil
	},
}

func initPromptsCmd() {
	rootCmd.AddCommand(promptsCmd)
}
