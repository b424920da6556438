package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rembot",
	Short: "Rembot turns plain Russian messages into Telegram reminders",
}

func Execute() error {
	initVersionCmd()
	initTelegramCmd()
	initMigrateCmd()
	initPromptsCmd()

	return rootCmd.Execute()
}
