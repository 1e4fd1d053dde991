package cmd

import (
	"github.com/spf13/cobra"
)

var takeCmd = &cobra.Command{
	Use:   "take [exam-id]",
	Short: "Open the terminal exam client",
	Long: "Open the exam lobby in the terminal, or go straight to an exam when an\n" +
		"exam ID is given. The session keeps running if you leave it.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		examID := ""
		if len(args) == 1 {
			examID = args[0]
		}
		return runApp(cmd, examID)
	},
}

func init() {
	takeCmd.Flags().Bool("no-splash", false, "Skip the welcome animation")
	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome animation")
}
