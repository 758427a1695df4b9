package cmd

import (
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <folder>",
	Short: "Copy a lesson folder into the library and remember it",
	Long: `Copy a folder of audio files and transcripts into the library, replacing
any earlier copy of the same folder. The folder is remembered, so a later
"goodear lessons" without arguments lists it again.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	addChunkingFlags(importCmd)
	addWorkerFlags(importCmd)
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	pairs, err := newLibrary().Import(args[0])
	if err != nil {
		return err
	}
	return listLessons(cmd, pairs)
}
