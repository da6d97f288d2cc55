package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anoixa/memory-lane/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// 不需要加载配置
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "memory-lane %s\n", config.VersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
