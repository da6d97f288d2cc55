package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anoixa/memory-lane/config"
	"github.com/anoixa/memory-lane/utils"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "memory-lane",
	Short: "Backend for a personal timeline of events and photos",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		cfg := config.Get()
		utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	},
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (eg: /etc/memory-lane/config.yaml)")
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file loaded before reading the environment (default: .env)")
	if err := viper.BindPFlag("config_file_path", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return
	}
	if err := viper.BindPFlag("env_file_path", rootCmd.PersistentFlags().Lookup("env-file")); err != nil {
		return
	}
}
