package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/biolinks/biolinks/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var appDirFlag string

var RootCmd = &cobra.Command{
	Use:   "biolinks",
	Short: "Biolinks CLI",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if appDirFlag != "" {
			config.SetAppPath(appDirFlag)
		}
	},
}

// Execute adds all child commands to the root command.
func Execute() {
	cobra.OnInitialize(initConfig)

	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("biolinks")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&appDirFlag, "app-dir", "", "Directory holding the .biolinks configuration, defaults to the working directory")
}
