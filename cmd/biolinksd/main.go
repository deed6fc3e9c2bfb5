package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/biolinks/biolinks/pkg/config"
	"github.com/biolinks/biolinks/pkg/runtime"
	"github.com/biolinks/biolinks/pkg/version"
	"github.com/spf13/cobra"
)

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

var RootCmd = &cobra.Command{
	Use:   "biolinksd",
	Short: "Biolinks data server",
	Run: func(cmd *cobra.Command, args []string) {
		rt := runtime.GetBiolinksRuntime()
		err := rt.BindFlags(cmd.Flags().Lookup("development"), cmd.Flags().Lookup("port"))
		if err != nil {
			log.Fatalln(err)
		}

		err = rt.Run()
		if err != nil {
			log.Fatalln(err)
		}
		defer rt.Shutdown()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGTERM, os.Interrupt)
		<-stop
	},
}

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version())
	},
}

func init() {
	RootCmd.Flags().Bool("development", false, "Reload configuration on change and shorten cache windows")
	RootCmd.Flags().Uint("port", config.DefaultHttpPort, "Port to listen on")
	RootCmd.AddCommand(VersionCmd)
}
