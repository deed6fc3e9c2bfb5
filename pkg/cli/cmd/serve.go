package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/biolinks/biolinks/pkg/config"
	"github.com/biolinks/biolinks/pkg/runtime"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the Biolinks data server",
	Example: `
biolinks serve
biolinks serve --development --port 8080
`,
	Run: func(cmd *cobra.Command, args []string) {
		rt := runtime.GetBiolinksRuntime()
		err := rt.BindFlags(cmd.Flags().Lookup("development"), cmd.Flags().Lookup("port"))
		if err != nil {
			cmd.Println(err.Error())
			return
		}

		err = rt.Run()
		if err != nil {
			cmd.Println(err.Error())
			return
		}
		defer rt.Shutdown()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGTERM, os.Interrupt)
		<-stop
	},
}

func init() {
	serveCmd.Flags().Bool("development", false, "Reload configuration on change and shorten cache windows")
	serveCmd.Flags().Uint("port", config.DefaultHttpPort, "Port to listen on")
	RootCmd.AddCommand(serveCmd)
}
