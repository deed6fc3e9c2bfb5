package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/biolinks/biolinks/pkg/auth"
	"github.com/biolinks/biolinks/pkg/session"
	"github.com/spf13/cobra"
)

var (
	layerFlags         []string
	fetchNameFlag      string
	fetchGroupFlag     string
	fetchLandcareFlag  string
	fetchAnonymousFlag bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches layer data in-process and prints the response",
	Example: `
biolinks fetch --layer birdData
biolinks fetch --layer squirrelGliders --layer transects --group admin
biolinks fetch --layer weedSurveys --landcare-group jallukar
`,
	Run: func(cmd *cobra.Command, args []string) {
		env, err := loadEnvironment()
		if err != nil {
			cmd.Println(err.Error())
			return
		}
		defer env.Close()

		caller := &auth.CallerContext{}
		if !fetchAnonymousFlag {
			claims := session.Claims{
				Name:          fetchNameFlag,
				Group:         fetchGroupFlag,
				LandcareGroup: fetchLandcareFlag,
			}
			caller = claims.CallerContext()
		}

		ctx := context.Background()
		requestTimeout, err := env.Config.RequestTimeout()
		if err != nil {
			cmd.Println(err.Error())
			return
		}
		if requestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, requestTimeout)
			defer cancel()
		}

		response, err := env.Orchestrator.Fetch(ctx, caller, layerFlags)
		if err != nil {
			cmd.Printf("failed to fetch layers: %s\n", err.Error())
			return
		}

		output, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			cmd.Printf("failed to encode response: %s\n", err.Error())
			return
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(output))
	},
}

func init() {
	fetchCmd.Flags().StringArrayVar(&layerFlags, "layer", nil, "Layer id to fetch, may be repeated")
	fetchCmd.Flags().StringVar(&fetchNameFlag, "name", "biolinks-cli", "Name of the caller")
	fetchCmd.Flags().StringVar(&fetchGroupFlag, "group", "", "Group of the caller, 'admin' for admin layers")
	fetchCmd.Flags().StringVar(&fetchLandcareFlag, "landcare-group", "", "Landcare group of the caller")
	fetchCmd.Flags().BoolVar(&fetchAnonymousFlag, "anonymous", false, "Fetch as a caller without a user")
	RootCmd.AddCommand(fetchCmd)
}
