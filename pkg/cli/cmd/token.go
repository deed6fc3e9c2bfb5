package cmd

import (
	"fmt"
	"time"

	"github.com/biolinks/biolinks/pkg/session"
	"github.com/spf13/cobra"
)

var (
	tokenNameFlag     string
	tokenEmailFlag    string
	tokenGroupFlag    string
	tokenLandcareFlag string
	tokenTTLFlag      time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Creates a session token signed with the configured secret",
	Example: `
biolinks token --name "Sam" --group admin
biolinks token --name "Robin" --email robin@example.org --landcare-group jallukar --ttl 2h
`,
	Run: func(cmd *cobra.Command, args []string) {
		runtimeConfig, err := loadConfiguration()
		if err != nil {
			cmd.Println(err.Error())
			return
		}

		provider := session.NewProvider(runtimeConfig.Session.Secret)
		token, err := provider.Sign(session.Claims{
			Name:          tokenNameFlag,
			Email:         tokenEmailFlag,
			Group:         tokenGroupFlag,
			LandcareGroup: tokenLandcareFlag,
		}, tokenTTLFlag)
		if err != nil {
			cmd.Printf("failed to create token: %s\n", err.Error())
			return
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenNameFlag, "name", "", "Name of the user")
	tokenCmd.Flags().StringVar(&tokenEmailFlag, "email", "", "Email of the user")
	tokenCmd.Flags().StringVar(&tokenGroupFlag, "group", "", "Group of the user, 'admin' grants admin layers")
	tokenCmd.Flags().StringVar(&tokenLandcareFlag, "landcare-group", "", "Landcare group of the user")
	tokenCmd.Flags().DurationVar(&tokenTTLFlag, "ttl", session.DefaultTokenTTL, "How long the token is valid for")
	_ = tokenCmd.MarkFlagRequired("name")
	RootCmd.AddCommand(tokenCmd)
}
