package cmd

import (
	"strings"

	"github.com/biolinks/biolinks/pkg/layers"
	"github.com/biolinks/biolinks/pkg/util"
	"github.com/spf13/cobra"
)

var pageFlag string

type layerRow struct {
	ID         string `csv:"id"`
	Name       string `csv:"name"`
	Visible    bool   `csv:"visible"`
	DataSource bool   `csv:"data_source"`
	Auth       string `csv:"auth"`
}

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "Lists the layers of a page",
	Example: `
biolinks layers
biolinks layers --page heritage
`,
	Run: func(cmd *cobra.Command, args []string) {
		env, err := loadEnvironment()
		if err != nil {
			cmd.Println(err.Error())
			return
		}
		defer env.Close()

		if !env.Layers.HasPage(pageFlag) {
			pageIds := make([]string, 0)
			for _, page := range env.Layers.Pages() {
				pageIds = append(pageIds, page.ID)
			}
			cmd.Printf("page '%s' not found, available pages: %s\n", pageFlag, strings.Join(pageIds, ", "))
			return
		}

		rows := make([]*layerRow, 0)
		for _, info := range env.Layers.Describe(pageFlag) {
			rows = append(rows, &layerRow{
				ID:         info.ID,
				Name:       info.Name,
				Visible:    info.DefaultVisible,
				DataSource: info.HasDataSource,
				Auth:       string(info.RequiresAuth),
			})
		}

		err = util.MarshalAndPrintTable(cmd.OutOrStdout(), rows)
		if err != nil {
			cmd.Printf("failed to print layers: %s\n", err.Error())
		}
	},
}

func init() {
	layersCmd.Flags().StringVar(&pageFlag, "page", layers.DefaultPageID, "Page to list layers for")
	RootCmd.AddCommand(layersCmd)
}
