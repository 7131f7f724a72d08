package cmd

import (
	"datasources-client/cmd/datasources-cli/utils"
	"datasources-client/internal/locations"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "The 'location' subcommand reads locations and their data requests.",
}

func init() {
	rootCmd.AddCommand(locationCmd)
	locationCmd.AddCommand(locationGetCmd, locationDataRequestsCmd)
}

var locationGetCmd = &cobra.Command{
	Use:   "get <location id>",
	Short: "Show a location.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := current(cmd).Locations.GetLocation(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		location, err := locations.DecodeLocation(res)
		if err != nil {
			utils.PrintResponse(os.Stdout, res)
			return nil
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"ID", "Name", "Type", "State", "County", "Locality"})
		t.AppendRow(table.Row{
			location.ID,
			location.Name(),
			location.Type,
			location.StateName,
			location.CountyName,
			location.LocalityName,
		})
		t.Render()
		return nil
	},
}

var locationDataRequestsCmd = &cobra.Command{
	Use:   "data-requests <location id>",
	Short: "List the data requests filed for a location.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := current(cmd).Locations.GetLocationDataRequests(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		requests, err := locations.DecodeDataRequests(res)
		if err != nil {
			utils.PrintResponse(os.Stdout, res)
			return nil
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"ID", "Title", "Status", "Created"})
		for _, r := range requests {
			t.AppendRow(table.Row{r.ID, r.Title, r.RequestStatus, r.Submitted})
		}
		t.Render()
		return nil
	},
}
