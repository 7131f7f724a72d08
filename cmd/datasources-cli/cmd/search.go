package cmd

import (
	"datasources-client/cmd/datasources-cli/utils"
	"datasources-client/internal/search"
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	searchCategories []string
	searchRaw        bool
)

func init() {
	rootCmd.AddCommand(searchCmd, followCmd, unfollowCmd, followedCmd, followingCmd)
	searchCmd.Flags().StringSliceVar(&searchCategories, "category", nil, "Record categories to narrow the search to, may be repeated.")
	searchCmd.Flags().BoolVar(&searchRaw, "raw", false, "Print the response body instead of a table.")
}

var searchCmd = &cobra.Command{
	Use:   "search <location id>",
	Short: "Search data sources for a location.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := current(cmd).Search.Search(cmd.Context(), search.Params{
			LocationID:       args[0],
			RecordCategories: searchCategories,
		})
		if err != nil {
			return err
		}
		if searchRaw {
			utils.PrintResponse(os.Stdout, res)
			return nil
		}

		results, err := search.DecodeResults(res)
		if err != nil {
			return err
		}

		jurisdictions := make([]string, 0, len(results.Data))
		for name := range results.Data {
			jurisdictions = append(jurisdictions, name)
		}
		sort.Strings(jurisdictions)

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Jurisdiction", "ID", "Name", "Record type", "Agency", "URL"})
		for _, name := range jurisdictions {
			for _, record := range results.Data[name].Results {
				t.AppendRow(table.Row{
					name,
					record.ID,
					record.DataSourceName,
					record.RecordType,
					record.AgencyName,
					record.SourceURL,
				})
			}
		}
		t.AppendFooter(table.Row{"", "", "", "", "Total", results.Count})
		t.Render()
		return nil
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <location id>",
	Short: "Follow the searches of a location.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := current(cmd).Search.FollowSearch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(utils.Message(res))
		return nil
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <location id>",
	Short: "Stop following the searches of a location.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := current(cmd).Search.DeleteFollowedSearch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(utils.Message(res))
		return nil
	},
}

func renderFollowed(followed []search.FollowedSearch) {
	t := utils.NewTable()
	t.AppendHeader(table.Row{"Location ID", "State", "County", "Locality"})
	for _, f := range followed {
		t.AppendRow(table.Row{f.LocationID, f.StateName, f.CountyName, f.LocalityName})
	}
	t.Render()
}

var followedCmd = &cobra.Command{
	Use:   "followed",
	Short: "List the followed searches of the signed in user.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := current(cmd).Search.FollowedSearches(cmd.Context())
		if err != nil {
			return err
		}
		followed, err := search.DecodeFollowed(res)
		if err != nil {
			return err
		}
		renderFollowed(followed)
		return nil
	},
}

var followingCmd = &cobra.Command{
	Use:   "following <location id>",
	Short: "Check whether the signed in user follows a location.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		followed, lookup := current(cmd).Search.FollowedSearch(cmd.Context(), args[0])
		switch lookup {
		case search.FollowFound:
			renderFollowed([]search.FollowedSearch{followed})
		case search.FollowNotFound:
			fmt.Printf("location %s is not followed\n", args[0])
		default:
			return fmt.Errorf("followed search: %s", lookup)
		}
		return nil
	},
}
