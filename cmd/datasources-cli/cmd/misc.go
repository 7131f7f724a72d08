package cmd

import (
	"datasources-client/cmd/datasources-cli/utils"
	"datasources-client/internal/check"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkUrlCmd, changePasswordCmd)
}

var checkUrlCmd = &cobra.Command{
	Use:   "check-url <url>",
	Short: "Check whether a data source url was already submitted.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := current(cmd).Check.FindDuplicateURL(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		duplicates, err := check.Duplicates(res)
		if err != nil {
			return err
		}
		if len(duplicates) == 0 {
			fmt.Println("no duplicates found")
			return nil
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Original URL", "Approval status", "Rejection note"})
		for _, d := range duplicates {
			t.AppendRow(table.Row{d.OriginalURL, d.ApprovalStatus, d.RejectionNote})
		}
		t.Render()
		return nil
	},
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the password of the signed in user.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		oldPassword, err := utils.ReadPassword("Current password")
		if err != nil {
			return err
		}
		newPassword, err := utils.ReadPassword("New password")
		if err != nil {
			return err
		}
		res, err := current(cmd).User.ChangePassword(cmd.Context(), oldPassword, newPassword)
		if err != nil {
			return err
		}
		fmt.Println(utils.Message(res))
		return nil
	},
}
