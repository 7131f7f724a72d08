package cmd

import (
	"datasources-client/cmd/datasources-cli/utils"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

var githubDevice bool

func init() {
	rootCmd.AddCommand(
		signupCmd,
		loginCmd,
		loginGithubCmd,
		linkGithubCmd,
		refreshCmd,
		validateEmailCmd,
		requestResetCmd,
		resetPasswordCmd,
		apiKeyCmd,
		logoutCmd,
		whoamiCmd,
	)
	loginGithubCmd.Flags().BoolVar(&githubDevice, "device", false, "Sign in to GitHub with the device flow instead of passing a token.")
}

func passwordArg(args []string, index int, prompt string) (string, error) {
	if len(args) > index {
		return args[index], nil
	}
	return utils.ReadPassword(prompt)
}

var signupCmd = &cobra.Command{
	Use:   "signup <email> [password]",
	Short: "Create an account, a validation email is sent afterwards.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordArg(args, 1, "Password")
		if err != nil {
			return err
		}
		res, err := current(cmd).Auth.SignUp(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Println(utils.Message(res))
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email> [password]",
	Short: "Sign in with email and password.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordArg(args, 1, "Password")
		if err != nil {
			return err
		}
		_, err = current(cmd).Auth.SignInWithEmail(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		return printWhoami(cmd)
	},
}

var loginGithubCmd = &cobra.Command{
	Use:   "login-github [github access token]",
	Short: "Sign in with a GitHub account.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instance := current(cmd)
		var err error
		switch {
		case len(args) == 1:
			_, err = instance.Auth.SignInWithGithub(cmd.Context(), args[0])
		case githubDevice:
			_, err = instance.Auth.GithubDeviceLogin(
				cmd.Context(),
				instance.Config.Github,
				func(res *oauth2.DeviceAuthResponse) {
					fmt.Fprintf(os.Stderr, "Open %s and enter the code %s\n", res.VerificationURI, res.UserCode)
				},
			)
		default:
			return fmt.Errorf("pass a GitHub access token or --device")
		}
		if err != nil {
			return err
		}
		return printWhoami(cmd)
	},
}

var linkGithubCmd = &cobra.Command{
	Use:   "link-github <email> <github access token>",
	Short: "Link a GitHub account to an existing account.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := current(cmd).Auth.LinkAccountWithGithub(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(utils.Message(res))
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new session.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		instance := current(cmd)
		before := instance.Stores.Auth.Tokens()
		instance.Auth.RefreshTokens(cmd.Context())
		if instance.Stores.Auth.Tokens() == before {
			return fmt.Errorf("session was not refreshed, run with -v for details")
		}
		return printWhoami(cmd)
	},
}

var validateEmailCmd = &cobra.Command{
	Use:   "validate-email <token>",
	Short: "Validate an email address with the token from the validation email.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := current(cmd).Auth.ValidateEmail(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printWhoami(cmd)
	},
}

var requestResetCmd = &cobra.Command{
	Use:   "request-reset <email>",
	Short: "Send a password reset email.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := current(cmd).Auth.RequestPasswordReset(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(utils.Message(res))
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <token> [new password]",
	Short: "Set a new password with the token from the reset email.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		service := current(cmd).Auth
		_, err := service.ValidateResetPasswordToken(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("reset token: %w", err)
		}
		password, err := passwordArg(args, 1, "New password")
		if err != nil {
			return err
		}
		res, err := service.ResetPassword(cmd.Context(), password, args[0])
		if err != nil {
			return err
		}
		fmt.Println(utils.Message(res))
		return nil
	},
}

var apiKeyCmd = &cobra.Command{
	Use:   "api-key",
	Short: "Generate a new API key for the signed in user.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := current(cmd).Auth.GenerateAPIKey(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(key)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session of the profile.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return current(cmd).Auth.SignOut(cmd.Context())
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user and session of the profile.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printWhoami(cmd)
	},
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format(time.DateTime)
}

func printWhoami(cmd *cobra.Command) error {
	instance := current(cmd)
	user := instance.Stores.User.Get()
	tokens := instance.Stores.Auth.Tokens()

	t := utils.NewTable()
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Profile", profile},
		{"User ID", user.ID},
		{"Email", user.Email},
		{"Signed in", instance.Stores.Auth.IsAuthenticated()},
		{"Access token expires", formatExpiry(tokens.AccessExpiresAt)},
		{"Refresh token expires", formatExpiry(tokens.RefreshExpiresAt)},
	})
	t.Render()
	return nil
}
