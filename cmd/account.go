package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ispell/ispell/internal/api"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show and manage your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		u, err := env.client.Profile(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Username: %s\n", u.Username)
		fmt.Printf("Email:    %s\n", u.Email)
		if u.AvatarURL != "" {
			fmt.Printf("Avatar:   %s\n", u.AvatarURL)
		}
		if len(u.Bindings) > 0 {
			fmt.Printf("Linked:   %s\n", strings.Join(u.Bindings, ", "))
		}
		return nil
	},
}

var accountUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change your username or avatar",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		changed := false
		if cmd.Flags().Changed("username") {
			name, _ := cmd.Flags().GetString("username")
			if _, err := env.client.UpdateProfile(cmd.Context(), api.ProfileUpdate{Username: name}); err != nil {
				return err
			}
			fmt.Printf("Username changed to %s.\n", name)
			changed = true
		}
		if path, _ := cmd.Flags().GetString("avatar"); path != "" {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			url, err := env.client.UploadAvatar(cmd.Context(), filepath.Base(path), f)
			if err != nil {
				return err
			}
			fmt.Printf("Avatar uploaded: %s\n", url)
			changed = true
		}
		if !changed {
			return fmt.Errorf("nothing to update: pass --username or --avatar")
		}
		return nil
	},
}

var accountPasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password, or reset it via an emailed code",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if reset, _ := cmd.Flags().GetBool("reset"); reset {
			return resetPassword(cmd, env)
		}

		oldPw, err := promptPassword("Current password: ")
		if err != nil {
			return err
		}
		newPw, err := promptPassword("New password: ")
		if err != nil {
			return err
		}
		if err := env.client.ChangePassword(cmd.Context(), oldPw, newPw); err != nil {
			return err
		}
		fmt.Println("Password changed.")
		return nil
	},
}

// resetPassword drives the email-code flow for a forgotten password.
func resetPassword(cmd *cobra.Command, env *env) error {
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	if err := sendCodeWithThrottle(cmd, env, email, "reset"); err != nil {
		return err
	}
	code, err := promptLine("Verification code: ")
	if err != nil {
		return err
	}
	newPw, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	if err := env.client.ResetPassword(cmd.Context(), email, code, newPw); err != nil {
		return err
	}
	fmt.Println("Password reset. You can now log in.")
	return nil
}

var accountUnbindCmd = &cobra.Command{
	Use:   "unbind <provider>",
	Short: "Unlink an OAuth provider from your account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.client.UnbindProvider(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("%s unlinked.\n", args[0])
		return nil
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Permanently delete your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		fmt.Println("This permanently deletes your account and all progress.")
		answer, err := promptLine("Type your email to confirm: ")
		if err != nil {
			return err
		}
		u, err := env.client.Profile(cmd.Context())
		if err != nil {
			return err
		}
		if strings.TrimSpace(answer) != u.Email {
			return fmt.Errorf("confirmation did not match account email")
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		if err := env.client.DeleteAccount(cmd.Context(), password); err != nil {
			return err
		}
		fmt.Println("Account deleted.")
		return nil
	},
}

func init() {
	accountUpdateCmd.Flags().String("username", "", "New username")
	accountUpdateCmd.Flags().String("avatar", "", "Path to an image file to upload as avatar")
	accountPasswordCmd.Flags().Bool("reset", false, "Reset a forgotten password via an emailed code")

	accountCmd.AddCommand(accountUpdateCmd)
	accountCmd.AddCommand(accountPasswordCmd)
	accountCmd.AddCommand(accountUnbindCmd)
	accountCmd.AddCommand(accountDeleteCmd)
}
