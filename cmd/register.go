package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ispell/ispell/internal/api"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an iSpell account",
	Long:  "Requests an email verification code, then creates the account with it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
		defer cancel()

		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			if email, err = promptLine("Email: "); err != nil {
				return err
			}
		}

		if err := sendCodeWithThrottle(cmd, env, email, "register"); err != nil {
			return err
		}

		code, err := promptLine("Verification code: ")
		if err != nil {
			return err
		}
		username, err := promptLine("Username: ")
		if err != nil {
			return err
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		remember, _ := cmd.Flags().GetBool("remember")
		res, err := env.client.Register(ctx, api.RegisterInput{
			Username: username,
			Email:    email,
			Password: password,
			Code:     code,
		}, remember)
		if err != nil {
			return err
		}
		fmt.Printf("Welcome, %s! You are signed in.\n", res.User.Username)
		return nil
	},
}

// sendCodeWithThrottle requests a verification email. A throttled
// request is not an error: the previously sent code is still valid.
func sendCodeWithThrottle(cmd *cobra.Command, env *env, email, purpose string) error {
	if err := env.client.SendCode(cmd.Context(), email, purpose); err != nil {
		var throttled *api.ErrResendThrottled
		if !errors.As(err, &throttled) {
			return err
		}
		fmt.Printf("A code was already sent; reusing it (next request allowed in %s).\n",
			throttled.Remaining.Round(time.Second))
		return nil
	}
	fmt.Println("Verification code sent. Check your inbox.")
	return nil
}

func init() {
	registerCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().Bool("remember", true, "Persist tokens across restarts")
}
