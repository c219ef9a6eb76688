package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ispell/ispell/internal/oauth"
)

const authTimeout = 2 * time.Minute

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to your iSpell account",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		remember, _ := cmd.Flags().GetBool("remember")
		provider, _ := cmd.Flags().GetString("provider")

		ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
		defer cancel()

		if provider != "" {
			flow := oauth.NewFlow(env.client, env.cfg.Origin(), env.log)
			res, err := flow.Login(ctx, provider, remember)
			if err != nil {
				return err
			}
			fmt.Printf("Signed in as %s via %s.\n", res.User.Username, provider)
			return nil
		}

		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			email, err = promptLine("Email: ")
			if err != nil {
				return err
			}
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		res, err := env.client.Login(ctx, email, password, remember)
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s.\n", res.User.Username)
		if !remember {
			fmt.Println("Note: tokens are not persisted without --remember; they die with this process.")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard stored tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.client.Logout(); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().Bool("remember", true, "Persist tokens across restarts")
	loginCmd.Flags().String("provider", "", "Sign in via an OAuth provider (github, wechat) instead of a password")
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
