package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback [message]",
	Short: "Send feedback to the iSpell team",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		content := strings.TrimSpace(strings.Join(args, " "))
		if content == "" {
			content, err = promptLine("Your feedback: ")
			if err != nil {
				return err
			}
			content = strings.TrimSpace(content)
		}
		if content == "" {
			return fmt.Errorf("feedback message must not be empty")
		}

		contact, _ := cmd.Flags().GetString("contact")
		if err := env.client.SendFeedback(cmd.Context(), content, contact); err != nil {
			return err
		}
		fmt.Println("Thanks! Your feedback has been sent.")
		return nil
	},
}

func init() {
	feedbackCmd.Flags().String("contact", "", "Optional contact address for follow-up")
}
