package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ispell/ispell/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change account settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		current, err := env.client.Settings(cmd.Context())
		if err != nil {
			return err
		}
		st := *current

		changed := false
		if cmd.Flags().Changed("daily-new") {
			st.DailyNew, _ = cmd.Flags().GetInt("daily-new")
			changed = true
		}
		if cmd.Flags().Changed("daily-review") {
			st.DailyReview, _ = cmd.Flags().GetInt("daily-review")
			changed = true
		}
		if cmd.Flags().Changed("accent") {
			accent, _ := cmd.Flags().GetString("accent")
			if accent != "us" && accent != "uk" {
				return fmt.Errorf("invalid accent %q (expected us or uk)", accent)
			}
			st.Accent = accent
			changed = true
		}
		if cmd.Flags().Changed("autoplay") {
			st.AutoPlayAudio, _ = cmd.Flags().GetBool("autoplay")
			changed = true
		}

		if changed {
			if st.DailyNew < 0 || st.DailyReview < 0 {
				return fmt.Errorf("daily quotas must not be negative")
			}
			if err := env.client.SaveSettings(cmd.Context(), st); err != nil {
				return err
			}
			env.cfg.DailyNew = st.DailyNew
			env.cfg.DailyReview = st.DailyReview
			env.cfg.Accent = st.Accent
			if err := config.Save(env.cfgPath, env.cfg); err != nil {
				env.log.Warn("save config", zap.Error(err))
			}
			fmt.Println("Settings saved.")
		}

		fmt.Printf("Daily new words:    %d\n", st.DailyNew)
		fmt.Printf("Daily review words: %d\n", st.DailyReview)
		fmt.Printf("Accent:             %s\n", st.Accent)
		fmt.Printf("Auto-play audio:    %t\n", st.AutoPlayAudio)
		return nil
	},
}

func init() {
	settingsCmd.Flags().Int("daily-new", 0, "Daily new-word quota")
	settingsCmd.Flags().Int("daily-review", 0, "Daily review-word quota")
	settingsCmd.Flags().String("accent", "", "Pronunciation accent (us or uk)")
	settingsCmd.Flags().Bool("autoplay", false, "Automatically play word audio during practice")
}
