package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrlokans/zeeguu/internal/entities"
	"github.com/mrlokans/zeeguu/internal/session"
)

func addScores(topLevel *cobra.Command, g *GlobalOptions) {
	language := ""

	difficulty := &cobra.Command{
		Use:   "difficulty TEXT...",
		Short: "Score how difficult each text is for you.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := textInputs(args)
			return withSession(cmd, g, func(m *session.Manager) {
				m.DifficultyForText(languageOr(m, language), texts)
			})
		},
	}

	learnability := &cobra.Command{
		Use:   "learnability TEXT...",
		Short: "Score how much each text can teach you.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := textInputs(args)
			return withSession(cmd, g, func(m *session.Manager) {
				m.LearnabilityForText(languageOr(m, language), texts)
			})
		},
	}

	for _, cmd := range []*cobra.Command{difficulty, learnability} {
		cmd.Flags().StringVarP(&language, "language", "l", "", "Language of the texts. Defaults to the learning language.")
		topLevel.AddCommand(cmd)
	}

	content := &cobra.Command{
		Use:   "content URL...",
		Short: "Extract the readable content of web pages.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := make([]entities.URLInput, len(args))
			for i, u := range args {
				urls[i] = entities.URLInput{ID: strconv.Itoa(i + 1), URL: u}
			}
			r, err := openRunner(cmd, g)
			if err != nil {
				return err
			}
			defer r.close()

			return r.run(func(m *session.Manager) { m.ContentFromURLs(urls) })
		},
	}
	topLevel.AddCommand(content)
}

// textInputs numbers the texts from 1 in argument order.
func textInputs(args []string) []entities.TextInput {
	texts := make([]entities.TextInput, len(args))
	for i, text := range args {
		texts[i] = entities.TextInput{ID: strconv.Itoa(i + 1), Content: text}
	}
	return texts
}

func languageOr(m *session.Manager, language string) string {
	if language != "" {
		return language
	}
	return m.Account().LearningLanguage()
}
