package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrlokans/zeeguu/internal/console"
	"github.com/mrlokans/zeeguu/internal/session"
)

// LanguageOptions selects the language pair of a translation.
type LanguageOptions struct {
	From string
	To   string
}

func addLanguageArgs(cmd *cobra.Command, o *LanguageOptions) {
	cmd.Flags().StringVarP(&o.From, "from", "f", "", "Source language. Defaults to the learning language.")
	cmd.Flags().StringVarP(&o.To, "to", "t", "", "Target language. Defaults to the native language.")
}

func (o *LanguageOptions) resolve(r *runner) error {
	if o.From == "" {
		o.From = r.app.Account.LearningLanguage()
	}
	if o.To == "" {
		o.To = r.app.Account.NativeLanguage()
	}
	if o.From == "" || o.To == "" {
		return errors.New("languages are not set, pass --from and --to")
	}
	return nil
}

func addStatus(topLevel *cobra.Command, g *GlobalOptions) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored account.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRunner(cmd, g)
			if err != nil {
				return err
			}
			defer r.close()

			acct := r.app.Account
			r.printer.Status(console.Status{
				Email:     acct.Email(),
				InSession: acct.IsInSession(),
				Languages: acct.Languages(),
				Words:     acct.WordCount(),
				Online:    r.app.Network.Available(),
			})
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addTranslate(topLevel *cobra.Command, g *GlobalOptions) {
	lo := &LanguageOptions{}

	cmd := &cobra.Command{
		Use:   "translate WORD...",
		Short: "Translate a word or phrase.",
		Example: `
zeeguu translate Haus
zeeguu translate --from fr --to en maison
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRunner(cmd, g)
			if err != nil {
				return err
			}
			defer r.close()

			if err := lo.resolve(r); err != nil {
				return err
			}
			if err := r.ensureSession(); err != nil {
				return err
			}
			return r.run(func(m *session.Manager) {
				m.Translate(joinArgs(args), lo.From, lo.To)
			})
		},
	}

	addLanguageArgs(cmd, lo)
	topLevel.AddCommand(cmd)
}

// BookmarkOptions describes where a word was found.
type BookmarkOptions struct {
	Translation string
	Title       string
	URL         string
	Context     string
}

func addBookmark(topLevel *cobra.Command, g *GlobalOptions) {
	lo := &LanguageOptions{}
	bo := &BookmarkOptions{}

	cmd := &cobra.Command{
		Use:   "bookmark WORD...",
		Short: "Save a word with its translation and context.",
		Example: `
zeeguu bookmark Haus --translation house --context "Das Haus ist alt"
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRunner(cmd, g)
			if err != nil {
				return err
			}
			defer r.close()

			if err := lo.resolve(r); err != nil {
				return err
			}
			if err := r.ensureSession(); err != nil {
				return err
			}
			return r.run(func(m *session.Manager) {
				m.BookmarkWithContext(joinArgs(args), lo.From, bo.Translation, lo.To, bo.Title, bo.URL, bo.Context)
			})
		},
	}

	addLanguageArgs(cmd, lo)
	cmd.Flags().StringVar(&bo.Translation, "translation", "", "Translation to save.")
	cmd.Flags().StringVar(&bo.Title, "title", "", "Title of the page the word was found on.")
	cmd.Flags().StringVar(&bo.URL, "url", "", "URL of the page the word was found on.")
	cmd.Flags().StringVar(&bo.Context, "context", "", "Sentence the word was found in.")
	_ = cmd.MarkFlagRequired("translation")
	topLevel.AddCommand(cmd)
}

func addWords(topLevel *cobra.Command, g *GlobalOptions) {
	cached := false

	cmd := &cobra.Command{
		Use:     "words",
		Aliases: []string{"list"},
		Short:   "List saved words grouped by day.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRunner(cmd, g)
			if err != nil {
				return err
			}
			defer r.close()

			if cached || !r.app.Network.Available() {
				r.app.Account.LoadWordsFromCache()
			} else {
				if err := r.ensureSession(); err != nil {
					return err
				}
				r.app.Run(func(m *session.Manager) { m.FetchWords() })
			}
			r.printer.Words(r.app.Account.Words())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&cached, "cached", "c", false, "Show the cached list without asking the server.")
	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command, g *GlobalOptions) {
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved word.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid word id %q", args[0])
			}
			return withSession(cmd, g, func(m *session.Manager) { m.DeleteWord(id) })
		},
	}

	topLevel.AddCommand(cmd)
}

func addLanguage(topLevel *cobra.Command, g *GlobalOptions) {
	cmd := &cobra.Command{
		Use:   "language",
		Short: "Change the native or learning language.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "native CODE",
		Short: "Change the native language.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, g, func(m *session.Manager) { m.SetNativeLanguage(args[0]) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "learning CODE",
		Short: "Change the learning language.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, g, func(m *session.Manager) { m.SetLearningLanguage(args[0]) })
		},
	})

	topLevel.AddCommand(cmd)
}
