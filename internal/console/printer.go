// Package console renders manager notifications and the word list in a
// terminal.
package console

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/mrlokans/zeeguu/internal/entities"
)

var boldTag = regexp.MustCompile(`<b>(.*?)</b>`)

// Printer implements session.Callbacks by writing to a terminal.
type Printer struct {
	out io.Writer

	mu     sync.Mutex
	failed bool
}

// NewPrinter creates a printer writing to out, or to color.Output when nil.
func NewPrinter(out io.Writer) *Printer {
	if out == nil {
		out = color.Output
	}
	return &Printer{out: out}
}

// Failed reports whether a dialog or error has been shown.
func (p *Printer) Failed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

func (p *Printer) fail() {
	p.mu.Lock()
	p.failed = true
	p.mu.Unlock()
}

func (p *Printer) println(c *color.Color, format string, args ...any) {
	_, _ = c.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) ShowLoginDialog(title, email string) {
	p.fail()
	p.println(color.New(color.FgYellow, color.Bold), "%s", title)
	hint := "Run `zeeguu login` to sign in"
	if email != "" {
		hint = fmt.Sprintf("Run `zeeguu login --email %s` to sign in again", email)
	}
	p.println(color.New(color.Faint), "%s", hint)
}

func (p *Printer) ShowCreateAccountDialog(message, username, email string) {
	p.fail()
	p.println(color.New(color.FgYellow, color.Bold), "%s", message)
	p.println(color.New(color.Faint), "Run `zeeguu signup --username %s --email %s` to try again", username, email)
}

func (p *Printer) LoginSucceeded() {}

func (p *Printer) SetTranslation(translation string) {
	p.println(color.New(color.FgGreen, color.Bold), "%s", translation)
}

func (p *Printer) Highlight(word string) {
	p.println(color.New(color.FgHiYellow, color.Italic), "* %s", word)
}

func (p *Printer) DisplayError(message string, transient bool) {
	p.fail()
	p.println(color.New(color.FgRed), "%s", message)
}

func (p *Printer) DisplayMessage(message string) {
	bold := color.New(color.Bold)
	rendered := boldTag.ReplaceAllStringFunc(message, func(m string) string {
		return bold.Sprint(boldTag.FindStringSubmatch(m)[1])
	})
	_, _ = fmt.Fprintln(p.out, rendered)
}

func (p *Printer) NotifyDataChanged(changed bool) {
	if !changed {
		p.println(color.New(color.Faint), "Word list unchanged")
	}
}

func (p *Printer) BookmarkWord(id string) {
	if id == "0" {
		return
	}
	p.println(color.New(color.Faint), "bookmark %s", id)
}

func (p *Printer) SetDifficulties(difficulties []entities.Difficulty) {
	tbl := p.table("ID", "AVERAGE", "MEDIAN")
	for _, d := range difficulties {
		tbl.AddRow(d.ID, d.ScoreAverage, d.ScoreMedian)
	}
	p.flush(tbl)
}

func (p *Printer) SetLearnabilities(learnabilities []entities.Learnability) {
	tbl := p.table("ID", "SCORE", "COUNT")
	for _, l := range learnabilities {
		tbl.AddRow(l.ID, l.Score, l.Count)
	}
	p.flush(tbl)
}

func (p *Printer) SetContents(contents []entities.Content) {
	for _, c := range contents {
		p.println(color.New(color.Bold, color.Underline), "%s", c.ID)
		if c.Image != "" {
			p.println(color.New(color.Faint), "%s", c.Image)
		}
		_, _ = fmt.Fprintln(p.out, strings.TrimSpace(c.Content))
		_, _ = fmt.Fprintln(p.out)
	}
}

// Words prints the word tree grouped by day and page.
func (p *Printer) Words(tree []entities.DayGroup) {
	if len(tree) == 0 {
		p.println(color.New(color.Faint, color.Italic), " none")
		return
	}

	title := color.New(color.Bold, color.Underline)
	page := color.New(color.FgCyan)
	id := color.New(color.FgHiYellow, color.Faint)

	for _, day := range tree {
		words := day.Words()
		_, _ = title.Fprint(p.out, day.Date)
		_, _ = color.New(color.Faint).Fprintf(p.out, " - %d %s\n", len(words), plural(len(words), "word", "words"))

		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 60
		tbl.Wrap = true
		for _, child := range day.Children {
			switch {
			case child.IsPage():
				label := child.Page.Title
				if label == "" {
					label = child.Page.URL
				}
				tbl.AddRow("", page.Sprint(label), "")
			case child.IsWord():
				w := child.Word
				tbl.AddRow(
					id.Sprint(w.ID),
					fmt.Sprintf("%s (%s) = %s (%s)", w.SourceWord, w.SourceLanguage, w.TranslatedWord, w.TargetLanguage),
					color.New(color.Faint).Sprint(w.Context),
				)
			}
		}
		tbl.RightAlign(0)
		_, _ = fmt.Fprintln(p.out, tbl)
		_, _ = fmt.Fprintln(p.out)
	}
}

// Status describes an account.
type Status struct {
	Email     string
	InSession bool
	Languages entities.Languages
	Words     int
	Online    bool
}

// Status prints a summary of the account.
func (p *Printer) Status(s Status) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "

	email := s.Email
	if email == "" {
		email = "not logged in"
	}
	tbl.AddRow(bold.Sprint("Account"), email)
	tbl.AddRow(bold.Sprint("Session"), yesNo(s.InSession))
	tbl.AddRow(bold.Sprint("Native"), orDash(s.Languages.Native))
	tbl.AddRow(bold.Sprint("Learning"), orDash(s.Languages.Learning))
	tbl.AddRow(bold.Sprint("Words"), s.Words)
	tbl.AddRow(bold.Sprint("Network"), map[bool]string{true: "online", false: "offline"}[s.Online])
	_, _ = fmt.Fprintln(p.out, tbl)
}

func (p *Printer) table(headers ...any) *uitable.Table {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = bold.Sprint(h)
	}
	tbl.AddRow(row...)
	return tbl
}

func (p *Printer) flush(tbl *uitable.Table) {
	_, _ = fmt.Fprintln(p.out, tbl)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
