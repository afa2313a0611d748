// Package wordtree turns the server's day-grouped bookmark payload into the
// in-memory word tree: days, then page headers, then the words saved from each page.
package wordtree

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/mrlokans/zeeguu/internal/entities"
)

// ErrMalformedPayload is returned when the payload does not have the expected shape.
var ErrMalformedPayload = errors.New("malformed bookmarks payload")

// DayPayload is one day of bookmarks as returned by bookmarks_by_day/with_context.
type DayPayload struct {
	Date      string
	Bookmarks []Bookmark
}

// Bookmark is a single saved word as returned by the server. Only the first
// translation candidate is kept in the tree.
type Bookmark struct {
	ID             int64
	SourceWord     string
	Translations   []string
	SourceLanguage string
	TargetLanguage string
	PageTitle      string
	PageURL        string
	Context        string
}

// Build parses a raw payload and assembles the word tree from it.
func Build(payload []byte) ([]entities.DayGroup, error) {
	days, err := Parse(payload)
	if err != nil {
		return nil, err
	}
	return Assemble(days), nil
}

// Assemble emits one DayGroup per day. Within a day a page header is emitted
// whenever the page title differs from the previous bookmark's title, so a run
// of words from the same page sits under exactly one header. Server order is kept.
func Assemble(days []DayPayload) []entities.DayGroup {
	tree := make([]entities.DayGroup, 0, len(days))
	for _, day := range days {
		group := entities.DayGroup{
			Date:     day.Date,
			Children: make([]entities.Node, 0, len(day.Bookmarks)),
		}

		title := ""
		for _, b := range day.Bookmarks {
			if b.PageTitle != title {
				title = b.PageTitle
				group.Children = append(group.Children, entities.PageNode(b.PageTitle, b.PageURL))
			}
			group.Children = append(group.Children, entities.WordNode(b.entry()))
		}

		tree = append(tree, group)
	}
	return tree
}

func (b Bookmark) entry() entities.WordEntry {
	translated := ""
	if len(b.Translations) > 0 {
		translated = b.Translations[0]
	}
	return entities.WordEntry{
		ID:             b.ID,
		SourceWord:     b.SourceWord,
		TranslatedWord: translated,
		Context:        b.Context,
		SourceLanguage: b.SourceLanguage,
		TargetLanguage: b.TargetLanguage,
	}
}

// Parse decodes the payload into day payloads. Every field the tree needs must
// be present; a single bad bookmark rejects the whole payload.
func Parse(payload []byte) ([]DayPayload, error) {
	if !gjson.ValidBytes(payload) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedPayload)
	}

	root := gjson.ParseBytes(payload)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of days", ErrMalformedPayload)
	}

	var days []DayPayload
	for i, day := range root.Array() {
		parsed, err := parseDay(day)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", i, err)
		}
		days = append(days, parsed)
	}
	return days, nil
}

func parseDay(day gjson.Result) (DayPayload, error) {
	if !day.IsObject() {
		return DayPayload{}, fmt.Errorf("%w: day is not an object", ErrMalformedPayload)
	}

	date, err := stringField(day, "date")
	if err != nil {
		return DayPayload{}, err
	}

	list := day.Get("bookmarks")
	if !list.IsArray() {
		return DayPayload{}, fmt.Errorf("%w: missing bookmarks array", ErrMalformedPayload)
	}

	parsed := DayPayload{Date: date, Bookmarks: make([]Bookmark, 0, len(list.Array()))}
	for i, raw := range list.Array() {
		b, err := parseBookmark(raw)
		if err != nil {
			return DayPayload{}, fmt.Errorf("bookmark %d: %w", i, err)
		}
		parsed.Bookmarks = append(parsed.Bookmarks, b)
	}
	return parsed, nil
}

func parseBookmark(raw gjson.Result) (Bookmark, error) {
	if !raw.IsObject() {
		return Bookmark{}, fmt.Errorf("%w: bookmark is not an object", ErrMalformedPayload)
	}

	id := raw.Get("id")
	if id.Type != gjson.Number {
		return Bookmark{}, fmt.Errorf("%w: missing numeric id", ErrMalformedPayload)
	}

	to := raw.Get("to")
	if !to.IsArray() || len(to.Array()) == 0 {
		return Bookmark{}, fmt.Errorf("%w: bookmark %d has no translation", ErrMalformedPayload, id.Int())
	}
	translations := make([]string, 0, len(to.Array()))
	for _, t := range to.Array() {
		translations = append(translations, t.String())
	}

	b := Bookmark{ID: id.Int(), Translations: translations}
	fields := []struct {
		key string
		dst *string
	}{
		{"from", &b.SourceWord},
		{"from_lang", &b.SourceLanguage},
		{"to_lang", &b.TargetLanguage},
		{"title", &b.PageTitle},
		{"url", &b.PageURL},
		{"context", &b.Context},
	}
	for _, f := range fields {
		v, err := stringField(raw, f.key)
		if err != nil {
			return Bookmark{}, fmt.Errorf("bookmark %d: %w", b.ID, err)
		}
		*f.dst = v
	}
	return b, nil
}

func stringField(obj gjson.Result, key string) (string, error) {
	v := obj.Get(key)
	if !v.Exists() || v.Type == gjson.Null || v.IsArray() || v.IsObject() {
		return "", fmt.Errorf("%w: missing field %q", ErrMalformedPayload, key)
	}
	return v.String(), nil
}
