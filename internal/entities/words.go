package entities

// NodeKind distinguishes the two kinds of children a DayGroup holds.
type NodeKind string

const (
	NodeKindPage NodeKind = "page"
	NodeKindWord NodeKind = "word"
)

// PageGroup is the header emitted before a run of words saved from the same page.
// URL may be empty when the words were saved without a source page.
type PageGroup struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// WordEntry is a single saved word (a bookmark on the server).
type WordEntry struct {
	ID             int64  `json:"id"`
	SourceWord     string `json:"source_word"`
	TranslatedWord string `json:"translated_word"`
	Context        string `json:"context"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// Node is one child of a DayGroup: either a page header or a word.
// Exactly one of Page and Word is set, matching Kind.
type Node struct {
	Kind NodeKind   `json:"kind"`
	Page *PageGroup `json:"page,omitempty"`
	Word *WordEntry `json:"word,omitempty"`
}

// PageNode wraps a page header as a tree node.
func PageNode(title, url string) Node {
	return Node{Kind: NodeKindPage, Page: &PageGroup{Title: title, URL: url}}
}

// WordNode wraps a word entry as a tree node.
func WordNode(w WordEntry) Node {
	return Node{Kind: NodeKindWord, Word: &w}
}

// IsPage reports whether the node is a page header.
func (n Node) IsPage() bool {
	return n.Kind == NodeKindPage && n.Page != nil
}

// IsWord reports whether the node is a word entry.
func (n Node) IsWord() bool {
	return n.Kind == NodeKindWord && n.Word != nil
}

// DayGroup groups the words saved on one calendar date, in server order.
type DayGroup struct {
	Date     string `json:"date"`
	Children []Node `json:"children"`
}

// Words returns the word entries of the group in order, skipping page headers.
func (d DayGroup) Words() []WordEntry {
	words := make([]WordEntry, 0, len(d.Children))
	for _, child := range d.Children {
		if child.IsWord() {
			words = append(words, *child.Word)
		}
	}
	return words
}

// Pages returns the page headers of the group in order.
func (d DayGroup) Pages() []PageGroup {
	var pages []PageGroup
	for _, child := range d.Children {
		if child.IsPage() {
			pages = append(pages, *child.Page)
		}
	}
	return pages
}

// CloneTree returns a deep copy of a word tree so callers can read it
// without sharing memory with the owner.
func CloneTree(tree []DayGroup) []DayGroup {
	if tree == nil {
		return nil
	}
	out := make([]DayGroup, len(tree))
	for i, day := range tree {
		children := make([]Node, len(day.Children))
		for j, child := range day.Children {
			c := Node{Kind: child.Kind}
			if child.Page != nil {
				p := *child.Page
				c.Page = &p
			}
			if child.Word != nil {
				w := *child.Word
				c.Word = &w
			}
			children[j] = c
		}
		out[i] = DayGroup{Date: day.Date, Children: children}
	}
	return out
}
