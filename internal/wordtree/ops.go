package wordtree

import "github.com/mrlokans/zeeguu/internal/entities"

// CountWords returns the number of word entries across all days.
func CountWords(tree []entities.DayGroup) int {
	n := 0
	for _, day := range tree {
		for _, child := range day.Children {
			if child.IsWord() {
				n++
			}
		}
	}
	return n
}

// Find returns the word with the given id.
func Find(tree []entities.DayGroup, id int64) (entities.WordEntry, bool) {
	for _, day := range tree {
		for _, child := range day.Children {
			if child.IsWord() && child.Word.ID == id {
				return *child.Word, true
			}
		}
	}
	return entities.WordEntry{}, false
}

// Remove returns a copy of the tree without the word with the given id. A page
// header left without any words is dropped with it, and runs that then meet
// under the same title are merged; the day itself is kept.
// The second result is false when no word had that id.
func Remove(tree []entities.DayGroup, id int64) ([]entities.DayGroup, bool) {
	if _, ok := Find(tree, id); !ok {
		return tree, false
	}

	out := make([]entities.DayGroup, 0, len(tree))
	for _, day := range tree {
		kept := make([]entities.Node, 0, len(day.Children))
		for _, child := range day.Children {
			if child.IsWord() && child.Word.ID == id {
				continue
			}
			kept = append(kept, child)
		}
		out = append(out, entities.DayGroup{Date: day.Date, Children: dropEmptyHeaders(kept)})
	}
	return entities.CloneTree(out), true
}

// dropEmptyHeaders removes page headers with no words under them and headers
// that repeat the title of the run they now follow, so the result groups
// titles the same way Build does.
func dropEmptyHeaders(children []entities.Node) []entities.Node {
	out := make([]entities.Node, 0, len(children))
	title := ""
	for i, child := range children {
		if child.IsPage() {
			if i+1 == len(children) || children[i+1].IsPage() || child.Page.Title == title {
				continue
			}
			title = child.Page.Title
		}
		out = append(out, child)
	}
	return out
}
