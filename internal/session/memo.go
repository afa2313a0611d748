package session

// selectionMemo remembers the last translate request so an identical repeat
// does not hit the network.
type selectionMemo struct {
	input     string
	target    string
	result    string
	hasResult bool
}

// check reports whether (input, target) equals the last checked key, then
// records it as the last key. A new key drops the stored result.
func (s *selectionMemo) check(input, target string) bool {
	same := s.matches(input, target)
	if !same {
		s.input, s.target = input, target
		s.result, s.hasResult = "", false
	}
	return same
}

func (s *selectionMemo) matches(input, target string) bool {
	return input == s.input && target == s.target
}

// store keeps result if (input, target) is still the current key. Responses
// for a superseded key are ignored.
func (s *selectionMemo) store(input, target, result string) {
	if !s.matches(input, target) {
		return
	}
	s.result, s.hasResult = result, true
}

func (s *selectionMemo) reset() {
	*s = selectionMemo{}
}
