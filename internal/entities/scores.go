package entities

// TextInput is one text submitted for difficulty or learnability scoring.
type TextInput struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// URLInput is one page submitted for content extraction.
type URLInput struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Difficulty is the per-text result of the difficulty endpoint.
type Difficulty struct {
	ID           string `json:"id"`
	ScoreAverage string `json:"score_average"`
	ScoreMedian  string `json:"score_median"`
}

// Learnability is the per-text result of the learnability endpoint.
type Learnability struct {
	ID    string `json:"id"`
	Score string `json:"score"`
	Count string `json:"count"`
}

// Content is the per-url result of the content extraction endpoint.
type Content struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Image   string `json:"image"`
}
