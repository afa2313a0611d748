package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/mrlokans/zeeguu/internal/entities"
	"github.com/mrlokans/zeeguu/internal/transport"
)

// contentPolicy gives content extraction a long timeout and a single retry;
// the server itself spends up to contentServerTimeout seconds per page.
var contentPolicy = transport.RetryPolicy{Timeout: 50 * time.Second, MaxRetries: 1}

const (
	contentServerTimeout = 12
	rankBoundary         = "10000"
)

var errInvalidJSON = errors.New("invalid JSON")

type textsBody struct {
	Texts        []entities.TextInput `json:"texts"`
	Personalized string               `json:"personalized,omitempty"`
	RankBoundary string               `json:"rank_boundary,omitempty"`
}

type urlsBody struct {
	URLs    []entities.URLInput `json:"urls"`
	Timeout int                 `json:"timeout"`
}

// DifficultyForText scores how hard each text is for the user.
func (m *Manager) DifficultyForText(lang string, texts []entities.TextInput) {
	if !m.requireSession("difficulty") {
		return
	}
	if !m.network.Available() || len(texts) == 0 {
		return
	}

	req := transport.Request{
		Method: http.MethodPost,
		Path:   "get_difficulty_for_text/" + transport.PathSegment(lang),
		Query:  m.sessionQuery(),
		JSON:   textsBody{Texts: texts, Personalized: "true", RankBoundary: rankBoundary},
	}
	m.requester.Send(req, func(body []byte) {
		m.offload("difficulty", func() error {
			difficulties, err := parseDifficulties(body)
			if err != nil {
				return err
			}
			m.executor.Post(func() { m.callbacks.SetDifficulties(difficulties) })
			return nil
		})
	}, m.logScoreFailure("difficulty"))
}

// LearnabilityForText scores how many learnable words each text holds.
func (m *Manager) LearnabilityForText(lang string, texts []entities.TextInput) {
	if !m.requireSession("learnability") {
		return
	}
	if !m.network.Available() || len(texts) == 0 {
		return
	}

	req := transport.Request{
		Method: http.MethodPost,
		Path:   "get_learnability_for_text/" + transport.PathSegment(lang),
		Query:  m.sessionQuery(),
		JSON:   textsBody{Texts: texts},
	}
	m.requester.Send(req, func(body []byte) {
		m.offload("learnability", func() error {
			learnabilities, err := parseLearnabilities(body)
			if err != nil {
				return err
			}
			m.executor.Post(func() { m.callbacks.SetLearnabilities(learnabilities) })
			return nil
		})
	}, m.logScoreFailure("learnability"))
}

// ContentFromURLs extracts the readable text and lead image of each page.
// It needs no session.
func (m *Manager) ContentFromURLs(urls []entities.URLInput) {
	if !m.network.Available() || len(urls) == 0 {
		return
	}

	policy := contentPolicy
	req := transport.Request{
		Method: http.MethodPost,
		Path:   "get_content_from_url",
		JSON:   urlsBody{URLs: urls, Timeout: contentServerTimeout},
		Policy: &policy,
	}
	m.requester.Send(req, func(body []byte) {
		m.offload("content", func() error {
			contents, err := parseContents(body)
			if err != nil {
				return err
			}
			m.executor.Post(func() { m.callbacks.SetContents(contents) })
			return nil
		})
	}, m.logScoreFailure("content"))
}

// offload reshapes a response away from the executor goroutine. Reshaping
// failures are logged and nothing is delivered.
func (m *Manager) offload(name string, fn func() error) {
	err := m.offloader.Go(func() {
		if err := fn(); err != nil {
			log.WithField("operation", name).Errorf("Failed to read response: %v", err)
		}
	})
	if err != nil {
		log.WithField("operation", name).Errorf("Failed to offload response: %v", err)
	}
}

func (m *Manager) logScoreFailure(name string) func(error) {
	return func(err error) {
		m.expireSession(err)
		log.WithField("operation", name).Errorf("Request failed: %v", err)
	}
}

// records returns the objects of the array at key, requiring each to carry
// all of fields.
func records(body []byte, key string, fields ...string) ([]map[string]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, errInvalidJSON
	}
	arr := gjson.GetBytes(body, key)
	if !arr.IsArray() {
		return nil, fmt.Errorf("%q is not an array", key)
	}

	items := arr.Array()
	out := make([]map[string]string, 0, len(items))
	for i, item := range items {
		rec := make(map[string]string, len(fields))
		for _, field := range fields {
			v := item.Get(field)
			if !v.Exists() {
				return nil, fmt.Errorf("%s[%d]: missing %q", key, i, field)
			}
			rec[field] = v.String()
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseDifficulties(body []byte) ([]entities.Difficulty, error) {
	recs, err := records(body, "difficulties", "id", "score_average", "score_median")
	if err != nil {
		return nil, err
	}
	out := make([]entities.Difficulty, len(recs))
	for i, r := range recs {
		out[i] = entities.Difficulty{ID: r["id"], ScoreAverage: r["score_average"], ScoreMedian: r["score_median"]}
	}
	return out, nil
}

func parseLearnabilities(body []byte) ([]entities.Learnability, error) {
	recs, err := records(body, "learnabilities", "id", "score", "count")
	if err != nil {
		return nil, err
	}
	out := make([]entities.Learnability, len(recs))
	for i, r := range recs {
		out[i] = entities.Learnability{ID: r["id"], Score: r["score"], Count: r["count"]}
	}
	return out, nil
}

func parseContents(body []byte) ([]entities.Content, error) {
	recs, err := records(body, "contents", "id", "content", "image")
	if err != nil {
		return nil, err
	}
	out := make([]entities.Content, len(recs))
	for i, r := range recs {
		out[i] = entities.Content{ID: r["id"], Content: r["content"], Image: r["image"]}
	}
	return out, nil
}
