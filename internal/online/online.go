// Package online calls a public dictionary API when a local lookup or
// prefix search comes up short. The mdict readers themselves never reach
// the network; whether and when to fall back online is decided here by the
// caller, not by the core.
package online

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Definition is one sense of a word as the API reports it.
type Definition struct {
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
}

// Meaning groups definitions under a part of speech.
type Meaning struct {
	PartOfSpeech string       `json:"part_of_speech"`
	Definitions  []Definition `json:"definitions"`
	Synonyms     []string     `json:"synonyms"`
}

// Entry is one API result for a word.
type Entry struct {
	Word      string     `json:"word"`
	Phonetic  string     `json:"phonetic,omitempty"`
	Phonetics []phonetic `json:"phonetics"`
	Meanings  []Meaning  `json:"meanings"`
}

type phonetic struct {
	Text string `json:"text"`
}

// FirstPhonetic returns the first available phonetic transcription, trying
// the Phonetics list before falling back to the scalar Phonetic field.
func (e Entry) FirstPhonetic() string {
	for _, p := range e.Phonetics {
		if p.Text != "" {
			return p.Text
		}
	}
	return e.Phonetic
}

const defaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// Client calls a public dictionary HTTP API as a fallback when the local
// archive misses. It carries no state beyond an *http.Client and a logger;
// the decision of whether to call it belongs to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default *http.Client (for tests or custom
// transport/proxy settings).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the API base URL (for tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithLogger attaches a logger; a nil logger is replaced with a no-op one.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) {
		if log == nil {
			log = zap.NewNop().Sugar()
		}
		c.log = log
	}
}

// NewClient builds a Client with a 5-second timeout and a no-op logger. An
// unbounded fallback call would hang the caller on a dead network, so the
// timeout is not optional.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    defaultBaseURL,
		log:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches the online entries for word. It returns an empty,
// non-error slice when the API reports the word was not found.
func (c *Client) Lookup(ctx context.Context, word string) ([]Entry, error) {
	start := time.Now()
	u := c.baseURL + "/" + url.PathEscape(word)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "online: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnw("online lookup failed", "word", word, "err", err, "elapsed", time.Since(start))
		return nil, errors.Wrap(err, "online: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.log.Debugw("online lookup miss", "word", word, "elapsed", time.Since(start))
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("online: unexpected status %s", resp.Status)
	}

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, errors.Wrap(err, "online: decode response")
	}

	c.log.Infow("online lookup", "word", word, "entries", len(entries), "elapsed", time.Since(start))
	return entries, nil
}

// FormatError renders the themed failure fragment shown when the online
// call itself errors out, as opposed to a clean not-found response.
func FormatError() string {
	return `<div class="error" style="padding: 20px; background: #3a2525; color: #e88; border-radius: 6px;">` +
		`online lookup failed, please check your network connection` +
		`</div>`
}

// FormatNotFound renders the themed "no online results" fragment, used
// when the API call succeeds but returns zero entries.
func FormatNotFound(word string) string {
	var buf bytes.Buffer
	notFoundTemplate.Execute(&buf, word)
	return buf.String()
}

// FormatHTML renders the first of data's entries as a standalone themed
// HTML fragment. Only the API's top result is shown.
func FormatHTML(data []Entry, searchWord string) (string, error) {
	if len(data) == 0 {
		return FormatNotFound(searchWord), nil
	}
	var buf bytes.Buffer
	if err := resultTemplate.Execute(&buf, data[0]); err != nil {
		return "", errors.Wrap(err, "online: render result")
	}
	return buf.String(), nil
}

var notFoundTemplate = template.Must(template.New("online-not-found").Parse(`
<div class="not-found" style="padding: 20px; background: #3a3525; color: #da6; border-radius: 6px; text-align: center;">
  <h3>Not Found</h3>
  <p>No online results for "<strong>{{.}}</strong>".</p>
</div>
`))

var resultTemplate = template.Must(template.New("online-result").Funcs(template.FuncMap{
	"firstPhonetic": func(e Entry) string { return e.FirstPhonetic() },
}).Parse(`
<div class="word-header">
  <div class="word-title">{{.Word}}</div>
  {{with firstPhonetic .}}<div class="phonetic"><span class="phonetic-item">{{.}}</span></div>{{end}}
</div>
{{range .Meanings}}
<div class="meaning-section">
  <span class="part-of-speech">{{.PartOfSpeech}}</span>
  <ul class="definition-list">
    {{range .Definitions}}
    <li class="definition-item">
      <div class="definition-text">{{.Definition}}</div>
      {{if .Example}}<div class="example">{{.Example}}</div>{{end}}
    </li>
    {{end}}
  </ul>
  {{if .Synonyms}}<div class="synonyms">Synonyms: {{range $i, $s := .Synonyms}}{{if $i}}, {{end}}<span>{{$s}}</span>{{end}}</div>{{end}}
</div>
{{end}}
<div class="source-info">via dictionaryapi.dev</div>
`))
