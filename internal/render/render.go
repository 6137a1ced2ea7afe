// Package render turns a raw MDict definition into display-ready HTML: it
// resolves @@@LINK= cross-reference redirects, rewrites embedded resource
// links to the mdd-resource:// scheme a collaborating resource server
// answers, and wraps the result in a small themed template.
package render

import (
	"bytes"
	"html/template"
	"path"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// Resolver looks up a word, the same contract mdict.TextDictionary.Lookup
// exposes; render depends on this narrow interface instead of the mdict
// package directly so it can be tested without building a real archive.
type Resolver interface {
	Lookup(word string) (canonicalWord, definition string, found bool, err error)
}

// Settings controls the rendered page's look; config.AppConfig.Display
// supplies the values.
type Settings struct {
	FontFamily string
	FontSize   string
	LineHeight string
	CSS        template.CSS
}

var linkRE = regexp.MustCompile(`@@@LINK=\s*(.+?)(?:\s*<|$)`)

// maxRedirectDepth bounds @@@LINK= chains so a cyclic or absurdly long
// redirect chain cannot recurse forever.
const maxRedirectDepth = 8

// Definition resolves word through resolver, following @@@LINK= redirects,
// and renders the result as a themed HTML fragment. found is false (with a
// nil error and empty html) when the word is absent after following every
// redirect.
func Definition(resolver Resolver, word string, settings Settings) (html string, found bool, err error) {
	canonical, raw, found, err := followRedirects(resolver, word, 0)
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, nil
	}

	rewritten := rewriteResourceLinks(raw)
	page, err := renderPage(settings, canonical, word, rewritten)
	if err != nil {
		return "", false, err
	}
	return page, true, nil
}

// followRedirects resolves word and, if its definition contains an
// @@@LINK=target marker anywhere, looks up target instead, up to
// maxRedirectDepth hops.
func followRedirects(resolver Resolver, word string, depth int) (canonical, definition string, found bool, err error) {
	if depth >= maxRedirectDepth {
		return "", "", false, errors.New("render: @@@LINK= redirect chain too long")
	}

	canonical, definition, found, err = resolver.Lookup(word)
	if err != nil || !found {
		return "", "", false, err
	}

	if m := linkRE.FindStringSubmatch(definition); m != nil {
		return followRedirects(resolver, m[1], depth+1)
	}
	return canonical, definition, true, nil
}

var imgSrcRE = regexp.MustCompile(`(<img[^>]+src=["'])([^"']+)(["'][^>]*>)`)
var audioHrefRE = regexp.MustCompile(`(<a[^>]+href=["'])([^"']*\.(?:mp3|wav|ogg))(["'][^>]*>)`)

// rewriteResourceLinks rewrites local <img src> and audio <a href> targets
// to mdd-resource://<basename>, leaving http(s), data:, and already-rewritten
// links untouched.
func rewriteResourceLinks(html string) string {
	html = imgSrcRE.ReplaceAllStringFunc(html, func(m string) string {
		parts := imgSrcRE.FindStringSubmatch(m)
		if isExternalOrRewritten(parts[2]) {
			return m
		}
		return parts[1] + "mdd-resource://" + path.Base(parts[2]) + parts[3]
	})
	html = audioHrefRE.ReplaceAllStringFunc(html, func(m string) string {
		parts := audioHrefRE.FindStringSubmatch(m)
		if isExternalOrRewritten(parts[2]) {
			return m
		}
		return parts[1] + "mdd-resource://" + path.Base(parts[2]) + parts[3]
	})
	return html
}

func isExternalOrRewritten(src string) bool {
	return hasPrefixAny(src, "http", "data:", "mdd-resource://")
}

func hasPrefixAny(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}

var pageTemplate = template.Must(template.New("definition").Parse(`
<style>
.dict-content { font-family: '{{.FontFamily}}', -apple-system, BlinkMacSystemFont, 'PingFang SC', 'Microsoft YaHei', sans-serif;
  font-size: {{.FontSize}}px; line-height: {{.LineHeight}}; color: #e0e0e0; }
.dict-content .word-title { font-size: {{.TitleSize}}px; font-weight: bold; color: #fff; margin-bottom: 10px; }
.dict-content .redirect-info { font-size: {{.SmallSize}}px; color: #888; margin-bottom: 10px; font-style: italic; }
{{.CSS}}
.dict-content img { max-width: 100%; height: auto; }
.dict-content a { color: #6af !important; text-decoration: none; }
</style>
<div class="dict-content">
  <div class="word-title">{{.DisplayWord}}</div>
  {{if .Redirected}}<div class="redirect-info">(redirected from "{{.OriginalWord}}")</div>{{end}}
  {{.Definition}}
</div>
`))

type pageData struct {
	FontFamily   string
	FontSize     string
	LineHeight   string
	TitleSize    string
	SmallSize    string
	CSS          template.CSS
	DisplayWord  string
	OriginalWord string
	Redirected   bool
	Definition   template.HTML
}

func renderPage(s Settings, displayWord, originalWord, definition string) (string, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		FontFamily:   s.FontFamily,
		FontSize:     s.FontSize,
		LineHeight:   s.LineHeight,
		TitleSize:    adjustSize(s.FontSize, 6),
		SmallSize:    adjustSize(s.FontSize, -2),
		CSS:          s.CSS,
		DisplayWord:  displayWord,
		OriginalWord: originalWord,
		Redirected:   displayWord != originalWord,
		Definition:   template.HTML(definition),
	})
	if err != nil {
		return "", errors.Wrap(err, "render: execute template")
	}
	return buf.String(), nil
}

// adjustSize derives the title/redirect font sizes from the base one,
// falling back to 14 when the configured size does not parse.
func adjustSize(base string, delta int) string {
	n, err := strconv.Atoi(base)
	if err != nil {
		n = 14
	}
	return strconv.Itoa(n + delta)
}

// NotFound renders the themed "not found" fragment shown when lookup and
// every redirect it might have followed come up empty.
func NotFound(word string) string {
	var buf bytes.Buffer
	notFoundTemplate.Execute(&buf, word)
	return buf.String()
}

var notFoundTemplate = template.Must(template.New("not-found").Parse(`
<div class="not-found" style="padding: 20px; background: #3a3525; color: #da6; border-radius: 6px; text-align: center;">
  <h3>Not Found</h3>
  <p>Word "<strong>{{.}}</strong>" not found in dictionary.</p>
  <p style="color: #666; font-size: 12px; margin-top: 10px;">Please check your spelling</p>
</div>
`))
