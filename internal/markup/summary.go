package markup

import (
	"io"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Summary is a diagnostic view of a generated document.
type Summary struct {
	Elements        int
	InlineScripts   int
	ExternalScripts []string
	HasBody         bool
	HasStyle        bool
}

// Summarize tokenizes the document and counts the structure that matters
// for capture. It never rejects markup the browser would accept.
func Summarize(doc string) (Summary, error) {
	var s Summary
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return s, err
			}
			return s, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			s.Elements++
			name, hasAttr := z.TagName()
			switch atom.Lookup(name) {
			case atom.Body:
				s.HasBody = true
			case atom.Style:
				s.HasStyle = true
			case atom.Script:
				src := ""
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if string(key) == "src" {
						src = strings.TrimSpace(string(val))
					}
				}
				if src == "" {
					s.InlineScripts++
					continue
				}
				host := src
				if u, err := url.Parse(src); err == nil && u.Host != "" {
					host = u.Host
				}
				if !slices.Contains(s.ExternalScripts, host) {
					s.ExternalScripts = append(s.ExternalScripts, host)
				}
			}
		}
	}
}
