package shs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLPageError is the decode cause when the upstream answered with an HTML
// page, typically a proxy or maintenance page, instead of JSON.
type HTMLPageError struct {
	Title string
}

func (e *HTMLPageError) Error() string {
	if e.Title == "" {
		return "response is an HTML page"
	}
	return fmt.Sprintf("response is an HTML page: %s", e.Title)
}

// classifyList turns a response into a list outcome.
func classifyList(resp *Response) Outcome[[]Item] {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return HTTPError[[]Item](resp.StatusCode, resp.Body, nil)
	}
	items, err := decodeList(resp.Body)
	if err != nil {
		return DecodeError[[]Item](resp.Body, err)
	}
	if len(items) == 0 {
		return Empty[[]Item]()
	}
	return Success(items)
}

// classifyItem turns a response into a single-entity outcome.
func classifyItem(resp *Response) Outcome[Item] {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return HTTPError[Item](resp.StatusCode, resp.Body, nil)
	}
	if err := checkNotHTML(resp.Body); err != nil {
		return DecodeError[Item](resp.Body, err)
	}
	var it Item
	if err := json.Unmarshal(resp.Body, &it); err != nil {
		return DecodeError[Item](resp.Body, fmt.Errorf("parsing entity response: %w", err))
	}
	if it.URI == "" && it.DisplayName() == "" {
		return Empty[Item]()
	}
	return Success(it)
}

// decodeList accepts either a list envelope object or a bare JSON array.
func decodeList(body []byte) ([]Item, error) {
	if err := checkNotHTML(body); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Item
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("parsing list response: %w", err)
		}
		return items, nil
	}

	var env listEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("parsing list response: %w", err)
	}
	return env.items(), nil
}

func checkNotHTML(body []byte) error {
	if !looksLikeHTML(body) {
		return nil
	}
	return &HTMLPageError{Title: htmlTitle(body)}
}

func looksLikeHTML(body []byte) bool {
	head := bytes.TrimSpace(body)
	if len(head) > 512 {
		head = head[:512]
	}
	lower := strings.ToLower(string(head))
	return strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html")
}

// htmlTitle returns the text of the first <title> element, or "".
func htmlTitle(body []byte) string {
	z := html.NewTokenizer(bytes.NewReader(body))
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = atom.Lookup(name) == atom.Title
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(z.Text()))
			}
		case html.EndTagToken:
			inTitle = false
		}
	}
}

// htmlPage returns the HTML page cause of err, if any.
func htmlPage(err error) (*HTMLPageError, bool) {
	var page *HTMLPageError
	if errors.As(err, &page) {
		return page, true
	}
	return nil, false
}
