package shs

import "fmt"

// Tag classifies the result of a single upstream call.
type Tag int

// Outcome tags. Every upstream call is classified into exactly one of these.
const (
	TagSuccess Tag = iota
	TagEmpty
	TagHTTPError
	TagDecodeError
)

// String returns the wire name of the tag.
func (t Tag) String() string {
	switch t {
	case TagSuccess:
		return "success"
	case TagEmpty:
		return "empty"
	case TagHTTPError:
		return "http_error"
	case TagDecodeError:
		return "decode_error"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// Outcome is the tagged result of an upstream fetch. Payload is only
// meaningful when Tag is TagSuccess. StatusCode and Body are populated for
// TagHTTPError; Body alone for TagDecodeError. A transport failure that never
// produced a response is a TagHTTPError with StatusCode 0 and Err set.
type Outcome[T any] struct {
	Tag        Tag
	Payload    T
	StatusCode int
	Body       []byte
	Err        error
}

// Success wraps a payload.
func Success[T any](payload T) Outcome[T] {
	return Outcome[T]{Tag: TagSuccess, Payload: payload}
}

// Empty reports a structurally valid response that held no items.
func Empty[T any]() Outcome[T] {
	return Outcome[T]{Tag: TagEmpty}
}

// HTTPError reports a non-2xx status or a failed round trip (status 0).
func HTTPError[T any](status int, body []byte, cause error) Outcome[T] {
	return Outcome[T]{Tag: TagHTTPError, StatusCode: status, Body: capBody(body), Err: cause}
}

// DecodeError reports a body that could not be decoded as the expected structure.
func DecodeError[T any](body []byte, cause error) Outcome[T] {
	return Outcome[T]{Tag: TagDecodeError, Body: capBody(body), Err: cause}
}

// OK reports whether the outcome carries a payload.
func (o Outcome[T]) OK() bool { return o.Tag == TagSuccess }

// Notice returns a short user-facing message for a non-success outcome.
// subject names what was being fetched, e.g. "covers for Nina Simone".
func (o Outcome[T]) Notice(subject string) string {
	switch o.Tag {
	case TagSuccess:
		return ""
	case TagEmpty:
		return fmt.Sprintf("no results found for %s", subject)
	case TagHTTPError:
		if o.StatusCode == 0 {
			return fmt.Sprintf("request for %s failed: %v", subject, o.Err)
		}
		return fmt.Sprintf("upstream returned HTTP %d for %s", o.StatusCode, subject)
	case TagDecodeError:
		if page, ok := htmlPage(o.Err); ok {
			if page.Title == "" {
				return fmt.Sprintf("upstream returned an HTML page instead of JSON for %s", subject)
			}
			return fmt.Sprintf("upstream returned an HTML page (%q) instead of JSON for %s", page.Title, subject)
		}
		return fmt.Sprintf("upstream response for %s could not be decoded", subject)
	default:
		return fmt.Sprintf("unexpected outcome for %s", subject)
	}
}

// Map converts a successful payload with f and carries every other tag
// through unchanged.
func Map[T, U any](o Outcome[T], f func(T) U) Outcome[U] {
	if o.Tag == TagSuccess {
		return Success(f(o.Payload))
	}
	return Into[U](o)
}

// Into retypes a non-success outcome, keeping tag, status, body and cause.
// The payload is dropped, so Into on a success yields a zero-payload success.
func Into[U, T any](o Outcome[T]) Outcome[U] {
	return Outcome[U]{Tag: o.Tag, StatusCode: o.StatusCode, Body: o.Body, Err: o.Err}
}

// capBody keeps diagnostic bodies bounded.
func capBody(body []byte) []byte {
	if len(body) <= maxDiagnosticBody {
		return body
	}
	return body[:maxDiagnosticBody]
}

// OutcomeInfo is the payload-free, serializable form of an outcome.
type OutcomeInfo struct {
	Tag    string `json:"tag"`
	Status int    `json:"status,omitempty"`
	Body   string `json:"body,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Info describes o without its payload, keeping at most maxBody bytes of
// the diagnostic body.
func (o Outcome[T]) Info(maxBody int) OutcomeInfo {
	info := OutcomeInfo{Tag: o.Tag.String(), Status: o.StatusCode}
	body := o.Body
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	info.Body = string(body)
	if o.Err != nil {
		info.Error = o.Err.Error()
	}
	return info
}
