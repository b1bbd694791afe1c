// Package postback replays the stateful form interactions legacy county
// portals are built on: GET a page, echo back every hidden field the server
// rendered, and POST the merged payload on the same cookie-bearing session.
package postback

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"countytax-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("countytax.lib.postback")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// TransportError is a network failure or a non-2xx response. Timeouts
// surface here too, callers cannot distinguish slow from down.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %s", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FormState is a snapshot of every named input on a live page. The portal's
// postback validation rejects submissions missing fields it rendered, so the
// snapshot keeps them all, validation tokens included. Callers never build
// one by hand, they harvest via FetchState and layer overrides with Merge.
type FormState map[string]string

// Merge returns a new FormState with overrides applied on top of the
// snapshot. The receiver is left untouched.
func (s FormState) Merge(overrides map[string]string) FormState {
	merged := make(FormState, len(s)+len(overrides))
	for key, value := range s {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}
	return merged
}

// Session is one cookie jar worth of portal state. A session backs exactly
// one logical multi-step interaction at a time; two goroutines sharing a
// session will trip the portal's postback validation.
type Session struct {
	Http *resty.Client
}

func NewSession(timeout time.Duration) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetTimeout(timeout)
	client.SetHeader("user-agent", userAgent)
	telemetry.InstrumentResty(client, "countytax.lib.postback.http")

	return &Session{Http: client}, nil
}

// FetchState issues a GET and harvests the current value of every named
// input field on the page.
func (s *Session) FetchState(ctx context.Context, link string) (FormState, error) {
	ctx, span := tracer.Start(ctx, "session:FetchState")
	defer span.End()

	res, err := s.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch form page")
		return nil, &TransportError{URL: link, Err: err}
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "form page returned error status")
		return nil, &TransportError{URL: link, Status: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse form page")
		return nil, err
	}

	state := FormState{}
	doc.Find("input[name]").Each(func(_ int, input *goquery.Selection) {
		name := input.AttrOr("name", "")
		if name == "" {
			return
		}
		state[name] = input.AttrOr("value", "")
	})

	return state, nil
}

// Fetch issues a plain GET on the session, for pages reached by navigation
// rather than postback (detail pages, ledger pages).
func (s *Session) Fetch(ctx context.Context, link string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "session:Fetch")
	defer span.End()

	res, err := s.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch page")
		return nil, &TransportError{URL: link, Err: err}
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "page returned error status")
		return nil, &TransportError{URL: link, Status: res.StatusCode()}
	}
	return res.Body(), nil
}

// Submit merges overrides over the harvested state and POSTs the result as a
// form submission on the same session the state was harvested from. The raw
// response body comes back on success. No retries happen here; retry policy
// belongs to the adapters.
func (s *Session) Submit(ctx context.Context, link string, base FormState, overrides map[string]string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "session:Submit")
	defer span.End()

	payload := base.Merge(overrides)

	res, err := s.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string(payload)).
		Post(link)
	if err != nil {
		span.SetStatus(codes.Error, "failed to submit form")
		return nil, &TransportError{URL: link, Err: err}
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "form submission returned error status")
		return nil, &TransportError{URL: link, Status: res.StatusCode()}
	}

	return res.Body(), nil
}
