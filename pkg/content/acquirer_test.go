package content

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinpriest/austcyberevents/pkg/capability"
)

type stubFetcher struct {
	html string
	err  error
}

func (s *stubFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (*capability.HTTPResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &capability.HTTPResponse{Status: 200, Body: []byte(s.html)}, nil
}

type stubArticleParser struct {
	result *capability.ArticleParse
	err    error
}

func (s *stubArticleParser) Parse(ctx context.Context, url string) (*capability.ArticleParse, error) {
	return s.result, s.err
}

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(html string) (string, error) {
	return s.text, s.err
}

type stubPDF struct {
	text string
	err  error
}

func (s *stubPDF) Extract(data []byte) (string, error) {
	return s.text, s.err
}

type stubBrowser struct {
	html string
	err  error
}

func (s *stubBrowser) Render(ctx context.Context, url string, timeout time.Duration) (string, error) {
	return s.html, s.err
}

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = "word"
	}
	return strings.Join(w, " ")
}

func TestAcquirerAcceptsNewsArticleParserWhenLongEnough(t *testing.T) {
	a := NewAcquirer(
		&stubFetcher{},
		&stubArticleParser{result: &capability.ArticleParse{Text: words(250), Summary: "summary"}},
		&stubExtractor{},
		&stubExtractor{},
		&stubPDF{},
		&stubBrowser{},
		5*time.Second,
	)

	result := a.Acquire(context.Background(), "https://abc.net.au/news/example", false)
	require.True(t, result.ExtractionSuccess)
	assert.Equal(t, "news_article_parser", result.ExtractionMethod)
	assert.Equal(t, "abc.net.au", result.SourceDomain)
	assert.InDelta(t, 0.93, result.SourceReliability, 1e-9)
}

func TestAcquirerFallsThroughToMainContentExtractor(t *testing.T) {
	a := NewAcquirer(
		&stubFetcher{html: "<html><body><p>content</p></body></html>"},
		&stubArticleParser{err: errors.New("parse failed")},
		&stubExtractor{text: words(220)},
		&stubExtractor{text: words(10)},
		&stubPDF{},
		&stubBrowser{},
		5*time.Second,
	)

	result := a.Acquire(context.Background(), "https://news.example.com/story", false)
	require.True(t, result.ExtractionSuccess)
	assert.Equal(t, "main_content_extractor", result.ExtractionMethod)
}

func TestAcquirerAcceptsWeakFallbackWhenAllMethodsFail(t *testing.T) {
	a := NewAcquirer(
		&stubFetcher{html: "<html></html>"},
		&stubArticleParser{err: errors.New("no parse")},
		&stubExtractor{text: words(5)},
		&stubExtractor{text: words(120)},
		&stubPDF{},
		&stubBrowser{err: errors.New("render failed")},
		5*time.Second,
	)

	result := a.Acquire(context.Background(), "https://news.example.com/story", false)
	require.True(t, result.ExtractionSuccess)
	assert.Equal(t, "dom_fallback", result.ExtractionMethod)
}

func TestAcquirerReportsFailureWhenNoExtractorReachesMinimum(t *testing.T) {
	a := NewAcquirer(
		&stubFetcher{html: "<html></html>"},
		&stubArticleParser{err: errors.New("no parse")},
		&stubExtractor{text: words(5)},
		&stubExtractor{text: words(5)},
		&stubPDF{},
		&stubBrowser{err: errors.New("render failed")},
		5*time.Second,
	)

	result := a.Acquire(context.Background(), "https://news.example.com/story", false)
	assert.False(t, result.ExtractionSuccess)
	assert.Error(t, result.LastError)
}

func TestAcquirerTriesPDFExtractionWhenFlagged(t *testing.T) {
	a := NewAcquirer(
		&stubFetcher{html: "<html></html>"},
		&stubArticleParser{err: errors.New("not html")},
		&stubExtractor{text: words(5)},
		&stubExtractor{text: words(5)},
		&stubPDF{text: words(300)},
		&stubBrowser{err: errors.New("render failed")},
		5*time.Second,
	)

	result := a.Acquire(context.Background(), "https://oaic.gov.au/report.pdf", true)
	require.True(t, result.ExtractionSuccess)
	assert.Equal(t, "pdf_text_extraction", result.ExtractionMethod)
	assert.InDelta(t, 0.97, result.SourceReliability, 1e-9)
}
