package scraper

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Extractor turns a URL into readable article text. Implementations never
// return an error: a page that cannot be extracted yields "".
type Extractor interface {
	Extract(ctx context.Context, url string) string
}

// ArticleExtractor runs a boilerplate-aware readability pass first and falls
// back to a raw fetch with structural elements stripped.
type ArticleExtractor struct {
	client          *http.Client
	fallbackTimeout time.Duration
}

var _ Extractor = &ArticleExtractor{}

func NewArticleExtractor(fallbackTimeout time.Duration) *ArticleExtractor {
	return &ArticleExtractor{
		client: &http.Client{
			Timeout: fallbackTimeout,
		},
		fallbackTimeout: fallbackTimeout,
	}
}

func (e *ArticleExtractor) Extract(ctx context.Context, url string) string {
	if text := e.extractArticle(url); text != "" {
		return text
	}
	return e.extractRaw(ctx, url)
}

// extractArticle is the primary pass, tuned for news/article markup.
func (e *ArticleExtractor) extractArticle(url string) string {
	article, err := readability.FromURL(url, e.fallbackTimeout)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

// extractRaw fetches the page with a browser-like user agent and strips
// script/style/nav/footer/header/aside before taking the text. The library
// has no timeout of its own so the request is bounded here.
func (e *ArticleExtractor) extractRaw(ctx context.Context, url string) string {
	reqCtx, cancel := context.WithTimeout(ctx, e.fallbackTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "GET", url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	doc.Find("script, style, nav, footer, header, aside").Remove()

	return collapseWhitespace(doc.Find("body").Text())
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
