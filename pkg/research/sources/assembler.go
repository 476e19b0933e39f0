package sources

import (
	"context"

	"ai-research-be/pkg/scraper"
	"ai-research-be/pkg/search"

	"golang.org/x/sync/errgroup"
)

// Record is one piece of grounding evidence for a single answer. Ids are
// assigned after assembly so the response always carries a dense 1..N range
// that the client can map citations onto.
type Record struct {
	Id       int
	Title    string
	URL      string
	Content  string
	FullText bool // true when deep-scraped, false for snippet fallback
}

type Config struct {
	ScrapeTopN       int // results scraped for full text
	MinContentChars  int // scrapes shorter than this are discarded
	SourceContentCap int // per-source truncation
	MaxSources       int // total cap including snippet backfill
}

// Assembler turns ranked search results into a bounded, deduplicated set of
// grounding sources. Search order is the only ranking signal.
type Assembler struct {
	extractor scraper.Extractor
	cfg       Config
}

func NewAssembler(extractor scraper.Extractor, cfg Config) *Assembler {
	return &Assembler{
		extractor: extractor,
		cfg:       cfg,
	}
}

// Assemble deep-scrapes the top-N results concurrently, keeps extractions
// above the minimum length, then backfills from the remaining results'
// snippets until the cap. An empty return means nothing was usable.
func (a *Assembler) Assemble(ctx context.Context, results []search.Result) []Record {
	topN := a.cfg.ScrapeTopN
	if topN > len(results) {
		topN = len(results)
	}

	// Fan out the scrapes; a failing URL only loses its own slot and the
	// slice keeps search-rank order.
	texts := make([]string, topN)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < topN; i++ {
		i := i
		g.Go(func() error {
			if results[i].Link == "" {
				return nil
			}
			texts[i] = a.extractor.Extract(gctx, results[i].Link)
			return nil
		})
	}
	_ = g.Wait() // scrape goroutines never return errors

	records := make([]Record, 0, a.cfg.MaxSources)
	seen := make(map[string]bool)

	for i := 0; i < topN; i++ {
		text := texts[i]
		if len(text) <= a.cfg.MinContentChars {
			continue
		}
		if results[i].Link == "" || seen[results[i].Link] {
			continue
		}
		seen[results[i].Link] = true
		records = append(records, Record{
			Title:    results[i].Title,
			URL:      results[i].Link,
			Content:  truncate(text, a.cfg.SourceContentCap),
			FullText: true,
		})
	}

	// Snippet backfill when deep scraping came up short.
	if len(records) < a.cfg.ScrapeTopN {
		for _, r := range results {
			if len(records) >= a.cfg.MaxSources {
				break
			}
			if r.Link == "" || seen[r.Link] || r.Snippet == "" {
				continue
			}
			seen[r.Link] = true
			records = append(records, Record{
				Title:    r.Title,
				URL:      r.Link,
				Content:  r.Snippet,
				FullText: false,
			})
		}
	}

	for i := range records {
		records[i].Id = i + 1
	}

	return records
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
