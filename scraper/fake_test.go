package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/shelfscan/config"
)

const testOrigin = "https://shop.test"

// fakeSite is an in-memory Launcher serving fixed HTML per URL.
type fakeSite struct {
	mu sync.Mutex

	pages map[string]string

	// navErrs are returned, in order, by navigations to a URL before it
	// starts succeeding.
	navErrs map[string][]error

	launchErr     error
	panicSnapshot bool

	launches    int
	closes      int
	navigations []string
	userAgents  []string
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages:   make(map[string]string),
		navErrs: make(map[string][]error),
	}
}

func (f *fakeSite) Launch(_ context.Context) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.launchErr != nil {
		return nil, f.launchErr
	}
	f.launches++
	return &fakeSession{site: f}, nil
}

func (f *fakeSite) navigationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.navigations)
}

type fakeSession struct {
	site    *fakeSite
	current string
	once    sync.Once
}

func (s *fakeSession) Configure(_ context.Context, userAgent string) error {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()
	s.site.userAgents = append(s.site.userAgents, userAgent)
	return nil
}

func (s *fakeSession) Navigate(ctx context.Context, url string, _ time.Duration) error {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()
	s.site.navigations = append(s.site.navigations, url)
	if err := ctx.Err(); err != nil {
		return err
	}
	if q := s.site.navErrs[url]; len(q) > 0 {
		s.site.navErrs[url] = q[1:]
		return q[0]
	}
	s.current = url
	return nil
}

func (s *fakeSession) Snapshot(_ context.Context) (*RenderedPage, error) {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()
	if s.site.panicSnapshot {
		panic("renderer crashed")
	}
	body, ok := s.site.pages[s.current]
	if !ok {
		body = "<html><body></body></html>"
	}
	return &RenderedPage{URL: s.current, HTML: body}, nil
}

func (s *fakeSession) Close() error {
	s.once.Do(func() {
		s.site.mu.Lock()
		s.site.closes++
		s.site.mu.Unlock()
	})
	return nil
}

// sleepRecorder replaces real waits and remembers what was asked for.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	if r.err != nil {
		return r.err
	}
	return ctx.Err()
}

func testScraperConfig() config.ScraperConfig {
	return config.ScraperConfig{
		Origin:            testOrigin,
		UserAgent:         "shelfscan-test/1.0",
		NavigationTimeout: time.Second,
		DescribeTimeout:   time.Second,
		MaxAttempts:       3,
		BaseDelay:         5 * time.Second,
		PageDelay:         5 * time.Second,
	}
}

// newTestSearcher wires a Searcher whose retry and page waits go to the
// returned recorders instead of the clock.
func newTestSearcher(site *fakeSite) (*Searcher, *sleepRecorder, *sleepRecorder) {
	cfg := testScraperConfig()
	retrySleeps := &sleepRecorder{}
	pageSleeps := &sleepRecorder{}

	retry := RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		Sleep:       retrySleeps.sleep,
	}
	s := NewSearcher(site, NewPageFetcher(cfg.UserAgent, cfg.NavigationTimeout, retry), NewExtractor(cfg.Origin), cfg)
	s.sleep = pageSleeps.sleep
	return s, retrySleeps, pageSleeps
}

type item struct {
	title, price, image, href string
}

// resultItem renders one result container, leaving out empty fields.
func resultItem(it item) string {
	var b strings.Builder
	b.WriteString(`<div class="s-result-item" data-component-type="s-search-result">`)
	if it.image != "" {
		fmt.Fprintf(&b, `<img class="s-image" src="%s" alt="">`, it.image)
	}
	if it.title != "" {
		if it.href != "" {
			fmt.Fprintf(&b, `<h2><a class="a-link-normal" href="%s"><span>%s</span></a></h2>`, it.href, it.title)
		} else {
			fmt.Fprintf(&b, `<h2><span>%s</span></h2>`, it.title)
		}
	}
	if it.price != "" {
		fmt.Fprintf(&b, `<span class="a-price"><span class="a-price-whole">%s</span></span>`, it.price)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func resultsPage(items ...item) string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Results</title><script>var x = 1;</script></head><body>`)
	b.WriteString(`<div class="s-main-slot s-result-list">`)
	for _, it := range items {
		b.WriteString(resultItem(it))
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// richPage returns a page of n complete products labelled with prefix.
func richPage(prefix string, n int) string {
	items := make([]item, n)
	for i := range items {
		items[i] = item{
			title: fmt.Sprintf("%s product %d", prefix, i+1),
			price: fmt.Sprintf("%d", 100*(i+1)),
			image: fmt.Sprintf("https://img.test/%s-%d.jpg", prefix, i+1),
			href:  fmt.Sprintf("/dp/%s%d", strings.ToUpper(prefix), i+1),
		}
	}
	return resultsPage(items...)
}
