package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/use-agent/shelfscan/models"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "shelfscan API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per query for averaging")
	pages  = flag.Int("pages", 2, "Result pages to request per search")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Queries covering dense, sparse and empty result sets.
var testQueries = []struct {
	Label string
	Query string
}{
	{"Dense", "wireless mouse"},
	{"Specific", "usb c hub 7 in 1"},
	{"Books", "the go programming language"},
	{"Empty", "zzz-nonexistent-item-qwxz"},
}

type runResult struct {
	Run          int    `json:"run"`
	TotalMs      int64  `json:"total_ms"`
	StatusCode   int    `json:"status_code"`
	Products     int    `json:"products"`
	PagesFetched int    `json:"pages_fetched"`
	StopReason   string `json:"stop_reason,omitempty"`
	WithLink     int    `json:"with_link"`
	Described    bool   `json:"described"`
	DescribeMs   int64  `json:"describe_ms,omitempty"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

type queryAverages struct {
	TotalMs    float64 `json:"total_ms"`
	Products   float64 `json:"products"`
	Pages      float64 `json:"pages"`
	DescribeMs float64 `json:"describe_ms"`
}

type queryResult struct {
	Query    string         `json:"query"`
	Label    string         `json:"label"`
	Runs     []runResult    `json:"runs"`
	Averages *queryAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp   string        `json:"timestamp"`
	APIURL      string        `json:"api_url"`
	RunsPerItem int           `json:"runs_per_query"`
	Pages       int           `json:"pages"`
	Results     []queryResult `json:"results"`
}

var client = &http.Client{Timeout: 10 * time.Minute}

func main() {
	flag.Parse()

	fmt.Println("=== shelfscan benchmark ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs:      %d\n", *runs)
	fmt.Printf("Pages:     %d\n", *pages)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure shelfscan is running (go run ./cmd/shelfscan)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		APIURL:      *apiURL,
		RunsPerItem: *runs,
		Pages:       *pages,
	}

	for _, q := range testQueries {
		fmt.Printf("Benchmarking [%s] %q ...\n", q.Label, q.Query)
		qr := queryResult{Query: q.Query, Label: q.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkQuery(q.Query, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d products  %s\n", rr.TotalMs, rr.Products, rr.StopReason)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			qr.Runs = append(qr.Runs, rr)
		}

		qr.Averages = computeAverages(qr.Runs)
		report.Results = append(report.Results, qr)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	c := &http.Client{Timeout: 10 * time.Second}
	resp, err := c.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func get(path string, params url.Values, out any) (int, error) {
	req, err := http.NewRequest(http.MethodGet, *apiURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return 0, err
	}
	if *apiKey != "" {
		req.Header.Set("X-API-Key", *apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
}

// benchmarkQuery runs one search and, when it found a linked product,
// describes the first one.
func benchmarkQuery(query string, run int) runResult {
	rr := runResult{Run: run}

	var sr models.SearchResponse
	status, err := get("/api/products", url.Values{
		"q":     {query},
		"pages": {fmt.Sprint(*pages)},
	}, &sr)
	rr.StatusCode = status
	if err != nil {
		rr.Error = fmt.Sprintf("search failed: %v", err)
		return rr
	}

	rr.Success = sr.Success
	rr.TotalMs = sr.Timing.TotalMs
	rr.Products = len(sr.Products)
	if sr.Stats != nil {
		rr.PagesFetched = sr.Stats.PagesFetched
		rr.StopReason = string(sr.Stats.StopReason)
	}
	if sr.Error != nil {
		rr.Error = sr.Error.Message
	}

	var link string
	for _, p := range sr.Products {
		if p.Link != "" {
			rr.WithLink++
			if link == "" {
				link = p.Link
			}
		}
	}
	if link == "" {
		return rr
	}

	var dr models.DescribeResponse
	if _, err := get("/api/product-description", url.Values{"url": {link}}, &dr); err != nil {
		rr.Error = fmt.Sprintf("describe failed: %v", err)
		return rr
	}
	rr.Described = dr.Success && dr.Description != "" && dr.Description != models.NoDescription
	rr.DescribeMs = dr.Timing.TotalMs
	return rr
}

func computeAverages(runs []runResult) *queryAverages {
	var successCount, describeCount int
	var avg queryAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.Products += float64(r.Products)
		avg.Pages += float64(r.PagesFetched)
		if r.DescribeMs > 0 {
			describeCount++
			avg.DescribeMs += float64(r.DescribeMs)
		}
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.Products /= n
	avg.Pages /= n
	if describeCount > 0 {
		avg.DescribeMs /= float64(describeCount)
	}
	return &avg
}

func printTable(results []queryResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Query\tAvg Latency\tProducts\tPages\tDescribe\tStatus\n")
	fmt.Fprintf(w, "─────\t───────────\t────────\t─────\t────────\t──────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\t-\n", truncate(r.Query, 32))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%.1f\t%.1f\t%dms\t%d\n",
			truncate(r.Query, 32),
			int64(r.Averages.TotalMs),
			r.Averages.Products,
			r.Averages.Pages,
			int64(r.Averages.DescribeMs),
			dominantStatus(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func dominantStatus(runs []runResult) int {
	counts := map[int]int{}
	for _, r := range runs {
		if r.Success {
			counts[r.StatusCode]++
		}
	}
	best, bestCount := 0, 0
	for code, count := range counts {
		if count > bestCount {
			best = code
			bestCount = count
		}
	}
	return best
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
