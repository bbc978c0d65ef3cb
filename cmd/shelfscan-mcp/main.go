package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("SHELFSCAN_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}

	c := &apiClient{
		baseURL: apiURL,
		apiKey:  os.Getenv("SHELFSCAN_API_KEY"),
		// A multi-page search pauses between pages and may retry each one.
		http: &http.Client{Timeout: 15 * time.Minute},
	}

	s := server.NewMCPServer(
		"shelfscan",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	searchTool := mcp.NewTool("search_products",
		mcp.WithDescription("Search the store and return products (title, price, image, link) from up to `pages` result pages. Pages are fetched one after another with a pause between them, so large values are slow."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search term, e.g. 'wireless mouse'"),
		),
		mcp.WithNumber("pages",
			mcp.Description("Maximum number of result pages to read (default: 1)"),
		),
	)
	s.AddTool(searchTool, handleSearchProducts(c))

	describeTool := mcp.NewTool("describe_product",
		mcp.WithDescription("Fetch a product page and return its description text. Returns 'no description available' when the page has none."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Product page URL, usually a `link` from search_products"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'text' (default) or 'markdown'"),
			mcp.Enum("text", "markdown"),
		),
	)
	s.AddTool(describeTool, handleDescribeProduct(c))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
