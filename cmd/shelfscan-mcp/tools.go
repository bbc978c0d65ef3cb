package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/shelfscan/models"
)

// apiClient calls the shelfscan HTTP API.
type apiClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// get sends a GET request and decodes the JSON body into out. Non-2xx
// responses are still decoded, since the API reports errors in the body.
func (c *apiClient) get(ctx context.Context, path string, params url.Values, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.baseURL, "/")+path+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}

func errorText(fallback string, detail *models.ErrorDetail) string {
	if detail == nil {
		return fallback
	}
	return fmt.Sprintf("[%s] %s", detail.Code, detail.Message)
}

func handleSearchProducts(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || strings.TrimSpace(query) == "" {
			return mcp.NewToolResultError("query is required"), nil
		}

		params := url.Values{"q": {query}}
		if pages := request.GetInt("pages", 0); pages > 0 {
			params.Set("pages", strconv.Itoa(pages))
		}

		var resp models.SearchResponse
		status, err := c.get(ctx, "/api/products", params, &resp)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(errorText(fmt.Sprintf("search failed with status %d", status), resp.Error)), nil
		}

		return mcp.NewToolResultText(formatProducts(query, resp)), nil
	}
}

func formatProducts(query string, resp models.SearchResponse) string {
	var sb strings.Builder
	if len(resp.Products) == 0 {
		fmt.Fprintf(&sb, "No products found for %q.", query)
		return sb.String()
	}

	fmt.Fprintf(&sb, "%d products for %q", len(resp.Products), query)
	if resp.Stats != nil {
		fmt.Fprintf(&sb, " (%d pages, %s)", resp.Stats.PagesFetched, resp.Stats.StopReason)
	}
	sb.WriteString(":\n\n")

	for i, p := range resp.Products {
		fmt.Fprintf(&sb, "%d. %s\n   Price: %s\n   Image: %s\n", i+1, p.Title, p.Price, p.ImageURL)
		if p.Link != "" {
			fmt.Fprintf(&sb, "   Link: %s\n", p.Link)
		}
	}
	return sb.String()
}

func handleDescribeProduct(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		productURL, err := request.RequireString("url")
		if err != nil || productURL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}

		params := url.Values{"url": {productURL}}
		if format := request.GetString("format", ""); format != "" {
			params.Set("format", format)
		}

		var resp models.DescribeResponse
		status, err := c.get(ctx, "/api/product-description", params, &resp)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(errorText(fmt.Sprintf("describe failed with status %d", status), resp.Error)), nil
		}
		if resp.Description == "" {
			return mcp.NewToolResultText("The product page could not be loaded; no description was read."), nil
		}

		return mcp.NewToolResultText(resp.Description), nil
	}
}
