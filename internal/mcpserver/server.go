// Package mcpserver exposes the stored shopping state to MCP clients.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/maltedev/shoplens/internal/catalog"
	"github.com/maltedev/shoplens/internal/models"
	"github.com/maltedev/shoplens/internal/persist"
	"github.com/maltedev/shoplens/internal/pricing"
	"github.com/maltedev/shoplens/internal/stats"
)

// Deps holds dependencies for the MCP server. Quotes is optional; without it
// get_quotes returns an error.
type Deps struct {
	Stores  *persist.Stores
	Catalog *catalog.Catalog
	Quotes  pricing.QuoteSource
}

// New creates an MCP server with all shoplens tools registered.
func New(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"shoplens",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("shoplens: search history, wishlist, price alerts and catalog lookups."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("get_statistics",
			mcp.WithDescription("Return dashboard statistics: searches, products found, average savings, wishlist size and active alerts."),
		),
		getStatistics(deps),
	)

	s.AddTool(
		mcp.NewTool("get_scan_statistics",
			mcp.WithDescription("Return vulnerability scan totals by severity."),
		),
		getScanStatistics(deps),
	)

	s.AddTool(
		mcp.NewTool("list_search_history",
			mcp.WithDescription("List past searches, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default all)")),
		),
		listSearchHistory(deps),
	)

	s.AddTool(
		mcp.NewTool("list_wishlist",
			mcp.WithDescription("List saved wishlist items with their best known price."),
		),
		listWishlist(deps),
	)

	s.AddTool(
		mcp.NewTool("list_price_alerts",
			mcp.WithDescription("List price alerts."),
			mcp.WithBoolean("active_only", mcp.Description("Only return enabled alerts")),
		),
		listPriceAlerts(deps),
	)

	s.AddTool(
		mcp.NewTool("search_catalog",
			mcp.WithDescription("Search the product catalog by name, brand, description or tag."),
			mcp.WithString("query", mcp.Description("Search text"), mcp.Required()),
			mcp.WithString("category", mcp.Description("Optional category filter, e.g. Electronics")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of products (default 10)")),
		),
		searchCatalog(deps),
	)

	s.AddTool(
		mcp.NewTool("get_quotes",
			mcp.WithDescription("Quote a catalog product at every retailer that stocks it, cheapest first."),
			mcp.WithString("product_id", mcp.Description("Catalog product id"), mcp.Required()),
		),
		getQuotes(deps),
	)

	s.AddTool(
		mcp.NewTool("set_price_alert",
			mcp.WithDescription("Create or update the price alert for a product at one store."),
			mcp.WithString("product_id", mcp.Description("Catalog product id"), mcp.Required()),
			mcp.WithString("store_id", mcp.Description("Retailer id, e.g. amazon"), mcp.Required()),
			mcp.WithNumber("target_price", mcp.Description("Alert when the price is at or below this"), mcp.Required()),
		),
		setPriceAlert(deps),
	)

	return s
}

// ServeStdio runs the server over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func getStatistics(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(stats.Compute(ctx, stats.Sources{
			History:  deps.Stores.History,
			Results:  deps.Stores.Results,
			Wishlist: deps.Stores.Wishlist,
			Alerts:   deps.Stores.Alerts,
		}))
	}
}

func getScanStatistics(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(stats.ComputeScans(deps.Stores.Scans.List(ctx)))
	}
}

func listSearchHistory(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		history := deps.Stores.History.List(ctx)
		if limit := req.GetInt("limit", 0); limit > 0 && limit < len(history) {
			history = history[:limit]
		}
		return jsonResult(history)
	}
}

func listWishlist(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(deps.Stores.Wishlist.List(ctx))
	}
}

func listPriceAlerts(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if req.GetBool("active_only", false) {
			return jsonResult(deps.Stores.Alerts.ListActive(ctx))
		}
		return jsonResult(deps.Stores.Alerts.List(ctx))
	}
}

func searchCatalog(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}
		category := req.GetString("category", "")

		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}

		out := []models.Product{}
		for _, p := range deps.Catalog.Search(query) {
			if category != "" && !strings.EqualFold(string(p.Category), category) {
				continue
			}
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
		return jsonResult(out)
	}
}

func getQuotes(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Quotes == nil {
			return mcp.NewToolResultError("quotes are not available"), nil
		}
		productID, err := req.RequireString("product_id")
		if err != nil {
			return mcp.NewToolResultError("product_id is required"), nil
		}

		product, ok := deps.Catalog.Product(productID)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("product %s not found", productID)), nil
		}

		quotes, err := deps.Quotes.Quotes(ctx, product)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("quote error: %v", err)), nil
		}
		pricing.SortByTotal(quotes)
		return jsonResult(quotes)
	}
}

func setPriceAlert(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		productID, err := req.RequireString("product_id")
		if err != nil {
			return mcp.NewToolResultError("product_id is required"), nil
		}
		storeID, err := req.RequireString("store_id")
		if err != nil {
			return mcp.NewToolResultError("store_id is required"), nil
		}
		target, err := req.RequireFloat("target_price")
		if err != nil || target <= 0 {
			return mcp.NewToolResultError("target_price must be a positive number"), nil
		}

		product, ok := deps.Catalog.Product(productID)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("product %s not found", productID)), nil
		}
		if _, ok := deps.Catalog.Retailer(storeID); !ok {
			return mcp.NewToolResultError(fmt.Sprintf("store %s not found", storeID)), nil
		}

		alert, err := deps.Stores.Alerts.Upsert(ctx, models.PriceAlert{
			ProductID:   product.ID,
			ProductName: product.Name,
			StoreID:     storeID,
			TargetPrice: target,
			Enabled:     true,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to save alert: %v", err)), nil
		}
		return jsonResult(alert)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
