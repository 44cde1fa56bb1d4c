package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/models"
)

// cacheController is the part of App the invalidate_cache tool needs.
type cacheController interface {
	InvalidateCache() bool
}

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("navdash\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleListSchemes implements the list_schemes tool
func handleListSchemes(registry interfaces.SchemeRegistry, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		accountID := request.GetString("account_id", "")

		schemes := registry.Schemes()
		if accountID != "" {
			var err error
			schemes, err = registry.SchemesFor(ctx, accountID)
			if err != nil {
				logger.Warn().Err(err).Str("account", accountID).Msg("List schemes failed")
				return errorResult(fmt.Sprintf("Error: %v", err)), nil
			}
		}

		summaries := make([]models.SchemeSummary, 0, len(schemes))
		for _, sc := range schemes {
			summaries = append(summaries, sc.Summary())
		}
		return jsonResult(summaries)
	}
}

// handleGetSchemeAnalytics implements the get_scheme_analytics tool
func handleGetSchemeAnalytics(svc interfaces.AggregationService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		accountID, err := request.RequireString("account_id")
		if err != nil || accountID == "" {
			return errorResult("Error: account_id parameter is required"), nil
		}

		var opts interfaces.AggregateOptions
		if from := request.GetString("from", ""); from != "" {
			d, err := models.ParseDate(from)
			if err != nil {
				return errorResult(fmt.Sprintf("Error: from must be YYYY-MM-DD: %v", err)), nil
			}
			opts.From = d
		}

		start := time.Now()
		if name := request.GetString("scheme", ""); name != "" {
			res, err := svc.Scheme(ctx, accountID, name, opts)
			if err != nil {
				return lookupError(err, logger, accountID), nil
			}
			logger.Debug().Str("account", accountID).Str("scheme", name).Dur("elapsed", time.Since(start)).Msg("Scheme analytics served")
			return jsonResult(res)
		}

		results, err := svc.Aggregate(ctx, accountID, opts)
		if err != nil {
			return lookupError(err, logger, accountID), nil
		}
		logger.Debug().Str("account", accountID).Int("schemes", len(results.Order)).Dur("elapsed", time.Since(start)).Msg("Scheme analytics served")
		return jsonResult(results)
	}
}

// handleInvalidateCache implements the invalidate_cache tool
func handleInvalidateCache(cache cacheController, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !cache.InvalidateCache() {
			return textResult("Record cache is disabled; nothing to invalidate."), nil
		}
		logger.Info().Msg("Record cache invalidated via MCP")
		return textResult("Record cache invalidated. The next request reloads from the record store."), nil
	}
}

// Helper functions

func lookupError(err error, logger *common.Logger, accountID string) *mcp.CallToolResult {
	if errors.Is(err, interfaces.ErrUnknownAccount) || errors.Is(err, interfaces.ErrUnknownScheme) {
		return errorResult(fmt.Sprintf("Not found: %v", err))
	}
	logger.Error().Err(err).Str("account", accountID).Msg("Scheme analytics failed")
	return errorResult(fmt.Sprintf("Analytics error: %v", err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Encoding error: %v", err)), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
