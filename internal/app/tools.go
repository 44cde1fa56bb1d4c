package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the navdash server version and status. Use this to verify connectivity."),
	)
}

// createListSchemesTool returns the list_schemes tool definition
func createListSchemesTool() mcp.Tool {
	return mcp.NewTool("list_schemes",
		mcp.WithDescription("List configured investment schemes with their kind (live, frozen, composite), activity flag and components. With account_id, lists only that account's schemes in display order."),
		mcp.WithString("account_id",
			mcp.Description("Optional account identifier, e.g. ACC-001"),
		),
	)
}

// createGetSchemeAnalyticsTool returns the get_scheme_analytics tool definition
func createGetSchemeAnalyticsTool() mcp.Tool {
	return mcp.NewTool("get_scheme_analytics",
		mcp.WithDescription("Compute performance analytics (return, drawdown, trailing returns, monthly and quarterly P&L, cash flows) for every scheme an account sees, or for one scheme."),
		mcp.WithString("account_id",
			mcp.Required(),
			mcp.Description("Account identifier, e.g. ACC-001"),
		),
		mcp.WithString("scheme",
			mcp.Description("Optional scheme display name; omit for all of the account's schemes"),
		),
		mcp.WithString("from",
			mcp.Description("Optional cutoff date (YYYY-MM-DD) applied to live data"),
		),
	)
}

// createInvalidateCacheTool returns the invalidate_cache tool definition
func createInvalidateCacheTool() mcp.Tool {
	return mcp.NewTool("invalidate_cache",
		mcp.WithDescription("Drop the in-process record cache so the next request reloads from the record store. Use after new daily records have been ingested."),
	)
}
