package server

import (
	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	cfg := s.app.Config.Server

	s.router.Route("/api", func(r chi.Router) {
		// System
		r.Get("/health", s.handleHealth)
		r.Head("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)

		// Registry
		r.Get("/schemes", s.handleSchemeList)

		// Analytics
		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware(cfg.RateLimit, cfg.RateBurst))
			r.Get("/accounts/{accountID}/schemes", s.handleAccountSchemes)
			r.Get("/accounts/{accountID}/schemes/{scheme}", s.handleAccountScheme)
		})

		// Cache
		r.Post("/cache/invalidate", s.handleCacheInvalidate)
	})

	// MCP over Streamable HTTP
	s.router.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.app.MCPServer,
		mcpserver.WithStateLess(true),
	))
}
