package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/specdiff/internal/logging"
	"github.com/hpungsan/specdiff/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"spec_upsert": {
		def:     upsertToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpsert },
	},
	"spec_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"spec_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"spec_rekey": {
		def:     rekeyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRekey },
	},
	"spec_attach": {
		def:     attachToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAttach },
	},
	"spec_normalize": {
		def:     normalizeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNormalize },
	},
	"spec_normalize_batch": {
		def:     normalizeBatchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNormalizeBatch },
	},
	"spec_compare": {
		def:     compareToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCompare },
	},
	"spec_diff": {
		def:     diffToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDiff },
	},
	"spec_history": {
		def:     historyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistory },
	},
	"spec_clean": {
		def:     cleanToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClean },
	},
}

// AllToolNames returns all valid tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the spec tools registered.
// Tools listed in the config's DisabledTools are excluded from registration.
func NewServer(env *ops.Env, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"specdiff",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(env)

	disabled := make(map[string]bool)
	for _, name := range env.Config.DisabledTools {
		disabled[name] = true
	}
	if unknown := ValidateDisabledTools(env.Config.DisabledTools); len(unknown) > 0 {
		logging.Warn("unknown tools in disabled_tools", "tools", unknown)
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(env *ops.Env, version string) error {
	s := NewServer(env, version)
	logging.ServerStartup("mcp", "stdio", "version", version)
	return server.ServeStdio(s)
}
