// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes library migration tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/electrovir/itunes-library-migration-assistant/internal/api"
	"github.com/electrovir/itunes-library-migration-assistant/internal/library"
	"github.com/electrovir/itunes-library-migration-assistant/internal/location"
	"github.com/electrovir/itunes-library-migration-assistant/internal/migration"
)

const rulesFormatURI = "itlma://rules-format"

// Server wraps the MCP server with migration tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *api.Service
	logger *slog.Logger
}

// New creates a new MCP server with all migration tools registered.
func New(svc *api.Service, logger *slog.Logger) *Server {
	s := &Server{svc: svc, logger: logger}

	s.mcp = server.NewMCPServer(
		"iTunes Library Migration Assistant",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("migrate_library",
		mcp.WithDescription("Rewrite the track locations of a library file. "+
			"Read the rules format first via the get_rules_format tool or the "+
			rulesFormatURI+" resource."),
		mcp.WithString("library_path", mcp.Required(), mcp.Description("Path to the library XML file")),
		mcp.WithString("rules", mcp.Required(), mcp.Description(`JSON array of rules, e.g. [{"old": "/a/", "new": "/b/"}]`)),
		mcp.WithString("output_type",
			mcp.Description("write-to-file (default), plist-string or json-object"),
			mcp.Enum(string(library.WriteToFile), string(library.PlistString), string(library.JSONObject)),
		),
		mcp.WithBoolean("check_files", mcp.Description("Fail when a rewritten location does not exist")),
		mcp.WithBoolean("check_replacement_paths", mcp.Description("Fail on unmatched locations or unused rules (default true)")),
		mcp.WithBoolean("validate", mcp.Description("Validate the library before migrating (default true)")),
	), s.migrateLibrary)

	s.mcp.AddTool(mcp.NewTool("validate_library",
		mcp.WithDescription("Parse a library file and report every schema violation."),
		mcp.WithString("library_path", mcp.Required(), mcp.Description("Path to the library XML file")),
	), s.validateLibrary)

	s.mcp.AddTool(mcp.NewTool("decode_location",
		mcp.WithDescription("Convert a stored track location into a plain file path."),
		mcp.WithString("location", mcp.Required(), mcp.Description("Escaped location, e.g. file:///Users/me/My%20Song.mp3")),
	), s.decodeLocation)

	s.mcp.AddTool(mcp.NewTool("encode_location",
		mcp.WithDescription("Convert a plain file path into the stored track location form."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Plain path, e.g. /Users/me/My Song.mp3")),
	), s.encodeLocation)

	s.mcp.AddTool(mcp.NewTool("get_rules_format",
		mcp.WithDescription("Returns the replacement rules format. "+
			"Call this before migrate_library to build valid rules."),
	), s.getRulesFormat)

	// Resource: rules format contract.
	s.mcp.AddResource(
		mcp.NewResource(rulesFormatURI, "Replacement Rules Format",
			mcp.WithResourceDescription("Format and matching semantics of replacement rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRulesFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type migrateSummary struct {
	OutputType string   `json:"outputType"`
	FilePath   string   `json:"filePath,omitempty"`
	Checksum   string   `json:"checksum,omitempty"`
	Tracks     int      `json:"tracks"`
	Replaced   int      `json:"replaced"`
	Deleted    int      `json:"deleted"`
	Unreplaced []string `json:"unreplaced,omitempty"`
	RuleUsage  []int    `json:"ruleUsage"`
}

func (s *Server) migrateLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("library_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawRules, err := req.RequireString("rules")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var rules []migration.RawRule
	if err := json.Unmarshal([]byte(rawRules), &rules); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rules must be a JSON array of rules: %v", err)), nil
	}

	in := api.Input{
		LibraryFilePath: path,
		ReplacePaths:    rules,
		OutputType:      library.OutputKind(req.GetString("output_type", string(library.WriteToFile))),
		Options: &api.Options{
			ValidationEnabled:     api.Bool(req.GetBool("validate", true)),
			CheckReplacementPaths: api.Bool(req.GetBool("check_replacement_paths", true)),
			CheckFiles:            api.Bool(req.GetBool("check_files", false)),
		},
	}

	res, err := s.svc.Migrate(ctx, in)
	if err != nil {
		s.logger.Warn("mcp: migration failed", slog.String("library", path), slog.String("error", err.Error()))
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch res.Kind {
	case library.PlistString:
		return mcp.NewToolResultText(res.Plist), nil
	case library.JSONObject:
		data, err := library.ToJSON(res.Library)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}

	out, _ := json.MarshalIndent(migrateSummary{
		OutputType: string(res.Kind),
		FilePath:   res.FilePath,
		Checksum:   res.Checksum,
		Tracks:     len(res.Library.Tracks),
		Replaced:   res.Diagnostics.Replaced,
		Deleted:    len(res.Diagnostics.Deleted),
		Unreplaced: res.Diagnostics.Unreplaced,
		RuleUsage:  res.Diagnostics.Usage,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) validateLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("library_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lib, err := s.svc.Validate(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(strings.TrimSpace(err.Error())), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("valid: %d tracks, %d playlists", len(lib.Tracks), len(lib.Playlists))), nil
}

func (s *Server) decodeLocation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc, err := req.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(location.Decode(loc)), nil
}

func (s *Server) encodeLocation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(location.Encode(path)), nil
}

func (s *Server) getRulesFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RulesFormatContract), nil
}

func (s *Server) readRulesFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      rulesFormatURI,
			MIMEType: "text/markdown",
			Text:     RulesFormatContract,
		},
	}, nil
}
