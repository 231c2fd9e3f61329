// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Grape summaries and quick logging tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/grapebaby/grape/internal/trackservice"
)

const contractURI = "grape://record-format"

// Server wraps the MCP server with Grape tools.
type Server struct {
	mcp *server.MCPServer
	svc *trackservice.Service
}

// New creates a new MCP server with all Grape tools registered.
func New(svc *trackservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Grape",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_today_overview",
		mcp.WithDescription("Today's feeding count and volume, completed sleep, diaper count and any sleep in progress."),
	), s.getTodayOverview)

	s.mcp.AddTool(mcp.NewTool("get_day_summary",
		mcp.WithDescription("Records and totals of one civil day."),
		mcp.WithString("date", mcp.Description("YYYY-MM-DD; empty for today")),
	), s.getDaySummary)

	s.mcp.AddTool(mcp.NewTool("get_month_summary",
		mcp.WithDescription("Per-day totals of a civil month. Days without records are omitted."),
		mcp.WithString("month", mcp.Description("YYYY-MM; empty for the current month")),
	), s.getMonthSummary)

	s.mcp.AddTool(mcp.NewTool("get_trends",
		mcp.WithDescription("Daily feeding, sleep and diaper series for a trailing window, one entry per day."),
		mcp.WithString("range", mcp.Description("7, 30, 90 or all"), mcp.Enum("7", "30", "90", "all")),
	), s.getTrends)

	s.mcp.AddTool(mcp.NewTool("log_feeding",
		mcp.WithDescription("Log a feeding. Read the record contract first via get_record_contract or "+contractURI+"."),
		mcp.WithString("time", mcp.Description("Wall-clock time, e.g. 2026-03-15T07:30; empty for now")),
		mcp.WithString("type", mcp.Required(), mcp.Enum("formula", "rice_cereal")),
		mcp.WithNumber("amount", mcp.Description("Volume in ml")),
		mcp.WithString("note"),
	), s.logFeeding)

	s.mcp.AddTool(mcp.NewTool("log_diaper",
		mcp.WithDescription("Log a diaper change."),
		mcp.WithString("time", mcp.Description("Wall-clock time; empty for now")),
		mcp.WithString("type", mcp.Required(), mcp.Enum("wet", "dirty", "both")),
		mcp.WithString("color"),
		mcp.WithString("note"),
	), s.logDiaper)

	s.mcp.AddTool(mcp.NewTool("start_sleep",
		mcp.WithDescription("Start a sleep interval. End it later with end_sleep."),
		mcp.WithString("time", mcp.Description("Wall-clock start time; empty for now")),
	), s.startSleep)

	s.mcp.AddTool(mcp.NewTool("end_sleep",
		mcp.WithDescription("End an open sleep interval. The id comes from start_sleep or get_today_overview."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Sleep record id")),
		mcp.WithString("time", mcp.Description("Wall-clock end time; empty for now")),
	), s.endSleep)

	s.mcp.AddTool(mcp.NewTool("get_record_contract",
		mcp.WithDescription("Returns the time, date and record type formats the logging tools accept."),
	), s.getRecordContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Record Format Contract",
			mcp.WithResourceDescription("Time and date string formats and record types."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getTodayOverview(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dash, err := s.svc.Dashboard(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"today":       dash.Today,
		"activeSleep": dash.ActiveSleep,
	})
}

func (s *Server) getDaySummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := s.svc.ParseDateOrToday(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.DayDetail(ctx, day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail)
}

func (s *Server) getMonthSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	month, err := s.svc.ParseMonthOrCurrent(req.GetString("month", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.svc.MonthSummary(ctx, month)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(view)
}

func (s *Server) getTrends(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tr, err := s.svc.Trends(ctx, req.GetString("range", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tr)
}

func (s *Server) logFeeding(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := trackservice.FeedingInput{
		Time: req.GetString("time", ""),
		Type: typ,
		Note: req.GetString("note", ""),
	}
	if _, ok := req.GetArguments()["amount"]; ok {
		amount := req.GetFloat("amount", 0)
		in.Amount = &amount
	}
	f, err := s.svc.LogFeeding(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(f)
}

func (s *Server) logDiaper(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.LogDiaper(ctx, trackservice.DiaperInput{
		Time:  req.GetString("time", ""),
		Type:  typ,
		Color: req.GetString("color", ""),
		Note:  req.GetString("note", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d)
}

func (s *Server) startSleep(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sl, err := s.svc.LogSleep(ctx, trackservice.SleepInput{StartTime: req.GetString("time", "")})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(sl)
}

func (s *Server) endSleep(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sl, err := s.svc.EndSleep(ctx, id, trackservice.EndSleepInput{EndTime: req.GetString("time", "")})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(sl)
}

func (s *Server) getRecordContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readRecordFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}
