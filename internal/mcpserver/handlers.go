package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jacquev6/chrones/internal/runresult"
	"github.com/jacquev6/chrones/internal/summary"
)

// runResultFileName is the name the `chrones run` CLI command writes the
// frozen run record under, inside the run's logs directory.
const runResultFileName = "run-result.json"

func handleGetRunSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logsDir := stringArg(getArgs(request), "logs_dir", ".")

	results, err := runresult.Load(filepath.Join(logsDir, runResultFileName))
	if err != nil {
		return errResult(fmt.Sprintf("load run result: %v", err)), nil
	}

	main := results.MainProcess
	duration := main.TerminatedBetweenTimestamps[1] - main.StartedBetweenTimestamps[0]

	var peakRSS int64
	for _, m := range main.InstantMetrics {
		if m.MemoryRSS > peakRSS {
			peakRSS = m.MemoryRSS
		}
	}

	digest := map[string]any{
		"exit_code":           main.ExitCode,
		"duration_seconds":    duration,
		"peak_main_process_rss": peakRSS,
		"gpu_monitored":       results.RunSettings.GPUMonitored,
	}

	jsonData, err := json.MarshalIndent(digest, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

func handleGetFunctionSummaries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	logsDir := stringArg(args, "logs_dir", ".")
	filter := stringArg(args, "function_filter", "")

	results, err := runresult.Load(filepath.Join(logsDir, runResultFileName))
	if err != nil {
		return errResult(fmt.Sprintf("load run result: %v", err)), nil
	}

	summaries, err := runresult.Analyze(logsDir, results.MainProcess)
	if err != nil {
		return errResult(fmt.Sprintf("analyze event streams: %v", err)), nil
	}

	type entry struct {
		FunctionName    string   `json:"function_name"`
		Label           *string  `json:"label,omitempty"`
		ExecutionsCount int64    `json:"executions_count"`
		AverageMillis   *float64 `json:"average_millis,omitempty"`
		MedianMillis    *float64 `json:"median_millis,omitempty"`
		MinMillis       *float64 `json:"min_millis,omitempty"`
		MaxMillis       *float64 `json:"max_millis,omitempty"`
		TotalMillis     float64  `json:"total_millis"`
	}

	var entries []entry
	for _, s := range summaries {
		if filter != "" && !strings.Contains(s.FunctionName, filter) {
			continue
		}
		entries = append(entries, entry{
			FunctionName:    s.FunctionName,
			Label:           s.Label,
			ExecutionsCount: s.ExecutionsCount,
			AverageMillis:   millisPtr(s.AverageDuration),
			MedianMillis:    millisPtr(s.MedianDuration),
			MinMillis:       millisPtrFromInt(s.MinDuration),
			MaxMillis:       millisPtrFromInt(s.MaxDuration),
			TotalMillis:     summary.MillisFromNanos(s.TotalDuration),
		})
	}
	if entries == nil {
		entries = []entry{}
	}

	jsonData, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

func millisPtr(ns *float64) *float64 {
	if ns == nil {
		return nil
	}
	v := summary.MillisFromNanos(int64(*ns))
	return &v
}

func millisPtrFromInt(ns *int64) *float64 {
	if ns == nil {
		return nil
	}
	v := summary.MillisFromNanos(*ns)
	return &v
}

func getArgs(request mcp.CallToolRequest) map[string]any {
	if request.Params.Arguments == nil {
		return map[string]any{}
	}
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return args
}

func stringArg(args map[string]any, key, defaultVal string) string {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return defaultVal
	}
	return s
}

func newTextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
	}
}
