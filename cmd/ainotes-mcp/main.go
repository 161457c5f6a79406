// ainotes-mcp exposes the utterance interpreter and task store as MCP
// tools over stdio, so an agent can drive the same pipeline the web
// console uses.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vthunder/ainotes/internal/apply"
	"github.com/vthunder/ainotes/internal/hf"
	"github.com/vthunder/ainotes/internal/interpret"
	"github.com/vthunder/ainotes/internal/ner"
	"github.com/vthunder/ainotes/internal/notify"
	"github.com/vthunder/ainotes/internal/task"
)

type deps struct {
	builder *interpret.Builder
	applier *apply.Applier
	store   *task.Store
}

func main() {
	_ = godotenv.Load()

	statePath := os.Getenv("STATE_PATH")
	if statePath == "" {
		statePath = "state"
	}

	store, err := task.Open(statePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open task store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	hfClient := hf.NewClient(os.Getenv("HF_API_TOKEN"))
	recognizer := &ner.Chain{Primary: hfClient, Fallback: ner.NewProseExtractor()}
	rules := interpret.DefaultRules()

	builder := interpret.NewBuilder(
		interpret.NewIntentClassifier(hfClient, rules),
		interpret.NewTargetResolver(store),
		interpret.NewExtractor(rules, recognizer),
		hfClient,
	)

	scheduler := notify.NewScheduler(notify.LogSink{})
	defer scheduler.Stop()
	d := &deps{
		builder: builder,
		applier: apply.New(store, scheduler),
		store:   store,
	}

	s := server.NewMCPServer(
		"ainotes-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.AddTool(interpretTool(), d.handleInterpret)
	s.AddTool(applyTool(), d.handleApply)
	s.AddTool(listTasksTool(), d.handleListTasks)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func interpretTool() mcp.Tool {
	return mcp.NewTool("interpret",
		mcp.WithDescription("Interpret a natural-language task instruction into a structured action without applying it. Returns the operation, target, and extracted fields as JSON."),
		mcp.WithString("utterance",
			mcp.Required(),
			mcp.Description("The instruction, e.g. 'remind me about the Rise email tomorrow 10am, 30m, high'"),
		),
		mcp.WithString("timezone",
			mcp.Description("IANA timezone for deadline resolution. Default: Asia/Kuwait"),
		),
	)
}

func (d *deps) handleInterpret(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)
	utterance, _ := args["utterance"].(string)
	tz, _ := args["timezone"].(string)
	if tz == "" {
		tz = "Asia/Kuwait"
	}

	parsed, err := d.builder.Build(ctx, utterance, tz, "")
	if err != nil {
		return mcp.NewToolResultError("utterance is required"), nil
	}
	return jsonResult(parsed)
}

func applyTool() mcp.Tool {
	return mcp.NewTool("apply",
		mcp.WithDescription("Interpret a natural-language task instruction and apply it to the task store. Returns the resulting task. Fails if a title target matches more than one task; re-run with task_id to disambiguate."),
		mcp.WithString("utterance",
			mcp.Required(),
			mcp.Description("The instruction to interpret and apply"),
		),
		mcp.WithString("timezone",
			mcp.Description("IANA timezone for deadline resolution. Default: Asia/Kuwait"),
		),
		mcp.WithString("task_id",
			mcp.Description("Explicit target task ID, overriding target resolution"),
		),
	)
}

func (d *deps) handleApply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)
	utterance, _ := args["utterance"].(string)
	tz, _ := args["timezone"].(string)
	taskID, _ := args["task_id"].(string)
	if tz == "" {
		tz = "Asia/Kuwait"
	}

	parsed, err := d.builder.Build(ctx, utterance, tz, "")
	if err != nil {
		return mcp.NewToolResultError("utterance is required"), nil
	}
	if taskID != "" {
		parsed.Target = interpret.ByID(taskID)
	}

	if matches, err := d.applier.Matches(parsed.Target); err == nil && len(matches) > 1 {
		var lines string
		for _, t := range matches {
			lines += fmt.Sprintf("- %s: %s\n", t.ID, t.Title)
		}
		return mcp.NewToolResultError("ambiguous target, re-run with task_id set to one of:\n" + lines), nil
	}

	result, err := d.applier.Apply(parsed)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("apply failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"operation": parsed.Operation, "task": result})
}

func listTasksTool() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List all tasks with their status, priority, deadline, and notification offsets."),
	)
}

func (d *deps) handleListTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := d.store.ListAll()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	return jsonResult(tasks)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
