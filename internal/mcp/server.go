// Package mcp registers the core lifeweave interview tools on an MCP server.
// Tools identify the subject by user_id; auditing wraps the mutating tools.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/lifeweave/internal/interview"
	"github.com/hazyhaar/lifeweave/pkg/audit"
	"github.com/hazyhaar/lifeweave/pkg/kit"
)

// NewServer creates an MCPServer with all interview tools registered.
func NewServer(engine *interview.Engine, auditLog audit.Logger) *server.MCPServer {
	srv := server.NewMCPServer(
		"lifeweave",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	registerNextQuestion(srv, engine, auditLog)
	registerSubmitAnswer(srv, engine, auditLog)
	registerGetProgress(srv, engine)
	registerSynthesisReady(srv, engine)

	return srv
}

// --- next_question ---

type nextQuestionReq struct {
	UserID string `json:"user_id"`
}

func registerNextQuestion(srv *server.MCPServer, engine *interview.Engine, auditLog audit.Logger) {
	var endpoint kit.Endpoint = func(ctx context.Context, request any) (any, error) {
		r := request.(*nextQuestionReq)
		q, completed, err := engine.FirstQuestion(ctx, r.UserID)
		if err != nil {
			return nil, err
		}
		if completed {
			return map[string]any{"completed": true}, nil
		}
		return map[string]any{"question": q, "completed": false}, nil
	}
	if auditLog != nil {
		endpoint = audit.Middleware(auditLog, "next_question")(endpoint)
	}

	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id": map[string]string{"type": "string", "description": "ID of the person being interviewed"},
		},
		"required": []string{"user_id"},
	})
	tool := mcp.NewToolWithRawSchema("next_question", "Get the current open interview question, creating the opener for a new user", schema)

	kit.RegisterMCPTool(srv, tool, endpoint, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		r := &nextQuestionReq{UserID: stringArg(args, "user_id")}
		return &kit.MCPDecodeResult{Request: r, UserID: r.UserID}, nil
	})
}

// --- submit_answer ---

type submitAnswerReq struct {
	UserID     string `json:"user_id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
}

func registerSubmitAnswer(srv *server.MCPServer, engine *interview.Engine, auditLog audit.Logger) {
	var endpoint kit.Endpoint = func(ctx context.Context, request any) (any, error) {
		r := request.(*submitAnswerReq)
		res, err := engine.Advance(ctx, r.UserID, r.QuestionID, r.Text)
		if err != nil {
			return nil, err
		}
		out := map[string]any{
			"metrics":    res.Metrics,
			"aqi":        res.Metrics.AQI(),
			"completed":  res.Completed,
			"sufficient": res.Sufficient,
		}
		if res.Question != nil {
			out["question"] = res.Question
		}
		return out, nil
	}
	if auditLog != nil {
		endpoint = audit.Middleware(auditLog, "submit_answer")(endpoint)
	}

	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id":     map[string]string{"type": "string", "description": "ID of the person being interviewed"},
			"question_id": map[string]string{"type": "string", "description": "ID of the question being answered"},
			"text":        map[string]string{"type": "string", "description": "The answer text"},
		},
		"required": []string{"user_id", "question_id", "text"},
	})
	tool := mcp.NewToolWithRawSchema("submit_answer", "Record an answer, score it and get the next question", schema)

	kit.RegisterMCPTool(srv, tool, endpoint, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		r := &submitAnswerReq{
			UserID:     stringArg(args, "user_id"),
			QuestionID: stringArg(args, "question_id"),
			Text:       stringArg(args, "text"),
		}
		return &kit.MCPDecodeResult{Request: r, UserID: r.UserID}, nil
	})
}

// --- get_progress ---

func registerGetProgress(srv *server.MCPServer, engine *interview.Engine) {
	var endpoint kit.Endpoint = func(ctx context.Context, request any) (any, error) {
		r := request.(*nextQuestionReq)
		return engine.Progress(ctx, r.UserID)
	}

	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id": map[string]string{"type": "string", "description": "ID of the person being interviewed"},
		},
		"required": []string{"user_id"},
	})
	tool := mcp.NewToolWithRawSchema("get_progress", "Report interview position, answer counts and quality", schema)

	kit.RegisterMCPTool(srv, tool, endpoint, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		r := &nextQuestionReq{UserID: stringArg(args, "user_id")}
		return &kit.MCPDecodeResult{Request: r, UserID: r.UserID}, nil
	})
}

// --- synthesis_ready ---

func registerSynthesisReady(srv *server.MCPServer, engine *interview.Engine) {
	var endpoint kit.Endpoint = func(ctx context.Context, request any) (any, error) {
		r := request.(*nextQuestionReq)
		ready, err := engine.ReadyForSynthesis(ctx, r.UserID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"ready": ready}, nil
	}

	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id": map[string]string{"type": "string", "description": "ID of the person being interviewed"},
		},
		"required": []string{"user_id"},
	})
	tool := mcp.NewToolWithRawSchema("synthesis_ready", "Check whether enough material exists to write a biography", schema)

	kit.RegisterMCPTool(srv, tool, endpoint, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		r := &nextQuestionReq{UserID: stringArg(args, "user_id")}
		return &kit.MCPDecodeResult{Request: r, UserID: r.UserID}, nil
	})
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}
