// Package kit is the transport-agnostic endpoint layer: a tool or API
// operation is an Endpoint, middleware wraps it, and small bridges adapt
// it onto concrete transports.
package kit

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Endpoint is one operation: decoded request in, response out.
type Endpoint func(ctx context.Context, request any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behavior.
type Middleware func(Endpoint) Endpoint

type contextKey int

const (
	transportKey contextKey = iota
	userIDKey
	requestIDKey
)

func WithTransport(ctx context.Context, transport string) context.Context {
	return context.WithValue(ctx, transportKey, transport)
}

func GetTransport(ctx context.Context) string {
	s, _ := ctx.Value(transportKey).(string)
	return s
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(ctx context.Context) string {
	s, _ := ctx.Value(userIDKey).(string)
	return s
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(requestIDKey).(string)
	return s
}

// MCPDecodeResult carries a decoded tool request plus any identity the
// decoder derived from the arguments.
type MCPDecodeResult struct {
	Request any
	UserID  string
}

// DecodeFunc turns a raw MCP tool call into an endpoint request.
type DecodeFunc func(req mcp.CallToolRequest) (*MCPDecodeResult, error)

// RegisterMCPTool mounts an Endpoint as an MCP tool. Decode errors and
// endpoint errors both come back as tool-result errors rather than
// protocol errors so the client always sees a well-formed reply.
func RegisterMCPTool(srv *server.MCPServer, tool mcp.Tool, endpoint Endpoint, decode DecodeFunc) {
	srv.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		decoded, err := decode(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ctx = WithTransport(ctx, "mcp")
		if decoded.UserID != "" {
			ctx = WithUserID(ctx, decoded.UserID)
		}
		resp, err := endpoint(ctx, decoded.Request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := encodeResult(resp)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	})
}
