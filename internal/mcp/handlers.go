package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env *ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env) *Handlers {
	return &Handlers{env: env}
}

// Request types for each tool

// UpsertRequest represents the arguments for spec_upsert.
type UpsertRequest struct {
	SpecNo   string  `json:"spec_no"`
	Revision string  `json:"revision"`
	Title    *string `json:"title,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// KeyRequest represents the arguments for tools addressing one record.
type KeyRequest struct {
	Key string `json:"key"`
}

// ListRequest represents the arguments for spec_list.
type ListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// RekeyRequest represents the arguments for spec_rekey.
type RekeyRequest struct {
	OldKey string `json:"old_key"`
	NewKey string `json:"new_key"`
}

// AttachRequest represents the arguments for spec_attach.
type AttachRequest struct {
	Key  string `json:"key"`
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// NormalizeBatchRequest represents the arguments for spec_normalize_batch.
type NormalizeBatchRequest struct {
	Keys []string `json:"keys,omitempty"`
}

// CompareRequest represents the arguments for spec_compare.
type CompareRequest struct {
	KeyA       string `json:"key_a"`
	KeyB       string `json:"key_b"`
	Mode       string `json:"mode,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
	Open       bool   `json:"open,omitempty"`
}

// DiffRequest represents the arguments for spec_diff.
type DiffRequest struct {
	ContentType     string `json:"content_type,omitempty"`
	A               string `json:"a"`
	B               string `json:"b"`
	Mode            string `json:"mode,omitempty"`
	OutputPath      string `json:"output_path,omitempty"`
	Open            bool   `json:"open,omitempty"`
	IncludeSegments bool   `json:"include_segments,omitempty"`
}

// HistoryRequest represents the arguments for spec_history.
type HistoryRequest struct {
	Limit int `json:"limit,omitempty"`
}

// CleanRequest represents the arguments for spec_clean.
type CleanRequest struct {
	DryRun bool `json:"dry_run,omitempty"`
}

// Handler implementations

// HandleUpsert handles the spec_upsert tool call.
func (h *Handlers) HandleUpsert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpsertRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Upsert(ctx, h.env.DB, ops.UpsertInput{
		SpecNo:   input.SpecNo,
		Revision: input.Revision,
		Title:    input.Title,
		Notes:    input.Notes,
	}))
}

// HandleGet handles the spec_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[KeyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Get(ctx, h.env, ops.GetInput{Key: input.Key}))
}

// HandleList handles the spec_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.List(ctx, h.env.DB, ops.ListInput{Limit: input.Limit, Offset: input.Offset}))
}

// HandleRekey handles the spec_rekey tool call.
func (h *Handlers) HandleRekey(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RekeyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Rekey(ctx, h.env.DB, ops.RekeyInput{OldKey: input.OldKey, NewKey: input.NewKey}))
}

// HandleAttach handles the spec_attach tool call.
func (h *Handlers) HandleAttach(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AttachRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Attach(ctx, h.env, ops.AttachInput{Key: input.Key, Kind: input.Kind, Path: input.Path}))
}

// HandleNormalize handles the spec_normalize tool call.
func (h *Handlers) HandleNormalize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[KeyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Normalize(ctx, h.env, ops.NormalizeInput{Key: input.Key}))
}

// HandleNormalizeBatch handles the spec_normalize_batch tool call.
func (h *Handlers) HandleNormalizeBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NormalizeBatchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.BatchNormalize(ctx, h.env, ops.BatchNormalizeInput{Keys: input.Keys}))
}

// HandleCompare handles the spec_compare tool call.
func (h *Handlers) HandleCompare(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CompareRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Compare(ctx, h.env, ops.CompareInput{
		KeyA:       input.KeyA,
		KeyB:       input.KeyB,
		Mode:       input.Mode,
		OutputPath: input.OutputPath,
		Open:       input.Open,
	}))
}

// HandleDiff handles the spec_diff tool call.
func (h *Handlers) HandleDiff(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DiffRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.DiffFiles(ctx, h.env, ops.DiffInput{
		ContentType:     input.ContentType,
		A:               input.A,
		B:               input.B,
		Mode:            input.Mode,
		OutputPath:      input.OutputPath,
		Open:            input.Open,
		IncludeSegments: input.IncludeSegments,
	}))
}

// HandleHistory handles the spec_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.History(ctx, h.env.DB, ops.HistoryInput{Limit: input.Limit}))
}

// HandleClean handles the spec_clean tool call.
func (h *Handlers) HandleClean(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CleanRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Clean(ctx, h.env, ops.CleanInput{DryRun: input.DryRun}))
}

// Result helpers

// result maps an ops return pair onto a tool result.
func result[T any](data *T, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(data)
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var specErr *errors.SpecError
	if stderrors.As(err, &specErr) {
		errorObj := map[string]any{
			"code":    specErr.Code,
			"message": wrappedMessage(err, specErr),
			"status":  specErr.Status,
		}
		if specErr.Code != errors.ErrInternal && specErr.Details != nil {
			errorObj["details"] = specErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// wrappedMessage keeps any context added by fmt.Errorf wrapping around the
// SpecError, e.g. "items[2]: record not found".
func wrappedMessage(err error, specErr *errors.SpecError) string {
	if specErr.Code == errors.ErrInternal {
		return "an internal error occurred"
	}
	prefix := strings.TrimSuffix(err.Error(), specErr.Error())
	return prefix + specErr.Message
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
