package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
	"github.com/wagnerlima/context-portal/portal-mcp/internal/storage"
)

// BatchTools holds references needed by the bulk ingestion tool handler.
type BatchTools struct {
	Registry *storage.Registry
}

type BatchLogItemsInput struct {
	WorkspaceID string           `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	ItemType    string           `json:"item_type" jsonschema:"Kind of every item in the batch: decision, progress_entry, system_pattern or custom_data"`
	Items       []map[string]any `json:"items" jsonschema:"Item payloads, each shaped like the corresponding single-item log tool's input"`
}

// BatchItemResult is the per-item outcome of a batch log. Failures do
// not abort the batch.
type BatchItemResult struct {
	Index   int    `json:"index"`
	Success bool   `json:"success"`
	Item    any    `json:"item,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (t *BatchTools) BatchLogItems(_ context.Context, _ *mcp.CallToolRequest, input BatchLogItemsInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}
	if len(input.Items) == 0 {
		return toolError("items must not be empty"), nil, nil
	}

	log, ok := batchLoggers[input.ItemType]
	if !ok {
		return toolError("Unsupported item_type %q for batch logging", input.ItemType), nil, nil
	}

	results := make([]BatchItemResult, len(input.Items))
	for i, raw := range input.Items {
		results[i].Index = i
		item, err := log(ws, raw)
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		results[i].Success = true
		results[i].Item = item
	}
	return toolJSON(results)
}

var batchLoggers = map[string]func(*storage.WorkspaceStore, map[string]any) (any, error){
	models.ItemTypeDecision: func(ws *storage.WorkspaceStore, raw map[string]any) (any, error) {
		var d models.Decision
		if err := decodeBatchItem(raw, &d); err != nil {
			return nil, err
		}
		return ws.LogDecision(d)
	},
	models.ItemTypeProgressEntry: func(ws *storage.WorkspaceStore, raw map[string]any) (any, error) {
		var p models.ProgressEntry
		if err := decodeBatchItem(raw, &p); err != nil {
			return nil, err
		}
		return ws.LogProgress(p)
	},
	models.ItemTypeSystemPattern: func(ws *storage.WorkspaceStore, raw map[string]any) (any, error) {
		var p models.SystemPattern
		if err := decodeBatchItem(raw, &p); err != nil {
			return nil, err
		}
		return ws.LogSystemPattern(p)
	},
	models.ItemTypeCustomData: func(ws *storage.WorkspaceStore, raw map[string]any) (any, error) {
		var d models.CustomData
		if err := decodeBatchItem(raw, &d); err != nil {
			return nil, err
		}
		return ws.LogCustomData(d)
	},
}

func decodeBatchItem(raw map[string]any, dst any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
