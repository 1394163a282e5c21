package mcpserver

import (
	"context"
	"fmt"

	"github.com/erraggy/resmerge/internal/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type inspectInput struct {
	Blob   string `json:"blob"             jsonschema:"Folder holding the merge snapshot"`
	Key    string `json:"key,omitempty"    jsonschema:"Glob on the canonical key, e.g. string/* or drawable-*/icon"`
	Type   string `json:"type,omitempty"   jsonschema:"Only keys of this resource type, e.g. string or layout"`
	Set    string `json:"set,omitempty"    jsonschema:"Only keys whose winner comes from this set"`
	Offset int    `json:"offset,omitempty" jsonschema:"Number of entries to skip"`
	Limit  int    `json:"limit,omitempty"  jsonschema:"Maximum number of entries to return"`
}

type inspectOutput struct {
	Total    int              `json:"total"`
	Returned int              `json:"returned"`
	Entries  []pipeline.Entry `json:"entries,omitempty"`
	Summary  string           `json:"summary"`
}

func handleInspect(_ context.Context, _ *mcp.CallToolRequest, input inspectInput) (*mcp.CallToolResult, inspectOutput, error) {
	if input.Blob == "" {
		return errResult(fmt.Errorf("blob is required")), inspectOutput{}, nil
	}

	filter := pipeline.Filter{Key: input.Key, Type: input.Type, Set: input.Set}
	entries, err := pipeline.Inspect(input.Blob, filter, cfg.mergerOptions()...)
	if err != nil {
		return errResult(err), inspectOutput{}, nil
	}

	page := paginate(entries, input.Offset, input.Limit)
	output := inspectOutput{
		Total:    len(entries),
		Returned: len(page),
		Entries:  page,
	}
	output.Summary = fmt.Sprintf("%d of %d resource(s) shown.", output.Returned, output.Total)
	if next := input.Offset + output.Returned; output.Returned > 0 && next < output.Total {
		output.Summary += fmt.Sprintf(" Use offset=%d to see more.", next)
	}
	return nil, output, nil
}
