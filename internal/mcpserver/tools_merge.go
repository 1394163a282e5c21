package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/erraggy/resmerge/internal/pipeline"
	"github.com/erraggy/resmerge/resource"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type setInput struct {
	Name  string   `json:"name"  jsonschema:"Set name, unique within the request"`
	Roots []string `json:"roots" jsonschema:"Source roots of the set; each holds <folder>[-<qualifiers>]/<file> entries"`
}

type mergeInput struct {
	Sets        []setInput `json:"sets"                  jsonschema:"Resource sets from lowest to highest priority"`
	Output      string     `json:"output"                jsonschema:"Output folder receiving the merged resources"`
	Blob        string     `json:"blob,omitempty"        jsonschema:"Folder holding the merge snapshot. Required for incremental merges."`
	Incremental *bool      `json:"incremental,omitempty" jsonschema:"Resume from the snapshot when it matches the sets. Defaults to RESMERGE_INCREMENTAL."`
	Clean       *bool      `json:"clean,omitempty"       jsonschema:"Empty the output folder before a full merge. Defaults to RESMERGE_CLEAN."`
}

type eventInput struct {
	Root   string `json:"root"   jsonschema:"Source root the file belongs to"`
	Path   string `json:"path"   jsonschema:"Absolute path of the changed file"`
	Status string `json:"status" jsonschema:"NEW or CHANGED or REMOVED"`
}

type updateInput struct {
	Sets   []setInput   `json:"sets"   jsonschema:"Resource sets from lowest to highest priority, as passed to merge"`
	Output string       `json:"output" jsonschema:"Output folder of the previous merge"`
	Blob   string       `json:"blob"   jsonschema:"Folder holding the snapshot of the previous merge"`
	Events []eventInput `json:"events" jsonschema:"File changes in the order they happened"`
}

type mergeOutput struct {
	Incremental bool     `json:"incremental"`
	EventCount  int      `json:"event_count"`
	Resources   int      `json:"resources"`
	Written     []string `json:"written,omitempty"`
	Deleted     []string `json:"deleted,omitempty"`
	Summary     string   `json:"summary"`
}

func (in setInput) spec() pipeline.SetSpec {
	return pipeline.SetSpec{Name: strings.TrimSpace(in.Name), Roots: in.Roots}
}

func setSpecs(sets []setInput) []pipeline.SetSpec {
	specs := makeSlice[pipeline.SetSpec](len(sets))
	for _, s := range sets {
		specs = append(specs, s.spec())
	}
	return specs
}

func handleMerge(ctx context.Context, _ *mcp.CallToolRequest, input mergeInput) (*mcp.CallToolResult, mergeOutput, error) {
	req := pipeline.Request{
		Sets:        setSpecs(input.Sets),
		OutputRoot:  input.Output,
		BlobDir:     input.Blob,
		Incremental: cfg.Incremental && input.Blob != "",
		Clean:       cfg.Clean,
		Logger:      toolLogger("merge"),
		Options:     cfg.mergerOptions(),
	}
	if input.Incremental != nil {
		req.Incremental = *input.Incremental
	}
	if input.Clean != nil {
		req.Clean = *input.Clean
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.MergeTimeout)
	defer cancel()

	result, err := pipeline.Run(ctx, req)
	if err != nil {
		return errResult(err), mergeOutput{}, nil
	}
	output := toMergeOutput(result)
	return nil, output, nil
}

func handleUpdate(ctx context.Context, _ *mcp.CallToolRequest, input updateInput) (*mcp.CallToolResult, mergeOutput, error) {
	events := makeSlice[resource.ChangeEvent](len(input.Events))
	for i, e := range input.Events {
		status, err := resource.ParseFileStatus(e.Status)
		if err != nil {
			return errResult(fmt.Errorf("events[%d]: %w", i, err)), mergeOutput{}, nil
		}
		events = append(events, resource.ChangeEvent{Root: e.Root, Path: e.Path, Status: status})
	}

	req := pipeline.Request{
		Sets:       setSpecs(input.Sets),
		OutputRoot: input.Output,
		BlobDir:    input.Blob,
		Logger:     toolLogger("update"),
		Options:    cfg.mergerOptions(),
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.MergeTimeout)
	defer cancel()

	result, err := pipeline.Update(ctx, req, events)
	if err != nil {
		return errResult(err), mergeOutput{}, nil
	}
	return nil, toMergeOutput(result), nil
}

func toMergeOutput(r *pipeline.Result) mergeOutput {
	output := mergeOutput{
		Incremental: r.Incremental,
		EventCount:  len(r.Events),
		Resources:   r.Resources,
		Written:     r.Written,
		Deleted:     r.Deleted,
	}
	output.Summary = buildMergeSummary(output)
	return output
}

func buildMergeSummary(o mergeOutput) string {
	mode := "Full merge"
	if o.Incremental {
		mode = fmt.Sprintf("Incremental merge of %d change(s)", o.EventCount)
	}
	if len(o.Written) == 0 && len(o.Deleted) == 0 {
		return fmt.Sprintf("%s: %d resources, output already up to date.", mode, o.Resources)
	}
	return fmt.Sprintf("%s: %d resources, %d file(s) written, %d deleted.",
		mode, o.Resources, len(o.Written), len(o.Deleted))
}
