package tracker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/parcours/kit"
)

// RegisterMCP registers all tracker tools on an MCP server.
func (svc *Service) RegisterMCP(srv *mcp.Server) {
	svc.registerListPeople(srv)
	svc.registerAddPerson(srv)
	svc.registerAddFromURL(srv)
	svc.registerRunRefresh(srv)
	svc.registerPersonHistory(srv)
	svc.registerSetFirm(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func (svc *Service) registerListPeople(srv *mcp.Server) {
	type req struct {
		Firm string `json:"firm"`
	}

	tool := &mcp.Tool{
		Name:        "parcours_list_people",
		Description: "List tracked people with their current title and company snapshot",
		InputSchema: inputSchema(map[string]any{
			"firm": map[string]any{"type": "string", "description": "Only people at this firm (exact match)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.People(ctx, p.Firm)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if len(r.Params.Arguments) > 0 {
			if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerAddPerson(srv *mcp.Server) {
	type req struct {
		Name string `json:"name"`
		Firm string `json:"firm"`
		URL  string `json:"url"`
	}

	tool := &mcp.Tool{
		Name:        "parcours_add_person",
		Description: "Track a person's public profile under an explicit name",
		InputSchema: inputSchema(map[string]any{
			"name": map[string]any{"type": "string", "description": "Person name"},
			"firm": map[string]any{"type": "string", "description": "Firm (optional)"},
			"url":  map[string]any{"type": "string", "description": "Public profile URL"},
		}, []string{"name", "url"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.AddPerson(ctx, p.Name, p.Firm, p.URL)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerAddFromURL(srv *mcp.Server) {
	type req struct {
		URL string `json:"url"`
	}

	tool := &mcp.Tool{
		Name:        "parcours_add_from_url",
		Description: "Track a profile URL, detecting the person's name and firm from the page",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{"type": "string", "description": "Public profile URL"},
		}, []string{"url"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.AddFromURL(ctx, p.URL)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerRunRefresh(srv *mcp.Server) {
	type req struct {
		Firm string `json:"firm"`
	}

	tool := &mcp.Tool{
		Name:        "parcours_run_refresh",
		Description: "Check every tracked profile now and record any title or company changes",
		InputSchema: inputSchema(map[string]any{
			"firm": map[string]any{"type": "string", "description": "Only people at this firm (exact match)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		sum, err := svc.Refresh(ctx, p.Firm)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"summary": sum.String(),
			"lines":   strings.Join(sum.Lines, "\n"),
			"checked": sum.Checked,
			"changed": sum.Changed,
		}, nil
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if len(r.Params.Arguments) > 0 {
			if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerPersonHistory(srv *mcp.Server) {
	type req struct {
		PersonID string `json:"person_id"`
	}

	tool := &mcp.Tool{
		Name:        "parcours_person_history",
		Description: "Return a person's recorded title and company changes, most recent first",
		InputSchema: inputSchema(map[string]any{
			"person_id": map[string]any{"type": "string", "description": "Person ID"},
		}, []string{"person_id"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.History(ctx, p.PersonID)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerSetFirm(srv *mcp.Server) {
	type req struct {
		PersonID string `json:"person_id"`
		URL      string `json:"url"`
		Firm     string `json:"firm"`
	}

	tool := &mcp.Tool{
		Name:        "parcours_set_firm",
		Description: "Set or clear the firm of a tracked person, by ID or by profile URL",
		InputSchema: inputSchema(map[string]any{
			"person_id": map[string]any{"type": "string", "description": "Person ID (either this or url)"},
			"url":       map[string]any{"type": "string", "description": "Profile URL (either this or person_id)"},
			"firm":      map[string]any{"type": "string", "description": "New firm; empty clears it"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		switch {
		case p.PersonID != "":
			if err := svc.SetFirmByID(ctx, p.PersonID, p.Firm); err != nil {
				return nil, err
			}
			return map[string]any{"updated": 1}, nil
		case p.URL != "":
			n, err := svc.SetFirmByURL(ctx, p.URL, p.Firm)
			if err != nil {
				return nil, err
			}
			return map[string]any{"updated": n}, nil
		default:
			return nil, ErrInvalidInput
		}
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
