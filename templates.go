package avalert

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const templatesPath = apiPrefix + "/templates"

// Template is a task template definition as reported by the engine.
type Template struct {
	ID       string                 `json:"id"`
	Type     TaskType               `json:"type"`
	Script   string                 `json:"script"`
	Vars     map[string]interface{} `json:"vars,omitempty"`
	Error    string                 `json:"error"`
	Created  time.Time              `json:"created"`
	Modified time.Time              `json:"modified"`
}

// CreateTemplateOptions describes a template to create.
type CreateTemplateOptions struct {
	ID     string   `json:"id,omitempty"`
	Type   TaskType `json:"type,omitempty"`
	Script string   `json:"script,omitempty"`
}

// UpdateTemplateOptions describes a partial template update.
type UpdateTemplateOptions struct {
	Type   TaskType `json:"type,omitempty"`
	Script string   `json:"script,omitempty"`
}

// ListTemplatesOptions filters and pages template listings.
type ListTemplatesOptions struct {
	Pattern string
	Fields  []string
	Offset  int
	Limit   int
}

// CreateTemplate creates a new template.
func (c *Client) CreateTemplate(ctx context.Context, opts CreateTemplateOptions) (Template, error) {
	var tmpl Template
	err := c.do(ctx, http.MethodPost, templatesPath, opts, nil, &tmpl)
	return tmpl, err
}

// Template retrieves a template by ID.
func (c *Client) Template(ctx context.Context, id string) (Template, error) {
	var tmpl Template
	err := c.do(ctx, http.MethodGet, templatePath(id), nil, nil, &tmpl)
	return tmpl, err
}

// ListTemplates lists templates matching the given options.
func (c *Client) ListTemplates(ctx context.Context, opts *ListTemplatesOptions) ([]Template, error) {
	query := make(url.Values)
	if opts != nil {
		if opts.Pattern != "" {
			query.Set("pattern", opts.Pattern)
		}
		for _, f := range opts.Fields {
			query.Add("fields", f)
		}
		if opts.Offset > 0 {
			query.Set("offset", strconv.Itoa(opts.Offset))
		}
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
	}

	var resp struct {
		Templates []Template `json:"templates"`
	}
	if err := c.do(ctx, http.MethodGet, templatesPath, nil, query, &resp); err != nil {
		return nil, err
	}
	return resp.Templates, nil
}

// UpdateTemplate applies a partial update to a template.
func (c *Client) UpdateTemplate(ctx context.Context, id string, opts UpdateTemplateOptions) (Template, error) {
	var tmpl Template
	err := c.do(ctx, http.MethodPatch, templatePath(id), opts, nil, &tmpl)
	return tmpl, err
}

// DeleteTemplate removes a template.
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, templatePath(id), nil, nil, nil)
}

// templatePath builds the resource path for a template ID.
func templatePath(id string) string {
	return templatesPath + "/" + url.PathEscape(strings.TrimSpace(id))
}
