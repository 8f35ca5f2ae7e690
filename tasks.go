package avalert

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const tasksPath = apiPrefix + "/tasks"

// TaskType is the ingestion mode of a task.
type TaskType string

// Task types.
const (
	StreamTask TaskType = "stream"
	BatchTask  TaskType = "batch"
)

// TaskStatus is the execution state of a task.
type TaskStatus string

// Task statuses.
const (
	TaskEnabled  TaskStatus = "enabled"
	TaskDisabled TaskStatus = "disabled"
)

// DBRP names a database and retention policy pair a task consumes.
type DBRP struct {
	Database        string `json:"db"`
	RetentionPolicy string `json:"rp"`
}

// Task is a task definition as reported by the engine.
type Task struct {
	ID          string                 `json:"id"`
	Type        TaskType               `json:"type"`
	DBRPs       []DBRP                 `json:"dbrps"`
	Script      string                 `json:"script"`
	Status      TaskStatus             `json:"status"`
	Vars        map[string]interface{} `json:"vars,omitempty"`
	Executing   bool                   `json:"executing"`
	Error       string                 `json:"error"`
	Created     time.Time              `json:"created"`
	Modified    time.Time              `json:"modified"`
	LastEnabled time.Time              `json:"last-enabled"`
}

// CreateTaskOptions describes a task to create.
type CreateTaskOptions struct {
	ID         string                 `json:"id,omitempty"`
	TemplateID string                 `json:"template-id,omitempty"`
	Type       TaskType               `json:"type,omitempty"`
	DBRPs      []DBRP                 `json:"dbrps,omitempty"`
	Script     string                 `json:"script,omitempty"`
	Status     TaskStatus             `json:"status,omitempty"`
	Vars       map[string]interface{} `json:"vars,omitempty"`
}

// UpdateTaskOptions describes a partial task update. Zero fields are
// left unchanged by the engine.
type UpdateTaskOptions struct {
	TemplateID string                 `json:"template-id,omitempty"`
	Type       TaskType               `json:"type,omitempty"`
	DBRPs      []DBRP                 `json:"dbrps,omitempty"`
	Script     string                 `json:"script,omitempty"`
	Status     TaskStatus             `json:"status,omitempty"`
	Vars       map[string]interface{} `json:"vars,omitempty"`
}

// ListTasksOptions filters and pages task listings.
type ListTasksOptions struct {
	Pattern string
	Fields  []string
	Offset  int
	Limit   int
}

// CreateTask creates a new task.
func (c *Client) CreateTask(ctx context.Context, opts CreateTaskOptions) (Task, error) {
	var task Task
	err := c.do(ctx, http.MethodPost, tasksPath, opts, nil, &task)
	return task, err
}

// Task retrieves a task by ID.
func (c *Client) Task(ctx context.Context, id string) (Task, error) {
	var task Task
	err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &task)
	return task, err
}

// ListTasks lists tasks matching the given options.
func (c *Client) ListTasks(ctx context.Context, opts *ListTasksOptions) ([]Task, error) {
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
		Tasks []Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, tasksPath, nil, query, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, id string, opts UpdateTaskOptions) (Task, error) {
	var task Task
	err := c.do(ctx, http.MethodPatch, taskPath(id), opts, nil, &task)
	return task, err
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil)
}

// EnableTask enables a task.
func (c *Client) EnableTask(ctx context.Context, id string) (Task, error) {
	return c.UpdateTask(ctx, id, UpdateTaskOptions{Status: TaskEnabled})
}

// DisableTask disables a task.
func (c *Client) DisableTask(ctx context.Context, id string) (Task, error) {
	return c.UpdateTask(ctx, id, UpdateTaskOptions{Status: TaskDisabled})
}

// taskPath builds the resource path for a task ID.
func taskPath(id string) string {
	return tasksPath + "/" + url.PathEscape(strings.TrimSpace(id))
}
