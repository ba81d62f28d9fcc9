package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"

	internalstrings "github.com/amonks/pomo/internal/strings"
	"github.com/amonks/pomo/task"
)

// TaskData is rendered into the editable TOML document.
type TaskData struct {
	// IsUpdate is true when editing an existing task.
	IsUpdate bool
	ID       string
	Title    string
	// Project is the project name, empty for none.
	Project  string
	Estimate int
	// Due is a YYYY-MM-DD date, empty for none.
	Due         string
	Description string
}

// DefaultCreateData returns TaskData for a new task.
func DefaultCreateData() TaskData {
	return TaskData{Estimate: task.DefaultEstimate}
}

// DataFromTask creates TaskData from an existing task. projectName is
// shown in place of the project ID.
func DataFromTask(t task.Task, projectName string) TaskData {
	data := TaskData{
		IsUpdate:    true,
		ID:          t.ID,
		Title:       t.Title,
		Project:     projectName,
		Estimate:    t.EstimatedPomodoros,
		Description: t.Description,
	}
	if t.DueDate != nil {
		data.Due = t.DueDate.Format("2006-01-02")
	}
	return data
}

var taskTemplate = template.Must(template.New("task").Parse(`title = {{ printf "%q" .Title }}
project = {{ printf "%q" .Project }} # project name or ID, empty for none
estimate = {{ .Estimate }} # pomodoros
due = {{ printf "%q" .Due }} # YYYY-MM-DD, empty for none
---
{{ .Description }}
`))

// RenderTaskTOML renders the task data as a TOML document for editing.
func RenderTaskTOML(data TaskData) (string, error) {
	var buf bytes.Buffer
	if err := taskTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedTask is the result of editing a task document.
type ParsedTask struct {
	Title       string `toml:"title"`
	Project     string `toml:"project"`
	Estimate    int    `toml:"estimate"`
	Due         string `toml:"due"`
	Description string `toml:"-"`

	DueDate *time.Time `toml:"-"`
}

// ParseTaskTOML parses an edited document. Due dates are read in loc.
func ParseTaskTOML(content string, loc *time.Location) (*ParsedTask, error) {
	frontmatter, body := splitFrontmatter(internalstrings.NormalizeNewlines(content))

	var parsed ParsedTask
	if _, err := toml.Decode(frontmatter, &parsed); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	parsed.Title = internalstrings.NormalizeWhitespace(parsed.Title)
	parsed.Project = strings.TrimSpace(parsed.Project)
	parsed.Description = internalstrings.TrimTrailingNewlines(strings.TrimLeft(body, "\n"))

	if err := task.ValidateTitle(parsed.Title); err != nil {
		return nil, err
	}
	if err := task.ValidateEstimate(parsed.Estimate); err != nil {
		return nil, err
	}
	due, err := task.ParseDueDate(parsed.Due, loc)
	if err != nil {
		return nil, err
	}
	parsed.DueDate = due

	return &parsed, nil
}

func splitFrontmatter(content string) (string, string) {
	content = strings.TrimLeft(content, "\n")
	if content == "" {
		return "", ""
	}

	lines := strings.Split(content, "\n")
	separatorIndex := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			separatorIndex = i
			break
		}
	}
	if separatorIndex == -1 {
		return content, ""
	}

	frontmatter := strings.Join(lines[:separatorIndex], "\n")
	body := strings.Join(lines[separatorIndex+1:], "\n")
	return frontmatter, body
}

// EditTask opens the editor on data and returns the parsed result.
func EditTask(data TaskData, loc *time.Location) (*ParsedTask, error) {
	content, err := RenderTaskTOML(data)
	if err != nil {
		return nil, err
	}

	tmpfile, err := os.CreateTemp("", "pomo-task-*.md")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}

	return ParseTaskTOML(string(edited), loc)
}

// ToCreateOptions converts a ParsedTask to task.CreateTaskOptions.
func (p *ParsedTask) ToCreateOptions() task.CreateTaskOptions {
	estimate := p.Estimate
	return task.CreateTaskOptions{
		Description: p.Description,
		Project:     p.Project,
		Estimate:    &estimate,
		DueDate:     p.DueDate,
	}
}

// ToUpdateOptions converts a ParsedTask to task.UpdateTaskOptions. Every
// field is written, so clearing a value in the editor clears it on the task.
func (p *ParsedTask) ToUpdateOptions() task.UpdateTaskOptions {
	estimate := p.Estimate
	return task.UpdateTaskOptions{
		Title:        &p.Title,
		Description:  &p.Description,
		Project:      &p.Project,
		Estimate:     &estimate,
		DueDate:      p.DueDate,
		ClearDueDate: p.DueDate == nil,
	}
}
