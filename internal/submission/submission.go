// Package submission parses a workflow YAML file and loads it into
// storage: no task is enqueued at submission time, only rows are
// created for the Event process to pick up later.
package submission

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mercadolab/workflow-engine/internal/model"
	"github.com/mercadolab/workflow-engine/internal/store"
)

// Workflow is the top-level YAML document shape.
type Workflow struct {
	Name        *string       `yaml:"name"`
	Description *string       `yaml:"description"`
	Events      []EventSpec   `yaml:"events"`
}

// EventSpec is one event block within a Workflow document.
type EventSpec struct {
	Name        *string    `yaml:"name"`
	Description *string    `yaml:"description"`
	Trigger     string     `yaml:"trigger"`
	Tasks       []TaskSpec `yaml:"tasks"`
}

// TaskSpec is one task block within an EventSpec.
type TaskSpec struct {
	Name        *string `yaml:"name"`
	Description *string `yaml:"description"`
	Path        string  `yaml:"path"`
	OnFailure   *string `yaml:"on_failure"`
}

// Load parses the YAML document at path and submits every event/task it
// describes through the given stores. Relative trigger/task paths are
// resolved against the YAML file's own parent directory, matching
// parser.rs's `workflow_path.join(...)`.
func Load(ctx context.Context, path string, events store.EventStore, tasks store.TaskStore) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow file %s: %w", path, err)
	}

	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse workflow yaml %s: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve absolute path for %s: %w", path, err)
	}
	root := filepath.Dir(absPath)

	for _, es := range wf.Events {
		if err := submitEvent(ctx, root, es, events, tasks); err != nil {
			return nil, err
		}
	}

	return &wf, nil
}

func submitEvent(ctx context.Context, root string, es EventSpec, events store.EventStore, tasks store.TaskStore) error {
	e := &model.Event{
		Name:        es.Name,
		Description: es.Description,
		Trigger:     resolvePath(root, es.Trigger),
	}

	eventUID, err := events.Create(ctx, e)
	if err != nil {
		return fmt.Errorf("submit event %q: %w", es.Trigger, err)
	}

	taskModels := make([]*model.Task, 0, len(es.Tasks))
	for _, ts := range es.Tasks {
		taskModels = append(taskModels, &model.Task{
			Name:        ts.Name,
			Description: ts.Description,
			Path:        resolvePath(root, ts.Path),
			OnFailure:   ts.OnFailure,
		})
	}

	if len(taskModels) == 0 {
		return nil
	}

	if err := tasks.CreateMany(ctx, eventUID, taskModels); err != nil {
		return fmt.Errorf("submit tasks for event %d: %w", eventUID, err)
	}
	return nil
}

// resolvePath joins a workflow-relative script path against the
// workflow file's own directory, leaving already-absolute paths alone.
func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
