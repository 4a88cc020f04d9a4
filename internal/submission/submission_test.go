package submission

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercadolab/workflow-engine/internal/model"
)

type fakeEventStore struct {
	created []*model.Event
	nextUID int32
}

func (f *fakeEventStore) Create(ctx context.Context, e *model.Event) (int32, error) {
	f.nextUID++
	e.UID = f.nextUID
	f.created = append(f.created, e)
	return f.nextUID, nil
}
func (f *fakeEventStore) Get(ctx context.Context, uid int32) (*model.Event, error) { return nil, nil }
func (f *fakeEventStore) List(ctx context.Context) ([]*model.Event, error)         { return nil, nil }
func (f *fakeEventStore) ListPending(ctx context.Context) ([]*model.Event, error)  { return nil, nil }
func (f *fakeEventStore) RecordAttempt(ctx context.Context, uid int32, stdout, stderr string) error {
	return nil
}
func (f *fakeEventStore) MarkRetrying(ctx context.Context, uid int32) error { return nil }

type fakeTaskStore struct {
	byEvent map[int32][]*model.Task
}

func (f *fakeTaskStore) CreateMany(ctx context.Context, eventUID int32, tasks []*model.Task) error {
	if f.byEvent == nil {
		f.byEvent = map[int32][]*model.Task{}
	}
	f.byEvent[eventUID] = tasks
	return nil
}
func (f *fakeTaskStore) Get(ctx context.Context, uid int32) (*model.Task, error) { return nil, nil }
func (f *fakeTaskStore) List(ctx context.Context) ([]*model.Task, error)         { return nil, nil }
func (f *fakeTaskStore) ListByEvent(ctx context.Context, eventUID int32) ([]*model.Task, error) {
	return f.byEvent[eventUID], nil
}
func (f *fakeTaskStore) Status(ctx context.Context, uid int32) (model.TaskStatus, error) {
	return "", nil
}
func (f *fakeTaskStore) MarkRunning(ctx context.Context, uid int32) error   { return nil }
func (f *fakeTaskStore) MarkCompleted(ctx context.Context, uid int32, stdout, stderr string) error {
	return nil
}
func (f *fakeTaskStore) MarkFailed(ctx context.Context, uid int32, stdout, stderr string) error {
	return nil
}

const sampleWorkflow = `
name: deploy
description: deploys the service
events:
  - name: on-push
    trigger: triggers/on-push.sh
    tasks:
      - name: build
        path: tasks/build.sh
      - name: notify
        path: tasks/notify.sh
        on_failure: tasks/rollback.sh
`

func TestLoad_SubmitsEventsAndTasksWithResolvedPaths(t *testing.T) {
	dir := t.TempDir()
	wfPath := filepath.Join(dir, "workflow.yaml")
	require.NoError(t, os.WriteFile(wfPath, []byte(sampleWorkflow), 0o644))

	events := &fakeEventStore{}
	tasks := &fakeTaskStore{}

	wf, err := Load(context.Background(), wfPath, events, tasks)
	require.NoError(t, err)
	require.NotNil(t, wf.Name)
	assert.Equal(t, "deploy", *wf.Name)

	require.Len(t, events.created, 1)
	e := events.created[0]
	assert.Equal(t, filepath.Join(dir, "triggers/on-push.sh"), e.Trigger)

	submitted := tasks.byEvent[e.UID]
	require.Len(t, submitted, 2)
	assert.Equal(t, filepath.Join(dir, "tasks/build.sh"), submitted[0].Path)
	assert.Equal(t, filepath.Join(dir, "tasks/notify.sh"), submitted[1].Path)
	require.NotNil(t, submitted[1].OnFailure)
	assert.Equal(t, "tasks/rollback.sh", *submitted[1].OnFailure)
}

func TestLoad_EventWithNoTasksSkipsCreateMany(t *testing.T) {
	dir := t.TempDir()
	wfPath := filepath.Join(dir, "workflow.yaml")
	body := "events:\n  - trigger: triggers/only.sh\n    tasks: []\n"
	require.NoError(t, os.WriteFile(wfPath, []byte(body), 0o644))

	events := &fakeEventStore{}
	tasks := &fakeTaskStore{}

	_, err := Load(context.Background(), wfPath, events, tasks)
	require.NoError(t, err)
	assert.Len(t, events.created, 1)
	assert.Empty(t, tasks.byEvent)
}

func TestLoad_MissingFile(t *testing.T) {
	events := &fakeEventStore{}
	tasks := &fakeTaskStore{}

	_, err := Load(context.Background(), "/no/such/workflow.yaml", events, tasks)
	assert.Error(t, err)
}
