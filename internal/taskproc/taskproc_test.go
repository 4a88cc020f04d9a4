package taskproc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercadolab/workflow-engine/internal/model"
)

// fakeTaskStore is an in-memory TaskStore fake, exercising the
// execute()/Status() contract against in-memory rows rather than a
// live database.
type fakeTaskStore struct {
	tasks map[int32]*model.Task
}

func newFakeTaskStore(tasks ...*model.Task) *fakeTaskStore {
	m := map[int32]*model.Task{}
	for _, t := range tasks {
		m[t.UID] = t
	}
	return &fakeTaskStore{tasks: m}
}

func (f *fakeTaskStore) CreateMany(ctx context.Context, eventUID int32, tasks []*model.Task) error {
	return nil
}
func (f *fakeTaskStore) Get(ctx context.Context, uid int32) (*model.Task, error) {
	return f.tasks[uid], nil
}
func (f *fakeTaskStore) List(ctx context.Context) ([]*model.Task, error) { return nil, nil }
func (f *fakeTaskStore) ListByEvent(ctx context.Context, eventUID int32) ([]*model.Task, error) {
	return nil, nil
}
func (f *fakeTaskStore) Status(ctx context.Context, uid int32) (model.TaskStatus, error) {
	t, ok := f.tasks[uid]
	if !ok {
		return "", assert.AnError
	}
	return t.Status, nil
}
func (f *fakeTaskStore) MarkRunning(ctx context.Context, uid int32) error {
	f.tasks[uid].Status = model.TaskRunning
	return nil
}
func (f *fakeTaskStore) MarkCompleted(ctx context.Context, uid int32, stdout, stderr string) error {
	f.tasks[uid].Status = model.TaskCompleted
	f.tasks[uid].Stdout = stdout
	f.tasks[uid].Stderr = stderr
	return nil
}
func (f *fakeTaskStore) MarkFailed(ctx context.Context, uid int32, stdout, stderr string) error {
	f.tasks[uid].Status = model.TaskFailed
	f.tasks[uid].Stdout = stdout
	f.tasks[uid].Stderr = stderr
	return nil
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func TestExecute_PendingTaskSucceeds(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "ok.sh", "#!/usr/bin/env bash\necho done\nexit 0\n")

	ts := newFakeTaskStore(&model.Task{UID: 1, Path: path, Status: model.TaskPending})
	p := New(nil, ts, nil, 2, 0, 0)

	p.execute(context.Background(), zerolog.Nop(), model.LightTask{UID: 1, Path: path})

	assert.Equal(t, model.TaskCompleted, ts.tasks[1].Status)
	assert.Contains(t, ts.tasks[1].Stdout, "done")
}

func TestExecute_PendingTaskFails(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "fail.sh", "#!/usr/bin/env bash\necho oops 1>&2\nexit 1\n")

	ts := newFakeTaskStore(&model.Task{UID: 2, Path: path, Status: model.TaskPending})
	p := New(nil, ts, nil, 2, 0, 0)

	p.execute(context.Background(), zerolog.Nop(), model.LightTask{UID: 2, Path: path})

	assert.Equal(t, model.TaskFailed, ts.tasks[2].Status)
	assert.Contains(t, ts.tasks[2].Stderr, "oops")
}

func TestExecute_NonPendingTaskIsNoOp(t *testing.T) {
	ts := newFakeTaskStore(&model.Task{UID: 3, Path: "/unused.sh", Status: model.TaskCompleted})
	p := New(nil, ts, nil, 2, 0, 0)

	p.execute(context.Background(), zerolog.Nop(), model.LightTask{UID: 3, Path: "/unused.sh"})

	// Status must remain untouched: re-delivery of an already-terminal
	// task is a safe no-op.
	assert.Equal(t, model.TaskCompleted, ts.tasks[3].Status)
}

func TestExecute_BadPathLeavesTaskRunning(t *testing.T) {
	ts := newFakeTaskStore(&model.Task{UID: 4, Path: "", Status: model.TaskPending})
	p := New(nil, ts, nil, 2, 0, 0)

	p.execute(context.Background(), zerolog.Nop(), model.LightTask{UID: 4, Path: ""})

	assert.Equal(t, model.TaskRunning, ts.tasks[4].Status)
}

func TestNew_DefaultsConcurrency(t *testing.T) {
	p := New(nil, newFakeTaskStore(), nil, 0, 0, 0)
	assert.Equal(t, 4, p.concurrency)
	assert.Equal(t, 4, cap(p.sem))
}

func TestActiveTasks_InitiallyZero(t *testing.T) {
	p := New(nil, newFakeTaskStore(), nil, 2, 0, 0)
	assert.Equal(t, 0, p.ActiveTasks())
}
