package guest

import (
	"sync"

	"github.com/google/uuid"
)

// TaskState is the lifecycle state of one upload task.
type TaskState string

const (
	TaskPending      TaskState = "pending"
	TaskTransferring TaskState = "transferring"
	TaskSucceeded    TaskState = "succeeded"
	TaskFailed       TaskState = "failed"
)

// Terminal reports whether the state admits no further transition. There
// is no retry transition; a failed task stays failed.
func (s TaskState) Terminal() bool {
	return s == TaskSucceeded || s == TaskFailed
}

// UploadTask tracks one in-flight file transfer.
type UploadTask struct {
	ID        uuid.UUID
	LocalPath string
	Key       string
	Size      int64
	Progress  int
	State     TaskState
	Err       error
}

// taskTracker holds the tasks of one upload batch. Parallel uploads
// mutate their tasks through the tracker, so every transition is a
// locked read-modify-write.
type taskTracker struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*UploadTask
	order []uuid.UUID
}

func newTaskTracker() *taskTracker {
	return &taskTracker{tasks: make(map[uuid.UUID]*UploadTask)}
}

func (t *taskTracker) add(localPath string) uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.New()
	t.tasks[id] = &UploadTask{ID: id, LocalPath: localPath, State: TaskPending}
	t.order = append(t.order, id)
	return id
}

func (t *taskTracker) start(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if task, ok := t.tasks[id]; ok && task.State == TaskPending {
		task.State = TaskTransferring
	}
}

// setProgress records transfer progress, ignoring regressions and
// updates after a terminal transition.
func (t *taskTracker) setProgress(id uuid.UUID, pct int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, ok := t.tasks[id]
	if !ok || task.State != TaskTransferring {
		return
	}
	if pct > task.Progress {
		task.Progress = pct
	}
}

func (t *taskTracker) succeed(id uuid.UUID, key string, size int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, ok := t.tasks[id]
	if !ok || task.State.Terminal() {
		return
	}
	task.State = TaskSucceeded
	task.Progress = 100
	task.Key = key
	task.Size = size
}

func (t *taskTracker) fail(id uuid.UUID, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, ok := t.tasks[id]
	if !ok || task.State.Terminal() {
		return
	}
	task.State = TaskFailed
	task.Err = err
}

func (t *taskTracker) get(id uuid.UUID) (UploadTask, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, ok := t.tasks[id]
	if !ok {
		return UploadTask{}, false
	}
	return *task, true
}

// snapshot returns task copies in insertion order.
func (t *taskTracker) snapshot() []UploadTask {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]UploadTask, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.tasks[id])
	}
	return out
}
