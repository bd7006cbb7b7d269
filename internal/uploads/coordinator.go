package uploads

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"portfolio-backend/internal/shared/metrics"
	"portfolio-backend/internal/shared/storage/object"
	"portfolio-backend/internal/shared/util"
)

const (
	DefaultMaxFiles = 10
	tempNamespace   = "temp"
	nameLength      = 12
	nameAttempts    = 3
)

// Options configures a Coordinator.
type Options struct {
	// ProjectID namespaces stored objects; empty uses the temp namespace.
	ProjectID string
	MaxFiles  int
	Store     object.BlobStore
	Notifier  Notifier
	// CancelOnRemove aborts the in-flight upload of a removed task. By
	// default the upload runs to completion and its result is dropped.
	CancelOnRemove bool
}

// Coordinator owns one ordered batch of upload tasks.
type Coordinator struct {
	opts Options

	mu    sync.Mutex
	order []string
	tasks map[string]*taskState
}

type taskState struct {
	task   Task
	cancel context.CancelFunc
}

type taskRun struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCoordinator builds a Coordinator with defaults applied.
func NewCoordinator(opts Options) *Coordinator {
	if opts.MaxFiles == 0 {
		opts.MaxFiles = DefaultMaxFiles
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}
	opts.ProjectID = strings.TrimSpace(opts.ProjectID)
	return &Coordinator{
		opts:  opts,
		tasks: make(map[string]*taskState),
	}
}

// MaxFiles returns the batch ceiling.
func (c *Coordinator) MaxFiles() int {
	return c.opts.MaxFiles
}

// Batch is the handle for one Submit call.
type Batch struct {
	ids   []string
	group errgroup.Group

	mu   sync.Mutex
	urls []string
}

// Submit appends up to MaxFiles-len(batch) files as pending tasks and starts
// uploading all of them concurrently. Files beyond the ceiling are dropped.
// Uploads are detached from ctx cancellation so they outlive the caller.
func (c *Coordinator) Submit(ctx context.Context, files []File) *Batch {
	c.mu.Lock()
	room := c.opts.MaxFiles - len(c.order)
	if room < 0 {
		room = 0
	}
	if len(files) > room {
		files = files[:room]
	}

	b := &Batch{
		ids:  make([]string, 0, len(files)),
		urls: make([]string, len(files)),
	}
	base := context.WithoutCancel(ctx)
	runs := make([]taskRun, len(files))
	for i, f := range files {
		id := uuid.NewString()
		taskCtx, cancel := context.WithCancel(base)
		c.tasks[id] = &taskState{
			task:   Task{ID: id, File: f, Status: StatusPending},
			cancel: cancel,
		}
		c.order = append(c.order, id)
		b.ids = append(b.ids, id)
		runs[i] = taskRun{id: id, ctx: taskCtx, cancel: cancel}
	}
	c.mu.Unlock()

	for slot, run := range runs {
		b.group.Go(func() error {
			if task, ok := c.uploadOne(run); ok && task.Status == StatusSuccess {
				b.mu.Lock()
				b.urls[slot] = task.URL
				b.mu.Unlock()
			}
			return nil
		})
	}
	return b
}

// Wait blocks until every task of the submission settles and returns the URLs
// of the successful ones in creation order. Failed and removed tasks are
// omitted, so positions shift past a failure.
func (b *Batch) Wait() []string {
	_ = b.group.Wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.urls))
	for _, u := range b.urls {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

// IDs returns the task ids created by the submission, in order.
func (b *Batch) IDs() []string {
	return append([]string(nil), b.ids...)
}

// Retry re-runs the upload of a failed task and blocks until it settles.
func (c *Coordinator) Retry(ctx context.Context, id string) (Task, error) {
	c.mu.Lock()
	st, ok := c.tasks[id]
	if !ok {
		c.mu.Unlock()
		return Task{}, ErrTaskNotFound
	}
	if st.task.Status != StatusError {
		c.mu.Unlock()
		return Task{}, ErrNotRetryable
	}
	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	st.cancel = cancel
	// claim the task so a concurrent Retry sees it as not retryable
	st.task.Status = StatusUploading
	st.task.Error = ""
	c.mu.Unlock()

	task, kept := c.uploadOne(taskRun{id: id, ctx: taskCtx, cancel: cancel})
	if !kept {
		return Task{}, ErrTaskNotFound
	}
	return task, nil
}

// Remove drops a task from the batch in any state.
func (c *Coordinator) Remove(id string) error {
	c.mu.Lock()
	st, ok := c.tasks[id]
	if !ok {
		c.mu.Unlock()
		return ErrTaskNotFound
	}
	delete(c.tasks, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	cancel := st.cancel
	c.mu.Unlock()

	if c.opts.CancelOnRemove && cancel != nil {
		cancel()
	}
	return nil
}

// Close removes every task.
func (c *Coordinator) Close() {
	for _, t := range c.Tasks() {
		_ = c.Remove(t.ID)
	}
}

// Tasks returns a snapshot of the batch in creation order.
func (c *Coordinator) Tasks() []Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Task, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.tasks[id].task)
	}
	return out
}

// Task returns one task by id.
func (c *Coordinator) Task(id string) (Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.tasks[id]
	if !ok {
		return Task{}, false
	}
	return st.task, true
}

// uploadOne moves the task to uploading, writes it to the blob store and
// records the outcome. It returns false when the task was removed meanwhile,
// in which case the outcome is discarded.
func (c *Coordinator) uploadOne(run taskRun) (Task, bool) {
	defer run.cancel()
	id := run.id

	c.mu.Lock()
	st, ok := c.tasks[id]
	if !ok {
		c.mu.Unlock()
		return Task{}, false
	}
	st.task.Status = StatusUploading
	st.task.Progress = 0
	st.task.URL = ""
	st.task.Error = ""
	file := st.task.File
	c.mu.Unlock()

	metrics.IncUploadStarted()
	start := time.Now()
	url, err := c.put(run.ctx, file)
	metrics.ObserveUploadDurationMs(float64(time.Since(start).Milliseconds()))

	c.mu.Lock()
	st, ok = c.tasks[id]
	if !ok {
		c.mu.Unlock()
		metrics.IncUploadDiscarded()
		return Task{}, false
	}
	if err != nil {
		st.task.Status = StatusError
		st.task.Error = err.Error()
	} else {
		st.task.Status = StatusSuccess
		st.task.Progress = 100
		st.task.URL = url
	}
	st.cancel = nil
	task := st.task
	c.mu.Unlock()

	if err != nil {
		metrics.IncUploadFailed()
		c.opts.Notifier.UploadFailed(c.opts.ProjectID, task)
	} else {
		metrics.IncUploadSucceeded()
	}
	return task, true
}

func (c *Coordinator) put(ctx context.Context, file File) (string, error) {
	if c.opts.Store == nil {
		return "", ErrNoStore
	}
	ext := fileExtension(file)
	var lastErr error
	for attempt := 0; attempt < nameAttempts; attempt++ {
		stored, err := c.opts.Store.Upload(ctx, c.objectPath(ext), file.ContentType, bytes.NewReader(file.Data))
		if err == nil {
			return c.opts.Store.PublicURL(stored), nil
		}
		lastErr = err
		if !errors.Is(err, object.ErrExists) {
			break
		}
	}
	return "", lastErr
}

func (c *Coordinator) objectPath(ext string) string {
	namespace := c.opts.ProjectID
	if namespace == "" {
		namespace = tempNamespace
	}
	name := util.RandomName(nameLength)
	if ext != "" {
		name += "." + ext
	}
	return namespace + "/" + name
}

func fileExtension(file File) string {
	if ext := util.Extension(file.Name); ext != "" {
		return ext
	}
	if file.ContentType != "" {
		if m := mimetype.Lookup(file.ContentType); m != nil {
			return strings.TrimPrefix(m.Extension(), ".")
		}
	}
	return ""
}
