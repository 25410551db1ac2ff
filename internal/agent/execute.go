package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"forge/internal/logging"
)

// dependencyPollInterval is how often a queued task re-checks its
// dependencies while waiting.
const dependencyPollInterval = 100 * time.Millisecond

// ExecuteFunc runs a task on behalf of an agent type.
type ExecuteFunc func(ctx context.Context, task *Task) (Result, error)

// RegisterCallback installs the execution function for an agent type. Tasks
// assigned to agents without a callback complete immediately.
func (o *Orchestrator) RegisterCallback(agent Type, fn ExecuteFunc) {
	o.mu.Lock()
	o.callbacks[agent] = fn
	o.mu.Unlock()
	logging.AgentsDebug("registered callback for %s", agent)
}

// Execute runs a single task through its assigned agent's callback and
// records the outcome on the task.
func (o *Orchestrator) Execute(ctx context.Context, t *Task) (Result, error) {
	start := o.now()

	o.mu.Lock()
	t.Status = StatusInProgress
	t.StartedAt = start
	fn := o.callbacks[t.Assigned]
	o.mu.Unlock()

	logging.Agents("executing task %s with %s", t.ID, t.Assigned)
	logging.Audit().AgentSpawn(string(t.Assigned), t.ID)

	var (
		res Result
		err error
	)
	if fn != nil {
		res, err = fn(ctx, t)
	} else {
		res = Result{Status: StatusCompleted, Message: "task completed"}
	}

	end := o.now()
	elapsed := end.Sub(start).Milliseconds()

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		t.Status = StatusFailed
		t.Result = &Result{Status: StatusFailed, Error: err.Error()}
		logging.Audit().AgentComplete(string(t.Assigned), t.ID, elapsed, false, err.Error())
		return *t.Result, fmt.Errorf("task %s failed: %w", t.ID, err)
	}

	t.Status = StatusCompleted
	t.CompletedAt = end
	t.Result = &res
	o.completed[t.ID] = struct{}{}
	logging.Audit().AgentComplete(string(t.Assigned), t.ID, elapsed, true, "")

	if o.cfg.LearningEnabled {
		o.appendInteractionLocked(t)
	}
	return res, nil
}

// ExecuteParallel runs tasks concurrently, bounded by the configured parallel
// limit. Tasks wait for their dependencies before taking a slot, so a
// dependency chain longer than the limit cannot deadlock. Failures are
// collected in the results, never fatal to siblings. Results are positional:
// results[i] belongs to tasks[i].
func (o *Orchestrator) ExecuteParallel(ctx context.Context, tasks []*Task) []Result {
	results := make([]Result, len(tasks))

	if !o.cfg.Orchestration {
		logging.Agents("orchestration disabled, executing %d tasks sequentially", len(tasks))
		for i, t := range tasks {
			res, err := o.Execute(ctx, t)
			if err != nil {
				logging.AgentsDebug("task %s: %v", t.ID, err)
			}
			results[i] = res
		}
		return results
	}

	sem := semaphore.NewWeighted(int64(o.cfg.GetMaxParallel()))
	var wg sync.WaitGroup

	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t *Task) {
			defer wg.Done()

			if err := o.awaitDependencies(ctx, t); err != nil {
				results[i] = o.abortTask(t, err)
				return
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = o.abortTask(t, err)
				return
			}
			defer sem.Release(1)

			res, err := o.Execute(ctx, t)
			if err != nil {
				logging.AgentsDebug("task %s: %v", t.ID, err)
			}
			results[i] = res
		}(i, t)
	}

	wg.Wait()
	return results
}

// awaitDependencies blocks until every dependency of t has completed or the
// context is cancelled.
func (o *Orchestrator) awaitDependencies(ctx context.Context, t *Task) error {
	ticker := time.NewTicker(dependencyPollInterval)
	defer ticker.Stop()

	for {
		o.mu.Lock()
		ready := t.CanStart(o.completed)
		o.mu.Unlock()
		if ready {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// abortTask marks a task failed before execution started, for cancellation
// and dependency-wait errors.
func (o *Orchestrator) abortTask(t *Task, err error) Result {
	res := Result{Status: StatusFailed, Error: err.Error()}

	o.mu.Lock()
	t.Status = StatusFailed
	t.Result = &res
	o.mu.Unlock()

	logging.Agents("task %s aborted: %v", t.ID, err)
	return res
}

// appendInteractionLocked adds the completed task to the learning log on
// disk. Caller holds o.mu.
func (o *Orchestrator) appendInteractionLocked(t *Task) {
	rec := InteractionRecord{
		Timestamp:   o.now().UTC(),
		TaskID:      t.ID,
		Kind:        t.Kind,
		Description: t.Description,
		Agent:       t.Assigned,
		Status:      t.Status,
		Duration:    t.Duration().Seconds(),
		Success:     t.Status == StatusCompleted,
	}

	path := o.interactionLogPath()

	var records []InteractionRecord
	if data, err := os.ReadFile(path); err == nil {
		// A corrupt log starts fresh rather than blocking learning.
		_ = json.Unmarshal(data, &records)
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		logging.Agents("failed to encode interaction log: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logging.Agents("failed to create interaction log directory: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logging.Agents("failed to save interaction log: %v", err)
	}
}

func (o *Orchestrator) interactionLogPath() string {
	path := o.cfg.InteractionLog
	if path == "" {
		path = filepath.Join(".forge", "interaction-log.json")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(o.workspace, path)
	}
	return path
}
