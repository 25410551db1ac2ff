package agent

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"forge/internal/config"
	"forge/internal/logging"
)

const messageQueueSize = 64

// routingRules maps description keywords to agents, checked in order.
var routingRules = []struct {
	agent    Type
	keywords []string
}{
	{TypeLeadArchitect, []string{"architect", "design", "pattern", "structure"}},
	{TypeBackendMaster, []string{"api", "endpoint", "database", "backend", "repository"}},
	{TypeCLIArtisan, []string{"cli", "command", "terminal"}},
	{TypePlatformBuilder, []string{"deploy", "docker", "kubernetes", "cicd", "infrastructure"}},
	{TypeIntegrationSpecialist, []string{"integration", "webhook", "connector", "external"}},
	{TypeQASentinel, []string{"test", "qa", "quality", "review"}},
}

// Orchestrator routes tasks to specialist agents, tracks their lifecycle,
// and relays messages between agents.
type Orchestrator struct {
	workspace string
	cfg       config.AgentsConfig

	agents    map[Type]Info
	callbacks map[Type]ExecuteFunc

	mu        sync.Mutex
	tasks     map[string]*Task
	order     []string // Creation order, for deterministic listings
	completed map[string]struct{}

	messages chan Message

	newID func() string
	now   func() time.Time
}

// NewOrchestrator builds an orchestrator rooted at workspace.
func NewOrchestrator(workspace string, cfg config.AgentsConfig) *Orchestrator {
	return &Orchestrator{
		workspace: workspace,
		cfg:       cfg,
		agents:    DefaultAgents(),
		callbacks: make(map[Type]ExecuteFunc),
		tasks:     make(map[string]*Task),
		completed: make(map[string]struct{}),
		messages:  make(chan Message, messageQueueSize),
		newID:     func() string { return uuid.NewString()[:8] },
		now:       time.Now,
	}
}

// Agents returns the specialist roster.
func (o *Orchestrator) Agents() map[Type]Info {
	return o.agents
}

// Assign picks the most appropriate agent for a task by keyword routing,
// falling back to the task kind and finally to the lead architect.
func (o *Orchestrator) Assign(t *Task) Type {
	description := strings.ToLower(t.Description)

	for _, rule := range routingRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(description, keyword) {
				return rule.agent
			}
		}
	}

	switch t.Kind {
	case KindFeature:
		return TypeBackendMaster
	case KindBugfix, KindRefactor:
		return TypeQASentinel
	}

	logging.Agents("no agent match for task %q, using %s", t.Description, TypeLeadArchitect)
	return TypeLeadArchitect
}

// CreateTask registers a new task and assigns it to an agent. Empty kind
// defaults to feature; empty priority defaults to the configured priority.
func (o *Orchestrator) CreateTask(description string, kind Kind, priority string, metadata map[string]string) *Task {
	if kind == "" {
		kind = KindFeature
	}
	if priority == "" {
		priority = o.defaultPriority()
	}

	t := &Task{
		ID:          o.newID(),
		Description: description,
		Kind:        kind,
		Priority:    priority,
		Status:      StatusPending,
		Metadata:    metadata,
	}
	t.Assigned = o.Assign(t)

	o.mu.Lock()
	o.tasks[t.ID] = t
	o.order = append(o.order, t.ID)
	o.mu.Unlock()

	logging.Agents("created task %s: %q assigned to %s", t.ID, description, t.Assigned)
	logging.Audit().TaskRoute(t.ID, string(t.Assigned))

	return t
}

// Decompose splits a feature task into a design, implementation, and testing
// chain wired by dependencies. Other kinds produce no subtasks.
func (o *Orchestrator) Decompose(t *Task) []*Task {
	if t.Kind != KindFeature {
		return nil
	}

	subtasks := []*Task{
		{
			ID:          t.ID + "-arch",
			Description: "Design architecture for: " + t.Description,
			Kind:        KindDesign,
			Priority:    t.Priority,
			Assigned:    TypeLeadArchitect,
			Status:      StatusPending,
			Metadata:    map[string]string{"parent_task": t.ID},
		},
		{
			ID:           t.ID + "-impl",
			Description:  "Implement: " + t.Description,
			Kind:         KindImplementation,
			Priority:     t.Priority,
			Assigned:     TypeBackendMaster,
			Status:       StatusPending,
			Dependencies: []string{t.ID + "-arch"},
			Metadata:     map[string]string{"parent_task": t.ID},
		},
		{
			ID:           t.ID + "-test",
			Description:  "Test: " + t.Description,
			Kind:         KindTesting,
			Priority:     t.Priority,
			Assigned:     TypeQASentinel,
			Status:       StatusPending,
			Dependencies: []string{t.ID + "-impl"},
			Metadata:     map[string]string{"parent_task": t.ID},
		},
	}

	o.mu.Lock()
	t.Subtasks = subtasks
	for _, sub := range subtasks {
		o.tasks[sub.ID] = sub
		o.order = append(o.order, sub.ID)
	}
	o.mu.Unlock()

	logging.Agents("decomposed task %s into %d subtasks", t.ID, len(subtasks))
	return subtasks
}

// ListTasks returns tasks ordered by priority rank (critical first), then by
// creation order. An empty status returns everything.
func (o *Orchestrator) ListTasks(status Status) []*Task {
	o.mu.Lock()
	defer o.mu.Unlock()

	tasks := make([]*Task, 0, len(o.order))
	for _, id := range o.order {
		t := o.tasks[id]
		if status != "" && t.Status != status {
			continue
		}
		tasks = append(tasks, t)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return priorityRank[tasks[i].Priority] > priorityRank[tasks[j].Priority]
	})
	return tasks
}

// Task looks up a task by ID.
func (o *Orchestrator) Task(id string) (*Task, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	t, ok := o.tasks[id]
	return t, ok
}

// UpdateStatus sets a task's status. Marking a task completed also records it
// for dependency resolution.
func (o *Orchestrator) UpdateStatus(id string, status Status) (*Task, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	t, ok := o.tasks[id]
	if !ok {
		return nil, fmt.Errorf("unknown task: %s", id)
	}
	t.Status = status
	if status == StatusCompleted {
		o.completed[id] = struct{}{}
	}
	logging.Agents("task %s status updated to %s", id, status)
	return t, nil
}

// Recommend suggests an agent for free-form context without creating a task.
func (o *Orchestrator) Recommend(context string) Type {
	probe := &Task{ID: "probe", Description: context, Kind: KindQuery, Priority: o.defaultPriority()}
	return o.Assign(probe)
}

// SkillFile returns the workspace-relative skill path for an agent, empty
// when the agent is unknown.
func (o *Orchestrator) SkillFile(agent Type) string {
	info, ok := o.agents[agent]
	if !ok {
		return ""
	}
	return filepath.Join(o.workspace, info.SkillFile)
}

func (o *Orchestrator) defaultPriority() string {
	if o.cfg.DefaultPriority != "" {
		return o.cfg.DefaultPriority
	}
	return "medium"
}

// Suggest names the agent best suited for a description, using the default
// roster. Convenience for the CLI's one-shot suggestion path.
func Suggest(description string) string {
	o := NewOrchestrator(".", config.DefaultConfig().Agents)
	return o.agents[o.Recommend(description)].Name
}
