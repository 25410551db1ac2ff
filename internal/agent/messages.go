package agent

import (
	"fmt"

	"forge/internal/logging"
)

// Send queues a message between agents. Returns an error when the queue is
// full rather than blocking the sender.
func (o *Orchestrator) Send(from, to Type, kind MessageKind, content map[string]string) (Message, error) {
	msg := Message{
		ID:      o.newID(),
		From:    from,
		To:      to,
		Kind:    kind,
		Content: content,
		Time:    o.now(),
	}

	select {
	case o.messages <- msg:
		logging.AgentsDebug("message %s: %s -> %s (%s)", msg.ID, from, to, kind)
		return msg, nil
	default:
		return Message{}, fmt.Errorf("message queue full (capacity %d)", cap(o.messages))
	}
}

// Drain processes every queued message and returns them in arrival order.
// Handoffs reassign their task; queries are logged for the receiving agent.
func (o *Orchestrator) Drain() []Message {
	var drained []Message
	for {
		select {
		case msg := <-o.messages:
			o.dispatch(msg)
			drained = append(drained, msg)
		default:
			return drained
		}
	}
}

func (o *Orchestrator) dispatch(msg Message) {
	switch msg.Kind {
	case MessageHandoff:
		o.handleHandoff(msg)
	case MessageQuery:
		logging.Agents("query from %s: %s", msg.From, msg.Content["query"])
	}
}

// handleHandoff reassigns the referenced task to the receiving agent and
// records the message on the task.
func (o *Orchestrator) handleHandoff(msg Message) {
	taskID := msg.Content["task_id"]
	if taskID == "" {
		logging.Agents("handoff message %s missing task_id", msg.ID)
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	t, ok := o.tasks[taskID]
	if !ok {
		logging.Agents("handoff message %s references unknown task %s", msg.ID, taskID)
		return
	}
	t.Assigned = msg.To
	t.Messages = append(t.Messages, msg)
	logging.Agents("task %s handed off to %s", taskID, msg.To)
}
