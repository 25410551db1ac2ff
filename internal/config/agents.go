package config

// AgentsConfig configures task orchestration.
type AgentsConfig struct {
	Orchestration   bool   `yaml:"orchestration" json:"orchestration"`       // Parallel execution; false forces sequential
	MaxParallel     int    `yaml:"max_parallel" json:"max_parallel"`         // Concurrent agent executions
	DefaultPriority string `yaml:"default_priority" json:"default_priority"` // low, medium, high, critical
	LearningEnabled bool   `yaml:"learning_enabled" json:"learning_enabled"` // Append interactions to the log
	InteractionLog  string `yaml:"interaction_log" json:"interaction_log"`   // Interaction log path
}

// GetMaxParallel returns the parallel execution bound, never below 1.
func (c *AgentsConfig) GetMaxParallel() int {
	if c.MaxParallel < 1 {
		return 1
	}
	return c.MaxParallel
}
