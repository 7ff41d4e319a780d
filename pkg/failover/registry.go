package failover

import (
	"sort"

	"github.com/Wartem/llm-chat-lite/pkg/config"
)

// Registry is the immutable, priority-ordered list of candidate instances.
type Registry struct {
	instances []Instance
}

// NewRegistry sorts instances by ascending priority. Instances with equal
// priority keep their configured order.
func NewRegistry(instances []Instance) *Registry {
	sorted := append([]Instance(nil), instances...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &Registry{instances: sorted}
}

// RegistryFromConfig builds a Registry from configured instances.
func RegistryFromConfig(cfgs []config.InstanceConfig) *Registry {
	instances := make([]Instance, 0, len(cfgs))
	for _, c := range cfgs {
		instances = append(instances, Instance{Name: c.Name, URL: c.URL, Priority: c.Priority})
	}
	return NewRegistry(instances)
}

// Instances returns the instances in priority order. The slice must not be modified.
func (r *Registry) Instances() []Instance {
	return r.instances
}

// Len returns the number of instances.
func (r *Registry) Len() int {
	return len(r.instances)
}
