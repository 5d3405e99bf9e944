package config

import (
	"fmt"
	"sync"
)

// Defaults applied when a document omits the corresponding field.
const (
	DefaultShardingStrategy = "tensor_parallel"
	DefaultAttentionKernel  = "autoselected"
)

var (
	registryMu sync.RWMutex

	shardingStrategies = map[string]bool{
		"tensor_parallel":   true,
		"sequence_parallel": true,
		"replicated":        true,
	}

	attentionKernels = map[string]bool{
		"autoselected": true,
		"dot_product":  true,
		"flash":        true,
		"paged":        true,
	}
)

// RegisterShardingStrategy adds a strategy to the allow-list. Execution
// layers register their strategies at init time, before configuration is
// loaded.
func RegisterShardingStrategy(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	shardingStrategies[name] = true
}

// RegisterAttentionKernel adds an attention kernel to the allow-list.
func RegisterAttentionKernel(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	attentionKernels[name] = true
}

// ShardingStrategyAllowed reports whether the named strategy is known.
func ShardingStrategyAllowed(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return shardingStrategies[name]
}

// AttentionKernelAllowed reports whether the named kernel is known.
func AttentionKernelAllowed(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return attentionKernels[name]
}

// InvalidOptionError is returned when a scalar option fails type or
// allow-list checks. It names the field and the received value.
type InvalidOptionError struct {
	Field string
	Value any
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid value %v for option %q", e.Value, e.Field)
}
