package flames

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]func() VariationFunc{}
)

// RegisterVariation adds or replaces a kernel factory. It is safe to call
// from init functions of other packages.
func RegisterVariation(name string, factory func() VariationFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// NewVariationFunc returns a fresh kernel instance with default parameters.
func NewVariationFunc(name string) (VariationFunc, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariation, name)
	}
	return f(), nil
}

// VariationNames lists registered kernels in sorted order.
func VariationNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
