// File: internal/stackengine/memory.go
// Brief: In-memory Engine+Inspector simulation.

package stackengine

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory simulates the control plane in process: one conditional resource,
// any number of stacks, exclusive ownership. It backs `--engine memory`
// for credential-free demo runs and the orchestrator's tests. State lives
// only for the lifetime of the process.
type Memory struct {
	mu       sync.Mutex
	resource string
	exists   bool
	retained bool
	objects  []string
	owner    string

	// Failure injection for tests. A non-nil error is returned verbatim
	// by the corresponding call.
	ReconcileErr error
	SynthErr     error
	ImportErr    error
	InspectErr   error

	// StickyOwner makes Reconcile report success without actually
	// releasing ownership, imitating a control plane whose observed
	// state lags the mutating call.
	StickyOwner bool
}

// NewMemory returns a simulator for the named resource. The resource does
// not exist until Seed is called.
func NewMemory(resource string) *Memory {
	return &Memory{resource: resource, retained: true}
}

// Seed creates the resource with the given object keys and assigns
// ownership to owner. An empty owner leaves the resource unowned.
func (m *Memory) Seed(owner string, objects ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exists = true
	m.objects = append([]string(nil), objects...)
	m.owner = owner
}

func (m *Memory) Reconcile(_ context.Context, stackID string, variant DeclarationVariant) error {
	if m.ReconcileErr != nil {
		return m.ReconcileErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if variant.ExcludeResource {
		if m.owner == stackID && !m.StickyOwner {
			if !m.retained {
				m.exists = false
				m.objects = nil
			}
			m.owner = ""
		}
		return nil
	}
	// Declaring the resource while another stack owns it mirrors the
	// control plane's "resource already exists" reconcile failure.
	if m.owner != "" && m.owner != stackID {
		return fmt.Errorf("reconcile %s: resource %q already declared by %s", stackID, m.resource, m.owner)
	}
	m.exists = true
	m.owner = stackID
	return nil
}

func (m *Memory) Synthesize(_ context.Context, stackID string, variant DeclarationVariant) (string, error) {
	if m.SynthErr != nil {
		return "", m.SynthErr
	}
	return fmt.Sprintf("# synthesized %s (%s)\nresource: %s\n", stackID, variant, m.resource), nil
}

func (m *Memory) ImportExisting(_ context.Context, stackID string, mapping ResourceMapping) error {
	if m.ImportErr != nil {
		return m.ImportErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for logical, physical := range mapping {
		if physical != m.resource {
			return fmt.Errorf("import %s: unknown physical resource %q for logical id %s", stackID, physical, logical)
		}
		if !m.exists {
			return fmt.Errorf("import %s: physical resource %q does not exist", stackID, physical)
		}
		if m.owner != "" && m.owner != stackID {
			return fmt.Errorf("import %s: resource %q is still declared by %s", stackID, physical, m.owner)
		}
		m.owner = stackID
	}
	return nil
}

func (m *Memory) ResourceExists(_ context.Context, name string) (bool, error) {
	if m.InspectErr != nil {
		return false, m.InspectErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return name == m.resource && m.exists, nil
}

func (m *Memory) ResourceOwner(_ context.Context, resourceID string) (string, bool, error) {
	if m.InspectErr != nil {
		return "", false, m.InspectErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if resourceID != m.resource || m.owner == "" {
		return "", false, nil
	}
	return m.owner, true, nil
}

func (m *Memory) ListContents(_ context.Context, name string) ([]string, error) {
	if m.InspectErr != nil {
		return nil, m.InspectErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if name != m.resource || !m.exists {
		return nil, fmt.Errorf("list %q: resource does not exist", name)
	}
	out := append([]string(nil), m.objects...)
	sort.Strings(out)
	return out, nil
}

var (
	_ Engine    = (*Memory)(nil)
	_ Inspector = (*Memory)(nil)
)
