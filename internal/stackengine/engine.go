// File: internal/stackengine/engine.go
// Brief: Collaborator contracts for the declarative stack control plane.

// Package stackengine defines the narrow interfaces the migration
// orchestrator uses to talk to the declarative-stack control plane and to
// inspect the physical resource. Implementations live in internal/cfn
// (CloudFormation + S3) and in this package's in-memory simulator.
package stackengine

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// DeclarationVariant selects which conditional resources a stack's
// declaration includes for a given reconcile or synthesis. It replaces
// ambient mode-flag lookups with an explicit value passed down the call
// chain.
type DeclarationVariant struct {
	// ExcludeResource drops the migrating resource from the declaration.
	// The resource's retention policy keeps the physical resource alive.
	ExcludeResource bool
	// IncludeForImport adds the import alias for the migrating resource
	// to the declaration so an import operation has a logical slot to
	// bind the physical resource into.
	IncludeForImport bool
}

// String renders the variant for logs and journal entries.
func (v DeclarationVariant) String() string {
	var parts []string
	if v.ExcludeResource {
		parts = append(parts, "exclude-resource")
	}
	if v.IncludeForImport {
		parts = append(parts, "include-for-import")
	}
	if len(parts) == 0 {
		return "default"
	}
	return strings.Join(parts, ",")
}

// ResourceMapping maps a declaration's logical resource reference to the
// physical identifier of an already-existing resource. Supplying it
// explicitly keeps import operations non-interactive.
type ResourceMapping map[string]string

// Pairs returns the mapping as sorted "logical=physical" strings.
func (m ResourceMapping) Pairs() []string {
	out := make([]string, 0, len(m))
	for logical, physical := range m {
		out = append(out, fmt.Sprintf("%s=%s", logical, physical))
	}
	sort.Strings(out)
	return out
}

// Engine reconciles deployed infrastructure against a stack's declarative
// description. Every call is blocking; cancellation comes from ctx.
type Engine interface {
	// Reconcile converges the named stack to its declaration rendered
	// with the given variant. A reconcile that produces no changes is a
	// successful no-op.
	Reconcile(ctx context.Context, stackID string, variant DeclarationVariant) error
	// Synthesize renders the named stack's declaration with the given
	// variant without deploying anything, returning the rendered
	// template body.
	Synthesize(ctx context.Context, stackID string, variant DeclarationVariant) (string, error)
	// ImportExisting attaches already-existing physical resources to the
	// named stack's declaration using the explicit mapping, without
	// recreating them.
	ImportExisting(ctx context.Context, stackID string, mapping ResourceMapping) error
}

// Inspector is the read-only query surface over the physical resource and
// over which stack currently declares ownership of it.
type Inspector interface {
	// ResourceExists reports whether the named physical resource exists
	// and is reachable.
	ResourceExists(ctx context.Context, name string) (bool, error)
	// ResourceOwner returns the stack that currently lists resourceID
	// among its declared resources. ok is false when no stack owns it.
	// Ownership is exclusive at any instant.
	ResourceOwner(ctx context.Context, resourceID string) (stackID string, ok bool, err error)
	// ListContents returns identifiers of the items stored in the named
	// resource, for count-based verification.
	ListContents(ctx context.Context, name string) ([]string, error)
}
