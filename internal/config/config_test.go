// File: internal/config/config_test.go
// Brief: Options parsing and validation.

package config

import (
	"testing"

	"github.com/mpstpierrehome/musical-buckets/internal/declare"
)

func TestValidateDefaults(t *testing.T) {
	o := NewOptions()
	o.Resource = "demo-bucket"
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if o.Engine != EngineAWS {
		t.Fatalf("engine=%q", o.Engine)
	}
	if got := o.Mapping[declare.ImportLogicalID]; got != "demo-bucket" {
		t.Fatalf("default mapping=%q want demo-bucket", got)
	}
}

func TestValidateMappingPairs(t *testing.T) {
	o := NewOptions()
	o.Resource = "demo-bucket"
	o.MappingPairs = []string{"ImportedResource=demo-bucket", "Extra=other"}
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(o.Mapping) != 2 || o.Mapping["Extra"] != "other" {
		t.Fatalf("mapping=%v", o.Mapping)
	}
}

func TestValidateRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Options)
	}{
		{"bad engine", func(o *Options) { o.Engine = "cdk" }},
		{"bad color", func(o *Options) { o.ColorMode = "rainbow" }},
		{"bad mapping", func(o *Options) { o.MappingPairs = []string{"no-equals-sign"} }},
		{"empty mapping side", func(o *Options) { o.MappingPairs = []string{"=demo-bucket"} }},
		{"negative seed", func(o *Options) { o.SeedObjects = -1 }},
	}
	for _, tc := range cases {
		o := NewOptions()
		o.Resource = "demo-bucket"
		tc.mut(o)
		if err := o.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestRequireHelpers(t *testing.T) {
	o := NewOptions()
	if err := o.RequireResource(); err == nil {
		t.Fatal("expected missing-resource error")
	}
	if err := o.RequireStacks(true, true); err == nil {
		t.Fatal("expected missing-stack error")
	}
	o.Resource = "demo-bucket"
	o.SourceStack = "StackA"
	o.TargetStack = "StackB"
	if err := o.RequireResource(); err != nil {
		t.Fatalf("RequireResource: %v", err)
	}
	if err := o.RequireStacks(true, true); err != nil {
		t.Fatalf("RequireStacks: %v", err)
	}
}
