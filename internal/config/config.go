// File: internal/config/config.go
// Brief: Internal config package implementation for 'config'.

// Package config defines the flag plumbing and runtime options shared by
// bucketmv's migration commands, translating Cobra/Viper flag values into
// a strongly typed struct the orchestrator wiring consumes.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mpstpierrehome/musical-buckets/internal/declare"
	"github.com/mpstpierrehome/musical-buckets/internal/journal"
	"github.com/mpstpierrehome/musical-buckets/internal/stackengine"
)

// Engine selection values for --engine.
const (
	EngineAWS    = "aws"
	EngineMemory = "memory"
)

// Options holds all CLI configuration used by the migration commands.
type Options struct {
	Resource    string
	SourceStack string
	TargetStack string

	Engine      string
	Region      string
	Profile     string
	JournalPath string
	ColorMode   string
	LogLevel    string

	// MappingPairs holds raw logical=physical flag values; Validate
	// compiles them into Mapping.
	MappingPairs []string
	Mapping      stackengine.ResourceMapping

	// SeedObjects is how many demo objects the memory engine seeds into
	// the resource, owned by the source stack.
	SeedObjects int
}

// NewOptions returns Options with defaults applied.
func NewOptions() *Options {
	return &Options{
		Engine:      EngineAWS,
		ColorMode:   "auto",
		LogLevel:    "info",
		JournalPath: journal.DefaultPath,
		SeedObjects: 5,
	}
}

// AddFlags binds configuration flags to the provided Cobra command.
func (o *Options) AddFlags(cmd *cobra.Command) {
	o.BindFlags(cmd.PersistentFlags())
}

// BindFlags attaches migration flags to an arbitrary FlagSet and returns
// the flag names for further customization.
func (o *Options) BindFlags(fs *pflag.FlagSet) []string {
	var names []string
	fs.StringVarP(&o.Resource, "resource", "r", "", "Name of the physical bucket being migrated")
	names = append(names, "resource")
	fs.StringVarP(&o.SourceStack, "source-stack", "s", "", "Stack that currently declares the bucket")
	names = append(names, "source-stack")
	fs.StringVarP(&o.TargetStack, "target-stack", "t", "", "Stack that should own the bucket after migration")
	names = append(names, "target-stack")
	fs.StringVar(&o.Engine, "engine", o.Engine, "Control plane backend: aws or memory (in-process simulation; state resets each invocation, pair with 'migrate')")
	names = append(names, "engine")
	fs.StringVar(&o.Region, "region", "", "AWS region (defaults to the environment/profile region)")
	names = append(names, "region")
	fs.StringVar(&o.Profile, "profile", "", "AWS shared config profile")
	names = append(names, "profile")
	fs.StringSliceVar(&o.MappingPairs, "map", nil, "Import mapping as logical=physical (default: ImportedResource=<resource>)")
	names = append(names, "map")
	fs.StringVar(&o.JournalPath, "journal", o.JournalPath, "Path to the SQLite step journal")
	names = append(names, "journal")
	fs.StringVar(&o.ColorMode, "color", o.ColorMode, "Force set color output. 'auto': colorize if tty attached, 'always': always colorize, 'never': never colorize")
	names = append(names, "color")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level for bucketmv output (debug, info, warn, error)")
	names = append(names, "log-level")
	fs.IntVar(&o.SeedObjects, "seed-objects", o.SeedObjects, "Object count the memory engine seeds into the demo bucket")
	names = append(names, "seed-objects")
	return names
}

// Validate ensures provided options are coherent and compiles the import
// mapping.
func (o *Options) Validate() error {
	switch strings.ToLower(strings.TrimSpace(o.Engine)) {
	case EngineAWS:
		o.Engine = EngineAWS
	case EngineMemory:
		o.Engine = EngineMemory
	default:
		return fmt.Errorf("invalid --engine value %q (allowed: aws, memory)", o.Engine)
	}
	switch strings.ToLower(strings.TrimSpace(o.ColorMode)) {
	case "", "auto":
		o.ColorMode = "auto"
	case "always":
		o.ColorMode = "always"
	case "never":
		o.ColorMode = "never"
	default:
		return fmt.Errorf("invalid --color value %q (allowed: auto, always, never)", o.ColorMode)
	}
	o.Resource = strings.TrimSpace(o.Resource)
	o.SourceStack = strings.TrimSpace(o.SourceStack)
	o.TargetStack = strings.TrimSpace(o.TargetStack)
	if o.SeedObjects < 0 {
		return fmt.Errorf("--seed-objects cannot be negative")
	}

	o.Mapping = stackengine.ResourceMapping{}
	for _, pair := range o.MappingPairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return fmt.Errorf("invalid --map value %q (expected logical=physical)", pair)
		}
		o.Mapping[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	if len(o.Mapping) == 0 && o.Resource != "" {
		o.Mapping[declare.ImportLogicalID] = o.Resource
	}
	return nil
}

// RequireResource fails when --resource is unset.
func (o *Options) RequireResource() error {
	if o.Resource == "" {
		return fmt.Errorf("--resource is required")
	}
	return nil
}

// RequireStacks fails when any of the named stack flags is unset. Pass
// the subset a command actually needs.
func (o *Options) RequireStacks(source, target bool) error {
	if source && o.SourceStack == "" {
		return fmt.Errorf("--source-stack is required")
	}
	if target && o.TargetStack == "" {
		return fmt.Errorf("--target-stack is required")
	}
	return nil
}
