// File: internal/declare/declare.go
// Brief: The two demo stack declarations, rendered as CloudFormation YAML.

// Package declare holds the repository's two declarative stack
// definitions. Rendering is pure: a stack identifier plus a
// DeclarationVariant produce a CloudFormation template body, no cloud
// calls involved.
package declare

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mpstpierrehome/musical-buckets/internal/stackengine"
)

// Logical resource IDs used by the declarations. ImportLogicalID is the
// slot the import operation binds the physical bucket into on the target
// stack, and the default key of the resource mapping.
const (
	SourceLogicalID = "DemoBucket"
	ImportLogicalID = "ImportedResource"

	// anchorLogicalID keeps a declaration non-empty when the bucket is
	// excluded; CloudFormation rejects templates with zero resources.
	anchorLogicalID = "StackAnchor"
)

// Template is the subset of the CloudFormation template grammar the demo
// stacks use.
type Template struct {
	FormatVersion string              `yaml:"AWSTemplateFormatVersion"`
	Description   string              `yaml:"Description,omitempty"`
	Resources     map[string]Resource `yaml:"Resources"`
	Outputs       map[string]Output   `yaml:"Outputs,omitempty"`
}

type Resource struct {
	Type                string         `yaml:"Type"`
	DeletionPolicy      string         `yaml:"DeletionPolicy,omitempty"`
	UpdateReplacePolicy string         `yaml:"UpdateReplacePolicy,omitempty"`
	Properties          map[string]any `yaml:"Properties,omitempty"`
}

type Output struct {
	Description string `yaml:"Description,omitempty"`
	Value       any    `yaml:"Value"`
}

// TemplateFunc renders a stack's declaration for a variant. The engine is
// configured with one per stack ID.
type TemplateFunc func(variant stackengine.DeclarationVariant) Template

// SourceStack declares the bucket as an owned resource unless the variant
// excludes it. Retention policies keep the physical bucket (and its
// contents) alive when the declaration stops listing it.
func SourceStack(bucketName string) TemplateFunc {
	return func(variant stackengine.DeclarationVariant) Template {
		t := Template{
			FormatVersion: "2010-09-09",
			Description:   fmt.Sprintf("musical-buckets source stack for %s", bucketName),
			Resources: map[string]Resource{
				anchorLogicalID: anchorResource(),
			},
		}
		if !variant.ExcludeResource {
			t.Resources[SourceLogicalID] = bucketResource(bucketName)
			t.Outputs = map[string]Output{
				"BucketName": {
					Description: "Physical name of the declared bucket",
					Value:       map[string]string{"Ref": SourceLogicalID},
				},
			}
		}
		return t
	}
}

// TargetStack declares the import alias for the bucket when the variant
// asks for it; otherwise the stack declares only its anchor.
func TargetStack(bucketName string) TemplateFunc {
	return func(variant stackengine.DeclarationVariant) Template {
		t := Template{
			FormatVersion: "2010-09-09",
			Description:   fmt.Sprintf("musical-buckets target stack for %s", bucketName),
			Resources: map[string]Resource{
				anchorLogicalID: anchorResource(),
			},
		}
		if variant.IncludeForImport {
			t.Resources[ImportLogicalID] = bucketResource(bucketName)
			t.Outputs = map[string]Output{
				"BucketName": {
					Description: "Physical name of the imported bucket",
					Value:       map[string]string{"Ref": ImportLogicalID},
				},
			}
		}
		return t
	}
}

func bucketResource(bucketName string) Resource {
	return Resource{
		Type:                "AWS::S3::Bucket",
		DeletionPolicy:      "Retain",
		UpdateReplacePolicy: "Retain",
		Properties: map[string]any{
			"BucketName": bucketName,
			"VersioningConfiguration": map[string]any{
				"Status": "Enabled",
			},
		},
	}
}

func anchorResource() Resource {
	return Resource{Type: "AWS::CloudFormation::WaitConditionHandle"}
}

// Render marshals a template to its YAML body.
func Render(t Template) (string, error) {
	body, err := yaml.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return string(body), nil
}
