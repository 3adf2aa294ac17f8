package declare

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mpstpierrehome/musical-buckets/internal/stackengine"
)

func TestSourceStackDefaultDeclaresBucket(t *testing.T) {
	tmpl := SourceStack("demo-bucket")(stackengine.DeclarationVariant{})
	res, ok := tmpl.Resources[SourceLogicalID]
	if !ok {
		t.Fatalf("source declaration missing %s", SourceLogicalID)
	}
	if res.Type != "AWS::S3::Bucket" {
		t.Fatalf("type=%q", res.Type)
	}
	if res.DeletionPolicy != "Retain" || res.UpdateReplacePolicy != "Retain" {
		t.Fatalf("retention policies missing: %+v", res)
	}
	if res.Properties["BucketName"] != "demo-bucket" {
		t.Fatalf("bucket name=%v", res.Properties["BucketName"])
	}
}

func TestSourceStackExcludeVariantOmitsBucket(t *testing.T) {
	tmpl := SourceStack("demo-bucket")(stackengine.DeclarationVariant{ExcludeResource: true})
	if _, ok := tmpl.Resources[SourceLogicalID]; ok {
		t.Fatal("exclude variant must not declare the bucket")
	}
	// CloudFormation rejects empty templates; the anchor keeps it valid.
	if len(tmpl.Resources) == 0 {
		t.Fatal("excluded declaration must keep at least one resource")
	}
}

func TestTargetStackVariants(t *testing.T) {
	tmpl := TargetStack("demo-bucket")(stackengine.DeclarationVariant{})
	if _, ok := tmpl.Resources[ImportLogicalID]; ok {
		t.Fatal("default target declaration must not include the import slot")
	}
	tmpl = TargetStack("demo-bucket")(stackengine.DeclarationVariant{IncludeForImport: true})
	res, ok := tmpl.Resources[ImportLogicalID]
	if !ok {
		t.Fatalf("import variant missing %s", ImportLogicalID)
	}
	if res.DeletionPolicy != "Retain" {
		t.Fatal("imported bucket must carry a Retain policy")
	}
}

func TestRenderRoundTrips(t *testing.T) {
	body, err := Render(SourceStack("demo-bucket")(stackengine.DeclarationVariant{}))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(body, "AWSTemplateFormatVersion") {
		t.Fatalf("body missing format version:\n%s", body)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatalf("rendered template is not valid YAML: %v", err)
	}
	if _, ok := decoded["Resources"]; !ok {
		t.Fatal("decoded template has no Resources section")
	}
}
