// File: internal/cfn/engine.go
// Brief: CloudFormation-backed stack engine.

// Package cfn implements the stackengine contracts over CloudFormation
// and S3. Reconciliation goes through change sets, import goes through an
// IMPORT change set with an explicit resource mapping, and ownership is
// derived from each stack's declared physical resource IDs.
package cfn

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"go.uber.org/zap"

	"github.com/mpstpierrehome/musical-buckets/internal/declare"
	"github.com/mpstpierrehome/musical-buckets/internal/stackengine"
)

const (
	bucketResourceType = "AWS::S3::Bucket"
	changeSetWait      = 5 * time.Minute
	stackWait          = 30 * time.Minute
)

// Engine reconciles CloudFormation stacks against declarations rendered
// by internal/declare.
type Engine struct {
	client       *cloudformation.Client
	declarations map[string]declare.TemplateFunc
	log          *zap.Logger
}

// NewEngine returns an engine for the given stack declarations, keyed by
// stack ID. Reconciling or synthesizing an unknown stack ID fails.
func NewEngine(cfg aws.Config, declarations map[string]declare.TemplateFunc, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		client:       cloudformation.NewFromConfig(cfg),
		declarations: declarations,
		log:          log,
	}
}

func (e *Engine) render(stackID string, variant stackengine.DeclarationVariant) (string, error) {
	tmpl, ok := e.declarations[stackID]
	if !ok {
		return "", fmt.Errorf("no declaration registered for stack %q", stackID)
	}
	return declare.Render(tmpl(variant))
}

// Reconcile converges stackID to its declaration rendered with variant:
// create a change set, wait for it, execute it, wait for the stack. A
// change set that contains no changes is discarded and treated as a
// successful no-op.
func (e *Engine) Reconcile(ctx context.Context, stackID string, variant stackengine.DeclarationVariant) error {
	body, err := e.render(stackID, variant)
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", stackID, err)
	}
	changeSetType := cfntypes.ChangeSetTypeUpdate
	exists, err := e.stackExists(ctx, stackID)
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", stackID, err)
	}
	if !exists {
		changeSetType = cfntypes.ChangeSetTypeCreate
	}

	name := changeSetName("reconcile")
	e.log.Info("creating change set",
		zap.String("stack", stackID),
		zap.String("changeSet", name),
		zap.String("type", string(changeSetType)),
		zap.String("variant", variant.String()))
	_, err = e.client.CreateChangeSet(ctx, &cloudformation.CreateChangeSetInput{
		StackName:     aws.String(stackID),
		ChangeSetName: aws.String(name),
		ChangeSetType: changeSetType,
		TemplateBody:  aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("reconcile %s: create change set: %w", stackID, err)
	}
	noop, err := e.awaitChangeSet(ctx, stackID, name)
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", stackID, err)
	}
	if noop {
		e.log.Info("change set contained no changes", zap.String("stack", stackID))
		return nil
	}
	if err := e.executeChangeSet(ctx, stackID, name, changeSetType); err != nil {
		return fmt.Errorf("reconcile %s: %w", stackID, err)
	}
	return nil
}

// Synthesize renders the declaration and validates it against the
// CloudFormation template grammar without deploying anything.
func (e *Engine) Synthesize(ctx context.Context, stackID string, variant stackengine.DeclarationVariant) (string, error) {
	body, err := e.render(stackID, variant)
	if err != nil {
		return "", fmt.Errorf("synthesize %s: %w", stackID, err)
	}
	if _, err := e.client.ValidateTemplate(ctx, &cloudformation.ValidateTemplateInput{
		TemplateBody: aws.String(body),
	}); err != nil {
		return "", fmt.Errorf("synthesize %s: validate template: %w", stackID, err)
	}
	return body, nil
}

// ImportExisting attaches the mapped physical resources to stackID via an
// IMPORT change set. The mapping is passed explicitly so the operation
// never prompts, which pipeline execution requires.
func (e *Engine) ImportExisting(ctx context.Context, stackID string, mapping stackengine.ResourceMapping) error {
	body, err := e.render(stackID, stackengine.DeclarationVariant{IncludeForImport: true})
	if err != nil {
		return fmt.Errorf("import %s: %w", stackID, err)
	}
	var toImport []cfntypes.ResourceToImport
	for logical, physical := range mapping {
		toImport = append(toImport, cfntypes.ResourceToImport{
			LogicalResourceId: aws.String(logical),
			ResourceType:      aws.String(bucketResourceType),
			ResourceIdentifier: map[string]string{
				"BucketName": physical,
			},
		})
	}
	if len(toImport) == 0 {
		return fmt.Errorf("import %s: empty resource mapping", stackID)
	}

	name := changeSetName("import")
	e.log.Info("creating import change set",
		zap.String("stack", stackID),
		zap.String("changeSet", name),
		zap.Strings("mapping", mapping.Pairs()))
	_, err = e.client.CreateChangeSet(ctx, &cloudformation.CreateChangeSetInput{
		StackName:         aws.String(stackID),
		ChangeSetName:     aws.String(name),
		ChangeSetType:     cfntypes.ChangeSetTypeImport,
		TemplateBody:      aws.String(body),
		ResourcesToImport: toImport,
	})
	if err != nil {
		return fmt.Errorf("import %s: create change set: %w", stackID, err)
	}
	noop, err := e.awaitChangeSet(ctx, stackID, name)
	if err != nil {
		return fmt.Errorf("import %s: %w", stackID, err)
	}
	if noop {
		return nil
	}
	if err := e.executeChangeSet(ctx, stackID, name, cfntypes.ChangeSetTypeImport); err != nil {
		return fmt.Errorf("import %s: %w", stackID, err)
	}
	return nil
}

// awaitChangeSet waits for change set creation. It reports noop=true when
// CloudFormation rejected the change set because it contained no changes.
func (e *Engine) awaitChangeSet(ctx context.Context, stackID, name string) (noop bool, err error) {
	waiter := cloudformation.NewChangeSetCreateCompleteWaiter(e.client)
	input := &cloudformation.DescribeChangeSetInput{
		StackName:     aws.String(stackID),
		ChangeSetName: aws.String(name),
	}
	if waitErr := waiter.Wait(ctx, input, changeSetWait); waitErr != nil {
		desc, descErr := e.client.DescribeChangeSet(ctx, input)
		if descErr == nil && emptyChangeSetReason(aws.ToString(desc.StatusReason)) {
			_, _ = e.client.DeleteChangeSet(ctx, &cloudformation.DeleteChangeSetInput{
				StackName:     aws.String(stackID),
				ChangeSetName: aws.String(name),
			})
			return true, nil
		}
		if descErr == nil && desc.StatusReason != nil {
			return false, fmt.Errorf("change set %s failed: %s", name, aws.ToString(desc.StatusReason))
		}
		return false, fmt.Errorf("change set %s: %w", name, waitErr)
	}
	return false, nil
}

func (e *Engine) executeChangeSet(ctx context.Context, stackID, name string, changeSetType cfntypes.ChangeSetType) error {
	if _, err := e.client.ExecuteChangeSet(ctx, &cloudformation.ExecuteChangeSetInput{
		StackName:     aws.String(stackID),
		ChangeSetName: aws.String(name),
	}); err != nil {
		return fmt.Errorf("execute change set %s: %w", name, err)
	}
	describe := &cloudformation.DescribeStacksInput{StackName: aws.String(stackID)}
	switch changeSetType {
	case cfntypes.ChangeSetTypeCreate:
		w := cloudformation.NewStackCreateCompleteWaiter(e.client)
		if err := w.Wait(ctx, describe, stackWait); err != nil {
			return fmt.Errorf("stack %s did not reach CREATE_COMPLETE: %w", stackID, err)
		}
	case cfntypes.ChangeSetTypeImport:
		w := cloudformation.NewStackImportCompleteWaiter(e.client)
		if err := w.Wait(ctx, describe, stackWait); err != nil {
			return fmt.Errorf("stack %s did not reach IMPORT_COMPLETE: %w", stackID, err)
		}
	default:
		w := cloudformation.NewStackUpdateCompleteWaiter(e.client)
		if err := w.Wait(ctx, describe, stackWait); err != nil {
			return fmt.Errorf("stack %s did not reach UPDATE_COMPLETE: %w", stackID, err)
		}
	}
	return nil
}

func (e *Engine) stackExists(ctx context.Context, stackID string) (bool, error) {
	_, err := e.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackID),
	})
	if err != nil {
		if isStackMissing(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func changeSetName(prefix string) string {
	return fmt.Sprintf("bucketmv-%s-%d", prefix, time.Now().UnixNano())
}

func emptyChangeSetReason(reason string) bool {
	reason = strings.ToLower(reason)
	return strings.Contains(reason, "didn't contain changes") ||
		strings.Contains(reason, "no updates are to be performed")
}

var _ stackengine.Engine = (*Engine)(nil)
