// File: internal/cfn/inspector.go
// Brief: Read-only S3/CloudFormation queries.

package cfn

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mpstpierrehome/musical-buckets/internal/stackengine"
)

// Inspector answers existence, ownership, and inventory queries. It never
// mutates anything. Ownership is derived on demand: each candidate stack's
// declared resources are listed and matched against the physical
// identifier, so the answer always reflects the control plane's current
// view rather than any stored record.
type Inspector struct {
	s3client  *s3.Client
	cfnclient *cloudformation.Client
	// stacks are the candidate owners, interrogated in order.
	stacks []string
}

// NewInspector returns an inspector that considers the given stacks as
// candidate owners.
func NewInspector(cfg aws.Config, stacks []string) *Inspector {
	return &Inspector{
		s3client:  s3.NewFromConfig(cfg),
		cfnclient: cloudformation.NewFromConfig(cfg),
		stacks:    append([]string(nil), stacks...),
	}
}

func (i *Inspector) ResourceExists(ctx context.Context, name string) (bool, error) {
	_, err := i.s3client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
	if err != nil {
		if isBucketMissing(err) {
			return false, nil
		}
		return false, fmt.Errorf("head bucket %q: %w", name, err)
	}
	return true, nil
}

func (i *Inspector) ResourceOwner(ctx context.Context, resourceID string) (string, bool, error) {
	for _, stackID := range i.stacks {
		owns, err := i.stackDeclares(ctx, stackID, resourceID)
		if err != nil {
			return "", false, err
		}
		if owns {
			return stackID, true, nil
		}
	}
	return "", false, nil
}

func (i *Inspector) stackDeclares(ctx context.Context, stackID, resourceID string) (bool, error) {
	out, err := i.cfnclient.DescribeStackResources(ctx, &cloudformation.DescribeStackResourcesInput{
		StackName: aws.String(stackID),
	})
	if err != nil {
		if isStackMissing(err) {
			return false, nil
		}
		return false, fmt.Errorf("describe resources of %s: %w", stackID, err)
	}
	for _, res := range out.StackResources {
		if aws.ToString(res.ResourceType) != bucketResourceType {
			continue
		}
		if res.ResourceStatus == cfntypes.ResourceStatusDeleteComplete {
			continue
		}
		if aws.ToString(res.PhysicalResourceId) == resourceID {
			return true, nil
		}
	}
	return false, nil
}

func (i *Inspector) ListContents(ctx context.Context, name string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(i.s3client, &s3.ListObjectsV2Input{
		Bucket: aws.String(name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects in %q: %w", name, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

var _ stackengine.Inspector = (*Inspector)(nil)
