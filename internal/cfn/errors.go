// File: internal/cfn/errors.go
// Brief: AWS API error classification.

package cfn

import (
	"errors"
	"strings"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// isBucketMissing reports whether err means the bucket does not exist.
// S3 surfaces this as NotFound from HeadBucket and NoSuchBucket from
// other calls.
func isBucketMissing(err error) bool {
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchBucket *s3types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

// isStackMissing reports whether err is CloudFormation's "stack does not
// exist" ValidationError. The API has no dedicated error type for it;
// the message is the contract.
func isStackMissing(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "does not exist")
}
