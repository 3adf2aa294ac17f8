// File: internal/preflight/preflight.go
// Brief: Credential and region checks before any migration step.

// Package preflight verifies the ambient AWS prerequisites: resolvable
// credentials and a region. A failed check is fatal for every step, so it
// runs once before the orchestrator is constructed.
package preflight

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"
)

// LoadConfig resolves the default AWS configuration, with optional region
// and shared-profile overrides.
func LoadConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS configuration: %w", err)
	}
	return cfg, nil
}

// Check confirms the resolved configuration actually works: a region is
// set and the credentials pass an STS identity call.
func Check(ctx context.Context, cfg aws.Config, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Region == "" {
		return fmt.Errorf("no AWS region configured; set --region, AWS_REGION, or a profile default")
	}
	identity, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("AWS credentials are not usable: %w", err)
	}
	log.Debug("preflight ok",
		zap.String("account", aws.ToString(identity.Account)),
		zap.String("caller", aws.ToString(identity.Arn)),
		zap.String("region", cfg.Region))
	return nil
}
