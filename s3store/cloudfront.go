package s3store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/google/uuid"
)

// invalidationAPI is the slice of the CloudFront client the invalidator
// uses.
type invalidationAPI interface {
	CreateInvalidation(ctx context.Context, in *cloudfront.CreateInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error)
}

// Invalidator implements photowall.CacheInvalidator against a CloudFront
// distribution. Callers treat it as best-effort; the object is already
// gone from the bucket when an invalidation is requested.
type Invalidator struct {
	client         invalidationAPI
	distributionID string
}

// NewInvalidator constructs an Invalidator for the given distribution.
func NewInvalidator(ctx context.Context, distributionID, region, accessKeyID, secretAccessKey string) (*Invalidator, error) {
	if distributionID == "" {
		return nil, errors.New("s3store: distribution id is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3store: load aws config: %w", err)
	}

	return &Invalidator{
		client:         cloudfront.NewFromConfig(cfg),
		distributionID: distributionID,
	}, nil
}

// Invalidate submits one invalidation batch for the given public paths.
// The caller reference must be unique per request or CloudFront returns
// the earlier batch instead of creating a new one.
func (i *Invalidator) Invalidate(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	items := make([]string, len(paths))
	copy(items, paths)

	_, err := i.client.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(i.distributionID),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(fmt.Sprintf("photowall-%d-%s", time.Now().Unix(), uuid.NewString())),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(int32(len(items))),
				Items:    items,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("invalidate %d path(s) on %s: %w", len(items), i.distributionID, err)
	}

	return nil
}
