// Package s3store adapts AWS S3 (or any S3-compatible endpoint) to the
// photowall.ObjectStore interface, and CloudFront to
// photowall.CacheInvalidator.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/photowall/photowall"
)

// objectAPI is the slice of the S3 client the store uses.
type objectAPI interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// presignAPI is the slice of the S3 presign client the store uses.
type presignAPI interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4PresignedRequest, error)
}

// v4PresignedRequest mirrors the fields of the SDK's presigned request we
// consume, so fakes don't need the signer package.
type v4PresignedRequest struct {
	URL string
}

// presignClient wraps *s3.PresignClient to satisfy presignAPI.
type presignClient struct {
	pc *s3.PresignClient
}

func (p presignClient) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4PresignedRequest, error) {
	req, err := p.pc.PresignPutObject(ctx, in, optFns...)
	if err != nil {
		return nil, err
	}
	return &v4PresignedRequest{URL: req.URL}, nil
}

// Options configures a Store. Bucket, Region, and the credential pair are
// required; Endpoint switches the client to an S3-compatible gateway
// (minio and friends) with path-style addressing.
type Options struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// Store implements photowall.ObjectStore on top of an S3 bucket.
type Store struct {
	client    objectAPI
	presigner presignAPI
	bucket    string
	region    string
	endpoint  string
}

// New constructs a Store with an explicitly configured S3 client. The
// configuration is resolved once here; there is no ambient singleton and
// no fallback bucket.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3store: bucket is required")
	}
	if opts.Region == "" {
		return nil, errors.New("s3store: region is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3store: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:    client,
		presigner: presignClient{pc: s3.NewPresignClient(client)},
		bucket:    opts.Bucket,
		region:    opts.Region,
		endpoint:  strings.TrimSuffix(opts.Endpoint, "/"),
	}, nil
}

// PresignPut returns a time-limited URL authorizing one PUT of the given
// content type to key. Nothing is written until the client transfers.
func (s *Store) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("presign put %q: %w", key, err)
	}

	return req.URL, nil
}

// List walks every page of the bucket listing and returns all entries,
// zero-size placeholders included.
func (s *Store) List(ctx context.Context) ([]photowall.ObjectEntry, error) {
	var entries []photowall.ObjectEntry
	var continuation *string

	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			ContinuationToken: continuation,
		})
		if err != nil {
			var noBucket *types.NoSuchBucket
			if errors.As(err, &noBucket) {
				return nil, fmt.Errorf("list bucket %q: %w", s.bucket, photowall.ErrNotFound)
			}
			return nil, fmt.Errorf("list bucket %q: %w", s.bucket, err)
		}

		for _, obj := range out.Contents {
			entry := photowall.ObjectEntry{
				Key:  aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				entry.LastModified = *obj.LastModified
			}
			entries = append(entries, entry)
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		continuation = out.NextContinuationToken
	}

	return entries, nil
}

// Delete removes key from the bucket. S3 reports success for absent keys,
// so a HeadObject probe distinguishes the already-gone case first.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return fmt.Errorf("delete %q: %w", key, photowall.ErrNotFound)
		}
		return fmt.Errorf("delete %q: head: %w", key, err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}

	return nil
}

// PublicURL derives the deterministic public read address for a key:
// virtual-hosted style for AWS, path style for a custom endpoint.
func (s *Store) PublicURL(key string) string {
	escaped := escapeKey(key)
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
}

// escapeKey escapes each segment of a key while keeping its slashes as
// URL path separators, so nested keys stay addressable.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
