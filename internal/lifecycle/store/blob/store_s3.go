package blob

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"scoutpost/internal/platform/config"
	dErrors "scoutpost/pkg/domain-errors"
)

// deleteBatchSize is the maximum number of keys a single DeleteObjects call
// accepts.
const deleteBatchSize = 1000

// S3Store deletes subject-owned objects from an S3-compatible bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds a store from the environment configuration. A non-empty
// endpoint switches the client to path-style addressing for S3-compatible
// stores such as MinIO.
func NewS3Store(ctx context.Context, cfg config.Blob) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load aws config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// ListAndDelete removes every object under prefix and reports how many were
// deleted. Safe to call again after a partial failure; already-deleted keys
// simply no longer list.
func (s *S3Store) ListAndDelete(ctx context.Context, prefix string) (int, error) {
	var deleted int
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, dErrors.Wrap(err, dErrors.CodeTransientStore, "list objects")
		}
		keys := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			keys = append(keys, types.ObjectIdentifier{Key: obj.Key})
		}
		for len(keys) > 0 {
			batch := keys
			if len(batch) > deleteBatchSize {
				batch = keys[:deleteBatchSize]
			}
			keys = keys[len(batch):]

			out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(s.bucket),
				Delete: &types.Delete{Objects: batch, Quiet: aws.Bool(true)},
			})
			if err != nil {
				return deleted, dErrors.Wrap(err, dErrors.CodeTransientStore, "delete objects")
			}
			if len(out.Errors) > 0 {
				first := out.Errors[0]
				return deleted, dErrors.Newf(dErrors.CodeTransientStore,
					"delete objects: %d keys failed, first %q: %s",
					len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
			}
			deleted += len(batch)
		}
	}
	return deleted, nil
}
