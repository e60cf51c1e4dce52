package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
)

// S3Config carries the settings needed to reach an S3-compatible backend
// (MinIO in development).
type S3Config struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Store keeps each asset as one object in a bucket, keyed by the asset id.
type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {

	awscfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.RootUser,     // MINIO_ROOT_USER
			cfg.RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awscfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Put buffers the stream and writes it as a single object. PutObject returns
// only once the backend has acknowledged the object, which is the durability
// point callers await before publishing the id.
func (s *S3Store) Put(ctx context.Context, filename string, r io.Reader) (ID, error) {

	id := NewID(filename)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", fmt.Errorf("%w: reading stream: %v", common.ErrStoreWrite, err)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id.String()),
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrStoreWrite, err)
	}

	return id, nil
}

func (s *S3Store) Get(ctx context.Context, id ID) (io.ReadCloser, error) {

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id.String()),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, common.ErrAssetNotFound
		}
		return nil, fmt.Errorf("getting object: %w", err)
	}

	return out.Body, nil
}

// Delete removes the object. DeleteObject succeeds silently on missing keys,
// so the key is HEADed first to surface common.ErrAssetNotFound.
func (s *S3Store) Delete(ctx context.Context, id ID) error {

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id.String()),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return common.ErrAssetNotFound
		}
		return fmt.Errorf("checking object: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id.String()),
	})
	if err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}

	return nil
}

func (s *S3Store) List(ctx context.Context, fn func(id ID, createdAt time.Time) error) error {

	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("listing objects: %w", err)
		}
		for _, obj := range page.Contents {
			id, err := ParseID(aws.ToString(obj.Key))
			if err != nil {
				// foreign object in the bucket, not ours to sweep
				continue
			}
			createdAt := aws.ToTime(obj.LastModified)
			if err := fn(id, createdAt); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *S3Store) Close() error { return nil }

func isNoSuchKey(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}

var _ Store = (*S3Store)(nil)
