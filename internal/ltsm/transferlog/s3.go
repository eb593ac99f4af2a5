package transferlog

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Provider archives transfer-log objects to an S3-compatible bucket.
type S3Provider struct {
	Bucket   string
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Provider loads the default AWS credential chain for region and
// returns a Provider writing to bucket.
func NewS3Provider(ctx context.Context, bucket, region string) (*S3Provider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("transferlog: load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Provider{
		Bucket:   bucket,
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

func (p *S3Provider) Upload(ctx context.Context, key string, r io.Reader, size int64) error {
	_, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.Bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("transferlog: s3 upload %s: %w", key, err)
	}
	return nil
}

func (p *S3Provider) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("transferlog: s3 download %s: %w", key, err)
	}
	return out.Body, nil
}

func (p *S3Provider) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.Bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("transferlog: s3 list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (p *S3Provider) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("transferlog: s3 delete %s: %w", key, err)
	}
	return nil
}
