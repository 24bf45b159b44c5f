// Package storage keeps seeker resumes in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, e.g. MinIO
	PathStyle bool
	URLTTL    time.Duration
}

// ResumeStore uploads resumes under resumes/<seeker id>/ and links to them
// with s3://bucket/key references that are presigned on read.
type ResumeStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

// New creates a store using the default AWS credential chain.
func New(ctx context.Context, cfg Config) (*ResumeStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("resume bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket, cfg.URLTTL), nil
}

func NewWithClient(client *s3.Client, bucket string, ttl time.Duration) *ResumeStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ResumeStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		ttl:     ttl,
	}
}

// Put uploads body and returns the link to store on the seeker.
func (s *ResumeStore) Put(ctx context.Context, seekerID, filename, contentType string, body io.ReadSeeker, size int64) (string, error) {
	key := path.Join("resumes", seekerID, uuid.NewString()+strings.ToLower(path.Ext(filename)))
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload resume: %w", err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}

// URL presigns links that point into the bucket. Any other link is returned
// unchanged.
func (s *ResumeStore) URL(ctx context.Context, link string) (string, error) {
	prefix := "s3://" + s.bucket + "/"
	if !strings.HasPrefix(link, prefix) {
		return link, nil
	}
	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimPrefix(link, prefix)),
	}, func(o *s3.PresignOptions) { o.Expires = s.ttl })
	if err != nil {
		return "", fmt.Errorf("presign resume: %w", err)
	}
	return out.URL, nil
}
