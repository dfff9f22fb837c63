// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	awsx "github.com/bdgeo/roadctl/internal/aws"
	"github.com/bdgeo/roadctl/internal/config"
)

// S3Mirror is an optional read-through/write-through copy of the cache in an
// S3 bucket. Population of the local directory always happens first; the
// mirror only ever degrades to warnings.
type S3Mirror struct {
	client *s3v2.Client
	bucket string
	prefix string
}

// mirrorFromConfig builds a mirror when cache.s3_bucket is configured and
// returns (nil, nil) when it isn't.
func mirrorFromConfig() (*S3Mirror, error) {
	bucket, _ := config.GetString("cache.s3_bucket", "")
	if bucket == "" {
		return nil, nil
	}

	prefix, _ := config.GetString("cache.s3_prefix", "roadctl")
	region, _ := config.GetString("cache.s3_region", "")

	var opts []awsx.Option
	if region != "" {
		opts = append(opts, awsx.WithRegion(region))
	}

	cfg, err := awsx.LoadAWSConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Mirror{
		client: awsx.NewS3(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (m *S3Mirror) objectKey(key string) string {
	return path.Join(m.prefix, key+".json")
}

// Get fetches the mirrored entry for key.
func (m *S3Mirror) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := m.client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(m.bucket),
		Key:    awsv2.String(m.objectKey(key)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", m.bucket, m.objectKey(key), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", m.bucket, m.objectKey(key), err)
	}
	return data, nil
}

// Put uploads the entry for key.
func (m *S3Mirror) Put(ctx context.Context, key string, data []byte) error {
	_, err := m.client.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket: awsv2.String(m.bucket),
		Key:    awsv2.String(m.objectKey(key)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", m.bucket, m.objectKey(key), err)
	}
	return nil
}
