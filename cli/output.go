package cli

// This file contains the report sinks: a local file or an S3 object.

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const reportContentType = "text/markdown; charset=utf-8"

// sink stores the finished report and returns where it was written.
type sink interface {
	Write(ctx context.Context, data []byte) (string, error)
}

type destination struct {
	// path is set for local files
	path string
	// bucket and key are set for s3:// URLs
	bucket string
	key    string
}

func parseDestination(output string) (destination, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return destination{}, fmt.Errorf("output destination is required")
	}
	if !strings.HasPrefix(output, "s3://") {
		return destination{path: output}, nil
	}

	u, err := url.Parse(output)
	if err != nil {
		return destination{}, fmt.Errorf("invalid output URL %q: %w", output, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" || strings.HasSuffix(key, "/") {
		return destination{}, fmt.Errorf("output URL must have the form s3://bucket/key, got %q", output)
	}
	return destination{bucket: u.Host, key: key}, nil
}

func newSink(cfg Config) (sink, error) {
	dest, err := parseDestination(cfg.Output)
	if err != nil {
		return nil, err
	}
	if dest.bucket == "" {
		return &fileSink{path: dest.path}, nil
	}

	client, err := minio.New(cfg.S3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		Secure: cfg.S3.UseSSL,
		Region: cfg.S3.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return &s3Sink{client: client, bucket: dest.bucket, key: dest.key}, nil
}

// fileSink overwrites a local file with the report.
type fileSink struct {
	path string
}

func (s *fileSink) Write(_ context.Context, data []byte) (string, error) {
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to verify report: %w", err)
	}
	if info.Size() != int64(len(data)) {
		return "", fmt.Errorf("report %s has %d bytes, expected %d", s.path, info.Size(), len(data))
	}

	if abs, err := filepath.Abs(s.path); err == nil {
		return abs, nil
	}
	return s.path, nil
}

// s3Sink uploads the report to an S3-compatible object store.
type s3Sink struct {
	client *minio.Client
	bucket string
	key    string
}

func (s *s3Sink) Write(ctx context.Context, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, s.key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: reportContentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	info, err := s.client.StatObject(ctx, s.bucket, s.key, minio.StatObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to verify uploaded report: %w", err)
	}
	if info.Size != int64(len(data)) {
		return "", fmt.Errorf("uploaded report has %d bytes, expected %d", info.Size, len(data))
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key), nil
}
