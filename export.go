package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"syndicate-ops/game"
)

type snapshotExporter interface {
	Export(ctx context.Context, mode Mode, day int, snapshot []byte) (string, error)
}

// objectPutter is the slice of the S3 client the exporter needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BucketExporter writes JSON snapshots to an S3-compatible bucket.
type BucketExporter struct {
	client objectPutter
	bucket string
	prefix string
}

// newBucketExporter returns nil when no bucket is configured.
func newBucketExporter(ctx context.Context, cfg ExportConfig) (*BucketExporter, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load export bucket config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &BucketExporter{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// objectKey looks like saves/campaign/day-0004-<uuid>.json.
func (e *BucketExporter) objectKey(mode Mode, day int) string {
	name := fmt.Sprintf("day-%04d-%s.json", day, uuid.NewString())
	return path.Join(strings.Trim(e.prefix, "/"), slug.Make(mode.Label()), name)
}

func (e *BucketExporter) Export(ctx context.Context, mode Mode, day int, snapshot []byte) (string, error) {
	key := e.objectKey(mode, day)
	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(snapshot),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot %s: %w", key, err)
	}
	return key, nil
}

type exportSnapshot struct {
	Mode       Mode        `json:"mode"`
	ExportedAt time.Time   `json:"exported_at"`
	TickCount  int64       `json:"tick_count"`
	State      *game.State `json:"state"`
}

func snapshotLocked(s *Store, now time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(exportSnapshot{
		Mode:       s.Mode,
		ExportedAt: now,
		TickCount:  s.TickCount,
		State:      s.State,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s snapshot: %w", s.Mode, err)
	}
	return data, nil
}

// exportStore snapshots under the lock and uploads outside it.
func exportStore(ctx context.Context, s *Store, exp snapshotExporter) (string, error) {
	s.mu.Lock()
	data, err := snapshotLocked(s, time.Now().UTC())
	day := s.State.Day
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	return exp.Export(ctx, s.Mode, day, data)
}
