package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Archiver writes dashboard snapshots to S3, one object per refresh,
// keyed by date so a day's worth of snapshots shares a prefix.
type S3Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Archiver creates an archiver using the default AWS credential chain,
// optionally pinned to a shared config profile.
func NewS3Archiver(ctx context.Context, bucket, prefix, region, profile string) (*S3Archiver, error) {
	var cfg aws.Config
	var err error

	if profile != "" {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
			awsconfig.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &S3Archiver{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Archive writes the snapshot to S3 under snapshots/YYYY/MM/DD/HH-MM-SS.json.
func (a *S3Archiver) Archive(ctx context.Context, snap Snapshot) error {
	at := snap.GeneratedAt.UTC()
	if at.IsZero() {
		at = time.Now().UTC()
	}
	key := fmt.Sprintf("snapshots/%s/%s.json",
		at.Format("2006/01/02"),
		at.Format("15-04-05"))
	if a.prefix != "" {
		key = a.prefix + "/" + key
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("putting snapshot to S3: %w", err)
	}

	return nil
}
