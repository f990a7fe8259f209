package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tsdmkp/idle-garage-game-backend/pkg/config"
)

// Uploader is the part of the S3 client used by the audit log.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// AuditEntry is a single resolved battle.
type AuditEntry struct {
	MatchID       string    `json:"matchId"`
	AttackerID    string    `json:"attackerId"`
	DefenderID    string    `json:"defenderId"`
	League        string    `json:"league"`
	Winner        string    `json:"winner"`
	AttackerScore int       `json:"attackerScore"`
	DefenderScore int       `json:"defenderScore"`
	EntryFee      int64     `json:"entryFee"`
	Time          time.Time `json:"time"`
}

// AuditLog is an append-only file of resolved battles, shipped to a bucket periodically.
type AuditLog struct {
	mu       sync.Mutex
	logFile  *os.File
	filePath string
	bucket   string
	uploader Uploader
}

// NewAuditLog creates the audit log on a temporary file.
// A nil uploader keeps the entries local.
func NewAuditLog(uploader Uploader, bucket string) (*AuditLog, error) {
	f, err := os.CreateTemp("", "battle-audit-*.log")
	if err != nil {
		return nil, err
	}

	return &AuditLog{
		logFile:  f,
		filePath: f.Name(),
		bucket:   bucket,
		uploader: uploader,
	}, nil
}

// NewS3Uploader builds the S3 client for the configured bucket.
func NewS3Uploader(cfg config.BucketConfiguration) *s3.Client {
	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.AccessSecret,
				"",
			),
		),
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
}

// Record appends an entry as a JSON line.
func (l *AuditLog) Record(entry AuditEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err = l.logFile.Write(append(line, '\n'))
	return err
}

// Path returns the file backing the log.
func (l *AuditLog) Path() string {
	return l.filePath
}

// Size returns the current size of the log in bytes.
func (l *AuditLog) Size() (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := l.logFile.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Upload sends the current contents to the bucket and truncates the file.
// Nothing is sent when there is no uploader or the file is empty.
func (l *AuditLog) Upload(ctx context.Context, objectKey string) error {
	if l.uploader == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := l.logFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat audit log: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}

	if _, err := l.logFile.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind file: %w", err)
	}

	_, err = l.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(l.bucket),
		Key:           aws.String(objectKey),
		Body:          io.NewSectionReader(l.logFile, 0, info.Size()),
		ContentLength: aws.Int64(info.Size()),
		ACL:           types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3 bucket: %w", objectKey, err)
	}

	// Clean the file after sending.
	if err := l.logFile.Truncate(0); err != nil {
		return err
	}
	_, err = l.logFile.Seek(0, io.SeekStart)
	return err
}

// Close closes and removes the file.
func (l *AuditLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.logFile.Close(); err != nil {
		return err
	}
	return os.Remove(l.filePath)
}
