package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// AuditUploader ships the battle audit log.
type AuditUploader interface {
	Upload(ctx context.Context, objectKey string) error
}

// AuditObjectKey names the uploaded file after the host and the upload time.
func AuditObjectKey(host string, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("battles/%s/%s-%s.log", at.Format("2006/01/02"), host, at.Format("150405"))
}

// UploadAuditLog sends the current audit log to the bucket.
func UploadAuditLog(ctx context.Context, uploader AuditUploader, host string, now func() time.Time, log zerolog.Logger) error {
	key := AuditObjectKey(host, now())
	if err := uploader.Upload(ctx, key); err != nil {
		return fmt.Errorf("couldn't upload the audit log: %w", err)
	}

	log.Debug().Str("key", key).Msg("audit log uploaded")
	return nil
}
