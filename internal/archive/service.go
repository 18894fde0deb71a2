// Package archive keeps the raw bodies returned by upstream tariff providers.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const payloadContentType = "application/json"

// Service writes payloads under date-partitioned keys
type Service struct {
	Driver StorageDriver
	now    func() time.Time
}

// NewService returns a Service over driver. A nil driver disables archiving.
func NewService(driver StorageDriver) *Service {
	return &Service{Driver: driver, now: time.Now}
}

// Enabled reports whether payloads are actually stored
func (s *Service) Enabled() bool {
	return s != nil && s.Driver != nil
}

// Key builds "<provider>/<yyyy>/<mm>/<dd>/<uuid>.json"
func Key(provider string, at time.Time, id uuid.UUID) string {
	at = at.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s.json", provider, at.Year(), int(at.Month()), at.Day(), id.String())
}

// Archive stores body for provider and returns its key. When archiving is disabled it returns "" and no error.
func (s *Service) Archive(ctx context.Context, provider string, body []byte) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	key := Key(provider, s.now(), uuid.New())
	if err := s.Driver.Save(ctx, key, bytes.NewReader(body), payloadContentType); err != nil {
		return "", fmt.Errorf("storage driver failed: %w", err)
	}

	slog.DebugContext(ctx, "provider payload archived", "provider", provider, "key", key, "size", len(body))
	return key, nil
}

// Open streams an archived payload back
func (s *Service) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("payload archive is disabled")
	}
	rc, _, err := s.Driver.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to open archived payload %s: %w", key, err)
	}
	return rc, nil
}
