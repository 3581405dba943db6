package di

import (
	"context"
	"io"

	"github.com/aristath/marketpulse/internal/reliability"
	"github.com/rs/zerolog"
)

type discardStore struct{}

func (discardStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	return nil
}

func (discardStore) List(ctx context.Context, prefix string) ([]reliability.ObjectInfo, error) {
	return nil, nil
}

func (discardStore) Delete(ctx context.Context, key string) error {
	return nil
}

func newArchiveServiceForTest() *reliability.ArchiveService {
	return reliability.NewArchiveService(discardStore{}, zerolog.Nop())
}
