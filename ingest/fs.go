package ingest

import (
	"context"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

// FS abstracts listing and downloading source files so the pipeline can work
// against local or remote storage backends.
type FS interface {
	List(ctx context.Context, location string) ([]storage.Object, error)
	Download(ctx context.Context, object storage.Object) ([]byte, error)
	DownloadWithURL(ctx context.Context, URL string) ([]byte, error)
}

type afsService struct {
	svc afs.Service
}

// NewAFS constructs an FS backed by the default AFS service.
func NewAFS() FS {
	return &afsService{svc: afs.New()}
}

func (a *afsService) List(ctx context.Context, location string) ([]storage.Object, error) {
	return a.svc.List(ctx, location)
}

func (a *afsService) Download(ctx context.Context, object storage.Object) ([]byte, error) {
	return a.svc.Download(ctx, object)
}

func (a *afsService) DownloadWithURL(ctx context.Context, URL string) ([]byte, error) {
	return a.svc.DownloadWithURL(ctx, URL)
}

// normalizeLocation turns relative and bare OS paths into absolute file URLs
// for cross-platform AFS compatibility.
func normalizeLocation(location string) (string, error) {
	norm := location
	if url.Scheme(norm, "") == "" && url.IsRelative(norm) {
		var err error
		norm, err = filepath.Abs(norm)
		if err != nil {
			return "", err
		}
	}
	if url.Scheme(norm, "") == "" && !url.IsRelative(norm) {
		norm = url.ToFileURL(norm)
	}
	return norm, nil
}
