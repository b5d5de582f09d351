package store

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mempirate/faqex/log"
	"github.com/mempirate/faqex/util"
)

// GCSStore uploads exports to a Google Cloud Storage bucket. It uses
// application default credentials.
type GCSStore struct {
	log    zerolog.Logger
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCS client")
	}

	return &GCSStore{
		log:    log.NewLogger("gcs"),
		client: client,
		bucket: bucket,
	}, nil
}

// Upload writes the content to the named object in the bucket.
func (s *GCSStore) Upload(ctx context.Context, name string, content io.Reader) error {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)

	n, err := io.Copy(w, content)
	if err != nil {
		w.Close()
		return errors.Wrapf(err, "failed to upload %s", name)
	}

	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "failed to finalize upload of %s", name)
	}

	s.log.Info().Str("bucket", s.bucket).Str("object", name).Str("size", util.FormatBytes(n)).Msg("Uploaded object")

	return nil
}

// UploadAll uploads the named files from a local store concurrently.
func (s *GCSStore) UploadAll(ctx context.Context, local LocalStore, names []string) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, name := range names {
		g.Go(func() error {
			f, err := local.Get(name)
			if err != nil {
				return errors.Wrapf(err, "failed to open %s", name)
			}
			defer f.Close()

			return s.Upload(ctx, name, f)
		})
	}

	return g.Wait()
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
