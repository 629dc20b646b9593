// Package imagestore uploads and deletes hosted images on S3.
//
// Objects are written public-read under a date-partitioned key so the stored
// URL can be served directly. Multi-file operations fan out concurrently and
// join before returning.
package imagestore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxImageSize caps a single uploaded image (5MB).
const MaxImageSize = 5 * 1024 * 1024

// MaxImagesPerUpload caps how many images one request may attach.
const MaxImagesPerUpload = 5

// allowedTypes maps accepted image MIME types to canonical extensions.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ValidType reports whether the content type is an accepted image type.
func ValidType(contentType string) bool {
	_, ok := allowedTypes[strings.ToLower(contentType)]
	return ok
}

// Config holds S3 connection settings.
type Config struct {
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

// File is one image to upload.
type File struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// Stored identifies an uploaded object: the public URL and the key needed
// to delete it later.
type Stored struct {
	URL string
	Key string
}

// Store is the S3-backed image store.
type Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      Config
	log      *zap.Logger
}

// New builds the S3 client. Explicit credentials from config win; otherwise
// the default AWS credential chain applies.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	} else if logger != nil {
		logger.Info("image store using default AWS credential chain")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		cfg:      cfg,
		log:      logger,
	}, nil
}

// Key builds a fresh object key: {prefix}/{YYYY}/{MM}/{uuid8}-{filename}.
func (s *Store) Key(filename string) string {
	now := time.Now().UTC()
	name := sanitizeFilename(filename)
	return path.Join(s.cfg.Prefix, fmt.Sprintf("%04d/%02d", now.Year(), now.Month()),
		uuid.New().String()[:8]+"-"+name)
}

// URL returns the public URL for a stored key.
func (s *Store) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

// Upload stores one image and returns its URL and key.
func (s *Store) Upload(ctx context.Context, f File) (Stored, error) {
	if !ValidType(f.ContentType) {
		return Stored{}, fmt.Errorf("unsupported image type %q", f.ContentType)
	}
	key := s.Key(f.Name)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f.Reader,
		ContentType: aws.String(f.ContentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return Stored{}, fmt.Errorf("upload %s: %w", key, err)
	}
	return Stored{URL: s.URL(key), Key: key}, nil
}

// UploadAll uploads the files concurrently, joining before returning.
// On any failure the successfully uploaded objects are deleted again so the
// caller never records a partial set.
func (s *Store) UploadAll(ctx context.Context, files []File) ([]Stored, error) {
	if len(files) == 0 {
		return nil, nil
	}
	stored := make([]Stored, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			st, err := s.Upload(gctx, f)
			if err != nil {
				return err
			}
			stored[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var keys []string
		for _, st := range stored {
			if st.Key != "" {
				keys = append(keys, st.Key)
			}
		}
		s.DeleteAll(context.WithoutCancel(ctx), keys)
		return nil, err
	}
	return stored, nil
}

// Delete removes one object.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// DeleteAll removes objects concurrently. Failures are logged, not returned:
// a leaked object is preferable to failing the delete of the owning entity.
func (s *Store) DeleteAll(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		g.Go(func() error {
			if err := s.Delete(gctx, key); err != nil && s.log != nil {
				s.log.Warn("image delete failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

func sanitizeFilename(filename string) string {
	filename = path.Base(filename)
	var b strings.Builder
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '.', c == '-', c == '_':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" || out == "." {
		return "image"
	}
	if len(out) > 100 {
		ext := path.Ext(out)
		if len(ext) > 0 && len(ext) < 10 {
			out = out[:100-len(ext)] + ext
		} else {
			out = out[:100]
		}
	}
	return out
}
