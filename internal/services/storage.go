package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/smarttrans/smarttrans-backend/internal/config"
	"github.com/smarttrans/smarttrans-backend/internal/errs"
)

// MaxPictureSize caps profile picture uploads.
const MaxPictureSize = 5 << 20

// Storage keeps uploaded profile pictures in S3 when it is configured
// and under a local directory otherwise.
type Storage struct {
	uploader  *s3manager.Uploader
	bucket    string
	region    string
	uploadDir string
	baseURL   string
	now       func() time.Time
}

func NewStorage(cfg config.StorageConfig, baseURL string, log *slog.Logger) (*Storage, error) {
	s := &Storage{
		uploadDir: cfg.UploadDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		now:       time.Now,
	}

	if cfg.UseS3() {
		sess, err := session.NewSession(&aws.Config{
			Region:      aws.String(cfg.AWSRegion),
			Credentials: credentials.NewStaticCredentials(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		s.uploader = s3manager.NewUploader(sess)
		s.bucket = cfg.S3Bucket
		s.region = cfg.AWSRegion
		log.Info("S3 storage initialized", "bucket", cfg.S3Bucket, "region", cfg.AWSRegion)
		return s, nil
	}

	if err := os.MkdirAll(filepath.Join(s.uploadDir, "profiles"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	log.Warn("S3 not configured, using local file storage", "dir", s.uploadDir)
	return s, nil
}

// UsingS3 reports which backend is active.
func (s *Storage) UsingS3() bool {
	return s.uploader != nil
}

// LocalDir is the directory served under /uploads when S3 is off.
func (s *Storage) LocalDir() string {
	return s.uploadDir
}

// UploadImage stores file under folder and returns its public URL.
// Anything that does not sniff as an image is rejected.
func (s *Storage) UploadImage(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	if file.Size > MaxPictureSize {
		return "", errs.InvalidInput("image is larger than 5MB")
	}

	src, err := file.Open()
	if err != nil {
		return "", errs.InvalidInput("failed to open file")
	}
	defer src.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(src, MaxPictureSize+1)); err != nil {
		return "", errs.InvalidInput("failed to read file")
	}
	if buf.Len() > MaxPictureSize {
		return "", errs.InvalidInput("image is larger than 5MB")
	}

	contentType := http.DetectContentType(buf.Bytes())
	if !strings.HasPrefix(contentType, "image/") {
		return "", errs.InvalidInput("file must be an image")
	}

	name := fmt.Sprintf("%d%s", s.now().UnixNano(), strings.ToLower(filepath.Ext(file.Filename)))
	key := path.Join(folder, name)

	if s.UsingS3() {
		_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(buf.Bytes()),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return "", errs.Internal("failed to upload image", err)
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
	}

	dir := filepath.Join(s.uploadDir, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Internal("failed to create folder", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		return "", errs.Internal("failed to save image", err)
	}
	return fmt.Sprintf("%s/uploads/%s", s.baseURL, key), nil
}
