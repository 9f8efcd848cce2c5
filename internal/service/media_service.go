package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	cfg "github.com/reachway/reachway/configs"
	"github.com/reachway/reachway/internal/platform"
)

var imageTypes = map[string]struct{}{
	"jpeg": {}, "jpg": {}, "png": {}, "gif": {}, "webp": {},
}

var videoTypes = map[string]struct{}{
	"mp4": {}, "mov": {},
}

// MediaService materializes uploads before the publish loop runs: the
// file is buffered, sniffed, and mirrored to R2 so every adapter gets
// both raw bytes and a public URL. The object is removed again once the
// loop finishes.
type MediaService interface {
	ProcessImage(ctx context.Context, file *multipart.FileHeader) (*platform.Media, error)
	ProcessVideo(ctx context.Context, file *multipart.FileHeader) (*platform.Media, error)
	Remove(ctx context.Context, m *platform.Media)
}

type mediaService struct {
	config cfg.Config
}

func NewMediaService(cfg cfg.Config) MediaService {
	return &mediaService{config: cfg}
}

func (s *mediaService) ProcessImage(ctx context.Context, file *multipart.FileHeader) (*platform.Media, error) {
	return s.process(ctx, file, imageTypes)
}

func (s *mediaService) ProcessVideo(ctx context.Context, file *multipart.FileHeader) (*platform.Media, error) {
	return s.process(ctx, file, videoTypes)
}

func (s *mediaService) process(ctx context.Context, file *multipart.FileHeader, allowed map[string]struct{}) (*platform.Media, error) {
	if file.Size > s.config.MaxUploadSize {
		return nil, fmt.Errorf("file exceeds the maximum upload size")
	}

	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return nil, fmt.Errorf("unsupported file type")
	}
	if _, ok := allowed[fileType.Extension]; !ok {
		return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err := s.uploadToR2(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	return &platform.Media{
		Path:      key,
		Bytes:     fileBytes,
		PublicURL: fmt.Sprintf("%s/%s", s.config.R2.PublicURL, key),
		MIME:      fileType.MIME.Value,
	}, nil
}

// Remove is best effort, a failed delete just logs.
func (s *mediaService) Remove(ctx context.Context, m *platform.Media) {
	if m == nil || m.Path == "" {
		return
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.R2.BucketName),
		Key:    aws.String(m.Path),
	}
	client, err := s.r2Client(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if _, err := client.DeleteObject(ctx, input); err != nil {
		slog.Info(err.Error())
	}
}

func (s *mediaService) uploadToR2(ctx context.Context, key string, file []byte, mime string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(mime),
	}

	client, err := s.r2Client(ctx)
	if err != nil {
		return err
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (s *mediaService) r2Client(ctx context.Context) (*s3.Client, error) {
	awsConfig, err := awscfg.LoadDefaultConfig(ctx,
		awscfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.config.R2.AccessKey, s.config.R2.SecretKey, "")),
		awscfg.WithRegion("auto"),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.config.R2.AccountID))
	}), nil
}
