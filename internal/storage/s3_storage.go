package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const defaultPublicEndpoint = "https://storage.yandexcloud.net"

// S3Config — параметры S3-совместимого хранилища.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicURL — базовый адрес для ссылок, если он отличается от Endpoint.
	PublicURL string
}

// S3Storage хранит файлы в S3-совместимом бакете с публичным доступом на чтение.
type S3Storage struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	baseURL  string
}

// NewS3Storage создаёт клиент хранилища.
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: не задан бакет")
	}

	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать сессию S3: %w", err)
	}

	baseURL := cfg.PublicURL
	if baseURL == "" {
		baseURL = cfg.Endpoint
	}
	if baseURL == "" {
		baseURL = defaultPublicEndpoint
	}

	return &S3Storage{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *S3Storage) Put(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return fmt.Errorf("storage: не удалось загрузить %s: %w", path, err)
	}
	return nil
}

// Exists различает отсутствие объекта и ошибку связи с хранилищем.
func (s *S3Storage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err == nil {
		return true, nil
	}

	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("storage: не удалось проверить %s: %w", path, err)
}

func (s *S3Storage) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("storage: не удалось удалить %s: %w", path, err)
	}
	return nil
}

// URL возвращает публичную ссылку {base}/{bucket}/{path}. Абсолютные ссылки не меняются.
func (s *S3Storage) URL(path string) string {
	if strings.HasPrefix(path, "http") {
		return path
	}
	return s.baseURL + "/" + s.bucket + "/" + strings.TrimLeft(path, "/")
}
