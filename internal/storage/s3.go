package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// AudioStore resolves opaque audio references to provider-readable URIs and
// manages the underlying objects. The pipeline never touches storage
// directly; it only sees resolved URIs.
type AudioStore struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

// NewAudioStore creates an S3-backed audio store
func NewAudioStore(endpoint, accessKey, secretKey, bucket, region string) (*AudioStore, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, awsRegion string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:           endpoint,
				SigningRegion: region,
			}, nil
		})

	cfg, err := config.LoadDefaultConfig(
		context.TODO(),
		config.WithEndpointResolverWithOptions(customResolver),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	logger.Info("Audio store initialized", zap.String("bucket", bucket))

	return &AudioStore{
		client:   client,
		bucket:   bucket,
		endpoint: endpoint,
	}, nil
}

// ResolveURI converts an audio reference (object key) into the URI handed to
// speech providers
func (s *AudioStore) ResolveURI(audioRef string) string {
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, audioRef)
}

// Upload stores a voicemail audio object and returns its reference key
func (s *AudioStore) Upload(ctx context.Context, voicemailID, extension string, body io.Reader, contentType string) (string, error) {
	key := s.GenerateKey(voicemailID, extension)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})

	if err != nil {
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}

	logger.Info("Audio uploaded",
		zap.String("key", key),
		zap.String("voicemail_id", voicemailID))

	return key, nil
}

// GenerateKey generates a date-partitioned object key for a voicemail
func (s *AudioStore) GenerateKey(voicemailID, extension string) string {
	timestamp := time.Now().Format("2006/01/02")
	return filepath.Join("voicemail", timestamp, fmt.Sprintf("%s%s", voicemailID, extension))
}

// Download fetches a voicemail audio object
func (s *AudioStore) Download(ctx context.Context, audioRef string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(audioRef),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download audio: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}

	logger.Debug("Audio downloaded",
		zap.String("key", audioRef),
		zap.Int("size", len(data)))

	return data, nil
}

// Delete removes a voicemail audio object
func (s *AudioStore) Delete(ctx context.Context, audioRef string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(audioRef),
	})

	if err != nil {
		return fmt.Errorf("failed to delete audio: %w", err)
	}

	logger.Debug("Audio deleted", zap.String("key", audioRef))

	return nil
}
