// Package aws defines functions used to interact with the AWS API
package aws

import (
	"context"
	"errors"
	"fmt"

	"bitwise74/storage-api/internal/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// S3Client talks to any S3 compatible store (AWS, MinIO, R2)
type S3Client struct {
	C      *s3.Client
	Region string

	// Objects bigger than this are sent with the multipart uploader
	MultipartThreshold int64
}

type Options struct {
	Endpoint           string
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	UsePathStyle       bool
	MultipartThreshold int64
}

var _ storage.ObjectStore = (*S3Client)(nil)

func New(ctx context.Context, o *Options) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKeyID,
			o.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}

		// MinIO only understands path style requests
		so.UsePathStyle = o.UsePathStyle
	})

	return &S3Client{
		C:                  client,
		Region:             o.Region,
		MultipartThreshold: o.MultipartThreshold,
	}, nil
}

// NewS3 builds a client from the storage.* config keys
func NewS3(ctx context.Context) (*S3Client, error) {
	return New(ctx, &Options{
		Endpoint:           viper.GetString("storage.endpoint"),
		Region:             viper.GetString("storage.region"),
		AccessKeyID:        viper.GetString("storage.access_key_id"),
		SecretAccessKey:    viper.GetString("storage.secret_access_key"),
		UsePathStyle:       viper.GetBool("storage.use_path_style"),
		MultipartThreshold: viper.GetInt64("storage.multipart_threshold"),
	})
}

func (s *S3Client) EnsureBucket(ctx context.Context, bucket string) error {
	_, err := s.C.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) || apiErr.ErrorCode() != "NotFound" {
		return fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}

	if s.Region != "" && s.Region != "us-east-1" && s.Region != "auto" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.Region),
		}
	}

	_, err = s.C.CreateBucket(ctx, input)
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}

		return fmt.Errorf("failed to create bucket '%s', %w", bucket, err)
	}

	zap.L().Info("Bucket created", zap.String("bucket", bucket))
	return nil
}

func (s *S3Client) Put(ctx context.Context, in *storage.PutInput) error {
	objectInput := &s3.PutObjectInput{
		Bucket:      aws.String(in.Bucket),
		Key:         aws.String(in.Key),
		Body:        in.Body,
		ContentType: aws.String(in.ContentType),
		Metadata:    in.Metadata,
	}

	if in.Size >= 0 {
		objectInput.ContentLength = aws.Int64(in.Size)
	}

	var err error
	if s.MultipartThreshold > 0 && in.Size > s.MultipartThreshold {
		uploader := manager.NewUploader(s.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})

		_, err = uploader.Upload(ctx, objectInput)
	} else {
		_, err = s.C.PutObject(ctx, objectInput)
	}
	if err != nil {
		return fmt.Errorf("failed to upload object to s3, %w", err)
	}

	return nil
}

func (s *S3Client) Get(ctx context.Context, bucket, key string) (*storage.Object, error) {
	out, err := s.C.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, storage.ErrObjectNotFound
		}

		return nil, fmt.Errorf("failed to fetch object from s3, %w", err)
	}

	return &storage.Object{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
		Metadata:    out.Metadata,
	}, nil
}

func (s *S3Client) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from s3, %w", err)
	}

	return nil
}
