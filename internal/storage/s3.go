package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"storage-manager/internal/logger"
	"storage-manager/internal/model"
	"storage-manager/internal/util"
)

// S3Config : параметры секции storage.locations.<key>.s3
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	Prefix    string `mapstructure:"prefix"`
	Local     bool   `mapstructure:"local"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store : бакет S3 (или MinIO при local=true)
type S3Store struct {
	client    s3API
	presigner s3Presigner
	bucket    string
	prefix    string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("[S3Store] не указан bucket")
	}

	var client *s3.Client
	if cfg.Local {
		accessKey, secretKey := cfg.AccessKey, cfg.SecretKey
		if accessKey == "" {
			accessKey, secretKey = "minioadmin", "minioadmin"
		}
		client = s3.New(s3.Options{
			Region:       cfg.Region,
			Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
			BaseEndpoint: aws.String(cfg.Endpoint),
			UsePathStyle: true,
		})

		if err := createBucketIfNotExists(ctx, client, cfg.Bucket); err != nil {
			return nil, util.LogError("[S3Store] ошибка создания бакета", err)
		}
	} else {
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, util.LogError("[S3Store] ошибка загрузки AWS config", err)
		}
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		})
	}

	return newS3Store(client, s3.NewPresignClient(client), cfg.Bucket, cfg.Prefix), nil
}

func newS3Store(client s3API, presigner s3Presigner, bucket, prefix string) *S3Store {
	return &S3Store{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		prefix:    strings.Trim(prefix, "/"),
	}
}

// createBucketIfNotExists создает бакет если он не существует
func createBucketIfNotExists(ctx context.Context, client *s3.Client, bucket string) error {
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err == nil {
		return nil
	}

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return err
	}

	logger.Log.Info().Str("bucket", bucket).Msg("[S3Store] бакет успешно создан")
	return nil
}

func (s *S3Store) key(ref string) string {
	clean := strings.TrimPrefix(path.Clean("/"+ref), "/")
	if s.prefix == "" {
		return clean
	}
	return s.prefix + "/" + clean
}

// Write : содержимое буферизуется целиком, PutObject требует известной длины
func (s *S3Store) Write(ctx context.Context, ref string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("[S3Store] ошибка чтения содержимого: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(ref)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(util.ContentType(ref)),
	})
	if err != nil {
		return 0, util.LogError("[S3Store] не удалось загрузить объект", err)
	}
	return int64(len(data)), nil
}

func (s *S3Store) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("содержимое %s: %w", ref, model.ErrContentNotFound)
		}
		return nil, util.LogError("[S3Store] не удалось получить объект", err)
	}
	return out.Body, nil
}

// Delete : S3 не сообщает об отсутствии объекта при удалении, поэтому сначала HeadObject
func (s *S3Store) Delete(ctx context.Context, ref string) error {
	exists, err := s.Exists(ctx, ref)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("содержимое %s: %w", ref, model.ErrContentNotFound)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err != nil {
		return util.LogError("[S3Store] не удалось удалить объект", err)
	}
	return nil
}

func (s *S3Store) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err == nil {
		return true, nil
	}
	if isS3NotFound(err) {
		return false, nil
	}
	return false, util.LogError("[S3Store] ошибка проверки объекта", err)
}

// URL : pre-signed GET URL
func (s *S3Store) URL(ctx context.Context, ref string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", util.LogError("[S3Store] не удалось сгенерировать presigned GET URL", err)
	}
	return req.URL, nil
}

func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}
