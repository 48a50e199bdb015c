package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"referral-outreach/backend/config"
)

// Store 对象存储：按 key 保存 / 读取
type Store interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Load(ctx context.Context, key string) ([]byte, error)
}

// S3Store 基于 S3（或兼容服务，如 LocalStack / MinIO）的 Store 实现
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewS3Store 根据备份配置创建 S3 客户端
// 凭证走 AWS 默认链（环境变量 / 共享配置 / 实例角色）
func NewS3Store(ctx context.Context, cfg *config.BackupConfig, logger *zap.Logger) (*S3Store, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg.Region)
	if err != nil {
		return nil, err
	}

	opts := s3.Options{
		Region:       awsCfg.Region,
		Credentials:  awsCfg.Credentials,
		HTTPClient:   awsCfg.HTTPClient,
		BaseEndpoint: awsCfg.BaseEndpoint,
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return &S3Store{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}, nil
}

// LoadAWSConfig 加载 AWS SDK 默认配置，region 非空时覆盖
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if region != "" {
		optFns = append(optFns, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}
	return awsCfg, nil
}

func (s *S3Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Save 上传对象（私有 ACL）
func (s *S3Store) Save(ctx context.Context, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	full := s.objectKey(key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(full),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("上传对象 %s 失败: %w", full, err)
	}
	s.logger.Info("对象已上传", zap.String("bucket", s.bucket), zap.String("key", full), zap.Int("bytes", len(data)))
	return nil
}

// Load 下载对象全部内容
func (s *S3Store) Load(ctx context.Context, key string) ([]byte, error) {
	full := s.objectKey(key)
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(full),
	})
	if err != nil {
		return nil, fmt.Errorf("下载对象 %s 失败: %w", full, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s 失败: %w", full, err)
	}
	return data, nil
}
