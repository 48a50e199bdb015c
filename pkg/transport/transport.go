package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"referral-outreach/backend/config"
	"referral-outreach/backend/pkg/blobstore"
)

// Message 一封外发邮件（传真网关地址同样以邮件形式投递）
type Message struct {
	To             string `json:"to"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	AttachmentKey  string `json:"attachment_key,omitempty"` // 附件在对象存储中的 key
	AttachmentName string `json:"attachment_name,omitempty"`
}

// Sender 外发通道
// 返回 nil 表示投递成功；错误的 Error() 文本会原样记录为失败原因
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrInvalidRecipient 收件地址为空或格式不合法
var ErrInvalidRecipient = errors.New("收件地址无效")

// envelope 投递到发件队列的消息体，由独立的邮件投递进程消费
type envelope struct {
	ID     string    `json:"id"`
	From   string    `json:"from"`
	Queued time.Time `json:"queued_at"`
	Message
}

// SQSSender 将外发邮件写入 SQS 发件队列
type SQSSender struct {
	client   *sqs.Client
	queueURL string
	from     string
	logger   *zap.Logger
}

// NewSQSSender 创建 SQS 客户端并解析队列 URL
func NewSQSSender(ctx context.Context, outbox *config.OutboxConfig, region, endpoint string, logger *zap.Logger) (*SQSSender, error) {
	awsCfg, err := blobstore.LoadAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}

	opts := sqs.Options{
		Region:       awsCfg.Region,
		Credentials:  awsCfg.Credentials,
		HTTPClient:   awsCfg.HTTPClient,
		BaseEndpoint: awsCfg.BaseEndpoint,
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
	}
	client := sqs.New(opts)

	resp, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(outbox.QueueName)})
	if err != nil {
		return nil, fmt.Errorf("获取发件队列 URL 失败: %w", err)
	}

	return &SQSSender{
		client:   client,
		queueURL: aws.ToString(resp.QueueUrl),
		from:     outbox.SenderEmail,
		logger:   logger,
	}, nil
}

// Send 将消息写入队列
func (s *SQSSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" || !strings.Contains(msg.To, "@") {
		return ErrInvalidRecipient
	}

	body, err := json.Marshal(envelope{
		ID:      uuid.New().String(),
		From:    s.from,
		Queued:  time.Now().UTC(),
		Message: msg,
	})
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	out, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("写入发件队列失败: %w", err)
	}

	s.logger.Info("消息已入队",
		zap.String("to", msg.To),
		zap.String("message_id", aws.ToString(out.MessageId)),
	)
	return nil
}
