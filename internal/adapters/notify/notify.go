// Package notify holds the sinks contract notifications are delivered to.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"contractbot/internal/domain"
	"contractbot/internal/ports"
)

// Event is the wire form of a contract notification.
type Event struct {
	ContractID     int64      `json:"contractId"`
	PlayerName     string     `json:"playerName"`
	System         string     `json:"system"`
	EstimatedTotal float64    `json:"estimatedTotal"`
	CreditedAmount float64    `json:"creditedAmount"`
	ExternalUserID *int64     `json:"externalUserId,omitempty"`
	OcrArtifacts   []Artifact `json:"ocrArtifacts"`
	ScreenshotRef  string     `json:"screenshotRef,omitempty"`
}

type Artifact struct {
	Region         string `json:"region"`
	Box            [4]int `json:"box"`
	RecognizedText string `json:"recognizedText"`
	ImageRef       string `json:"imageRef,omitempty"`
}

func NewEvent(n domain.ContractNotification) Event {
	ev := Event{
		ContractID:     n.ContractID,
		PlayerName:     n.PlayerName,
		System:         n.System,
		EstimatedTotal: n.EstimatedTotal,
		CreditedAmount: n.CreditedAmount,
		ExternalUserID: n.ExternalUserID,
		OcrArtifacts:   make([]Artifact, 0, len(n.OcrArtifacts)),
		ScreenshotRef:  n.ScreenshotRef,
	}
	for _, a := range n.OcrArtifacts {
		ev.OcrArtifacts = append(ev.OcrArtifacts, Artifact{
			Region:         a.Region,
			Box:            a.Box,
			RecognizedText: a.RecognizedText,
			ImageRef:       a.ImageRef,
		})
	}
	return ev
}

// Log writes every notification to the structured log.
type Log struct {
	log *zap.Logger
}

var _ ports.Notifier = (*Log)(nil)

func NewLog(log *zap.Logger) *Log { return &Log{log: log.Named("notify")} }

func (l *Log) Notify(_ context.Context, n domain.ContractNotification) error {
	fields := []zap.Field{
		zap.Int64("contract_id", n.ContractID),
		zap.String("player", n.PlayerName),
		zap.String("system", n.System),
		zap.Float64("estimated_total", n.EstimatedTotal),
		zap.Float64("credited", n.CreditedAmount),
		zap.Int("artifacts", len(n.OcrArtifacts)),
	}
	if n.ExternalUserID != nil {
		fields = append(fields, zap.Int64("external_user_id", *n.ExternalUserID))
	}
	l.log.Info("contract accepted", fields...)
	return nil
}

type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStream publishes notifications to a Redis stream with XADD.
type RedisStream struct {
	client streamAdder
	stream string
}

var _ ports.Notifier = (*RedisStream)(nil)

func NewRedisStream(client *redis.Client, stream string) *RedisStream {
	return &RedisStream{client: client, stream: stream}
}

func (r *RedisStream) Notify(ctx context.Context, n domain.ContractNotification) error {
	payload, err := json.Marshal(NewEvent(n))
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{
			"contract_id": n.ContractID,
			"payload":     payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis xadd error: %w", err)
	}
	return nil
}

// ConnectRedis opens a client and verifies the server answers.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return rdb, nil
}
