// Package queue publishes run summaries to a Redis list so other tools can
// pick up the latest charts.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/encoding/json"
)

const (
	RunsKey = "gantt:runs"
	MaxRuns = 100
)

type TaskSummary struct {
	Name       string  `json:"name"`
	Priority   int     `json:"priority"`
	Color      string  `json:"color"`
	Executions int     `json:"executions"`
	TotalMs    float64 `json:"total_ms"`
}

type RunSummary struct {
	ID         string        `json:"id"`
	LogFile    string        `json:"log_file"`
	OutputFile string        `json:"output_file"`
	WindowMs   float64       `json:"window_ms"`
	Executions int           `json:"executions"`
	Tasks      []TaskSummary `json:"tasks"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (s *RunSummary) ToJSON() (string, error) {
	data, err := json.Marshal(s)
	return string(data), err
}

func RunSummaryFromJSON(data string) (*RunSummary, error) {
	var s RunSummary
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, err
	}

	return &s, nil
}

type Publisher struct {
	client *redis.Client
}

func NewPublisher(ctx context.Context, redisAddr string) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Publisher{client: client}, nil
}

// Publish pushes s to the head of the runs list, keeping the newest MaxRuns.
func (p *Publisher) Publish(ctx context.Context, s *RunSummary) error {
	data, err := s.ToJSON()
	if err != nil {
		return err
	}

	pipe := p.client.TxPipeline()
	pipe.LPush(ctx, RunsKey, data)
	pipe.LTrim(ctx, RunsKey, 0, MaxRuns-1)
	_, err = pipe.Exec(ctx)

	return err
}

// Recent returns up to n summaries, newest first. Entries that fail to
// decode are skipped.
func (p *Publisher) Recent(ctx context.Context, n int) ([]*RunSummary, error) {
	if n <= 0 {
		return nil, nil
	}

	items, err := p.client.LRange(ctx, RunsKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	runs := make([]*RunSummary, 0, len(items))
	for _, item := range items {
		s, err := RunSummaryFromJSON(item)
		if err != nil {
			continue
		}
		runs = append(runs, s)
	}

	return runs, nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
