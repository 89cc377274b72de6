// Package tasksource feeds generation tasks to the worker loop.
package tasksource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/models"
)

// DeadLetter is what Fail pushes onto the dead-letter list.
type DeadLetter struct {
	Task     *models.Task `json:"task,omitempty"`
	Raw      string       `json:"raw,omitempty"`
	Error    string       `json:"error"`
	FailedAt time.Time    `json:"failed_at"`
}

// RedisQueue is a FIFO list: Enqueue pushes on the left, Next pops from
// the right.
type RedisQueue struct {
	rdb        redis.Cmdable
	key        string
	deadLetter string
	logger     logger.Logger
}

func NewRedisQueue(rdb redis.Cmdable, key, deadLetter string, log logger.Logger) *RedisQueue {
	return &RedisQueue{
		rdb:        rdb,
		key:        key,
		deadLetter: deadLetter,
		logger:     log.WithFields(map[string]interface{}{"taskSource": "redis", "queue": key}),
	}
}

// Enqueue adds a task, filling in its id and creation time.
func (q *RedisQueue) Enqueue(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

// Next pops the oldest task. It returns nil, nil when the queue is empty.
// Undecodable payloads are moved to the dead-letter list.
func (q *RedisQueue) Next(ctx context.Context) (*models.Task, error) {
	raw, err := q.rdb.RPop(ctx, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop task: %w", err)
	}

	var task models.Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		decodeErr := apperrors.NewTaskDecodeError("redis", err)
		q.bury(ctx, DeadLetter{Raw: raw, Error: decodeErr.Error(), FailedAt: time.Now().UTC()})
		return nil, decodeErr
	}
	return &task, nil
}

// Complete has nothing to acknowledge: RPOP already removed the task.
func (q *RedisQueue) Complete(ctx context.Context, task *models.Task, result models.TaskResult) error {
	q.logger.Debug("task completed", map[string]interface{}{
		"taskId":    task.ID,
		"generated": result.Generated,
	})
	return nil
}

// Fail moves the task to the dead-letter list.
func (q *RedisQueue) Fail(ctx context.Context, task *models.Task, cause error) error {
	return q.bury(ctx, DeadLetter{Task: task, Error: cause.Error(), FailedAt: time.Now().UTC()})
}

func (q *RedisQueue) bury(ctx context.Context, dl DeadLetter) error {
	data, err := json.Marshal(dl)
	if err != nil {
		return fmt.Errorf("encode dead letter: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.deadLetter, data).Err(); err != nil {
		q.logger.Error("dead-letter push failed", map[string]interface{}{"error": err})
		return fmt.Errorf("push dead letter: %w", err)
	}
	return nil
}

// Len reports the number of pending tasks.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
