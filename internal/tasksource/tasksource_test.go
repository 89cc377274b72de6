package tasksource

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/models"
)

func newTestQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisQueue(rdb, "tasks", "tasks:dead", logger.NewTestLogger(t)), mr
}

// ==========================
// Redis Queue Tests
// ==========================

func TestRedisQueue_FIFO(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	first := &models.Task{Count: 5, Category: "政治"}
	second := &models.Task{Count: 7, EnhanceRatio: 0.3}
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))
	assert.NotEmpty(t, first.ID)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := q.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, 5, got.Count)
	assert.Equal(t, "政治", got.Category)

	got, err = q.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.InDelta(t, 0.3, got.EnhanceRatio, 1e-9)

	got, err = q.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisQueue_UndecodableGoesToDeadLetter(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	_, err := mr.Lpush("tasks", "not json")
	require.NoError(t, err)

	task, err := q.Next(ctx)
	assert.Nil(t, task)
	assert.Equal(t, apperrors.ErrCodeTaskDecodeFailed, apperrors.CodeOf(err))

	dead, err := mr.List("tasks:dead")
	require.NoError(t, err)
	require.Len(t, dead, 1)

	var dl DeadLetter
	require.NoError(t, json.Unmarshal([]byte(dead[0]), &dl))
	assert.Equal(t, "not json", dl.Raw)
}

func TestRedisQueue_Fail(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	task := &models.Task{ID: "t-1", Count: 3}
	require.NoError(t, q.Complete(ctx, task, models.TaskResult{TaskID: "t-1", Generated: 3}))
	require.NoError(t, q.Fail(ctx, task, errors.New("persistence down")))

	dead, err := mr.List("tasks:dead")
	require.NoError(t, err)
	require.Len(t, dead, 1)

	var dl DeadLetter
	require.NoError(t, json.Unmarshal([]byte(dead[0]), &dl))
	assert.Equal(t, "t-1", dl.Task.ID)
	assert.Equal(t, "persistence down", dl.Error)
}

func TestRedisQueue_ConnectionError(t *testing.T) {
	q, mr := newTestQueue(t)
	mr.Close()

	_, err := q.Next(context.Background())
	assert.Error(t, err)
}

// ==========================
// Zeebe Source Tests
// ==========================

func createMockJob(key int64, variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               "generate-headlines",
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "headline-process",
		ElementId:          "Activity_GenerateHeadlines",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          variables,
	}}
}

func TestDecodeJob(t *testing.T) {
	t.Run("variables map onto the task", func(t *testing.T) {
		task, err := DecodeJob(createMockJob(42, `{"count":10,"category":"科技","enhance_ratio":0.5}`))
		require.NoError(t, err)

		assert.Equal(t, "42", task.ID)
		assert.Equal(t, 10, task.Count)
		assert.Equal(t, "科技", task.Category)
		assert.InDelta(t, 0.5, task.EnhanceRatio, 1e-9)
		assert.False(t, task.CreatedAt.IsZero())
		assert.Equal(t, jobRef{Key: 42, Retries: 3}, task.SourceRef)
	})

	t.Run("explicit id kept", func(t *testing.T) {
		task, err := DecodeJob(createMockJob(7, `{"id":"batch-7","count":1}`))
		require.NoError(t, err)
		assert.Equal(t, "batch-7", task.ID)
	})

	t.Run("bad variables", func(t *testing.T) {
		_, err := DecodeJob(createMockJob(7, `{"count":"many"}`))
		assert.Equal(t, apperrors.ErrCodeTaskDecodeFailed, apperrors.CodeOf(err))
	})
}

func TestZeebeSource_RequiresJobReference(t *testing.T) {
	z := &ZeebeSource{logger: logger.NewNoOpLogger()}
	task := &models.Task{ID: "no-ref"}

	assert.Error(t, z.Complete(context.Background(), task, models.TaskResult{}))
	assert.Error(t, z.Fail(context.Background(), task, errors.New("x")))
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"NOT_FOUND: job not found", false},
		{"permission denied", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isRetryableZeebeError(errors.New(tt.err)), tt.err)
	}
}
