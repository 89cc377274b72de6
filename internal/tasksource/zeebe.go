package tasksource

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/common/config"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/models"
)

// jobRef is the acknowledgement handle stored in Task.SourceRef.
type jobRef struct {
	Key     int64
	Retries int32
}

// ZeebeSource activates one job at a time from the broker.
type ZeebeSource struct {
	client         zbc.Client
	jobType        string
	workerName     string
	jobTimeout     time.Duration
	requestTimeout time.Duration
	maxRetries     int
	baseDelay      time.Duration
	logger         logger.Logger
}

// NewZeebeClient connects to the gateway and checks the topology.
func NewZeebeClient(ctx context.Context, cfg config.CamundaConfig) (zbc.Client, error) {
	client, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := client.NewTopologyCommand().Send(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
	}
	return client, nil
}

func NewZeebeSource(client zbc.Client, cfg config.CamundaConfig, log logger.Logger) *ZeebeSource {
	return &ZeebeSource{
		client:         client,
		jobType:        cfg.JobType,
		workerName:     cfg.WorkerName,
		jobTimeout:     config.GetDuration(cfg.Timeout),
		requestTimeout: config.GetDuration(cfg.RequestTimeout),
		maxRetries:     cfg.MaxRetries,
		baseDelay:      time.Second,
		logger:         log.WithFields(map[string]interface{}{"taskSource": "zeebe", "jobType": cfg.JobType}),
	}
}

func (z *ZeebeSource) Next(ctx context.Context) (*models.Task, error) {
	jobs, err := z.client.NewActivateJobsCommand().
		JobType(z.jobType).
		MaxJobsToActivate(1).
		Timeout(z.jobTimeout).
		WorkerName(z.workerName).
		RequestTimeout(z.requestTimeout).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("activate jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	task, err := DecodeJob(jobs[0])
	if err != nil {
		z.failJob(ctx, jobRef{Key: jobs[0].Key}, err.Error())
		return nil, err
	}
	return task, nil
}

// DecodeJob turns job variables into a task. The job key stands in for a
// missing task id.
func DecodeJob(job entities.Job) (*models.Task, error) {
	var task models.Task
	if err := json.Unmarshal([]byte(job.Variables), &task); err != nil {
		return nil, apperrors.NewTaskDecodeError("zeebe", err)
	}
	if task.ID == "" {
		task.ID = strconv.FormatInt(job.Key, 10)
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	task.SourceRef = jobRef{Key: job.Key, Retries: job.Retries}
	return &task, nil
}

func (z *ZeebeSource) Complete(ctx context.Context, task *models.Task, result models.TaskResult) error {
	ref, ok := task.SourceRef.(jobRef)
	if !ok {
		return fmt.Errorf("task %s has no zeebe job reference", task.ID)
	}

	return z.withRetry(ctx, "complete job", func(ctx context.Context) error {
		cmd, err := z.client.NewCompleteJobCommand().
			JobKey(ref.Key).
			VariablesFromObject(result)
		if err != nil {
			return err
		}
		_, err = cmd.Send(ctx)
		return err
	})
}

func (z *ZeebeSource) Fail(ctx context.Context, task *models.Task, cause error) error {
	ref, ok := task.SourceRef.(jobRef)
	if !ok {
		return fmt.Errorf("task %s has no zeebe job reference", task.ID)
	}
	return z.failJob(ctx, ref, cause.Error())
}

func (z *ZeebeSource) failJob(ctx context.Context, ref jobRef, message string) error {
	retries := max(ref.Retries-1, 0)

	z.logger.Error("job failed", map[string]interface{}{
		"jobKey":  ref.Key,
		"error":   message,
		"retries": retries,
	})

	return z.withRetry(ctx, "fail job", func(ctx context.Context) error {
		_, err := z.client.NewFailJobCommand().
			JobKey(ref.Key).
			Retries(retries).
			ErrorMessage(message).
			Send(ctx)
		return err
	})
}

// withRetry repeats transient broker failures with exponential backoff.
func (z *ZeebeSource) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= z.maxRetries; attempt++ {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if !isRetryableZeebeError(lastErr) || attempt == z.maxRetries {
			break
		}

		select {
		case <-time.After(z.baseDelay * time.Duration(1<<attempt)):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", op, attempt+1, ctx.Err())
		}
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
