package notify

import (
	"context"
	"errors"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/MayaraRocha95/todo-list-hp/domain"
)

// Queue enqueues notifications on an Azure Storage queue for out-of-process consumers.
type Queue struct {
	client *azqueue.QueueClient
	log    log.FieldLogger
}

// NewQueue creates a Queue notifier for the named queue.
func NewQueue(connStr, name string, l log.FieldLogger) (*Queue, error) {
	opts := azqueue.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    5,
				TryTimeout:    time.Minute,
				RetryDelay:    time.Second,
				MaxRetryDelay: 60 * time.Second,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	client, err := azqueue.NewQueueClientFromConnectionString(connStr, name, &opts)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = log.StandardLogger()
	}
	return &Queue{client: client, log: l}, nil
}

// EnsureQueue creates the queue unless it already exists.
func (q *Queue) EnsureQueue(ctx context.Context) error {
	_, err := q.client.Create(ctx, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == "QueueAlreadyExists" {
			return nil
		}
		return err
	}
	return nil
}

func (q *Queue) Notify(ctx context.Context, n domain.Notification) {
	msg, err := encodeMessage(n)
	if err != nil {
		q.log.WithError(err).Error("failed to marshal notification")
		return
	}
	if _, err := q.client.EnqueueMessage(ctx, msg, nil); err != nil {
		q.log.WithError(err).Error("unable to enqueue notification")
	}
}

type queueMessage struct {
	domain.Notification
	Time int64 `json:"time"`
}

var now = time.Now

func encodeMessage(n domain.Notification) (string, error) {
	data, err := sonic.Marshal(queueMessage{Notification: n, Time: now().UnixMilli()})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
