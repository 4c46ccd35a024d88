// Package alerts delivers marketplace events to downstream subscribers
// over an asynq (Redis) queue. Notification transport itself (email,
// push, chat) lives outside the core; the worker here logs deliveries so
// the queue is drained even with no external consumer attached.
package alerts

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ecaro09/tasko-sub000/internal/domain"
)

type Queue struct {
	client *asynq.Client
	server *asynq.Server
	log    *zap.Logger
}

// New builds the queue against the given Redis address.
func New(redisAddr string, log *zap.Logger) *Queue {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	return &Queue{
		client: asynq.NewClient(opts),
		server: asynq.NewServer(opts, asynq.Config{
			Concurrency: 5,
			Queues:      map[string]int{eventQueue: 10},
		}),
		log: log,
	}
}

// Publish enqueues one marketplace event.
func (q *Queue) Publish(ctx context.Context, ev domain.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	task := asynq.NewTask(typeFor(ev.Name), b)
	_, err = q.client.EnqueueContext(ctx, task, asynq.Queue(eventQueue))
	return err
}

// StartWorker runs the consumer side in the background.
func (q *Queue) StartWorker() {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeTaskPosted, q.handleEvent)
	mux.HandleFunc(TypeTaskAssigned, q.handleEvent)
	mux.HandleFunc(TypeTaskCompleted, q.handleEvent)
	mux.HandleFunc(TypeTaskCancelled, q.handleEvent)

	go func() {
		if err := q.server.Run(mux); err != nil {
			q.log.Error("alerts worker stopped", zap.Error(err))
		}
	}()
}

// Close releases the client and stops the worker.
func (q *Queue) Close() {
	_ = q.client.Close()
	q.server.Shutdown()
}

func (q *Queue) handleEvent(_ context.Context, t *asynq.Task) error {
	var ev domain.Event
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		return err
	}
	q.log.Info("event delivered",
		zap.String("event", ev.Name),
		zap.String("task_id", ev.TaskID),
		zap.String("tasker_id", ev.TaskerID),
		zap.String("client_id", ev.ClientID))
	return nil
}
