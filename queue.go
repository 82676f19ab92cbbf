package hairmanager

import (
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"

	"github.com/timknowlden/HairManager-sub001/config"
	redis_db "github.com/timknowlden/HairManager-sub001/internal/redis-db"
)

// Queue represents a queue for handling background tasks.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// EmailSendPayload is the task payload for one outgoing email. Multi-recipient
// sends fan out into one task per recipient, each bound to its own log row.
type EmailSendPayload struct {
	LogID          string `json:"log_id"`
	OwnerID        string `json:"owner_id"`
	Recipient      string `json:"recipient"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	InvoiceRef     string `json:"invoice_ref,omitempty"`
	AttachmentPath string `json:"attachment_path,omitempty"`
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// queueEmailSend enqueues one per-recipient email send for the worker pool.
func (q *Queue) queueEmailSend(email EmailSendPayload) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(email)
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{
		asynq.TaskID(email.LogID),
		asynq.Queue(cfg.Queue.EmailSendQueue),
		asynq.MaxRetry(cfg.Queue.MaxRetryAttempts),
	}
	task := asynq.NewTask(cfg.Queue.EmailSendQueue, payload, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued email send: %+v", email.LogID)
	return nil
}

// queueIndexData enqueues a task to index data in a specified collection.
// A missing Typesense configuration disables indexing silently.
func (q *Queue) queueIndexData(id string, collection string, data interface{}) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	if cfg.TypeSense.Dns == "" {
		return nil
	}

	payload := map[string]interface{}{
		"collection": collection,
		"payload":    data,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{
		asynq.TaskID(id),
		asynq.Queue(cfg.Queue.IndexQueue),
	}
	task := asynq.NewTask(cfg.Queue.IndexQueue, payloadBytes, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	return nil
}
