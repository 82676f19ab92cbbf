package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	hairmanager "github.com/timknowlden/HairManager-sub001"
	"github.com/timknowlden/HairManager-sub001/config"
	redis_db "github.com/timknowlden/HairManager-sub001/internal/redis-db"
	"github.com/timknowlden/HairManager-sub001/internal/search"
)

// indexData is the payload shape for search-index tasks: the target
// collection and the document to upsert.
type indexData struct {
	Collection string                 `json:"collection"`
	Payload    map[string]interface{} `json:"payload"`
}

// processEmailSend delivers one queued email. Errors returned here trigger
// asynq's retry, bounded by the queue's max retry setting.
func (app *appInstance) processEmailSend(ctx context.Context, t *asynq.Task) error {
	var payload hairmanager.EmailSendPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}

	if err := app.service.ProcessEmailSend(ctx, payload); err != nil {
		logrus.Infof("Email send %s pushed back for retry due to error: %v", payload.LogID, err)
		return err
	}

	log.Println(" [*] Email Processed", payload.LogID)
	return nil
}

// indexDocument indexes data into TypeSense for searchability.
func (app *appInstance) indexDocument(_ context.Context, t *asynq.Task) error {
	var data indexData

	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		logrus.Error(err)
		return err
	}

	newSearch := search.NewTypesenseClient(app.cnf.TypeSenseKey, []string{app.cnf.TypeSense.Dns})
	err := newSearch.EnsureCollectionsExist(context.Background())
	if err != nil {
		log.Printf("Failed to ensure collections exist: %v", err)
		return err
	}

	err = newSearch.HandleNotification(context.Background(), data.Collection, data.Payload)
	if err != nil {
		log.Println("Error indexing data", err)
		return err
	}

	log.Println(" [*] Data indexed", data.Collection)
	return nil
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues[cfg.Queue.EmailSendQueue] = 3
	queues[cfg.Queue.IndexQueue] = 1
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(app *appInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return
	}

	mux.HandleFunc(cfg.Queue.EmailSendQueue, app.processEmailSend)
	mux.HandleFunc(cfg.Queue.IndexQueue, app.indexDocument)
}

// workerCommands defines the "workers" command to start the background
// worker processes for email delivery and search indexing.
func workerCommands(app *appInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start background workers",
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			queues := initializeQueues()

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(app, mux)

			if err := srv.Run(mux); err != nil {
				log.Fatal("Error running worker server:", err)
			}
		},
	}

	return cmd
}
