package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/ovenlight/sms-dispatch/internal/config"
	"github.com/ovenlight/sms-dispatch/internal/db/gormdb"
	"github.com/ovenlight/sms-dispatch/internal/gateway"
	"github.com/ovenlight/sms-dispatch/internal/queue"
	campRepo "github.com/ovenlight/sms-dispatch/internal/repository/gorm/campaign"
	"github.com/ovenlight/sms-dispatch/internal/service"
)

// perJobTimeout bounds one campaign dispatch, batch gateway call included.
const perJobTimeout = 60 * time.Second

func main() {
	cfg := config.New()

	db, err := gormdb.New(cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("[Worker] Failed to connect db: %v", err)
	}

	gw := gateway.NewRESTClient(cfg.Gateway.BaseURL, cfg.Gateway.AccountSID, cfg.Gateway.AuthToken)

	campaigns := campRepo.NewRepository(db)
	campaignSvc := service.NewCampaignService(campaigns, gw)

	q, err := queue.Dial(cfg.AMQP.URL, cfg.AMQP.QueueName)
	if err != nil {
		log.Fatalf("[Worker] Failed to connect to broker: %v", err)
	}
	defer q.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("[Worker] Shutdown signal received, closing queue...")
		q.Close()
	}()

	log.Printf("[Worker] Consuming dispatch jobs from %q...", cfg.AMQP.QueueName)

	err = q.ConsumeDispatch(func(job queue.DispatchJob) error {
		campaignID, err := uuid.Parse(job.CampaignID)
		if err != nil {
			log.Printf("[Worker] Dropping job with bad campaign id %q: %v", job.CampaignID, err)
			return nil
		}

		jobCtx, cancel := context.WithTimeout(context.Background(), perJobTimeout)
		defer cancel()

		result, err := campaignSvc.Dispatch(jobCtx, campaignID, job.SenderID)
		if err != nil {
			return err
		}

		log.Printf("[Worker] Campaign %s dispatched, gateway accepted %d.", campaignID, result.Accepted)
		return nil
	})
	if err != nil {
		log.Printf("[Worker] Consumer stopped: %v", err)
	}

	log.Println("[Worker] Shutdown complete.")
}
