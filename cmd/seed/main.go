package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/ovenlight/sms-dispatch/internal/config"
	"github.com/ovenlight/sms-dispatch/internal/db/gormdb"
	campdomain "github.com/ovenlight/sms-dispatch/internal/domain/campaign"
	"github.com/ovenlight/sms-dispatch/internal/queue"
	campRepo "github.com/ovenlight/sms-dispatch/internal/repository/gorm/campaign"
	convRepo "github.com/ovenlight/sms-dispatch/internal/repository/gorm/conversation"
	custRepo "github.com/ovenlight/sms-dispatch/internal/repository/gorm/customer"
	mesgRepo "github.com/ovenlight/sms-dispatch/internal/repository/gorm/message"
	optRepo "github.com/ovenlight/sms-dispatch/internal/repository/gorm/optout"
	"gorm.io/gorm"
)

func main() {
	enqueue := flag.Bool("enqueue", false, "publish a dispatch job for the seeded campaign")
	flag.Parse()

	ctx := context.Background()
	cfg := config.New()

	gormAdapter, err := gormdb.New(cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("[Seed] Failed to connect to database: %v", err)
	}

	log.Printf("[Seed] Connected to database %q", cfg.DB.Name)

	rawDB := gormAdapter.Conn().(*gorm.DB)

	// Make sure every table exists.
	err = rawDB.AutoMigrate(
		&mesgRepo.MessageModel{},
		&convRepo.ConversationModel{},
		&custRepo.CustomerModel{},
		&optRepo.OptOutModel{},
		&campRepo.CampaignModel{},
	)
	if err != nil {
		log.Fatalf("[Seed] AutoMigrate failed: %v", err)
	}
	log.Println("[Seed] Tables are up to date (AutoMigrate completed).")

	// Seed customer profiles so some conversations link to one.
	const customerCount = 10

	phones := make([]string, 0, customerCount)
	for i := 0; i < customerCount; i++ {
		phone := randomPhone()
		phones = append(phones, phone)

		model := custRepo.CustomerModel{
			Phone:     phone,
			FirstName: fmt.Sprintf("Customer%02d", i+1),
			LastName:  "Seed",
		}
		if err := rawDB.WithContext(ctx).Create(&model).Error; err != nil {
			log.Fatalf("[Seed] Failed to create customer #%d: %v", i+1, err)
		}
	}
	log.Printf("[Seed] Inserted %d customers.", customerCount)

	// Opt a couple of numbers out so the compliance gate has teeth.
	optOuts := optRepo.NewRepository(gormAdapter)
	for _, phone := range phones[:2] {
		if err := optOuts.Add(ctx, phone); err != nil {
			log.Fatalf("[Seed] Failed to add opt-out for %s: %v", phone, err)
		}
	}
	log.Println("[Seed] Opted out 2 seeded numbers.")

	// One draft campaign targeting the remaining numbers.
	campaigns := campRepo.NewRepository(gormAdapter)
	camp := campdomain.New("Your order is ready for pickup!", phones[2:])
	if err := campaigns.Create(ctx, camp); err != nil {
		log.Fatalf("[Seed] Failed to create campaign: %v", err)
	}
	log.Printf("[Seed] Created draft campaign %s with %d recipients.", camp.ID, len(camp.Recipients))

	if *enqueue {
		q, err := queue.Dial(cfg.AMQP.URL, cfg.AMQP.QueueName)
		if err != nil {
			log.Fatalf("[Seed] Failed to connect to broker: %v", err)
		}
		defer q.Close()

		job := queue.DispatchJob{CampaignID: camp.ID.String(), SenderID: cfg.Gateway.FromNumber}
		if err := q.PublishDispatch(job); err != nil {
			log.Fatalf("[Seed] Failed to publish dispatch job: %v", err)
		}
		log.Printf("[Seed] Enqueued dispatch job for campaign %s.", camp.ID)
	}

	log.Println("[Seed] Done.")
}

// randomPhone generates a fake phone number in E.164 format.
// Example output: +15551234567
func randomPhone() string {
	n := rand.Intn(900000000) + 100000000 // 9 digits
	return fmt.Sprintf("+1555%d", n)
}
