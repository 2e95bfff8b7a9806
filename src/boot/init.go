package boot

import (
	"kumpul/src/db"
	"kumpul/src/lib"
	"kumpul/src/models"
	"log"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.PaymentMethod{},
		&models.SubscriptionPlan{},
		&models.PlanPrice{},
		&models.UserSubscription{},
		&models.Transaction{},
		&models.TransactionAction{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
}
