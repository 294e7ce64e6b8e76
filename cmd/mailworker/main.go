package main

import (
	"log"
	"os"

	"batiplan/notify"

	amqp "github.com/rabbitmq/amqp091-go"
)

// mailworker consumes the alert queue and mails critical alerts.
func main() {
	url := os.Getenv("AMQP_URL")
	if url == "" {
		log.Fatal("AMQP_URL is required")
	}

	cfg, err := notify.ParseMailConfigFromEnv()
	if err != nil {
		log.Fatalf("parse mail config failed %v\n", err)
	}

	mailer, err := notify.NewAlertMailer(cfg)
	if err != nil {
		log.Fatalf("failed to build mail client %v\n", err)
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Fatalf("failed to connect to broker %v\n", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("failed to open channel %v\n", err)
	}
	defer ch.Close()

	log.Println("mail worker start")
	if err := mailer.Run(ch); err != nil {
		log.Fatalf("mail worker stopped %v\n", err)
	}
}
