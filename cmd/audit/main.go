package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-research-assistant-be/internal/config"
	"ai-research-assistant-be/pkg/events"
	pkgNats "ai-research-assistant-be/pkg/nats"
)

// Tails QUERY_ANSWERED events from JetStream and writes an audit line per
// answered query. Runs as a standalone process next to the REST server.
func main() {
	cfg := config.Load()

	sub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Unable to connect to NATS: %v", err)
	}
	defer sub.Close()

	err = sub.Subscribe("events.QUERY_ANSWERED", "audit-log", func(ctx context.Context, event events.Event) error {
		payload := event.Payload()
		log.Printf("[AUDIT] query answered: record=%v user=%v confidence=%v iterations=%v",
			payload["record_id"], payload["user_id"], payload["confidence"], payload["iterations_used"])
		return nil
	})
	if err != nil {
		log.Fatalf("Unable to subscribe: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Audit consumer shutting down")
}
