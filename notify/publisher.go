package notify

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"batiplan/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const AlertQueueName = "batiplan.alerts"

var (
	PublishAlertFunc = PublishAlert

	activeBroker *Broker
	brokerMutex  sync.Mutex
)

// Broker wraps an AMQP connection and the channel used for alert publishing.
type Broker struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Bootstrap connects to the broker named by AMQP_URL and declares the alert
// queue. When AMQP_URL is empty the broker stays nil and publishing becomes
// a no-op, so a deployment without a broker still works.
func Bootstrap() error {
	url := os.Getenv("AMQP_URL")
	if url == "" {
		logrus.Warn("AMQP_URL is not set, alert publishing is disabled")
		return nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if _, err := ch.QueueDeclare(AlertQueueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	brokerMutex.Lock()
	activeBroker = &Broker{conn: conn, channel: ch}
	brokerMutex.Unlock()
	return nil
}

func Close() {
	brokerMutex.Lock()
	defer brokerMutex.Unlock()
	if activeBroker != nil {
		activeBroker.channel.Close()
		activeBroker.conn.Close()
		activeBroker = nil
	}
}

// PublishAlert enqueues an alert for the mail worker. Callers treat a
// publish failure as non fatal: the alert row is already persisted.
func PublishAlert(alert *domain.Alert) error {
	brokerMutex.Lock()
	broker := activeBroker
	brokerMutex.Unlock()
	if broker == nil {
		return nil
	}

	body, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return broker.channel.PublishWithContext(ctx, "", AlertQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
