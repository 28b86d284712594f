package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/quiz-auth/config"
	"github.com/oksasatya/quiz-auth/pkg/helpers"
	"github.com/oksasatya/quiz-auth/pkg/mailer"
	mailtpl "github.com/oksasatya/quiz-auth/pkg/mailer/templates"
)

var errBadJob = errors.New("bad email job")

// retryDelay spaces out the single redelivery of a failed send.
const retryDelay = 5 * time.Second

type outcome int

const (
	ack outcome = iota
	drop
	requeue
)

// settle decides a delivery's fate. Bad jobs are dropped at once; a send
// failure is retried once and dropped if the redelivery fails too.
func settle(err error, redelivered bool) outcome {
	switch {
	case err == nil:
		return ack
	case errors.Is(err, errBadJob), redelivered:
		return drop
	default:
		return requeue
	}
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		logger.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		logger.Fatal(err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			err := handle(ctx, logger, mg, msg.Body)
			switch settle(err, msg.Redelivered) {
			case ack:
				_ = msg.Ack(false)
			case drop:
				logger.WithError(err).WithField("redelivered", msg.Redelivered).Warn("dropping email job")
				_ = msg.Nack(false, false)
			case requeue:
				logger.WithError(err).Warnf("send failed; requeueing in %s", retryDelay)
				time.Sleep(retryDelay)
				_ = msg.Nack(false, true)
			}
		}
		close(done)
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

type sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// handle renders and sends one job. Undecodable or unrenderable jobs wrap errBadJob.
func handle(ctx context.Context, logger logrus.FieldLogger, s sender, body []byte) error {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %v", errBadJob, err)
	}
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", errBadJob)
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		var err error
		subject, text, html, err = mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", errBadJob, job.Template, err)
		}
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := s.Send(c, job.To, subject, text, html); err != nil {
		logger.WithError(err).WithField("to", job.To).Debug("mailgun send error")
		return err
	}
	return nil
}
