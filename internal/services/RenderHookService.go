// This file contains the implementation of RenderHookService. This service is responsible for handling
// the communication between the override server and an AMQP message broker, and thus the render pipeline.
// Before a render job runs, the pipeline announces it on the 'render-start' queue and this service applies
// the scene's override; when the job finishes, 'render-done' triggers the restore. Override lifecycle
// events are published to the 'override-events' queue for anything downstream that cares.
//
// This service expects a rabbitMQ AMQP 0.9.1 broker to be running on the specified domain. The service
// connects to the broker and creates the necessary queues for communication.
//
// A go channel and waitgroup are used to manage the consumers, and the service can be gracefully shutdown
// by closing the stopChan. The consumers will attempt to reconnect every 5 seconds if the connection is lost.

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SceneForge/GoMaterialOverride/internal/log"
)

// OverrideRunner is the slice of OverrideService the render hooks invoke.
type OverrideRunner interface {
	ApplyOverride(ctx context.Context, sceneID primitive.ObjectID) (int, error)
	CancelOverride(ctx context.Context, sceneID primitive.ObjectID) (int, error)
}

// renderHookMessage is the payload the render pipeline publishes on the
// render-start and render-done queues.
type renderHookMessage struct {
	SceneID string `json:"scene_id"`
}

type RenderHookService struct {
	messageBrokerDomain string
	runner              OverrideRunner
	connection          *amqp.Connection
	channel             *amqp.Channel
	logger              *log.Logger
	// used for reconnection and graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewRenderHookService connects to the broker and declares the hook queues.
// Consumers are not started until StartConsumers is called with a runner,
// so the service can be handed to the OverrideService as its event publisher first.
func NewRenderHookService(messageBrokerDomain string, logger *log.Logger) (*RenderHookService, error) {
	service := &RenderHookService{
		messageBrokerDomain: messageBrokerDomain,
		logger:              logger,
		stopChan:            make(chan struct{}),
	}

	if err := service.connect(); err != nil {
		return nil, err
	}

	return service, nil
}

// connect establishes a connection to the AMQP message broker and creates the necessary queues
func (s *RenderHookService) connect() error {
	timeout := time.Now().Add(time.Minute / 4)
	var err error

	for time.Now().Before(timeout) {
		s.connection, err = amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s:5672/",
			os.Getenv("RABBITMQ_DEFAULT_USER"),
			os.Getenv("RABBITMQ_DEFAULT_PASS"),
			s.messageBrokerDomain))
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}

	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}

	s.channel, err = s.connection.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %v", err)
	}

	queues := []string{"render-start", "render-done", "override-events"}
	for _, queue := range queues {
		args := amqp.Table{
			"x-consumer-timeout": int64(time.Hour.Milliseconds()),
		}
		_, err = s.channel.QueueDeclare(queue, false, false, false, false, args)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %v", queue, err)
		}
	}

	return nil
}

// StartConsumers starts the render hook consumers as goroutines.
func (s *RenderHookService) StartConsumers(runner OverrideRunner) {
	s.runner = runner
	s.wg.Add(2)
	go s.runConsumer("render-start", s.processRenderStart)
	go s.runConsumer("render-done", s.processRenderDone)
}

// runConsumer runs a consumer for the specified queue and consumption handler
func (s *RenderHookService) runConsumer(queueName string, processFunc func(amqp.Delivery) error) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopChan:
			s.logger.Infof("Stopping %s consumer", queueName)
			return
		default:
			if err := s.consume(queueName, processFunc); err != nil {
				s.logger.Errorf("Error in %s consumer: %v. Reconnecting in 5 seconds...", queueName, err)
				time.Sleep(5 * time.Second)
			}
		}
	}
}

// consume consumes messages from the specified queue and processes them using the provided function
func (s *RenderHookService) consume(queueName string, processFunc func(amqp.Delivery) error) error {
	if err := s.ensureConnection(); err != nil {
		return fmt.Errorf("failed to ensure connection: %v", err)
	}

	ch, err := s.connection.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %v", err)
	}
	defer ch.Close()

	messages, err := ch.Consume(
		queueName, "", false, false, false, false, nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %v", err)
	}

	s.logger.Infof("Started consuming from %s", queueName)

	for msg := range messages {
		if err := processFunc(msg); err != nil {
			s.logger.Errorf("Error processing message from %s: %v", queueName, err)
			msg.Nack(false, true) // Negative acknowledge and requeue
		} else {
			msg.Ack(false)
		}
	}

	return fmt.Errorf("consumer channel closed")
}

// ensureConnection ensures that the AMQP connection is established
func (s *RenderHookService) ensureConnection() error {
	if s.connection != nil && !s.connection.IsClosed() {
		return nil
	}

	s.logger.Info("Reconnecting to RabbitMQ...")
	return s.connect()
}

// Shutdown shuts down the render hook service
func (s *RenderHookService) Shutdown() {
	s.logger.Info("Shutting down render hook service...")
	close(s.stopChan)
	s.wg.Wait()
	if s.connection != nil {
		s.connection.Close()
	}
	s.logger.Info("Render hook service shut down")
}

// processRenderStart applies the scene's override before a render job runs.
func (s *RenderHookService) processRenderStart(msg amqp.Delivery) error {
	sceneID, err := s.parseHookMessage(msg)
	if err != nil {
		return err
	}

	applied, err := s.runner.ApplyOverride(context.Background(), sceneID)
	if err != nil {
		return fmt.Errorf("failed to apply override for render: %v", err)
	}

	s.logger.Infof("Render hook applied override to %d slots on scene %s", applied, sceneID.Hex())
	return nil
}

// processRenderDone restores the scene's original materials after a render job finishes.
func (s *RenderHookService) processRenderDone(msg amqp.Delivery) error {
	sceneID, err := s.parseHookMessage(msg)
	if err != nil {
		return err
	}

	restored, err := s.runner.CancelOverride(context.Background(), sceneID)
	if err != nil {
		return fmt.Errorf("failed to restore override after render: %v", err)
	}

	s.logger.Infof("Render hook restored %d slots on scene %s", restored, sceneID.Hex())
	return nil
}

func (s *RenderHookService) parseHookMessage(msg amqp.Delivery) (primitive.ObjectID, error) {
	var hook renderHookMessage
	if err := json.Unmarshal(msg.Body, &hook); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to unmarshal render hook message: %v", err)
	}

	sceneID, err := primitive.ObjectIDFromHex(hook.SceneID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid scene ID in render hook message: %v", err)
	}
	return sceneID, nil
}

// PublishOverrideEvent publishes an override lifecycle event to the 'override-events' queue.
func (s *RenderHookService) PublishOverrideEvent(ctx context.Context, event OverrideEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal override event: %v", err)
	}

	err = s.channel.PublishWithContext(ctx, "", "override-events", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish override event: %v", err)
	}

	return nil
}
