package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sparklewash/booking-service/model"
)

// NotificationProcessor consumes booking notification events and dispatches
// them to customers. Delivery is fanned out over a fixed worker pool so one
// slow send does not stall the consumer loop.
type NotificationProcessor struct {
	consumer *kafka.Reader

	workerPool chan chan kafka.Message
	workers    []*notificationWorker

	// Metrics
	processedCount int64
	activeWorkers  int64
}

type notificationWorker struct {
	id         int
	processor  *NotificationProcessor
	jobChannel chan kafka.Message
	workerPool chan chan kafka.Message
	quit       chan bool
}

func NewNotificationProcessor(consumer *kafka.Reader, maxWorkers int) *NotificationProcessor {
	processor := &NotificationProcessor{
		consumer:   consumer,
		workerPool: make(chan chan kafka.Message, maxWorkers),
		workers:    make([]*notificationWorker, maxWorkers),
	}

	for i := 0; i < maxWorkers; i++ {
		processor.workers[i] = &notificationWorker{
			id:         i,
			processor:  processor,
			jobChannel: make(chan kafka.Message),
			workerPool: processor.workerPool,
			quit:       make(chan bool),
		}
	}

	return processor
}

// Start begins consuming notification requests from Kafka
func (p *NotificationProcessor) Start(ctx context.Context) error {
	log.Printf("Starting notification processor with %d workers...", len(p.workers))

	for _, worker := range p.workers {
		worker.start()
	}

	go p.reportMetrics(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Notification processor shutting down...")
			p.shutdown()
			return ctx.Err()
		default:
			msg, err := p.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					p.shutdown()
					return ctx.Err()
				}
				log.Printf("Error reading message: %v", err)
				continue
			}

			// Dispatch to worker pool (blocks if all workers busy)
			select {
			case jobChannel := <-p.workerPool:
				select {
				case jobChannel <- msg:
					// Successfully dispatched
				case <-ctx.Done():
					return ctx.Err()
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (w *notificationWorker) start() {
	go func() {
		for {
			// Register this worker in the pool
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				atomic.AddInt64(&w.processor.activeWorkers, 1)

				if err := w.processor.processNotification(job); err != nil {
					log.Printf("Worker %d error processing notification: %v", w.id, err)
				}

				atomic.AddInt64(&w.processor.processedCount, 1)
				atomic.AddInt64(&w.processor.activeWorkers, -1)

			case <-w.quit:
				log.Printf("Worker %d shutting down", w.id)
				return
			}
		}
	}()
}

func (w *notificationWorker) stop() {
	w.quit <- true
}

// shutdown gracefully stops all workers
func (p *NotificationProcessor) shutdown() {
	log.Println("Shutting down notification workers...")

	for _, worker := range p.workers {
		worker.stop()
	}

	// Wait for active workers to finish (with timeout)
	timeout := time.After(30 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			log.Println("Shutdown timeout reached, forcing exit")
			return
		case <-ticker.C:
			if atomic.LoadInt64(&p.activeWorkers) == 0 {
				log.Println("All workers finished gracefully")
				return
			}
		}
	}
}

// reportMetrics logs throughput counters
func (p *NotificationProcessor) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed := atomic.LoadInt64(&p.processedCount)
			active := atomic.LoadInt64(&p.activeWorkers)
			log.Printf("Notification Processor Metrics - Processed: %d, Active Workers: %d",
				processed, active)
		}
	}
}

// processNotification delivers a single notification request. The actual
// email/SMS providers are external; delivery here logs the dispatch the
// same way the providers would be invoked.
func (p *NotificationProcessor) processNotification(msg kafka.Message) error {
	var req model.NotificationRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("failed to unmarshal notification request: %w", err)
	}

	switch req.Type {
	case model.NotificationBookingConfirmed:
		log.Printf("[email->%s] Booking %s confirmed: %s on %s at %s",
			req.RecipientEmail, req.BookingData.BookingID, req.BookingData.ServiceName,
			req.BookingData.Date, req.BookingData.StartTime)
	case model.NotificationBookingCancelled:
		log.Printf("[email->%s] Booking %s cancelled",
			req.RecipientEmail, req.BookingData.BookingID)
	default:
		return fmt.Errorf("unknown notification type: %s", req.Type)
	}

	if req.RecipientPhone != "" {
		log.Printf("[sms->%s] %s for booking %s",
			req.RecipientPhone, req.Type, req.BookingData.BookingID)
	}

	return nil
}
