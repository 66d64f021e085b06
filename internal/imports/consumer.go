package imports

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/idempotency"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

const importJobConsumer = "import-jobs"

// Consumer drains queued import jobs and runs them through the pipeline.
type Consumer struct {
	svc          Service
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the import job consumer.
func NewConsumer(svc Service, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if svc == nil {
		return nil, fmt.Errorf("imports service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("import job subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		svc:          svc,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if eventType != EventTypeJobQueued {
		c.logg.Info(logCtx, "skipping non-import event")
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(msg.Attributes["event_id"])
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, importJobConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	var payload QueuedJobPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to decode payload", err)
		return processResult{ack: true}
	}

	logCtx = c.logg.WithJobID(logCtx, payload.JobID)
	if _, err := c.svc.Process(ctx, payload.JobID, ModeAsync); err != nil {
		if isPoison(err) {
			// The job is already marked failed or finished; redelivery
			// cannot change the outcome.
			c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "dropping unprocessable import job")
			return processResult{ack: true}
		}
		c.logg.Error(logCtx, "import job processing failed", err)
		_ = c.idempotency.Delete(ctx, importJobConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "import job processed")
	return processResult{ack: true}
}

func isPoison(err error) bool {
	return pkgerrors.HasCode(err, pkgerrors.CodeValidation) ||
		pkgerrors.HasCode(err, pkgerrors.CodeNotFound) ||
		pkgerrors.HasCode(err, pkgerrors.CodeStateConflict)
}
