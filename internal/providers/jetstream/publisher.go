package jetstream

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/events"
	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/messaging"
)

const (
	HEADER_MSG_ID     = "Nats-Msg-Id"
	HEADER_SIGNATURE  = "Safient-Signature"
	HEADER_TIMESTAMP  = "Safient-Timestamp"
	HEADER_EVENT_TYPE = "Safient-Event-Type"

	DEFAULT_STREAM_NAME    = "SAFIENT_TRANSFERS"
	DEFAULT_SUBJECT_PREFIX = "safient.transfers"
	DUPLICATE_WINDOW       = 2 * time.Minute
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	SigningSecret  string
}

type publisher struct {
	nc            adapter.NatsConn
	js            adapter.JetStream
	subjectPrefix string
	signer        *events.Signer
	clock         adapter.Clock
}

// NewPublisher connects to NATS, makes sure the transfer stream exists and returns a publisher
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON, jcs adapter.JCS, clock adapter.Clock) (messaging.Publisher, error) {
	if cfg.StreamName == "" {
		cfg.StreamName = DEFAULT_STREAM_NAME
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = DEFAULT_SUBJECT_PREFIX
	}

	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	err = js.EnsureStream(ctx, jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{cfg.SubjectPrefix + ".>"},
		Storage:    jetstream.FileStorage,
		Duplicates: DUPLICATE_WINDOW,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
	}

	signer := events.NewSigner(cfg.SigningSecret, jsonAdapter, jcs)
	if !signer.Enabled() {
		logger.Warn("NATS signing secret is empty, transfer events will be published unsigned")
	}

	return &publisher{
		nc:            nc,
		js:            js,
		subjectPrefix: cfg.SubjectPrefix,
		signer:        signer,
		clock:         clock,
	}, nil
}

// PublishTransferEvent publishes a signed transfer event to NATS JetStream
func (p *publisher) PublishTransferEvent(ctx context.Context, event events.TransferEvent) error {
	logger.DebugCtx(ctx, "Publishing transfer event",
		zap.String("eventID", event.EventID),
		zap.String("eventType", event.EventType),
		zap.String("transferID", event.Data.TransferID))

	timestamp := p.clock.Now().Unix()
	payload, signature, err := p.signer.Sign(event, timestamp)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(p.buildSubject(event.EventType))
	msg.Data = payload
	msg.Header.Set(HEADER_MSG_ID, event.EventID)
	msg.Header.Set(HEADER_EVENT_TYPE, event.EventType)
	msg.Header.Set(HEADER_TIMESTAMP, strconv.FormatInt(timestamp, 10))
	if signature != "" {
		msg.Header.Set(HEADER_SIGNATURE, signature)
	}

	if _, err := p.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// buildSubject maps an event type to its subject
// e.g. transfer.reclaimed -> safient.transfers.reclaimed
func (p *publisher) buildSubject(eventType string) string {
	return fmt.Sprintf("%s.%s", p.subjectPrefix, strings.TrimPrefix(eventType, "transfer."))
}

// Close drains and closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	if err := p.nc.Drain(); err != nil {
		logger.Warn("Failed to drain NATS connection", zap.Error(err))
		p.nc.Close()
	}
}
