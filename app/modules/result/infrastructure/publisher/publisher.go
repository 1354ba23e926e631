package resultpublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// RecordChangedV1 is the topic record label changes are published on.
const RecordChangedV1 = "results.record.changed.v1"

// RecordChangedPayloadV1 is the wire form of a record label change.
type RecordChangedPayloadV1 struct {
	ResultID string `json:"result_id"`
	EventID  string `json:"event_id"`
	Metric   string `json:"metric"`
	OldTier  string `json:"old_tier"`
	NewTier  string `json:"new_tier"`
	Date     string `json:"date"`
}

// Publisher sends record changes to a watermill publisher.
type Publisher struct {
	pub    message.Publisher
	logger *slog.Logger
}

// New wraps pub.
func New(pub message.Publisher, logger *slog.Logger) *Publisher {
	return &Publisher{pub: pub, logger: logger}
}

// PublishRecordChanges publishes one message per change in a single Publish call.
func (p *Publisher) PublishRecordChanges(ctx context.Context, changes []resultdomain.RecordChange) error {
	if len(changes) == 0 {
		return nil
	}

	msgs := make([]*message.Message, 0, len(changes))
	for _, c := range changes {
		payload, err := json.Marshal(RecordChangedPayloadV1{
			ResultID: c.ResultID.String(),
			EventID:  c.EventID,
			Metric:   string(c.Metric),
			OldTier:  string(c.OldTier),
			NewTier:  string(c.NewTier),
			Date:     c.Date.Format(time.DateOnly),
		})
		if err != nil {
			return fmt.Errorf("failed to marshal record change: %w", err)
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set("event_id", c.EventID)
		msg.Metadata.Set("result_id", c.ResultID.String())
		msg.SetContext(ctx)
		msgs = append(msgs, msg)
	}

	if err := p.pub.Publish(RecordChangedV1, msgs...); err != nil {
		return fmt.Errorf("failed to publish %d record changes: %w", len(msgs), err)
	}
	p.logger.DebugContext(ctx, "Published record changes",
		slog.Int("count", len(msgs)),
		slog.String("topic", RecordChangedV1),
	)
	return nil
}

// Close closes the underlying publisher.
func (p *Publisher) Close() error {
	return p.pub.Close()
}

// StreamName is the JetStream stream that stores results events.
const StreamName = "RESULTS"

// EnsureStream creates or updates the stream capturing every results.* subject.
func EnsureStream(ctx context.Context, natsURL string) error {
	conn, err := nc.Connect(natsURL, nc.Timeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer conn.Close()

	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"results.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    30 * 24 * time.Hour,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure stream %s: %w", StreamName, err)
	}
	return nil
}

// NewNATSPublisher creates a NATS JetStream publisher. Message payloads go on
// the wire unchanged with watermill metadata carried in NATS headers.
func NewNATSPublisher(ctx context.Context, natsURL string, logger watermill.LoggerAdapter) (message.Publisher, error) {
	if err := EnsureStream(ctx, natsURL); err != nil {
		return nil, err
	}

	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			NatsOptions: options,
			Marshaler:   &nats.NATSMarshaler{},
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
				TrackMsgId:    true,
			},
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}
	return publisher, nil
}
