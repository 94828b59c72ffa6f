package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gradeflow/assess-api/internal/models"
)

// complaintResolvedEvent is the payload fanned out when a complaint reaches
// its terminal state, consumed by the (external) notification dispatcher.
type complaintResolvedEvent struct {
	EventID       string     `json:"event_id"`
	ComplaintID   uint       `json:"complaint_id"`
	ComplaintType string     `json:"complaint_type"`
	StudentID     uint       `json:"student_id"`
	Reviewer      string     `json:"reviewer"`
	Accepted      *bool      `json:"accepted"`
	ResolvedAt    *time.Time `json:"resolved_at"`
	SentAt        time.Time  `json:"sent_at"`
}

type complaintNotificationService struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	tracer       trace.Tracer
}

// NewComplaintNotificationService constructs a fan-out notifier over redis
// pub/sub and NATS. Either client may be nil; delivery is best effort and
// failures are logged, never returned.
func NewComplaintNotificationService(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) ComplaintNotifier {
	if channelBase == "" {
		channelBase = "gradeflow"
	}

	return &complaintNotificationService{
		redis:        redisClient,
		redisChannel: channelBase + ":complaints:resolved",
		nats:         natsConn,
		natsSubject:  channelBase + ".complaints.resolved",
		logger:       logger.With().Str("component", "complaint_notification_service").Logger(),
		tracer:       otel.Tracer("github.com/gradeflow/assess-api/internal/service/notification"),
	}
}

func (s *complaintNotificationService) ComplaintResolved(ctx context.Context, complaint models.Complaint, response models.ComplaintResponse) {
	ctx, span := s.tracer.Start(ctx, "notification.complaint_resolved",
		trace.WithAttributes(attribute.Int("complaint.id", int(complaint.ID))))
	defer span.End()

	event := complaintResolvedEvent{
		EventID:       uuid.NewString(),
		ComplaintID:   complaint.ID,
		ComplaintType: complaint.ComplaintType,
		StudentID:     complaint.ParticipantID,
		Reviewer:      reviewerLogin(response),
		Accepted:      response.Complaint.Accepted,
		ResolvedAt:    response.SubmittedTime,
		SentAt:        time.Now(),
	}
	if event.Accepted == nil {
		event.Accepted = complaint.Accepted
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Uint("complaint_id", complaint.ID).Msg("failed to encode complaint event")
		return
	}

	if s.redis != nil {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Str("channel", s.redisChannel).Msg("failed to publish complaint event to redis")
		}
	}

	if s.nats != nil {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Str("subject", s.natsSubject).Msg("failed to publish complaint event to nats")
		}
	}
}
