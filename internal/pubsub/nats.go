package pubsub

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const (
	streamName    = "DRAFT_EVENTS"
	subjectPrefix = "draft.league."
)

// NATSRelay publishes draft events to a NATS JetStream stream, one subject
// per league.
type NATSRelay struct {
	nc  *nats.Conn
	js  nats.JetStreamContext
	log zerolog.Logger
}

func NewNATSRelay(natsURL string, log zerolog.Logger) (*NATSRelay, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(streamName); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{subjectPrefix + ">"},
			Storage:  nats.FileStorage,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
	}

	return &NATSRelay{nc: nc, js: js, log: log}, nil
}

func (r *NATSRelay) Publish(leagueID string, data []byte) {
	if _, err := r.js.Publish(subjectPrefix+leagueID, data); err != nil {
		r.log.Warn().Err(err).Str("league_id", leagueID).Msg("failed to relay event")
	}
}

func (r *NATSRelay) Close() {
	r.nc.Close()
}
