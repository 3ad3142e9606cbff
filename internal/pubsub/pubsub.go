package pubsub

// Relay mirrors per-league draft events to an external bus so other
// instances (or offline consumers) can observe a draft. Local fan-out to
// websocket subscribers never goes through the relay; a dead relay must not
// affect a running draft.
type Relay interface {
	Publish(leagueID string, data []byte)
	Close()
}

// NoopRelay is used when no NATS_URL is configured.
type NoopRelay struct{}

func (NoopRelay) Publish(string, []byte) {}
func (NoopRelay) Close()                 {}
