// Package diagnostics records operation failures with the detail that is
// never shown to customers: status codes, backend messages, error text.
package diagnostics

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event is one diagnostic record. Phone numbers are stored as fingerprints.
type Event struct {
	Action    string    `bson:"action" json:"action"`
	Kind      string    `bson:"kind" json:"kind"`
	SessionID string    `bson:"session_id" json:"session_id"`
	RequestID string    `bson:"request_id,omitempty" json:"request_id,omitempty"`
	PhoneHash string    `bson:"phone_hash,omitempty" json:"phone_hash,omitempty"`
	Detail    string    `bson:"detail" json:"detail"`
	At        time.Time `bson:"at" json:"at"`
}

type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// LogRecorder writes events to a structured logger.
type LogRecorder struct {
	log *slog.Logger
}

func NewLogRecorder(log *slog.Logger) *LogRecorder {
	return &LogRecorder{log: log}
}

func (r *LogRecorder) Record(ctx context.Context, ev Event) {
	r.log.LogAttrs(ctx, slog.LevelError, "operation failed",
		slog.String("action", ev.Action),
		slog.String("kind", ev.Kind),
		slog.String("session_id", ev.SessionID),
		slog.String("request_id", ev.RequestID),
		slog.String("phone_hash", ev.PhoneHash),
		slog.String("detail", ev.Detail),
	)
}

// inserter is the part of *mongo.Collection the journal needs.
type inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoRecorder logs every event and also appends it to a collection.
// A failed insert is logged and otherwise ignored.
type MongoRecorder struct {
	coll    inserter
	log     *slog.Logger
	timeout time.Duration
}

func NewMongoRecorder(coll inserter, log *slog.Logger, timeout time.Duration) *MongoRecorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MongoRecorder{coll: coll, log: log, timeout: timeout}
}

func (r *MongoRecorder) Record(ctx context.Context, ev Event) {
	NewLogRecorder(r.log).Record(ctx, ev)

	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, ev); err != nil {
		r.log.LogAttrs(ctx, slog.LevelWarn, "diagnostics journal insert failed",
			slog.String("action", "journal_insert"),
			slog.String("error", err.Error()),
		)
	}
}
