package source

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/errors"
)

// Mongo reads event records from a MongoDB collection. Documents use the
// same field names as [JSONFile] records, with startTime and endTime stored
// as BSON dates.
type Mongo struct {
	coll     *mongo.Collection
	client   *mongo.Client
	defaults calendar.SourceHint
}

// MongoOptions configure [OpenMongo].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	Defaults   calendar.SourceHint
}

// OpenMongo connects to the server and verifies it with a ping.
// Close releases the connection.
func OpenMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	if opts.URI == "" || opts.Database == "" || opts.Collection == "" {
		return nil, errors.New(errors.ErrCodeInvalidSource, "mongo source needs uri, database and collection")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongo")
	}
	m := NewMongo(client.Database(opts.Database).Collection(opts.Collection), opts.Defaults)
	m.client = client
	return m, nil
}

// NewMongo wraps an existing collection. Close is then a no-op.
func NewMongo(coll *mongo.Collection, defaults calendar.SourceHint) *Mongo {
	return &Mongo{coll: coll, defaults: defaults}
}

func (m *Mongo) Events(ctx context.Context, w Window) ([]calendar.Event, error) {
	cur, err := m.coll.Find(ctx, windowFilter(w), options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "query events")
	}
	var docs []mongoRecord
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "decode events")
	}

	evs := make([]calendar.Event, 0, len(docs))
	for _, d := range docs {
		evs = append(evs, d.event(m.defaults))
	}
	return calendar.WithIDs(evs), nil
}

// Close disconnects a client opened by [OpenMongo].
func (m *Mongo) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// windowFilter selects documents whose [startTime, endTime) overlaps w.
// Zero-length documents starting inside w match too.
func windowFilter(w Window) bson.M {
	return bson.M{
		"startTime": bson.M{"$lt": w.End},
		"$or": bson.A{
			bson.M{"endTime": bson.M{"$gt": w.Start}},
			bson.M{"startTime": bson.M{"$gte": w.Start}},
		},
	}
}

type mongoRecord struct {
	ObjectID    primitive.ObjectID `bson:"_id,omitempty"`
	ID          string             `bson:"id,omitempty"`
	Title       string             `bson:"title"`
	StartTime   time.Time          `bson:"startTime"`
	EndTime     time.Time          `bson:"endTime"`
	Source      string             `bson:"source,omitempty"`
	CalendarID  string             `bson:"calendarId,omitempty"`
	Holiday     bool               `bson:"holiday,omitempty"`
	AllDay      bool               `bson:"allDay,omitempty"`
	Notes       []string           `bson:"notes,omitempty"`
	ActionItems []string           `bson:"actionItems,omitempty"`
}

func (r mongoRecord) event(defaults calendar.SourceHint) calendar.Event {
	id := r.ID
	if id == "" && !r.ObjectID.IsZero() {
		id = r.ObjectID.Hex()
	}
	hint := calendar.SourceHint{Kind: r.Source, CalendarID: r.CalendarID, Holiday: r.Holiday || defaults.Holiday}
	if hint.Kind == "" {
		hint.Kind = defaults.Kind
	}
	if hint.CalendarID == "" {
		hint.CalendarID = defaults.CalendarID
	}
	end := r.EndTime
	if end.IsZero() {
		end = r.StartTime
	}
	return calendar.Event{
		ID:     id,
		Title:  r.Title,
		Start:  r.StartTime,
		End:    end,
		Source: hint,
		Notes:  append(append([]string(nil), r.Notes...), r.ActionItems...),
		AllDay: r.AllDay,
	}
}
