package source

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/matzehuels/timegrid/pkg/calendar"
)

func TestWindowFilter(t *testing.T) {
	w := week()
	f := windowFilter(w)

	start, ok := f["startTime"].(bson.M)
	if !ok || start["$lt"] != w.End {
		t.Errorf("startTime clause = %v", f["startTime"])
	}
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("$or clause = %v", f["$or"])
	}
	if end := or[0].(bson.M)["endTime"].(bson.M); end["$gt"] != w.Start {
		t.Errorf("endTime clause = %v", end)
	}
}

func TestMongoRecordEvent(t *testing.T) {
	oid := primitive.NewObjectID()
	r := mongoRecord{
		ObjectID:    oid,
		Title:       "Appointment",
		StartTime:   at(0, 9, 0),
		Notes:       []string{"intake"},
		ActionItems: []string{"call back"},
	}
	ev := r.event(calendar.SourceHint{Kind: calendar.KindSimplePractice})
	if ev.ID != oid.Hex() {
		t.Errorf("ID = %s, want object id", ev.ID)
	}
	if !ev.End.Equal(ev.Start) {
		t.Errorf("missing end not defaulted: %v", ev.End)
	}
	if ev.Source.Kind != calendar.KindSimplePractice || len(ev.Notes) != 2 {
		t.Errorf("event = %+v", ev)
	}

	r.ID = "sp-42"
	if got := r.event(calendar.SourceHint{}).ID; got != "sp-42" {
		t.Errorf("explicit id = %s", got)
	}
}

// TestMongoEvents runs against a real server when TIMEGRID_TEST_MONGO holds
// a connection URI.
func TestMongoEvents(t *testing.T) {
	uri := os.Getenv("TIMEGRID_TEST_MONGO")
	if uri == "" {
		t.Skip("TIMEGRID_TEST_MONGO not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	m, err := OpenMongo(ctx, MongoOptions{URI: uri, Database: "timegrid_test", Collection: t.Name()})
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	defer m.coll.Drop(ctx)

	_, err = m.coll.InsertMany(ctx, []any{
		bson.M{"id": "in", "title": "Inside", "startTime": at(1, 9, 0), "endTime": at(1, 10, 0)},
		bson.M{"id": "span", "title": "Spanning", "startTime": at(-1, 23, 0), "endTime": at(0, 1, 0)},
		bson.M{"id": "out", "title": "Outside", "startTime": at(8, 9, 0), "endTime": at(8, 10, 0)},
	})
	if err != nil {
		t.Fatal(err)
	}

	evs, err := m.Events(ctx, week())
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 2 || evs[0].ID != "span" || evs[1].ID != "in" {
		t.Errorf("Events() = %+v", evs)
	}
}
