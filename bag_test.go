package rosbag

import (
	"errors"
	"strconv"
	"testing"
)

func mustOpenEagerFromBytes(t *testing.T, data []byte) *Bag {
	t.Helper()
	bag, err := OpenEagerFromBytes(data)
	if err != nil {
		t.Fatalf("OpenEagerFromBytes: %v", err)
	}
	return bag
}

func countMessages(t *testing.T, bag *Bag, q Query) int {
	t.Helper()
	it, err := bag.ReadMessages(q)
	if err != nil {
		t.Fatalf("ReadMessages: %v", err)
	}
	count := 0
	for {
		_, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		count++
	}
	return count
}

func TestReadMessagesCountsAllTopicsAndTypes(t *testing.T) {
	bag := mustOpenEagerFromBytes(t, buildSampleBag(false))

	testCases := []struct {
		name  string
		query Query
		want  int
	}{
		{"all", NewQuery(), 300},
		{"single topic", NewQuery().WithTopics("/chatter"), 100},
		{"two types", NewQuery().WithTypes("std_msgs/Time", "std_msgs/String"), 200},
		{"topic and type intersection is empty", NewQuery().WithTopics("/chatter").WithTypes("std_msgs/Time"), 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := countMessages(t, bag, tc.query); got != tc.want {
				t.Fatalf("got %d messages, want %d", got, tc.want)
			}
		})
	}
}

func TestReadMessagesChatterPayloadsInOrder(t *testing.T) {
	bag := mustOpenEagerFromBytes(t, buildSampleBag(false))

	it, err := bag.ReadMessages(NewQuery().WithTopics("/chatter"))
	if err != nil {
		t.Fatalf("ReadMessages: %v", err)
	}

	for i := 0; i < testMessagesPerTopic; i++ {
		view, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next at i=%d: %v", i, err)
		}
		if !ok {
			t.Fatalf("iterator exhausted early at i=%d", i)
		}
		if view.Topic() != "/chatter" {
			t.Fatalf("message %d: topic = %q, want /chatter", i, view.Topic())
		}

		msg, err := Instantiate(view, stringDeserializer{})
		if err != nil {
			t.Fatalf("Instantiate at i=%d: %v", i, err)
		}
		want := "foo_" + strconv.Itoa(i)
		if msg.Data != want {
			t.Fatalf("message %d: data = %q, want %q", i, msg.Data, want)
		}
	}

	if _, ok, _ := it.Next(); ok {
		t.Fatal("expected iterator to be exhausted after 100 /chatter messages")
	}
}

func TestWrongTypeInstantiationReturnsDeserializationError(t *testing.T) {
	bag := mustOpenEagerFromBytes(t, buildSampleBag(false))

	it, err := bag.ReadMessages(NewQuery().WithTopics("/chatter"))
	if err != nil {
		t.Fatalf("ReadMessages: %v", err)
	}
	view, ok, err := it.Next()
	if err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}

	_, err = Instantiate(view, timeDeserializer{})
	if err == nil {
		t.Fatal("expected an error instantiating a /chatter message as std_msgs/Time")
	}
	var rbErr *Error
	if !errors.As(err, &rbErr) {
		t.Fatalf("error is not *rosbag.Error: %v", err)
	}
	if rbErr.Kind != KindDeserialization {
		t.Fatalf("Kind = %s, want %s", rbErr.Kind, KindDeserialization)
	}
}

func TestMagicFailure(t *testing.T) {
	_, err := OpenFromBytes([]byte("not a bag\n\n\n\n"))
	if err == nil {
		t.Fatal("expected an error")
	}
	var rbErr *Error
	if !errors.As(err, &rbErr) {
		t.Fatalf("error is not *rosbag.Error: %v", err)
	}
	if rbErr.Kind != KindNotARosbag {
		t.Fatalf("Kind = %s, want %s", rbErr.Kind, KindNotARosbag)
	}
}

func TestMetadataOnlyOpenDisallowsReadMessages(t *testing.T) {
	data := buildSampleBag(false)
	bag, err := OpenFromBytes(data)
	if err != nil {
		t.Fatalf("OpenFromBytes: %v", err)
	}

	if got := bag.MessageCount(); got != 300 {
		t.Fatalf("MessageCount() = %d, want 300", got)
	}

	wantTopics := map[string]bool{"/chatter": true, "/array": true, "/time": true}
	gotTopics := bag.Topics()
	if len(gotTopics) != len(wantTopics) {
		t.Fatalf("Topics() = %v, want keys of %v", gotTopics, wantTopics)
	}
	for _, topic := range gotTopics {
		if !wantTopics[topic] {
			t.Fatalf("unexpected topic %q", topic)
		}
	}

	_, err = bag.ReadMessages(NewQuery())
	if err == nil {
		t.Fatal("expected ReadMessages to fail on a metadata-only bag")
	}
	var rbErr *Error
	if !errors.As(err, &rbErr) {
		t.Fatalf("error is not *rosbag.Error: %v", err)
	}
	if rbErr.Kind != KindUnsupportedMode {
		t.Fatalf("Kind = %s, want %s", rbErr.Kind, KindUnsupportedMode)
	}
}

func TestReadMessagesTimeWindow(t *testing.T) {
	bag := mustOpenEagerFromBytes(t, buildSampleBag(false))

	q := NewQuery().
		WithTopics("/chatter").
		WithStartTime(Time{Secs: 5}).
		WithEndTime(Time{Secs: 10})

	if got := countMessages(t, bag, q); got != 6 {
		t.Fatalf("got %d messages in [5,10], want 6", got)
	}
}
