package rosbag

// Query is an immutable filter spec narrowing which messages a bag
// iterator yields. The zero value, also returned by NewQuery, matches
// every message in the bag.
//
// The topic and type dimensions are each built up independently with
// set-union semantics across calls, while each WithStartTime/WithEndTime
// call replaces the previous bound; the dimensions are then combined with
// set-intersection semantics, so WithTopics("/a").WithTypes("std_msgs/String")
// yields only messages that are both on topic "/a" and of that type.
type Query struct {
	topics    map[string]struct{}
	types     map[string]struct{}
	startTime Time
	endTime   Time
	haveStart bool
	haveEnd   bool
}

// NewQuery returns a query matching every message in a bag.
func NewQuery() Query {
	return Query{}
}

// WithTopics narrows the query to messages published on any of the
// given topics, in addition to any topics already selected.
func (q Query) WithTopics(topics ...string) Query {
	next := q.clone()
	if next.topics == nil {
		next.topics = make(map[string]struct{}, len(topics))
	}
	for _, t := range topics {
		next.topics[t] = struct{}{}
	}
	return next
}

// WithTypes narrows the query to messages of any of the given types, in
// addition to any types already selected.
func (q Query) WithTypes(types ...string) Query {
	next := q.clone()
	if next.types == nil {
		next.types = make(map[string]struct{}, len(types))
	}
	for _, t := range types {
		next.types[t] = struct{}{}
	}
	return next
}

// WithStartTime drops messages timestamped before t.
func (q Query) WithStartTime(t Time) Query {
	next := q.clone()
	next.startTime = t
	next.haveStart = true
	return next
}

// WithEndTime drops messages timestamped after t.
func (q Query) WithEndTime(t Time) Query {
	next := q.clone()
	next.endTime = t
	next.haveEnd = true
	return next
}

func (q Query) clone() Query {
	next := Query{
		startTime: q.startTime,
		endTime:   q.endTime,
		haveStart: q.haveStart,
		haveEnd:   q.haveEnd,
	}
	if q.topics != nil {
		next.topics = make(map[string]struct{}, len(q.topics))
		for t := range q.topics {
			next.topics[t] = struct{}{}
		}
	}
	if q.types != nil {
		next.types = make(map[string]struct{}, len(q.types))
		for t := range q.types {
			next.types[t] = struct{}{}
		}
	}
	return next
}

func (q Query) matchesTopic(topic string) bool {
	if q.topics == nil {
		return true
	}
	_, ok := q.topics[topic]
	return ok
}

func (q Query) matchesType(dataType string) bool {
	if q.types == nil {
		return true
	}
	_, ok := q.types[dataType]
	return ok
}

func (q Query) matchesTime(t Time) bool {
	if q.haveStart && t.Before(q.startTime) {
		return false
	}
	if q.haveEnd && t.After(q.endTime) {
		return false
	}
	return true
}

// selectedConnectionIDs resolves the query's topic and type dimensions
// against a bag's connection tables into the set of connection ids
// whose messages may pass: the union of ids for the selected topics,
// intersected with the union of ids for the selected types.
func (q Query) selectedConnectionIDs(bag *Bag) []ConnectionID {
	var fromTopics map[ConnectionID]struct{}
	if q.topics != nil {
		fromTopics = make(map[ConnectionID]struct{})
		for topic := range q.topics {
			for _, id := range bag.topicToConnIDs[topic] {
				fromTopics[id] = struct{}{}
			}
		}
	}

	var fromTypes map[ConnectionID]struct{}
	if q.types != nil {
		fromTypes = make(map[ConnectionID]struct{})
		for dataType := range q.types {
			for _, id := range bag.typeToConnIDs[dataType] {
				fromTypes[id] = struct{}{}
			}
		}
	}

	switch {
	case fromTopics == nil && fromTypes == nil:
		ids := make([]ConnectionID, 0, len(bag.connectionData))
		for id := range bag.connectionData {
			ids = append(ids, id)
		}
		return ids
	case fromTopics == nil:
		return setToSlice(fromTypes)
	case fromTypes == nil:
		return setToSlice(fromTopics)
	default:
		result := make([]ConnectionID, 0)
		for id := range fromTopics {
			if _, ok := fromTypes[id]; ok {
				result = append(result, id)
			}
		}
		return result
	}
}

func setToSlice(set map[ConnectionID]struct{}) []ConnectionID {
	result := make([]ConnectionID, 0, len(set))
	for id := range set {
		result = append(result, id)
	}
	return result
}
