package mongodb

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func stringCandidate(value string) Candidate {
	return Candidate{Kind: KindString, Value: value, Text: value}
}

func TestBuildSessionQuerySingleFieldSingleCandidate(t *testing.T) {
	query := BuildSessionQuery([]string{"sessionId"}, []Candidate{stringCandidate("session-123")})

	want := bson.M{"sessionId": "session-123"}
	if !reflect.DeepEqual(query, want) {
		t.Errorf("query = %v, want flat equality %v", query, want)
	}
}

func TestBuildSessionQueryMultipleFields(t *testing.T) {
	query := BuildSessionQuery(
		[]string{"sessionId", "session_id", " metadata.id "},
		[]Candidate{stringCandidate("session-123")},
	)

	want := bson.M{"$or": bson.A{
		bson.M{"sessionId": "session-123"},
		bson.M{"session_id": "session-123"},
		bson.M{"metadata.id": "session-123"},
	}}
	if !reflect.DeepEqual(query, want) {
		t.Errorf("query = %v, want %v", query, want)
	}
}

func TestBuildSessionQueryEmptyFieldsDefaultsToSessionId(t *testing.T) {
	query := BuildSessionQuery(nil, []Candidate{stringCandidate("session-123")})

	want := bson.M{"sessionId": "session-123"}
	if !reflect.DeepEqual(query, want) {
		t.Errorf("query = %v, want %v", query, want)
	}
}

func TestBuildSessionQueryBlankFieldsDefaultToSessionId(t *testing.T) {
	query := BuildSessionQuery([]string{"  ", ""}, []Candidate{stringCandidate("session-123")})

	want := bson.M{"sessionId": "session-123"}
	if !reflect.DeepEqual(query, want) {
		t.Errorf("query = %v, want %v", query, want)
	}
}

func TestBuildSessionQueryObjectIDCandidates(t *testing.T) {
	identifier := "507f1f77bcf86cd799439011"
	candidates := Candidates(identifier)
	query := BuildSessionQuery([]string{"sessionId"}, candidates)

	clauses, ok := query["$or"].(bson.A)
	if !ok {
		t.Fatalf("query = %v, want an $or of two clauses", query)
	}
	if len(clauses) != 2 {
		t.Fatalf("clause count = %d, want 2", len(clauses))
	}

	first := clauses[0].(bson.M)
	if first["sessionId"] != identifier {
		t.Errorf("first clause = %v, want string equality on %q", first, identifier)
	}
	second := clauses[1].(bson.M)
	oid, ok := second["sessionId"].(primitive.ObjectID)
	if !ok || oid.Hex() != identifier {
		t.Errorf("second clause = %v, want ObjectID equality on %q", second, identifier)
	}
}

func TestBuildSessionQueryCrossProduct(t *testing.T) {
	fields := []string{"sessionId", "session_id"}
	candidates := []Candidate{stringCandidate("a"), stringCandidate("b")}
	query := BuildSessionQuery(fields, candidates)

	clauses, ok := query["$or"].(bson.A)
	if !ok {
		t.Fatalf("query = %v, want an $or wrapper", query)
	}
	if len(clauses) != 4 {
		t.Fatalf("clause count = %d, want full cross product of 4", len(clauses))
	}

	// every (field, candidate) pair appears exactly once
	seen := make(map[string]int)
	for _, clause := range clauses {
		m := clause.(bson.M)
		for field, value := range m {
			seen[field+"="+value.(string)]++
		}
	}
	for _, field := range fields {
		for _, candidate := range candidates {
			key := field + "=" + candidate.Text
			if seen[key] != 1 {
				t.Errorf("pair %q appears %d times, want exactly once", key, seen[key])
			}
		}
	}
}
