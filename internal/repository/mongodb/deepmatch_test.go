package mongodb

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDocumentContains(t *testing.T) {
	tests := []struct {
		name       string
		document   bson.D
		identifier string
		want       bool
	}{
		{
			name: "exact match nested in list inside map",
			document: bson.D{
				{Key: "meta", Value: bson.D{
					{Key: "ids", Value: bson.A{"other", "target-session"}},
				}},
			},
			identifier: "target-session",
			want:       true,
		},
		{
			name: "case-insensitive substring match",
			document: bson.D{
				{Key: "payload", Value: bson.D{
					{Key: "ref", Value: "prefix-TARGET-Session-suffix"},
				}},
			},
			identifier: "target-session",
			want:       true,
		},
		{
			name: "no match",
			document: bson.D{
				{Key: "payload", Value: bson.D{
					{Key: "ref", Value: "something else entirely"},
				}},
			},
			identifier: "target-session",
			want:       false,
		},
		{
			name: "numeric leaf does not match textual candidate",
			document: bson.D{
				{Key: "value", Value: int32(42)},
			},
			identifier: "42",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := Candidates(tt.identifier)
			if got := documentContains(tt.document, candidates); got != tt.want {
				t.Errorf("documentContains() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDocumentContainsObjectID(t *testing.T) {
	identifier := "507f1f77bcf86cd799439011"
	oid, err := primitive.ObjectIDFromHex(identifier)
	if err != nil {
		t.Fatalf("ObjectIDFromHex: %v", err)
	}

	document := bson.D{
		{Key: "refs", Value: bson.A{
			bson.D{{Key: "session", Value: oid}},
		}},
	}
	if !documentContains(document, Candidates(identifier)) {
		t.Error("ObjectID leaf should match the parsed candidate")
	}
}

func TestDocumentContainsUUIDBinary(t *testing.T) {
	identifier := "c1fd035b-4a2f-4097-a29c-8df0ad50c80c"
	candidates := Candidates(identifier)

	var stored primitive.Binary
	for _, c := range candidates {
		if c.Kind == KindUUID {
			stored = c.Value.(primitive.Binary)
		}
	}

	document := bson.D{{Key: "sid", Value: stored}}
	if !documentContains(document, candidates) {
		t.Error("UUID binary leaf should match the binary candidate")
	}
}
