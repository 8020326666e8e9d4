package mongodb

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// sessionIDPrefix is the application prefix some producers attach to the
// session identifier before storing it.
const sessionIDPrefix = "S_"

type CandidateKind string

const (
	KindString     CandidateKind = "string"
	KindObjectID   CandidateKind = "objectId"
	KindUUID       CandidateKind = "uuid"
	KindUUIDBinary CandidateKind = "uuidBinary"
)

// Candidate is one representation the session identifier might be stored as.
type Candidate struct {
	Kind  CandidateKind
	Value interface{} // value placed into the query filter
	Text  string      // textual form, used by the deep scan and in diagnostics
}

// Describe renders the candidate for "not found" payloads and logs.
func (c Candidate) Describe() string {
	return fmt.Sprintf("%s:%s", c.Kind, c.Text)
}

type candidateSet struct {
	items []Candidate
	seen  map[string]bool
}

func (s *candidateSet) add(c Candidate) {
	key := string(c.Kind) + "\x00" + c.Text
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.items = append(s.items, c)
}

func (s *candidateSet) addString(value string) {
	s.add(Candidate{Kind: KindString, Value: value, Text: value})
}

// Candidates expands a session identifier into every storage representation
// it might have: the raw string, prefix-stripped and de-hyphenated variants,
// an ObjectID and, when the string is a UUID, its binary encodings. Parse
// failures mean "not this representation", never an error.
func Candidates(identifier string) []Candidate {
	trimmed := strings.TrimSpace(identifier)
	set := &candidateSet{seen: make(map[string]bool)}

	// The original string always comes first.
	set.addString(trimmed)

	if strings.HasPrefix(trimmed, sessionIDPrefix) && len(trimmed) > len(sessionIDPrefix) {
		set.addString(trimmed[len(sessionIDPrefix):])
	}

	dehyphenated := strings.ReplaceAll(trimmed, "-", "")
	if dehyphenated != "" && dehyphenated != trimmed {
		set.addString(dehyphenated)
	}

	if strings.HasPrefix(trimmed, sessionIDPrefix) {
		stripped := strings.ReplaceAll(trimmed[len(sessionIDPrefix):], "-", "")
		if stripped != "" {
			set.addString(stripped)
		}
	}

	if oid, err := primitive.ObjectIDFromHex(trimmed); err == nil {
		set.add(Candidate{Kind: KindObjectID, Value: oid, Text: oid.Hex()})
	}

	if u, err := uuid.Parse(trimmed); err == nil {
		// Producers written against different driver generations store UUIDs
		// either with the standard subtype or the legacy one; query for both.
		set.add(Candidate{
			Kind:  KindUUID,
			Value: primitive.Binary{Subtype: 0x04, Data: u[:]},
			Text:  u.String(),
		})
		set.add(Candidate{
			Kind:  KindUUIDBinary,
			Value: primitive.Binary{Subtype: 0x03, Data: u[:]},
			Text:  u.String(),
		})
	}

	return set.items
}

func describeCandidates(candidates []Candidate) []string {
	described := make([]string, len(candidates))
	for i, c := range candidates {
		described[i] = c.Describe()
	}
	return described
}
