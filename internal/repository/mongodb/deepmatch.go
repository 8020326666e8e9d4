package mongodb

import (
	"bytes"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// documentContains walks the document breadth-first and reports whether any
// scalar leaf matches a candidate, either by strict value equality or, for
// textual leaves, by case-insensitive containment of the candidate's textual
// form. Deliberately permissive: unknown schemas are tolerated at the cost of
// false positives, which is why callers flag these matches as fallback-only.
func documentContains(document bson.D, candidates []Candidate) bool {
	queue := []interface{}{document}
	for len(queue) > 0 {
		value := queue[0]
		queue = queue[1:]

		switch v := value.(type) {
		case bson.D:
			for _, elem := range v {
				queue = append(queue, elem.Value)
			}
		case bson.M:
			for _, item := range v {
				queue = append(queue, item)
			}
		case map[string]interface{}:
			for _, item := range v {
				queue = append(queue, item)
			}
		case bson.A:
			queue = append(queue, v...)
		case []interface{}:
			queue = append(queue, v...)
		default:
			if leafMatches(v, candidates) {
				return true
			}
		}
	}
	return false
}

func leafMatches(leaf interface{}, candidates []Candidate) bool {
	for _, candidate := range candidates {
		if valuesEqual(leaf, candidate.Value) {
			return true
		}
	}

	text, ok := leafText(leaf)
	if !ok {
		return false
	}
	lowered := strings.ToLower(text)
	for _, candidate := range candidates {
		needle := strings.ToLower(candidate.Text)
		if needle == "" {
			continue
		}
		if strings.Contains(lowered, needle) {
			return true
		}
	}
	return false
}

func valuesEqual(leaf, candidate interface{}) bool {
	switch c := candidate.(type) {
	case string:
		s, ok := leaf.(string)
		return ok && s == c
	case primitive.ObjectID:
		oid, ok := leaf.(primitive.ObjectID)
		return ok && oid == c
	case primitive.Binary:
		b, ok := leaf.(primitive.Binary)
		return ok && b.Subtype == c.Subtype && bytes.Equal(b.Data, c.Data)
	default:
		return reflect.DeepEqual(leaf, candidate)
	}
}

// leafText extracts the textual form of text/byte leaves; every other scalar
// type only participates in strict equality.
func leafText(leaf interface{}) (string, bool) {
	switch v := leaf.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case primitive.Binary:
		return string(v.Data), true
	default:
		return "", false
	}
}
