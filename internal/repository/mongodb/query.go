package mongodb

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// DefaultSessionIDField is checked when no usable field names are configured.
const DefaultSessionIDField = "sessionId"

// NormalizeFields trims the configured field names and drops empties, falling
// back to the canonical field when nothing usable remains.
func NormalizeFields(fields []string) []string {
	var normalized []string
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	if len(normalized) == 0 {
		normalized = []string{DefaultSessionIDField}
	}
	return normalized
}

// BuildSessionQuery produces the equality/$or filter for the cross product of
// field names and candidate values. A single (field, candidate) pair stays a
// flat equality filter with no $or wrapper.
func BuildSessionQuery(fields []string, candidates []Candidate) bson.M {
	normalized := NormalizeFields(fields)

	if len(normalized) == 1 && len(candidates) == 1 {
		return bson.M{normalized[0]: candidates[0].Value}
	}

	clauses := make(bson.A, 0, len(normalized)*len(candidates))
	for _, field := range normalized {
		for _, candidate := range candidates {
			clauses = append(clauses, bson.M{field: candidate.Value})
		}
	}

	if len(clauses) == 1 {
		return clauses[0].(bson.M)
	}
	return bson.M{"$or": clauses}
}
