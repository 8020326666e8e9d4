package mongodb

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"session-intelligence-be/internal/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const placeholderHeader = "Session record"

// documentFormatter turns a raw matched record into a structured,
// human-readable SessionDocument. Formatting is best-effort and never fails:
// every input shape has a defined output.
type documentFormatter struct {
	previewChars int // character limit for a single preview line
	previewItems int // how many events the preview describes before folding
}

func newDocumentFormatter(previewChars, previewItems int) *documentFormatter {
	if previewChars < 1 {
		previewChars = 1
	}
	if previewItems < 1 {
		previewItems = 1
	}
	return &documentFormatter{previewChars: previewChars, previewItems: previewItems}
}

// formattedDocument pairs the outward record with the keys ordering needs.
type formattedDocument struct {
	doc        entity.SessionDocument
	batchIndex *int
	orderID    string  // requestRid / rid / actionId, falling back to the store identity
	timestamp  float64 // numeric "t" field, 0 when absent or non-numeric
}

func (f *documentFormatter) Format(source string, raw bson.D) formattedDocument {
	batchIndex := coerceInt(lookupField(raw, "batchIndex"))
	requestRid := scalarText(firstField(raw, "requestRid", "rid"))
	actionID := scalarText(lookupField(raw, "actionId"))

	var totalEvents *int
	var preview []string
	hasEvents := false
	if data, ok := asDocument(lookupField(raw, "data")); ok {
		explicitTotal := coerceInt(lookupField(data, "total"))
		var inferred *int
		if events, present := lookupFieldOk(data, "events"); present {
			hasEvents = true
			preview, inferred = f.summarizeEvents(events)
		}
		if explicitTotal != nil {
			totalEvents = explicitTotal
		} else {
			totalEvents = inferred
		}
	}

	var headerParts []string
	if batchIndex != nil {
		headerParts = append(headerParts, fmt.Sprintf("Batch #%d", *batchIndex))
	}
	if requestRid != "" {
		headerParts = append(headerParts, "requestRid="+requestRid)
	}
	if actionID != "" {
		headerParts = append(headerParts, "actionId="+actionID)
	}
	if totalEvents != nil {
		headerParts = append(headerParts, fmt.Sprintf("%d event(s)", *totalEvents))
	}
	header := placeholderHeader
	if len(headerParts) > 0 {
		header = strings.Join(headerParts, " | ")
	}

	var body strings.Builder
	body.WriteString(header)
	if len(preview) > 0 {
		body.WriteString("\nKey events:")
		for _, line := range preview {
			body.WriteString("\n- ")
			body.WriteString(line)
		}
	}
	body.WriteString("\nDetails: ")
	body.WriteString(f.sanitizedDetails(raw, totalEvents, hasEvents))

	orderID := requestRid
	if orderID == "" {
		orderID = actionID
	}
	if orderID == "" {
		orderID = scalarText(lookupField(raw, "_id"))
	}

	timestamp := 0.0
	if t := coerceFloat(lookupField(raw, "t")); t != nil {
		timestamp = *t
	}

	return formattedDocument{
		doc: entity.SessionDocument{
			Source:       source,
			Content:      body.String(),
			BatchIndex:   batchIndex,
			TotalEvents:  totalEvents,
			EventPreview: preview,
		},
		batchIndex: batchIndex,
		orderID:    orderID,
		timestamp:  timestamp,
	}
}

// sanitizedDetails renders the record without the store identity and with the
// already-summarized event payload replaced by an omission marker, so the
// details line never duplicates bulk data.
func (f *documentFormatter) sanitizedDetails(raw bson.D, totalEvents *int, hasEvents bool) string {
	clean := make(bson.D, 0, len(raw))
	for _, elem := range raw {
		if elem.Key == "_id" {
			continue
		}
		if elem.Key == "data" && hasEvents {
			if data, ok := asDocument(elem.Value); ok {
				marker := "<omitted events>"
				if totalEvents != nil {
					marker = fmt.Sprintf("<omitted %d event(s)>", *totalEvents)
				}
				sanitized := make(bson.D, 0, len(data))
				for _, dataElem := range data {
					if dataElem.Key == "events" {
						sanitized = append(sanitized, bson.E{Key: "events", Value: marker})
					} else {
						sanitized = append(sanitized, dataElem)
					}
				}
				clean = append(clean, bson.E{Key: "data", Value: sanitized})
				continue
			}
		}
		clean = append(clean, elem)
	}
	return stringifyDocument(clean)
}

// summarizeEvents condenses an embedded event payload of unknown shape into
// preview lines plus an inferred event count. Serialized payloads are parsed
// and recursed into; a payload whose parse yields the same text is previewed
// as-is so recursion always terminates.
func (f *documentFormatter) summarizeEvents(events interface{}) ([]string, *int) {
	switch v := events.(type) {
	case nil:
		return nil, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, nil
		}
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
			var parsed interface{}
			if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
				if same, ok := parsed.(string); !ok || same != trimmed {
					return f.summarizeEvents(parsed)
				}
			}
		}
		return []string{f.truncate(trimmed)}, nil
	case bson.D:
		return []string{f.describeEvent(v)}, intPtr(1)
	case bson.M:
		return []string{f.describeEvent(v)}, intPtr(1)
	case map[string]interface{}:
		return []string{f.describeEvent(v)}, intPtr(1)
	case bson.A:
		return f.summarizeSequence(v)
	case []interface{}:
		return f.summarizeSequence(v)
	default:
		return []string{f.truncate(formatScalar(v))}, nil
	}
}

func (f *documentFormatter) summarizeSequence(items []interface{}) ([]string, *int) {
	total := len(items)
	shown := total
	if shown > f.previewItems {
		shown = f.previewItems
	}
	lines := make([]string, 0, shown+1)
	for _, item := range items[:shown] {
		lines = append(lines, f.describeEvent(item))
	}
	if remaining := total - shown; remaining > 0 {
		lines = append(lines, fmt.Sprintf("... %d more event(s)", remaining))
	}
	return lines, intPtr(total)
}

// describeEvent renders one event as "key=value" pairs of its scalar fields,
// falling back to a truncated serialization when nothing scalar exists.
func (f *documentFormatter) describeEvent(event interface{}) string {
	switch v := event.(type) {
	case bson.D:
		var pairs []string
		for _, elem := range v {
			if isScalar(elem.Value) {
				pairs = append(pairs, elem.Key+"="+formatScalar(elem.Value))
			}
		}
		if len(pairs) > 0 {
			return strings.Join(pairs, ", ")
		}
	case bson.M:
		if line, ok := f.describeEventMap(v); ok {
			return line
		}
	case map[string]interface{}:
		if line, ok := f.describeEventMap(v); ok {
			return line
		}
	case string:
		return f.truncate(v)
	}
	return f.truncate(stringify(event))
}

// describeEventMap walks map events in sorted key order; unlike bson.D the
// stored field order is already gone.
func (f *documentFormatter) describeEventMap(event map[string]interface{}) (string, bool) {
	keys := make([]string, 0, len(event))
	for key := range event {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var pairs []string
	for _, key := range keys {
		if isScalar(event[key]) {
			pairs = append(pairs, key+"="+formatScalar(event[key]))
		}
	}
	if len(pairs) == 0 {
		return "", false
	}
	return strings.Join(pairs, ", "), true
}

// truncate cuts a line at the preview character limit, keeping one slot for
// the ellipsis.
func (f *documentFormatter) truncate(s string) string {
	limit := f.previewChars
	if limit < 1 {
		limit = 1
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// sortFormattedDocuments orders documents chronologically: known batch
// indexes first (by index, then request id), then the remainder by their
// numeric timestamp. The sort is a pure post-pass over document content, so
// lookup completion order never shows.
func sortFormattedDocuments(docs []formattedDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if (a.batchIndex != nil) != (b.batchIndex != nil) {
			return a.batchIndex != nil
		}
		if a.batchIndex != nil {
			if *a.batchIndex != *b.batchIndex {
				return *a.batchIndex < *b.batchIndex
			}
			return a.orderID < b.orderID
		}
		if a.timestamp != b.timestamp {
			return a.timestamp < b.timestamp
		}
		return a.orderID < b.orderID
	})
}

// --- bson.D field helpers ---

func lookupField(doc bson.D, key string) interface{} {
	value, _ := lookupFieldOk(doc, key)
	return value
}

func lookupFieldOk(doc bson.D, key string) (interface{}, bool) {
	for _, elem := range doc {
		if elem.Key == key {
			return elem.Value, true
		}
	}
	return nil, false
}

func firstField(doc bson.D, keys ...string) interface{} {
	for _, key := range keys {
		if value, ok := lookupFieldOk(doc, key); ok && value != nil {
			return value
		}
	}
	return nil
}

func asDocument(value interface{}) (bson.D, bool) {
	switch v := value.(type) {
	case bson.D:
		return v, true
	case bson.M:
		// Embedded documents decode as bson.D here, but accept map form too.
		doc := make(bson.D, 0, len(v))
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			doc = append(doc, bson.E{Key: key, Value: v[key]})
		}
		return doc, true
	default:
		return nil, false
	}
}

// --- scalar coercion and rendering ---

// coerceInt implements the batch/total integer coercion: booleans never
// count, numeric strings parse, floats truncate.
func coerceInt(value interface{}) *int {
	switch v := value.(type) {
	case int:
		return intPtr(v)
	case int32:
		return intPtr(int(v))
	case int64:
		return intPtr(int(v))
	case float64:
		return intPtr(int(v))
	case float32:
		return intPtr(int(v))
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return intPtr(n)
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return intPtr(int(f))
		}
		return nil
	default:
		return nil
	}
}

func coerceFloat(value interface{}) *float64 {
	switch v := value.(type) {
	case int:
		f := float64(v)
		return &f
	case int32:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	case float32:
		f := float64(v)
		return &f
	case float64:
		return &v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

func isScalar(value interface{}) bool {
	switch value.(type) {
	case bson.D, bson.M, map[string]interface{}, bson.A, []interface{}:
		return false
	default:
		return true
	}
}

func scalarText(value interface{}) string {
	if value == nil || !isScalar(value) {
		return ""
	}
	return formatScalar(value)
}

func formatScalar(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time().UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// stringifyDocument renders a document as relaxed extended JSON, matching how
// the rest of the content line is produced.
func stringifyDocument(doc bson.D) string {
	out, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return fmt.Sprintf("%v", doc)
	}
	return string(out)
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case bson.D:
		return stringifyDocument(v)
	case bson.M:
		if out, err := bson.MarshalExtJSON(v, false, false); err == nil {
			return string(out)
		}
	}
	if out, err := json.Marshal(value); err == nil {
		return string(out)
	}
	return fmt.Sprintf("%v", value)
}

func intPtr(n int) *int {
	return &n
}
