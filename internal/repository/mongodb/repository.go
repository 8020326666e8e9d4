package mongodb

import (
	"context"
	"strings"

	"session-intelligence-be/internal/config"
	"session-intelligence-be/internal/entity"
	"session-intelligence-be/internal/pkg/logger"
	"session-intelligence-be/internal/repository/contract"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"
)

const moduleName = "session_repository"

// SessionRepository aggregates session documents from every collection of a
// schema-less MongoDB database. Collections are discovered dynamically; each
// one gets a structured query and, when that finds nothing, a bounded deep
// scan. A failure in one collection never aborts the others.
type SessionRepository struct {
	client          *mongo.Client
	db              *mongo.Database
	fields          []string
	allowList       []string
	fallbackEnabled bool
	fallbackLimit   int
	concurrency     int
	formatter       *documentFormatter
	log             logger.ILogger
}

var _ contract.ISessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(client *mongo.Client, database string, cfg config.LookupConfig, log logger.ILogger) *SessionRepository {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &SessionRepository{
		client:          client,
		db:              client.Database(database),
		fields:          NormalizeFields(cfg.SessionIDFields),
		allowList:       cfg.Collections,
		fallbackEnabled: cfg.EnableFallbackScan,
		fallbackLimit:   cfg.FallbackScanLimit,
		concurrency:     concurrency,
		formatter:       newDocumentFormatter(cfg.EventPreviewChars, cfg.EventPreviewItems),
		log:             log,
	}
}

// collectionOutcome is what searching one collection produced.
type collectionOutcome struct {
	name     string
	raws     []bson.D
	matched  bool
	fallback bool
	scanned  int // documents the deep scan inspected
}

func (r *SessionRepository) FetchSessionDocuments(ctx context.Context, sessionID string) (*contract.SessionLookupResult, error) {
	candidates := Candidates(sessionID)
	query := BuildSessionQuery(r.fields, candidates)

	result := &contract.SessionLookupResult{
		SessionID:       sessionID,
		SessionIDFields: r.fields,
		CandidateValues: describeCandidates(candidates),
	}

	// Liveness is informational only; a store that is up-but-partitioned for
	// one collection should not block the others.
	result.ConnectionOK = r.client.Ping(ctx, readpref.Primary()) == nil

	collections := r.selectCollections(ctx)
	result.ScannedCollections = collections
	if len(r.allowList) > 0 {
		result.RequestedCollections = r.allowList
	} else {
		result.RequestedCollections = collections
	}

	// Per-collection work is independent; outcomes land in an indexed slice
	// so completion order cannot influence the final document ordering.
	outcomes := make([]collectionOutcome, len(collections))
	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for i, name := range collections {
		g.Go(func() error {
			outcomes[i] = r.searchCollection(ctx, name, query, candidates)
			return nil
		})
	}
	_ = g.Wait()

	var formatted []formattedDocument
	for _, outcome := range outcomes {
		if outcome.matched {
			result.MatchedCollections = append(result.MatchedCollections, outcome.name)
		}
		if outcome.fallback {
			result.FallbackCollections = append(result.FallbackCollections, outcome.name)
		}
		result.FallbackDocumentsScanned += outcome.scanned
		for _, raw := range outcome.raws {
			formatted = append(formatted, r.formatter.Format(outcome.name, raw))
		}
	}

	sortFormattedDocuments(formatted)
	documents := make([]entity.SessionDocument, 0, len(formatted))
	for _, f := range formatted {
		documents = append(documents, f.doc)
	}
	result.Documents = documents

	if len(documents) == 0 {
		result.CollectionSamples = r.collectSamples(ctx, collections)
	}

	return result, nil
}

// searchCollection runs the structured query and, when it matches nothing,
// the bounded deep scan. Errors are contained here: the collection simply
// contributes no matches.
func (r *SessionRepository) searchCollection(ctx context.Context, name string, query bson.M, candidates []Candidate) collectionOutcome {
	outcome := collectionOutcome{name: name}
	collection := r.db.Collection(name)

	raws, err := r.runQuery(ctx, collection, query)
	if err != nil {
		r.log.Warn(moduleName, "structured query failed", map[string]interface{}{
			"collection": name,
			"error":      err.Error(),
		})
	}
	if len(raws) > 0 {
		outcome.raws = raws
		outcome.matched = true
		return outcome
	}

	if !r.fallbackEnabled {
		return outcome
	}

	matches, inspected, err := r.fallbackScan(ctx, collection, candidates)
	outcome.scanned = inspected
	if err != nil {
		r.log.Warn(moduleName, "fallback scan failed", map[string]interface{}{
			"collection": name,
			"error":      err.Error(),
		})
	}
	if len(matches) > 0 {
		outcome.raws = matches
		outcome.matched = true
		outcome.fallback = true
	}
	return outcome
}

func (r *SessionRepository) runQuery(ctx context.Context, collection *mongo.Collection, query bson.M) ([]bson.D, error) {
	cursor, err := collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var documents []bson.D
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		documents = append(documents, doc)
	}
	return documents, cursor.Err()
}

// fallbackScan tests up to fallbackLimit documents with the deep-match
// predicate. The inspected count is diagnostic, not a correctness input.
func (r *SessionRepository) fallbackScan(ctx context.Context, collection *mongo.Collection, candidates []Candidate) ([]bson.D, int, error) {
	cursor, err := collection.Find(ctx, bson.D{}, options.Find().SetLimit(int64(r.fallbackLimit)))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var matches []bson.D
	inspected := 0
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		inspected++
		if documentContains(doc, candidates) {
			matches = append(matches, doc)
		}
	}
	return matches, inspected, cursor.Err()
}

// selectCollections determines which collections to search: discovered names
// minus system ones, intersected with the allow-list when one is configured.
// A listing failure degrades to the allow-list rather than failing the lookup.
func (r *SessionRepository) selectCollections(ctx context.Context) []string {
	names, err := r.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		r.log.Warn(moduleName, "collection listing failed, degrading to configured allow-list", map[string]interface{}{
			"error": err.Error(),
		})
		return append([]string(nil), r.allowList...)
	}
	return selectFromDiscovered(names, r.allowList, r.log)
}

func selectFromDiscovered(discovered, allowList []string, log logger.ILogger) []string {
	var available []string
	for _, name := range discovered {
		// system collections do not store business data
		if strings.HasPrefix(name, "system.") {
			continue
		}
		available = append(available, name)
	}

	if len(allowList) == 0 {
		return available
	}

	known := make(map[string]bool, len(available))
	for _, name := range available {
		known[name] = true
	}
	var selected []string
	for _, name := range allowList {
		if known[name] {
			selected = append(selected, name)
		} else {
			log.Warn(moduleName, "configured collection does not exist", map[string]interface{}{
				"collection": name,
			})
		}
	}
	return selected
}

// collectSamples gathers, per collection, the estimated document count and
// the full text of every document. Only runs on a total miss, purely so the
// boundary layer can report a rich "not found".
func (r *SessionRepository) collectSamples(ctx context.Context, collections []string) []contract.CollectionSample {
	samples := make([]contract.CollectionSample, 0, len(collections))
	for _, name := range collections {
		collection := r.db.Collection(name)
		sample := contract.CollectionSample{Collection: name}

		if count, err := collection.EstimatedDocumentCount(ctx); err == nil {
			sample.EstimatedCount = count
		} else {
			r.log.Warn(moduleName, "document count estimation failed", map[string]interface{}{
				"collection": name,
				"error":      err.Error(),
			})
		}

		cursor, err := collection.Find(ctx, bson.D{})
		if err != nil {
			r.log.Warn(moduleName, "diagnostic sampling failed", map[string]interface{}{
				"collection": name,
				"error":      err.Error(),
			})
			samples = append(samples, sample)
			continue
		}
		for cursor.Next(ctx) {
			var doc bson.D
			if err := cursor.Decode(&doc); err != nil {
				continue
			}
			sample.Documents = append(sample.Documents, stringifyDocument(doc))
		}
		cursor.Close(ctx)

		samples = append(samples, sample)
	}
	return samples
}
