// Package persistence implements the collection layer: document writes and
// reads that run a schema's lifecycle hooks, validate against the schema,
// and emit typed events for observability.
package persistence

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/asaidimu/go-umbra/core/query"
	"github.com/asaidimu/go-umbra/core/schema"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Collection binds a schema to a document store. Writes run before-validate
// hooks and schema validation; reads run before-find hooks against the
// query's condition set before it reaches the store.
type Collection struct {
	schema        *schema.Schema
	store         Store
	validator     *schema.Validator
	bus           *events.TypedEventBus[Event]
	logger        *zap.Logger
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
}

// NewCollection creates a collection for the given schema and store. A nil
// logger falls back to a no-op logger.
func NewCollection(s *schema.Schema, store Store, logger *zap.Logger) (*Collection, error) {
	if s == nil {
		return nil, fmt.Errorf("collection schema cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("collection store cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}

	return &Collection{
		schema:        s,
		store:         store,
		validator:     schema.NewValidator(s),
		bus:           bus,
		logger:        logger,
		subscriptions: make(map[string]*SubscriptionInfo),
	}, nil
}

// Schema returns the schema this collection operates on.
func (c *Collection) Schema() *schema.Schema {
	return c.schema
}

func (c *Collection) emitEvent(event Event) {
	if c.bus != nil {
		c.bus.Emit(string(event.Type), event)
	}
}

// Save runs the before-validate hooks, applies field write options,
// validates, assigns an id when absent, and inserts the document. The
// document is mutated in place (hooks write derived fields into it) and
// returned. A hook error aborts the save for this one document.
func (c *Collection) Save(ctx context.Context, doc schema.Document) (schema.Document, error) {
	startTime := time.Now()
	c.emitEvent(createEvent(DocumentSaveStart, "save", c.schema.Name, doc, nil, nil, nil, nil, startTime))

	saved, issues, err := c.save(ctx, doc)
	if err != nil {
		errStr := err.Error()
		c.emitEvent(createEvent(DocumentSaveFailed, "save", c.schema.Name, doc, nil, nil, &errStr, issues, startTime))
		return nil, err
	}

	c.emitEvent(createEvent(DocumentSaveSuccess, "save", c.schema.Name, doc, saved, nil, nil, nil, startTime))
	return saved, nil
}

func (c *Collection) save(ctx context.Context, doc schema.Document) (schema.Document, []schema.Issue, error) {
	if doc == nil {
		return nil, nil, fmt.Errorf("cannot save a nil document")
	}

	if err := c.schema.RunDocumentHooks(ctx, schema.BeforeValidate, doc); err != nil {
		return nil, nil, fmt.Errorf("before-validate hook failed for collection %q: %w", c.schema.Name, err)
	}

	c.applyWriteOptions(doc)

	valid, issues := c.validator.Validate(doc, false)
	if !valid {
		return nil, issues, fmt.Errorf("document does not conform to schema %q: %d issue(s)", c.schema.Name, len(issues))
	}

	if _, ok := doc["id"]; !ok {
		doc["id"] = uuid.New().String()
	}

	if err := c.store.Insert(ctx, doc); err != nil {
		return nil, nil, fmt.Errorf("failed to insert document into collection %q: %w", c.schema.Name, err)
	}

	c.logger.Debug("saved document", zap.String("collection", c.schema.Name), zap.Any("id", doc["id"]))
	return doc, nil, nil
}

// applyWriteOptions enforces per-field write behavior, currently the
// lowercase-on-write flag for string values.
func (c *Collection) applyWriteOptions(doc schema.Document) {
	for _, path := range c.schema.Paths() {
		def := c.schema.Path(path)
		if !def.Options.Lowercase {
			continue
		}
		if value, ok := doc[path].(string); ok {
			doc[path] = strings.ToLower(value)
		}
	}
}

// Find runs the before-find hooks against the query's condition set, then
// fetches matching documents and applies the default projection. A hook
// error aborts the query.
func (c *Collection) Find(ctx context.Context, q *query.Query) ([]schema.Document, error) {
	return c.find(ctx, q, schema.BeforeFind, 0)
}

// FindOne is Find limited to a single document; it returns nil when nothing
// matches.
func (c *Collection) FindOne(ctx context.Context, q *query.Query) (schema.Document, error) {
	results, err := c.find(ctx, q, schema.BeforeFindOne, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (c *Collection) find(ctx context.Context, q *query.Query, event schema.HookEvent, limit int) ([]schema.Document, error) {
	startTime := time.Now()
	if q == nil {
		q = query.New()
	}
	if q.Conditions == nil {
		q.Conditions = make(map[string]any)
	}
	if limit == 0 {
		limit = q.Limit
	}

	c.emitEvent(createEvent(DocumentFindStart, "find", c.schema.Name, nil, nil, q.Conditions, nil, nil, startTime))

	results, err := c.runFind(ctx, q, event, limit)
	if err != nil {
		errStr := err.Error()
		c.emitEvent(createEvent(DocumentFindFailed, "find", c.schema.Name, nil, nil, q.Conditions, &errStr, nil, startTime))
		return nil, err
	}

	c.emitEvent(createEvent(DocumentFindSuccess, "find", c.schema.Name, nil, results, q.Conditions, nil, nil, startTime))
	return results, nil
}

func (c *Collection) runFind(ctx context.Context, q *query.Query, event schema.HookEvent, limit int) ([]schema.Document, error) {
	if err := c.schema.RunConditionHooks(ctx, event, q.Conditions); err != nil {
		return nil, fmt.Errorf("%s hook failed for collection %q: %w", event, c.schema.Name, err)
	}

	results, err := c.store.Find(ctx, q.Conditions, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %q: %w", c.schema.Name, err)
	}

	projected := make([]schema.Document, len(results))
	for i, doc := range results {
		projected[i] = c.applyProjection(doc, q.Fields)
	}
	return projected, nil
}

// applyProjection strips fields excluded from the default projection unless
// the query names them explicitly. Document keys with no schema definition
// pass through untouched.
func (c *Collection) applyProjection(doc schema.Document, include []string) schema.Document {
	requested := make(map[string]struct{}, len(include))
	for _, field := range include {
		requested[field] = struct{}{}
	}

	out := make(schema.Document, len(doc))
	for key, value := range doc {
		def := c.schema.Path(key)
		if def != nil && !def.Options.Selected() {
			if _, ok := requested[key]; !ok {
				continue
			}
		}
		out[key] = value
	}
	return out
}

// RegisterSubscription registers a callback for a collection event and
// returns an id for later unregistration.
func (c *Collection) RegisterSubscription(options RegisterSubscriptionOptions) string {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	unsubscribe := c.bus.Subscribe(string(options.Event), options.Callback)
	id := uuid.New().String()

	c.subscriptions[id] = &SubscriptionInfo{
		ID:          id,
		Event:       options.Event,
		Unsubscribe: unsubscribe,
		Label:       options.Label,
		Description: options.Description,
	}

	c.emitEvent(createEvent(SubscriptionRegister, "register_subscription", c.schema.Name,
		map[string]any{"event": options.Event}, map[string]any{"subscriptionId": id}, nil, nil, nil, time.Now()))

	return id
}

// UnregisterSubscription removes a subscription by id.
func (c *Collection) UnregisterSubscription(id string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if info, ok := c.subscriptions[id]; ok {
		info.Unsubscribe()
		delete(c.subscriptions, id)
		c.emitEvent(createEvent(SubscriptionUnregister, "unregister_subscription", c.schema.Name,
			map[string]any{"subscriptionId": id}, nil, nil, nil, nil, time.Now()))
	}
}

// Subscriptions returns the currently active subscriptions.
func (c *Collection) Subscriptions() []SubscriptionInfo {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	subs := make([]SubscriptionInfo, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		subs = append(subs, *sub)
	}
	return subs
}
