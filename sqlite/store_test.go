package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/asaidimu/go-umbra/core/persistence"
	"github.com/asaidimu/go-umbra/core/query"
	"github.com/asaidimu/go-umbra/core/schema"
	"github.com/asaidimu/go-umbra/core/shadow"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func openStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db, "users", nil)
	require.NoError(t, err)
	return store
}

func TestStore_InsertAndFind(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, schema.Document{
		"id": "u1", "name": "Alice", "age": 30, "active": true,
	}))
	require.NoError(t, store.Insert(ctx, schema.Document{
		"id": "u2", "name": "Bob", "age": 27, "active": false,
	}))

	tests := []struct {
		name       string
		conditions map[string]any
		limit      int
		wantIDs    []string
	}{
		{"no conditions returns everything", map[string]any{}, 0, []string{"u1", "u2"}},
		{"string equality", map[string]any{"name": "Alice"}, 0, []string{"u1"}},
		{"string equality is case sensitive", map[string]any{"name": "alice"}, 0, nil},
		{"numeric equality", map[string]any{"age": 27}, 0, []string{"u2"}},
		{"bool equality", map[string]any{"active": true}, 0, []string{"u1"}},
		{"multiple conditions", map[string]any{"name": "Alice", "age": 30}, 0, []string{"u1"}},
		{"no match", map[string]any{"name": "Carol"}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Find(ctx, tt.conditions, tt.limit)
			require.NoError(t, err)

			var ids []string
			for _, doc := range results {
				ids = append(ids, doc["id"].(string))
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
		})
	}

	t.Run("limit caps results", func(t *testing.T) {
		results, err := store.Find(ctx, nil, 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestStore_NumbersRoundTripAsFloat64(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, schema.Document{"id": "u1", "age": 30}))

	results, err := store.Find(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, float64(30), results[0]["age"])
}

func TestStore_Insert_RequiresID(t *testing.T) {
	store := openStore(t)

	err := store.Insert(context.Background(), schema.Document{"name": "Alice"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no string id")
}

func TestStore_Find_RejectsOperatorConditions(t *testing.T) {
	store := openStore(t)

	_, err := store.Find(context.Background(), map[string]any{"age": map[string]any{"gt": 18}}, 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "equality only")
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(nil, "users", nil)
	assert.Error(t, err)

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = NewStore(db, "", nil)
	assert.Error(t, err)
}

// TestStore_EndToEnd runs the full scenario through the collection layer:
// shadow installation, write-time sync, and read-time condition rewriting
// against a real SQLite database.
func TestStore_EndToEnd(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	s := schema.New("users", "1.0.0")
	require.NoError(t, s.AddField("id", &schema.FieldDefinition{Type: schema.FieldTypeString}))
	require.NoError(t, s.AddField("email", &schema.FieldDefinition{
		Type:     schema.FieldTypeString,
		Required: boolPtr(true),
		Options:  schema.FieldOptions{CaseInsensitive: true},
	}))
	require.NoError(t, s.AddField("username", &schema.FieldDefinition{
		Type:     schema.FieldTypeString,
		Required: boolPtr(true),
	}))
	require.NoError(t, shadow.Install(s, shadow.Options{Paths: "username"}))

	store, err := NewStore(db, "users", nil)
	require.NoError(t, err)

	collection, err := persistence.NewCollection(s, store, nil)
	require.NoError(t, err)

	ctx := context.Background()
	saved, err := collection.Save(ctx, schema.Document{"email": "A@B.com", "username": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", saved["__email"])
	assert.Equal(t, "bob", saved["__username"])

	found, err := collection.FindOne(ctx, query.New().Where("email", "A@B.COM"))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "A@B.com", found["email"])
	assert.Equal(t, "Bob", found["username"])

	results, err := collection.Find(ctx, query.New().Where("username", "BOB"))
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
