package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/asaidimu/go-umbra/core/persistence"
	"github.com/asaidimu/go-umbra/core/query"
	"github.com/asaidimu/go-umbra/core/schema"
	"github.com/asaidimu/go-umbra/core/shadow"
	"github.com/asaidimu/go-umbra/sqlite"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"
)

const dbFileName = "users.db"

func boolPtr(b bool) *bool { return &b }

func main() {
	// Start fresh: remove the database file if it already exists.
	if err := os.Remove(dbFileName); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing database file %s: %v", dbFileName, err)
	}

	db, err := sql.Open("sqlite3", dbFileName)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}
	defer func() {
		if cErr := db.Close(); cErr != nil {
			log.Printf("Error closing database connection: %v", cErr)
		}
	}()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Define the users schema. The email field requests a case-insensitive
	// shadow through its own options; username is designated via Paths.
	users := schema.New("users", "1.0.0")
	fields := []struct {
		name string
		def  *schema.FieldDefinition
	}{
		{"id", &schema.FieldDefinition{Type: schema.FieldTypeString}},
		{"name", &schema.FieldDefinition{Type: schema.FieldTypeString, Required: boolPtr(true)}},
		{"email", &schema.FieldDefinition{
			Type:     schema.FieldTypeString,
			Required: boolPtr(true),
			Unique:   boolPtr(true),
			Options:  schema.FieldOptions{CaseInsensitive: true},
		}},
		{"username", &schema.FieldDefinition{Type: schema.FieldTypeString, Required: boolPtr(true)}},
		{"age", &schema.FieldDefinition{Type: schema.FieldTypeInteger}},
	}
	for _, f := range fields {
		if err := users.AddField(f.name, f.def); err != nil {
			log.Fatalf("Failed to define field %s: %v", f.name, err)
		}
	}

	// Derive __email and __username shadow fields and install the hooks.
	if err := shadow.Install(users, shadow.Options{Paths: "username"}); err != nil {
		log.Fatalf("Failed to install shadow fields: %v", err)
	}
	fmt.Printf("Schema paths after installation: %v\n", users.Paths())

	store, err := sqlite.NewStore(db, "users", logger)
	if err != nil {
		log.Fatalf("Failed to create sqlite store: %v", err)
	}

	collection, err := persistence.NewCollection(users, store, logger)
	if err != nil {
		log.Fatalf("Failed to create collection: %v", err)
	}

	collection.RegisterSubscription(persistence.RegisterSubscriptionOptions{
		Event: persistence.DocumentSaveSuccess,
		Callback: func(ctx context.Context, event persistence.Event) error {
			fmt.Printf("Document saved to collection '%s'\n", *event.Collection)
			return nil
		},
	})

	ctx := context.Background()

	fmt.Println("Inserting sample data...")
	docs := []schema.Document{
		{"name": "Alice Smith", "email": "Alice@Example.com", "username": "AliceS", "age": 30},
		{"name": "Bob Jones", "email": "B@B.com", "username": "Bob", "age": 27},
	}
	for _, doc := range docs {
		saved, err := collection.Save(ctx, doc)
		if err != nil {
			log.Fatalf("Failed to save document: %v", err)
		}
		fmt.Printf("Saved %s (id=%v, __email=%v)\n", saved["name"], saved["id"], saved["__email"])
	}

	// The stored documents keep the original casing; lookups with any casing
	// are rewritten against the shadow fields before they hit the store.
	fmt.Println("\nLooking up by email with mismatched casing:")
	found, err := collection.FindOne(ctx, query.New().Where("email", "ALICE@example.COM"))
	if err != nil {
		log.Fatalf("Failed to find by email: %v", err)
	}
	if found == nil {
		log.Fatalf("Expected to find Alice")
	}
	fmt.Printf("Found: name=%v email=%v\n", found["name"], found["email"])

	fmt.Println("\nLooking up by username with mismatched casing:")
	results, err := collection.Find(ctx, query.New().Where("username", "BOB"))
	if err != nil {
		log.Fatalf("Failed to find by username: %v", err)
	}
	for _, doc := range results {
		fmt.Printf("Found: name=%v username=%v\n", doc["name"], doc["username"])
	}

	fmt.Printf("\nDatabase created at %s; inspect it with the sqlite3 CLI:\n", dbFileName)
	fmt.Println("  SELECT id, json_extract(body, '$.email'), json_extract(body, '$.__email') FROM users;")
}
