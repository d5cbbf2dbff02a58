package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/worklens/triage/evidence"
	"github.com/worklens/triage/vector"
)

// Store implements evidence.Store using PostgreSQL with the pgvector extension.
type Store struct {
	db        *sql.DB
	dimension int
	tableName string
}

// Config holds pgvector configuration for the evidence corpus.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	SSLMode   string
	Dimension int    // Embedding dimension (default: 1536)
	TableName string // Table name (default: evidence_passages)
}

// DefaultConfig returns default pgvector configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:      "127.0.0.1",
		Port:      5432,
		User:      "postgres",
		Password:  "",
		DBName:    "worklens",
		SSLMode:   "disable",
		Dimension: 1536,
		TableName: "evidence_passages",
	}
}

// New creates a pgvector-backed evidence store.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &Store{
		db:        db,
		dimension: config.Dimension,
		tableName: config.TableName,
	}

	if err := store.setup(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to setup pgvector: %w", err)
	}

	return store, nil
}

func (s *Store) setup(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTableSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(255) PRIMARY KEY,
		source_type VARCHAR(32) NOT NULL,
		topic VARCHAR(32) NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		snippet TEXT NOT NULL,
		external_ref TEXT NOT NULL DEFAULT '',
		file_ref TEXT NOT NULL DEFAULT '',
		embedding vector(%d) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, s.tableName, s.dimension)

	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

// Add indexes a passage with its embedding vector. Used by the out-of-band
// corpus loader, not by the workflow.
func (s *Store) Add(ctx context.Context, item evidence.Item, vec []float32) error {
	if item.ID == "" {
		return fmt.Errorf("evidence item ID cannot be empty")
	}
	if len(vec) != s.dimension {
		return fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.dimension, len(vec))
	}

	query := fmt.Sprintf(`
	INSERT INTO %s (id, source_type, topic, title, snippet, external_ref, file_ref, embedding)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8::vector)
	ON CONFLICT (id) DO UPDATE SET
		source_type = EXCLUDED.source_type,
		topic = EXCLUDED.topic,
		title = EXCLUDED.title,
		snippet = EXCLUDED.snippet,
		external_ref = EXCLUDED.external_ref,
		file_ref = EXCLUDED.file_ref,
		embedding = EXCLUDED.embedding,
		created_at = CURRENT_TIMESTAMP
	`, s.tableName)

	_, err := s.db.ExecContext(ctx, query,
		item.ID, string(item.SourceType), string(item.Topic),
		item.Title, item.Snippet, item.ExternalRef, item.FileRef,
		vectorToString(vec))
	if err != nil {
		return fmt.Errorf("failed to add passage: %w", err)
	}
	return nil
}

// Search ranks passages by cosine similarity within the allowed categories.
func (s *Store) Search(ctx context.Context, queryVector []float32, allowed []evidence.Category, topK int) ([]evidence.Item, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if len(queryVector) != s.dimension {
		return nil, fmt.Errorf("query vector dimension mismatch: expected %d, got %d", s.dimension, len(queryVector))
	}
	if topK <= 0 {
		topK = 10
	}

	args := []any{vectorToString(queryVector)}
	where, args := categoryFilter(allowed, args)

	query := fmt.Sprintf(`
	SELECT id, source_type, topic, title, snippet, external_ref, file_ref,
		embedding %s $1::vector AS distance
	FROM %s
	%s
	ORDER BY distance
	LIMIT %d
	`, vector.CosineDistanceOperator(), s.tableName, where, topK)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search passages: %w", err)
	}
	defer rows.Close()

	items := make([]evidence.Item, 0, topK)
	for rows.Next() {
		var item evidence.Item
		var sourceType, topic string
		var distance float64
		if err := rows.Scan(&item.ID, &sourceType, &topic, &item.Title,
			&item.Snippet, &item.ExternalRef, &item.FileRef, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		item.SourceType = evidence.SourceType(sourceType)
		item.Topic = evidence.Topic(topic)
		item.RelevanceScore = float32(1 - distance)
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating passages: %w", err)
	}
	return items, nil
}

// Count returns the number of indexed passages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.tableName)
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count passages: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// categoryFilter builds a WHERE clause matching any of the allowed categories.
// A category with an empty topic matches every topic of its source type.
func categoryFilter(allowed []evidence.Category, args []any) (string, []any) {
	if len(allowed) == 0 {
		return "", args
	}
	clauses := make([]string, 0, len(allowed))
	for _, c := range allowed {
		args = append(args, string(c.Source))
		if c.Topic == "" {
			clauses = append(clauses, fmt.Sprintf("source_type = $%d", len(args)))
			continue
		}
		args = append(args, string(c.Topic))
		clauses = append(clauses, fmt.Sprintf("(source_type = $%d AND topic = $%d)", len(args)-1, len(args)))
	}
	return "WHERE " + strings.Join(clauses, " OR "), args
}

func vectorToString(vec []float32) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = fmt.Sprintf("%f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
