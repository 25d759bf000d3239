package storage

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"

	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/logger"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/model"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage opens the pool and brings the schema up to date
func NewPostgresStorage(databaseURL string) (*PostgresStorage, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established")

	if err := runMigrations(databaseURL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database migrations completed successfully")

	return &PostgresStorage{pool: pool}, nil
}

// Executing database migrations
func runMigrations(databaseURL string) error {
	migrationsPath, err := filepath.Abs("migrations")
	if err != nil {
		return fmt.Errorf("failed to get migrations path: %w", err)
	}

	// file URL works on both Windows and Unix
	var migrationsURL string
	if runtime.GOOS == "windows" {
		u := &url.URL{
			Scheme: "file",
			Path:   filepath.ToSlash(migrationsPath),
		}
		migrationsURL = u.String()
	} else {
		migrationsURL = fmt.Sprintf("file://%s", migrationsPath)
	}

	logger.Info("Running migrations", zap.String("path", migrationsURL))

	db := stdlib.OpenDB(*parseConfig(databaseURL))
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationsURL,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Migrations applied successfully")
	}

	return nil
}

// Parses database URL into pgx config
func parseConfig(databaseURL string) *pgx.ConnConfig {
	config, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		logger.Fatal("Failed to parse database URL", zap.Error(err))
	}
	return config
}

// Close closes the database connection pool
func (s *PostgresStorage) Close() {
	s.pool.Close()
}

// CreateVoicemail inserts a freshly processed voicemail record
func (s *PostgresStorage) CreateVoicemail(ctx context.Context, v *model.ProcessedVoicemail) error {
	query := `
		INSERT INTO voicemails (
			id, caller_number, audio_ref, transcript, detected_language,
			translated_text, is_spam, spam_confidence, spam_reasons,
			sentiment, category, priority, summary, status, error_text,
			meta, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)`

	_, err := s.pool.Exec(ctx, query,
		v.ID,
		v.CallerNumber,
		v.AudioRef,
		v.Transcript,
		v.DetectedLanguage,
		v.TranslatedText,
		v.Spam.IsSpam,
		v.Spam.Confidence,
		v.Spam.Reasons,
		v.Sentiment,
		v.Category,
		v.Priority,
		v.Summary,
		v.Status,
		v.ErrorText,
		v.Meta,
		v.CreatedAt,
		v.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create voicemail: %w", err)
	}

	return nil
}

// GetVoicemailByID retrieves one voicemail record
func (s *PostgresStorage) GetVoicemailByID(ctx context.Context, id string) (*model.ProcessedVoicemail, error) {
	query := `
		SELECT id, caller_number, audio_ref, transcript, detected_language,
		       translated_text, is_spam, spam_confidence, spam_reasons,
		       sentiment, category, priority, summary, status, error_text,
		       meta, created_at, updated_at
		FROM voicemails
		WHERE id = $1`

	var v model.ProcessedVoicemail
	row := s.pool.QueryRow(ctx, query, id)

	err := row.Scan(
		&v.ID,
		&v.CallerNumber,
		&v.AudioRef,
		&v.Transcript,
		&v.DetectedLanguage,
		&v.TranslatedText,
		&v.Spam.IsSpam,
		&v.Spam.Confidence,
		&v.Spam.Reasons,
		&v.Sentiment,
		&v.Category,
		&v.Priority,
		&v.Summary,
		&v.Status,
		&v.ErrorText,
		&v.Meta,
		&v.CreatedAt,
		&v.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("voicemail not found")
		}
		return nil, fmt.Errorf("failed to get voicemail: %w", err)
	}

	return &v, nil
}

// UpdateVoicemail rewrites a full voicemail record
func (s *PostgresStorage) UpdateVoicemail(ctx context.Context, v *model.ProcessedVoicemail) error {
	query := `
		UPDATE voicemails
		SET caller_number = $2, audio_ref = $3, transcript = $4,
		    detected_language = $5, translated_text = $6, is_spam = $7,
		    spam_confidence = $8, spam_reasons = $9, sentiment = $10,
		    category = $11, priority = $12, summary = $13, status = $14,
		    error_text = $15, meta = $16, updated_at = $17
		WHERE id = $1`

	result, err := s.pool.Exec(ctx, query,
		v.ID,
		v.CallerNumber,
		v.AudioRef,
		v.Transcript,
		v.DetectedLanguage,
		v.TranslatedText,
		v.Spam.IsSpam,
		v.Spam.Confidence,
		v.Spam.Reasons,
		v.Sentiment,
		v.Category,
		v.Priority,
		v.Summary,
		v.Status,
		v.ErrorText,
		v.Meta,
		v.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update voicemail: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("voicemail not found")
	}

	return nil
}

// ListByCaller returns the most recent voicemails from a caller
func (s *PostgresStorage) ListByCaller(ctx context.Context, callerNumber string, limit int) ([]*model.ProcessedVoicemail, error) {
	query := `
		SELECT id, caller_number, audio_ref, transcript, detected_language,
		       translated_text, is_spam, spam_confidence, spam_reasons,
		       sentiment, category, priority, summary, status, error_text,
		       meta, created_at, updated_at
		FROM voicemails
		WHERE caller_number = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, callerNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list voicemails: %w", err)
	}
	defer rows.Close()

	var voicemails []*model.ProcessedVoicemail
	for rows.Next() {
		var v model.ProcessedVoicemail
		err := rows.Scan(
			&v.ID,
			&v.CallerNumber,
			&v.AudioRef,
			&v.Transcript,
			&v.DetectedLanguage,
			&v.TranslatedText,
			&v.Spam.IsSpam,
			&v.Spam.Confidence,
			&v.Spam.Reasons,
			&v.Sentiment,
			&v.Category,
			&v.Priority,
			&v.Summary,
			&v.Status,
			&v.ErrorText,
			&v.Meta,
			&v.CreatedAt,
			&v.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voicemail: %w", err)
		}
		voicemails = append(voicemails, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate voicemails: %w", err)
	}

	return voicemails, nil
}
