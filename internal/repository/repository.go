package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"textlens-cli/internal/models"
)

type Repository interface {
	Save(ctx context.Context, rec *models.Record) error
	Recent(ctx context.Context, limit int) ([]models.Record, error)
	LastByOperation(ctx context.Context, operation string) (*models.Record, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, rec *models.Record) error {
	query := `
		INSERT INTO records (id, operation, input, analysis_type, response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Operation,
		rec.Input,
		rec.AnalysisType,
		rec.Response,
		rec.CreatedAt,
	)

	return err
}

func (r *repository) Recent(ctx context.Context, limit int) ([]models.Record, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, operation, input, analysis_type, response, created_at
		FROM records
		ORDER BY created_at DESC, id
		LIMIT $1
	`

	records := []models.Record{}
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *repository) LastByOperation(ctx context.Context, operation string) (*models.Record, error) {
	query := `
		SELECT id, operation, input, analysis_type, response, created_at
		FROM records
		WHERE operation = $1
		ORDER BY created_at DESC, id
		LIMIT 1
	`

	var rec models.Record
	err := r.db.GetContext(ctx, &rec, query, operation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}
