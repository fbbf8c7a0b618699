package runs

import (
	"context"
	"database/sql"
)

type Repository interface {
	Save(ctx context.Context, run *Run) error
	List(ctx context.Context, limit int) ([]Run, error)
	GetByJobID(ctx context.Context, jobID string) (*Run, error)
	Count(ctx context.Context) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, run *Run) error {
	query := `INSERT INTO processing_runs (job_id, document_id, chunks_created, entities_extracted, relationships_created, processing_time_ms, success, error_message) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		run.JobID, run.DocumentID, run.ChunksCreated, run.EntitiesExtracted,
		run.RelationshipsCreated, run.ProcessingTimeMS, run.Success, run.ErrorMessage,
	).Scan(&run.ID, &run.CreatedAt)
}

func (r *PostgresRepo) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, job_id, document_id, chunks_created, entities_extracted, relationships_created, processing_time_ms, success, error_message, created_at FROM processing_runs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.JobID, &run.DocumentID, &run.ChunksCreated,
			&run.EntitiesExtracted, &run.RelationshipsCreated, &run.ProcessingTimeMS,
			&run.Success, &run.ErrorMessage, &run.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, run)
	}
	return result, rows.Err()
}

func (r *PostgresRepo) GetByJobID(ctx context.Context, jobID string) (*Run, error) {
	run := &Run{}
	query := `SELECT id, job_id, document_id, chunks_created, entities_extracted, relationships_created, processing_time_ms, success, error_message, created_at FROM processing_runs WHERE job_id = $1`
	err := r.db.QueryRowContext(ctx, query, jobID).Scan(&run.ID, &run.JobID, &run.DocumentID,
		&run.ChunksCreated, &run.EntitiesExtracted, &run.RelationshipsCreated,
		&run.ProcessingTimeMS, &run.Success, &run.ErrorMessage, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM processing_runs`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}
