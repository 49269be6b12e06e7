package burns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/db"
)

type assessmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewAssessmentRepo(pool *pgxpool.Pool) AssessmentRepository {
	return &assessmentRepoPG{pool: pool}
}

func (r *assessmentRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const assessmentCols = `id, admission_id, input, evaluation, schema_version, tbsa, absi, revised_baux,
	assessed_by, assessed_at, created_at`

func (r *assessmentRepoPG) Create(ctx context.Context, a *StoredAssessment) error {
	a.ID = uuid.New()
	input, err := json.Marshal(a.Input)
	if err != nil {
		return fmt.Errorf("encode burn input: %w", err)
	}
	eval, err := json.Marshal(a.Evaluation)
	if err != nil {
		return fmt.Errorf("encode burn evaluation: %w", err)
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO burn_assessment (id, admission_id, input, evaluation, schema_version,
			tbsa, absi, revised_baux, assessed_by, assessed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`,
		a.ID, a.AdmissionID, input, eval, a.SchemaVersion,
		a.TBSA, a.ABSI, a.RevisedBaux, a.AssessedBy, a.AssessedAt,
	).Scan(&a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrAdmissionNotFound
	}
	return err
}

func (r *assessmentRepoPG) scan(row pgx.Row) (*StoredAssessment, error) {
	var a StoredAssessment
	var input, eval []byte
	err := row.Scan(&a.ID, &a.AdmissionID, &input, &eval, &a.SchemaVersion, &a.TBSA, &a.ABSI,
		&a.RevisedBaux, &a.AssessedBy, &a.AssessedAt, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.SchemaVersion != SnapshotVersion {
		return nil, fmt.Errorf("burn assessment %s: unsupported snapshot version %d", a.ID, a.SchemaVersion)
	}
	if err := json.Unmarshal(input, &a.Input); err != nil {
		return nil, fmt.Errorf("decode burn input: %w", err)
	}
	if err := json.Unmarshal(eval, &a.Evaluation); err != nil {
		return nil, fmt.Errorf("decode burn evaluation: %w", err)
	}
	return &a, nil
}

func (r *assessmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*StoredAssessment, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+assessmentCols+` FROM burn_assessment WHERE id = $1`, id))
}

func (r *assessmentRepoPG) ListByAdmission(ctx context.Context, admissionID uuid.UUID, limit, offset int) ([]*StoredAssessment, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM burn_assessment WHERE admission_id = $1`, admissionID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+assessmentCols+` FROM burn_assessment WHERE admission_id = $1 ORDER BY assessed_at DESC LIMIT $2 OFFSET $3`,
		admissionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*StoredAssessment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
