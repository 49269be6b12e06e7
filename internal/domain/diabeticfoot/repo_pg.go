package diabeticfoot

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

const assessmentCols = `id, admission_id, input, evaluation, schema_version, total_score, risk_category,
	recommended_intervention, assessed_by, assessed_at, created_at`

var assessmentSearchParams = map[string]db.ParamConfig{
	"admission_id":             {Type: db.ParamExact, Column: "admission_id"},
	"risk_category":            {Type: db.ParamExact, Column: "risk_category"},
	"recommended_intervention": {Type: db.ParamExact, Column: "recommended_intervention"},
	"total_score":              {Type: db.ParamNumber, Column: "total_score"},
	"assessed_at":              {Type: db.ParamDate, Column: "assessed_at"},
}

const foreignKeyViolation = "23503"

func (r *assessmentRepoPG) Create(ctx context.Context, a *StoredAssessment) error {
	a.ID = uuid.New()
	input, err := json.Marshal(a.Input)
	if err != nil {
		return fmt.Errorf("encode assessment input: %w", err)
	}
	eval, err := json.Marshal(a.Evaluation)
	if err != nil {
		return fmt.Errorf("encode assessment evaluation: %w", err)
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO diabetic_foot_assessment (id, admission_id, input, evaluation, schema_version,
			total_score, risk_category, recommended_intervention, assessed_by, assessed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`,
		a.ID, a.AdmissionID, input, eval, a.SchemaVersion,
		a.TotalScore, a.RiskCategory, a.RecommendedIntervention, a.AssessedBy, a.AssessedAt,
	).Scan(&a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return ErrAdmissionNotFound
	}
	return err
}

func (r *assessmentRepoPG) scan(row pgx.Row) (*StoredAssessment, error) {
	var a StoredAssessment
	var input, eval []byte
	err := row.Scan(&a.ID, &a.AdmissionID, &input, &eval, &a.SchemaVersion, &a.TotalScore,
		&a.RiskCategory, &a.RecommendedIntervention, &a.AssessedBy, &a.AssessedAt, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.SchemaVersion != SnapshotVersion {
		return nil, fmt.Errorf("assessment %s: unsupported snapshot version %d", a.ID, a.SchemaVersion)
	}
	if err := json.Unmarshal(input, &a.Input); err != nil {
		return nil, fmt.Errorf("decode assessment input: %w", err)
	}
	if err := json.Unmarshal(eval, &a.Evaluation); err != nil {
		return nil, fmt.Errorf("decode assessment evaluation: %w", err)
	}
	return &a, nil
}

func (r *assessmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*StoredAssessment, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+assessmentCols+` FROM diabetic_foot_assessment WHERE id = $1`, id))
}

func (r *assessmentRepoPG) ListByAdmission(ctx context.Context, admissionID uuid.UUID, limit, offset int) ([]*StoredAssessment, int, error) {
	return r.Search(ctx, map[string]string{"admission_id": admissionID.String()}, limit, offset)
}

func (r *assessmentRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*StoredAssessment, int, error) {
	q := db.NewSearchQuery("diabetic_foot_assessment", assessmentCols)
	q.ApplyParams(params, assessmentSearchParams)
	q.ApplySort(params["_sort"], "assessed_at DESC", assessmentSearchParams)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count diabetic foot assessments: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("search diabetic foot assessments: %w", err)
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
