package admission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/db"
)

// -- Admission Repository --

type admissionRepoPG struct {
	pool *pgxpool.Pool
}

func NewAdmissionRepo(pool *pgxpool.Pool) AdmissionRepository {
	return &admissionRepoPG{pool: pool}
}

func (r *admissionRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const admissionCols = `id, hospital_number, patient_name, age, sex, ward, bed, diagnosis,
	admitting_surgeon, status, admitted_at, discharged_at, note, created_at, updated_at`

var admissionSearchParams = map[string]db.ParamConfig{
	"status":          {Type: db.ParamExact, Column: "status"},
	"ward":            {Type: db.ParamExact, Column: "ward"},
	"sex":             {Type: db.ParamExact, Column: "sex"},
	"hospital_number": {Type: db.ParamPrefix, Column: "hospital_number"},
	"patient_name":    {Type: db.ParamPrefix, Column: "patient_name"},
	"surgeon":         {Type: db.ParamPrefix, Column: "admitting_surgeon"},
	"age":             {Type: db.ParamNumber, Column: "age"},
	"admitted_at":     {Type: db.ParamDate, Column: "admitted_at"},
}

func (r *admissionRepoPG) scanAdmission(row pgx.Row) (*Admission, error) {
	var a Admission
	err := row.Scan(&a.ID, &a.HospitalNumber, &a.PatientName, &a.Age, &a.Sex, &a.Ward, &a.Bed,
		&a.Diagnosis, &a.AdmittingSurgeon, &a.Status, &a.AdmittedAt, &a.DischargedAt, &a.Note,
		&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *admissionRepoPG) Create(ctx context.Context, a *Admission) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO admission (id, hospital_number, patient_name, age, sex, ward, bed, diagnosis,
			admitting_surgeon, status, admitted_at, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		a.ID, a.HospitalNumber, a.PatientName, a.Age, a.Sex, a.Ward, a.Bed, a.Diagnosis,
		a.AdmittingSurgeon, a.Status, a.AdmittedAt, a.Note,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *admissionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return r.scanAdmission(r.conn(ctx).QueryRow(ctx, `SELECT `+admissionCols+` FROM admission WHERE id = $1`, id))
}

func (r *admissionRepoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return r.scanAdmission(r.conn(ctx).QueryRow(ctx, `SELECT `+admissionCols+` FROM admission WHERE id = $1 FOR UPDATE`, id))
}

func (r *admissionRepoPG) Update(ctx context.Context, a *Admission) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE admission SET
			hospital_number = $2, patient_name = $3, age = $4, sex = $5, ward = $6, bed = $7,
			diagnosis = $8, admitting_surgeon = $9, status = $10, discharged_at = $11, note = $12,
			updated_at = NOW()
		WHERE id = $1`,
		a.ID, a.HospitalNumber, a.PatientName, a.Age, a.Sex, a.Ward, a.Bed,
		a.Diagnosis, a.AdmittingSurgeon, a.Status, a.DischargedAt, a.Note,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *admissionRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Admission, int, error) {
	q := db.NewSearchQuery("admission", admissionCols)
	q.ApplyParams(params, admissionSearchParams)
	q.ApplySort(params["_sort"], "admitted_at DESC", admissionSearchParams)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count admissions: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("search admissions: %w", err)
	}
	defer rows.Close()

	var items []*Admission
	for rows.Next() {
		a, err := r.scanAdmission(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

// -- Discharge Repository --

type dischargeRepoPG struct {
	pool *pgxpool.Pool
}

func NewDischargeRepo(pool *pgxpool.Pool) DischargeRepository {
	return &dischargeRepoPG{pool: pool}
}

func (r *dischargeRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const dischargeCols = `id, admission_id, assessment, schema_version, total_score, recommendation,
	against_advice, destination, discharge_diagnosis, medications, follow_up, narrative,
	discharged_by, discharged_at, created_at`

// dischargeSnapshotVersion is stored with every assessment document.
const dischargeSnapshotVersion = 1

func (r *dischargeRepoPG) Create(ctx context.Context, d *Discharge) error {
	d.ID = uuid.New()
	doc, err := json.Marshal(d.Assessment)
	if err != nil {
		return fmt.Errorf("encode discharge assessment: %w", err)
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO discharge (id, admission_id, assessment, schema_version, total_score, recommendation,
			against_advice, destination, discharge_diagnosis, medications, follow_up, narrative,
			discharged_by, discharged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at`,
		d.ID, d.AdmissionID, doc, dischargeSnapshotVersion, d.TotalScore, d.Recommendation,
		d.AgainstAdvice, d.Destination, d.DischargeDiagnosis, d.Medications, d.FollowUp, d.Narrative,
		d.DischargedBy, d.DischargedAt,
	).Scan(&d.CreatedAt)
}

func (r *dischargeRepoPG) GetByAdmission(ctx context.Context, admissionID uuid.UUID) (*Discharge, error) {
	var d Discharge
	var doc []byte
	var version int
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+dischargeCols+` FROM discharge WHERE admission_id = $1`, admissionID).Scan(
		&d.ID, &d.AdmissionID, &doc, &version, &d.TotalScore, &d.Recommendation,
		&d.AgainstAdvice, &d.Destination, &d.DischargeDiagnosis, &d.Medications, &d.FollowUp, &d.Narrative,
		&d.DischargedBy, &d.DischargedAt, &d.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if version != dischargeSnapshotVersion {
		return nil, fmt.Errorf("discharge %s: unsupported snapshot version %d", d.ID, version)
	}
	if err := json.Unmarshal(doc, &d.Assessment); err != nil {
		return nil, fmt.Errorf("decode discharge assessment: %w", err)
	}
	return &d, nil
}
