package admission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/db"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/metrics"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

// -- Mock Repositories --

type mockAdmissionRepo struct {
	items map[uuid.UUID]*Admission
	err   error
}

func newMockAdmissionRepo() *mockAdmissionRepo {
	return &mockAdmissionRepo{items: make(map[uuid.UUID]*Admission)}
}

func (m *mockAdmissionRepo) Create(_ context.Context, a *Admission) error {
	if m.err != nil {
		return m.err
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.items[a.ID] = a
	return nil
}

func (m *mockAdmissionRepo) GetByID(_ context.Context, id uuid.UUID) (*Admission, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAdmissionRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return m.GetByID(ctx, id)
}

func (m *mockAdmissionRepo) Update(_ context.Context, a *Admission) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.items[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = time.Now()
	m.items[a.ID] = a
	return nil
}

func (m *mockAdmissionRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Admission, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var result []*Admission
	for _, a := range m.items {
		if st := params["status"]; st != "" && a.Status != st {
			continue
		}
		if ward := params["ward"]; ward != "" && a.Ward != ward {
			continue
		}
		result = append(result, a)
	}
	return result, len(result), nil
}

type mockDischargeRepo struct {
	items map[uuid.UUID]*Discharge
	err   error
}

func newMockDischargeRepo() *mockDischargeRepo {
	return &mockDischargeRepo{items: make(map[uuid.UUID]*Discharge)}
}

func (m *mockDischargeRepo) Create(_ context.Context, d *Discharge) error {
	if m.err != nil {
		return m.err
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	m.items[d.AdmissionID] = d
	return nil
}

func (m *mockDischargeRepo) GetByAdmission(_ context.Context, admissionID uuid.UUID) (*Discharge, error) {
	d, ok := m.items[admissionID]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

type countingRecorder struct {
	counts map[string]int
}

func (r *countingRecorder) ObserveCalculation(kind, outcome string) {
	r.counts[kind+"/"+outcome]++
}

func (r *countingRecorder) ObserveBand(kind, band string) {
	r.counts[kind+"#"+band]++
}

func newTestService() *Service {
	return NewService(newMockAdmissionRepo(), newMockDischargeRepo(), db.NoTx{}, nil, zerolog.Nop())
}

func newAdmission() *Admission {
	return &Admission{
		HospitalNumber: "UNTH/PS/0042",
		PatientName:    "Chinedu Eze",
		Age:            54,
		Sex:            "male",
		Ward:           "Plastics Male",
		Diagnosis:      "Post-burn contracture, right axilla",
	}
}

func TestCreateAdmission(t *testing.T) {
	svc := newTestService()
	a := newAdmission()
	if err := svc.CreateAdmission(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if a.Status != StatusAdmitted {
		t.Errorf("expected status %s, got %s", StatusAdmitted, a.Status)
	}
	if a.AdmittedAt.IsZero() {
		t.Error("expected admitted_at to default to now")
	}
}

func TestCreateAdmission_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Admission)
	}{
		{"missing hospital number", func(a *Admission) { a.HospitalNumber = "" }},
		{"missing name", func(a *Admission) { a.PatientName = " " }},
		{"missing ward", func(a *Admission) { a.Ward = "" }},
		{"missing diagnosis", func(a *Admission) { a.Diagnosis = "" }},
		{"bad sex", func(a *Admission) { a.Sex = "unknown" }},
		{"negative age", func(a *Admission) { a.Age = -1 }},
		{"created discharged", func(a *Admission) { a.Status = StatusDischarged }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			a := newAdmission()
			tt.mutate(a)
			if err := svc.CreateAdmission(context.Background(), a); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestUpdateAdmission(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	a := newAdmission()
	svc.CreateAdmission(ctx, a)

	upd := newAdmission()
	upd.ID = a.ID
	bed := "B4"
	upd.Bed = &bed
	upd.Status = StatusTransferred
	if err := svc.UpdateAdmission(ctx, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.GetAdmission(ctx, a.ID)
	if got.Status != StatusTransferred || got.Bed == nil || *got.Bed != "B4" {
		t.Errorf("expected update to persist, got %+v", got)
	}
	if !got.AdmittedAt.Equal(a.AdmittedAt) {
		t.Error("expected admitted_at to be preserved")
	}

	upd.Status = StatusDischarged
	if err := svc.UpdateAdmission(ctx, upd); err == nil {
		t.Error("expected discharge via update to be rejected")
	}

	missing := newAdmission()
	missing.ID = uuid.New()
	if err := svc.UpdateAdmission(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchAdmissions(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	for _, ward := range []string{"Plastics Male", "Plastics Male", "Burns Unit"} {
		a := newAdmission()
		a.Ward = ward
		svc.CreateAdmission(ctx, a)
	}
	items, total, err := svc.SearchAdmissions(ctx, map[string]string{"ward": "Burns Unit"}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected 1 admission, got %d", total)
	}
	if _, _, err := svc.SearchAdmissions(ctx, map[string]string{"status": "bogus"}, 20, 0); err == nil {
		t.Error("expected invalid status filter to be rejected")
	}
}

func TestDischarge(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	a := newAdmission()
	a.AdmittedAt = time.Now().Add(-72 * time.Hour)
	svc.CreateAdmission(ctx, a)

	narrative := "Wound healed, graft take 95%."
	d, err := svc.Discharge(ctx, a.ID, DischargeRequest{Assessment: uniform(3), Narrative: &narrative}, "Dr Obi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.TotalScore != 33 || d.Recommendation != FitForDischarge {
		t.Errorf("expected 33/%s, got %d/%s", FitForDischarge, d.TotalScore, d.Recommendation)
	}
	if d.DischargedBy == nil || *d.DischargedBy != "Dr Obi" {
		t.Error("expected discharged_by to be recorded")
	}

	got, _ := svc.GetAdmission(ctx, a.ID)
	if got.Status != StatusDischarged || got.DischargedAt == nil {
		t.Errorf("expected admission to be discharged, got %+v", got)
	}

	stored, err := svc.GetDischarge(ctx, a.ID)
	if err != nil || stored.ID != d.ID {
		t.Errorf("expected stored discharge, got %v", err)
	}

	if _, err := svc.Discharge(ctx, a.ID, DischargeRequest{Assessment: uniform(3)}, ""); !errors.Is(err, ErrNotAdmitted) {
		t.Errorf("expected ErrNotAdmitted on second discharge, got %v", err)
	}
}

func TestDischarge_NotReady(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	a := newAdmission()
	a.AdmittedAt = time.Now().Add(-time.Hour)
	svc.CreateAdmission(ctx, a)

	req := DischargeRequest{Assessment: uniform(1)}
	if _, err := svc.Discharge(ctx, a.ID, req, ""); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	got, _ := svc.GetAdmission(ctx, a.ID)
	if got.Status != StatusAdmitted {
		t.Error("expected admission to remain admitted")
	}

	req.AgainstAdvice = true
	d, err := svc.Discharge(ctx, a.ID, req, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.AgainstAdvice || d.Recommendation != NotReadyForDischarge {
		t.Errorf("expected against-advice not_ready discharge, got %+v", d)
	}
	if d.DischargedBy != nil {
		t.Error("expected no discharged_by for anonymous actor")
	}
}

func TestDischarge_Rejections(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Discharge(ctx, uuid.New(), DischargeRequest{Assessment: uniform(3)}, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	a := newAdmission()
	svc.CreateAdmission(ctx, a)
	bad := uniform(3)
	bad.PainControl = 7
	if _, err := svc.Discharge(ctx, a.ID, DischargeRequest{Assessment: bad}, ""); !errors.Is(err, scoring.ErrOutOfDomain) {
		t.Errorf("expected ErrOutOfDomain, got %v", err)
	}

	early := a.AdmittedAt.Add(-time.Hour)
	if _, err := svc.Discharge(ctx, a.ID, DischargeRequest{Assessment: uniform(3), DischargedAt: &early}, ""); err == nil {
		t.Error("expected discharge before admission to be rejected")
	}
}

func TestDischarge_StorageFailure(t *testing.T) {
	admissions := newMockAdmissionRepo()
	discharges := newMockDischargeRepo()
	discharges.err = errors.New("connection reset")
	svc := NewService(admissions, discharges, db.NoTx{}, nil, zerolog.Nop())
	ctx := context.Background()

	a := newAdmission()
	a.AdmittedAt = time.Now().Add(-time.Hour)
	svc.CreateAdmission(ctx, a)
	if _, err := svc.Discharge(ctx, a.ID, DischargeRequest{Assessment: uniform(3)}, ""); err == nil {
		t.Fatal("expected storage error")
	}
	got, _ := svc.GetAdmission(ctx, a.ID)
	if got.Status != StatusAdmitted {
		t.Error("expected admission to stay admitted when the snapshot fails")
	}
}

func TestScoreDischarge_Metrics(t *testing.T) {
	rec := &countingRecorder{counts: map[string]int{}}
	svc := NewService(newMockAdmissionRepo(), newMockDischargeRepo(), db.NoTx{}, rec, zerolog.Nop())

	svc.ScoreDischarge(uniform(2))
	bad := uniform(2)
	bad.SelfCare = 9
	svc.ScoreDischarge(bad)

	if rec.counts[CalcKind+"/"+metrics.OutcomeOK] != 1 {
		t.Errorf("expected one ok calculation, got %v", rec.counts)
	}
	if rec.counts[CalcKind+"/"+metrics.OutcomeRejected] != 1 {
		t.Errorf("expected one rejected calculation, got %v", rec.counts)
	}

	ctx := context.Background()
	a := newAdmission()
	a.AdmittedAt = time.Now().Add(-time.Hour)
	svc.CreateAdmission(ctx, a)
	svc.Discharge(ctx, a.ID, DischargeRequest{Assessment: uniform(3)}, "")
	if rec.counts[CalcKind+"#"+FitForDischarge] != 1 {
		t.Errorf("expected discharge band to be recorded, got %v", rec.counts)
	}
}
