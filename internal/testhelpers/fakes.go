package testhelpers

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
)

// FakePatientRepository is an in-memory ports.PatientRepository.
type FakePatientRepository struct {
	mu       sync.RWMutex
	patients map[string]*domain.Patient
	nextID   int64

	CreatePatientFn func(ctx context.Context, p *domain.Patient) error
}

func NewFakePatientRepository() *FakePatientRepository {
	return &FakePatientRepository{patients: make(map[string]*domain.Patient)}
}

// Seed stores a patient directly.
func (f *FakePatientRepository) Seed(patientID string) *domain.Patient {
	p := &domain.Patient{PatientID: patientID, FirstName: "Test", LastName: "Patient"}
	_ = f.CreatePatient(context.Background(), p)
	return p
}

func (f *FakePatientRepository) CreatePatient(ctx context.Context, p *domain.Patient) error {
	if f.CreatePatientFn != nil {
		if err := f.CreatePatientFn(ctx, p); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.patients[p.PatientID]; ok {
		return domain.NewDuplicateError("patient", p.PatientID)
	}
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.patients[p.PatientID] = &cp
	return nil
}

func (f *FakePatientRepository) FindByPatientID(_ context.Context, patientID string) (*domain.Patient, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.patients[patientID]
	if !ok {
		return nil, domain.NewPatientNotFoundError(patientID)
	}
	cp := *p
	return &cp, nil
}

func (f *FakePatientRepository) ExistsPatientID(_ context.Context, patientID string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.patients[patientID]
	return ok, nil
}

// FakePaymentRepository is an in-memory ports.PaymentRepository whose
// TransitionStatus is atomic under its mutex.
type FakePaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment
	nextID   int64

	CreatePaymentFn    func(ctx context.Context, p *domain.Payment) error
	TransitionStatusFn func(ctx context.Context, reference string, t domain.StatusTransition) (*domain.Payment, bool, error)
}

func NewFakePaymentRepository() *FakePaymentRepository {
	return &FakePaymentRepository{payments: make(map[string]*domain.Payment)}
}

func (f *FakePaymentRepository) CreatePayment(ctx context.Context, p *domain.Payment) error {
	if f.CreatePaymentFn != nil {
		if err := f.CreatePaymentFn(ctx, p); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.payments[p.ReferenceNumber]; ok {
		return domain.NewDuplicateError("payment reference", p.ReferenceNumber)
	}
	f.nextID++
	p.ID = f.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	f.payments[p.ReferenceNumber] = clonePayment(p)
	return nil
}

func (f *FakePaymentRepository) FindByReference(_ context.Context, reference string) (*domain.Payment, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.payments[reference]
	if !ok {
		return nil, domain.NewPaymentNotFoundError(reference)
	}
	return clonePayment(p), nil
}

func (f *FakePaymentRepository) FindByPatientID(_ context.Context, patientID string, limit, offset int) ([]*domain.Payment, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range f.payments {
		if p.PatientID == patientID {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return []*domain.Payment{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakePaymentRepository) FindLatestVerified(_ context.Context, patientID string) (*domain.Payment, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var latest *domain.Payment
	for _, p := range f.payments {
		if p.PatientID == patientID && p.Status == domain.StatusVerified {
			if latest == nil || p.ID > latest.ID {
				latest = p
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	return clonePayment(latest), nil
}

func (f *FakePaymentRepository) FindStalePending(_ context.Context, method domain.PaymentMethod, createdBefore time.Time, limit int) ([]*domain.Payment, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range f.payments {
		if p.Status == domain.StatusPending && p.PaymentMethod == method && p.CreatedAt.Before(createdBefore) {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakePaymentRepository) TransitionStatus(ctx context.Context, reference string, t domain.StatusTransition) (*domain.Payment, bool, error) {
	if f.TransitionStatusFn != nil {
		return f.TransitionStatusFn(ctx, reference, t)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[reference]
	if !ok {
		return nil, false, domain.NewPaymentNotFoundError(reference)
	}
	if !t.Allows(p.Status) {
		return clonePayment(p), false, nil
	}
	p.Status = t.To
	if t.TransactionID != nil {
		id := *t.TransactionID
		p.TransactionID = &id
	}
	for k, v := range t.Metadata {
		p.Metadata[k] = v
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		p.CompletedAt = &at
	}
	p.UpdatedAt = time.Now()
	return clonePayment(p), true, nil
}

// Put overwrites a stored payment, bypassing the state machine.
func (f *FakePaymentRepository) Put(p *domain.Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == 0 {
		f.nextID++
		p.ID = f.nextID
	}
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	f.payments[p.ReferenceNumber] = clonePayment(p)
}

func (f *FakePaymentRepository) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.payments)
}

func clonePayment(p *domain.Payment) *domain.Payment {
	cp := *p
	cp.Metadata = make(map[string]any, len(p.Metadata))
	for k, v := range p.Metadata {
		cp.Metadata[k] = v
	}
	return &cp
}

// FakeResultRepository is an in-memory ports.ResultRepository that counts
// lookups so tests can observe cache hits.
type FakeResultRepository struct {
	mu      sync.RWMutex
	results map[string]*domain.Result
	nextID  int64

	findCalls atomic.Int64

	CreateResultFn func(ctx context.Context, r *domain.Result) error
}

func NewFakeResultRepository() *FakeResultRepository {
	return &FakeResultRepository{results: make(map[string]*domain.Result)}
}

func (f *FakeResultRepository) CreateResult(ctx context.Context, r *domain.Result) error {
	if f.CreateResultFn != nil {
		if err := f.CreateResultFn(ctx, r); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.results[r.AccessCode]; ok {
		return domain.NewDuplicateError("access code", r.AccessCode)
	}
	f.nextID++
	r.ID = f.nextID
	r.CreatedAt = time.Now()
	cp := *r
	f.results[r.AccessCode] = &cp
	return nil
}

func (f *FakeResultRepository) FindByAccessCode(_ context.Context, code string) (*domain.Result, error) {
	f.findCalls.Add(1)
	f.mu.RLock()
	defer f.mu.RUnlock()
	r, ok := f.results[code]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *FakeResultRepository) ExistsAccessCode(_ context.Context, code string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.results[code]
	return ok, nil
}

func (f *FakeResultRepository) IncrementAccessCount(_ context.Context, code string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[code]
	if !ok {
		return 0, domain.NewInvalidCodeError()
	}
	r.AccessCount++
	return r.AccessCount, nil
}

// FindCalls is the number of FindByAccessCode calls so far.
func (f *FakeResultRepository) FindCalls() int64 {
	return f.findCalls.Load()
}

func (f *FakeResultRepository) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.results)
}

// FakeSettingsRepository keeps the settings history in a slice.
type FakeSettingsRepository struct {
	mu      sync.RWMutex
	history []*domain.PaymentSetting
}

func NewFakeSettingsRepository() *FakeSettingsRepository {
	return &FakeSettingsRepository{}
}

func (f *FakeSettingsRepository) FindActive(_ context.Context) (*domain.PaymentSetting, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, s := range f.history {
		if s.IsActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *FakeSettingsRepository) ReplaceActive(_ context.Context, s *domain.PaymentSetting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, old := range f.history {
		old.IsActive = false
	}
	s.ID = int64(len(f.history) + 1)
	s.IsActive = true
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	f.history = append(f.history, &cp)
	return nil
}

// FakeAuditRepository records entries and can be told to fail.
type FakeAuditRepository struct {
	mu      sync.RWMutex
	entries []domain.AuditLogEntry

	AppendFn func(ctx context.Context, e *domain.AuditLogEntry) error
}

func NewFakeAuditRepository() *FakeAuditRepository {
	return &FakeAuditRepository{}
}

func (f *FakeAuditRepository) Append(ctx context.Context, e *domain.AuditLogEntry) error {
	if f.AppendFn != nil {
		if err := f.AppendFn(ctx, e); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = int64(len(f.entries) + 1)
	e.CreatedAt = time.Now()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *FakeAuditRepository) Entries() []domain.AuditLogEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]domain.AuditLogEntry(nil), f.entries...)
}

// EntriesFor returns the entries recorded with the given action.
func (f *FakeAuditRepository) EntriesFor(action string) []domain.AuditLogEntry {
	var out []domain.AuditLogEntry
	for _, e := range f.Entries() {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// RecordingNotifier collects notifications and can be told to fail.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification

	NotifyFn func(ctx context.Context, n domain.Notification) error
}

func (r *RecordingNotifier) Notify(ctx context.Context, n domain.Notification) error {
	if r.NotifyFn != nil {
		if err := r.NotifyFn(ctx, n); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *RecordingNotifier) Sent() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.sent...)
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
