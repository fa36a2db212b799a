package app

import (
	"context"
	"sync"
	"time"

	"github.com/societyq/societyq/internal/domain"
)

// In-memory fakes for the domain ports. They mirror the sqlite adapter's
// guarded-commit semantics so the services' concurrency behavior is
// observable without a database.

type memSocieties struct {
	mu   sync.Mutex
	rows map[string]domain.Society
}

func newMemSocieties() *memSocieties {
	return &memSocieties{rows: map[string]domain.Society{}}
}

func (m *memSocieties) Create(_ context.Context, s domain.Society) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.Name == s.Name {
			return &domain.AlreadyExistsError{Resource: "society", Key: s.Name}
		}
	}
	m.rows[s.ID] = s
	return nil
}

func (m *memSocieties) GetByID(_ context.Context, id string) (domain.Society, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return domain.Society{}, &domain.NotFoundError{Resource: "society", ID: id}
	}
	return s, nil
}

func (m *memSocieties) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	return ok, nil
}

func (m *memSocieties) List(_ context.Context) ([]domain.Society, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Society, 0, len(m.rows))
	for _, s := range m.rows {
		out = append(out, s)
	}
	return out, nil
}

type memBuildings struct {
	mu   sync.Mutex
	rows map[string]domain.Building
}

func newMemBuildings() *memBuildings {
	return &memBuildings{rows: map[string]domain.Building{}}
}

func (m *memBuildings) Create(_ context.Context, b domain.Building) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[b.ID] = b
	return nil
}

func (m *memBuildings) GetByID(_ context.Context, id string) (domain.Building, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return domain.Building{}, &domain.NotFoundError{Resource: "building", ID: id}
	}
	return b, nil
}

func (m *memBuildings) ListBySociety(_ context.Context, societyID string) ([]domain.Building, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Building
	for _, b := range m.rows {
		if b.SocietyID == societyID {
			out = append(out, b)
		}
	}
	return out, nil
}

type memFlats struct {
	mu   sync.Mutex
	rows map[string]domain.Flat
}

func newMemFlats() *memFlats {
	return &memFlats{rows: map[string]domain.Flat{}}
}

func (m *memFlats) Create(_ context.Context, f domain.Flat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.BuildingID == f.BuildingID && existing.Number == f.Number {
			return &domain.AlreadyExistsError{Resource: "flat", Key: f.Number}
		}
	}
	m.rows[f.ID] = f
	return nil
}

func (m *memFlats) GetByID(_ context.Context, id string) (domain.Flat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok {
		return domain.Flat{}, &domain.NotFoundError{Resource: "flat", ID: id}
	}
	return f, nil
}

func (m *memFlats) ListByBuilding(_ context.Context, buildingID string) ([]domain.Flat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Flat
	for _, f := range m.rows {
		if f.BuildingID == buildingID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFlats) ListBySociety(_ context.Context, societyID string) ([]domain.Flat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Flat
	for _, f := range m.rows {
		if f.SocietyID == societyID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFlats) SetOccupiedStatus(_ context.Context, id string, status domain.OccupiedStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok {
		return &domain.NotFoundError{Resource: "flat", ID: id}
	}
	f.OccupiedStatus = status
	m.rows[id] = f
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	rows map[string]domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{rows: map[string]domain.User{}}
}

func (m *memUsers) Create(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.Email == u.Email {
			return &domain.AlreadyExistsError{Resource: "user", Key: u.Email}
		}
	}
	m.rows[u.ID] = u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return domain.User{}, &domain.NotFoundError{Resource: "user", ID: id}
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, &domain.NotFoundError{Resource: "user", ID: email}
}

func (m *memUsers) ListBySociety(_ context.Context, societyID string) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, u := range m.rows {
		if u.SocietyID == societyID {
			out = append(out, u)
		}
	}
	return out, nil
}

type memMembers struct {
	mu      sync.Mutex
	rows    map[string]domain.FlatMember
	society map[string]string // flat id -> society id, for pending listings
}

func newMemMembers() *memMembers {
	return &memMembers{rows: map[string]domain.FlatMember{}, society: map[string]string{}}
}

func (m *memMembers) Create(_ context.Context, fm domain.FlatMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[fm.ID] = fm
	return nil
}

func (m *memMembers) CreateFirst(_ context.Context, fm domain.FlatMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.FlatID == fm.FlatID {
			return &domain.ConflictError{Resource: "flat member", ID: fm.FlatID}
		}
	}
	m.rows[fm.ID] = fm
	return nil
}

func (m *memMembers) GetByID(_ context.Context, id string) (domain.FlatMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fm, ok := m.rows[id]
	if !ok {
		return domain.FlatMember{}, &domain.NotFoundError{Resource: "flat member", ID: id}
	}
	return fm, nil
}

func (m *memMembers) ListByFlat(_ context.Context, flatID string) ([]domain.FlatMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FlatMember
	for _, fm := range m.rows {
		if fm.FlatID == flatID {
			out = append(out, fm)
		}
	}
	return out, nil
}

func (m *memMembers) ListOwnersByFlat(_ context.Context, flatID string) ([]domain.FlatMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FlatMember
	for _, fm := range m.rows {
		if fm.FlatID == flatID && fm.Owner {
			out = append(out, fm)
		}
	}
	return out, nil
}

func (m *memMembers) ListByUser(_ context.Context, userID string) ([]domain.FlatMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FlatMember
	for _, fm := range m.rows {
		if fm.UserID == userID {
			out = append(out, fm)
		}
	}
	return out, nil
}

func (m *memMembers) ListPendingBySociety(_ context.Context, societyID string) ([]domain.FlatMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FlatMember
	for _, fm := range m.rows {
		if !fm.Approved && m.society[fm.FlatID] == societyID {
			out = append(out, fm)
		}
	}
	return out, nil
}

func (m *memMembers) Approve(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fm, ok := m.rows[id]
	if !ok {
		return &domain.NotFoundError{Resource: "flat member", ID: id}
	}
	if fm.Approved {
		return &domain.ConflictError{Resource: "flat member", ID: id}
	}
	fm.Approved = true
	m.rows[id] = fm
	return nil
}

func (m *memMembers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return &domain.NotFoundError{Resource: "flat member", ID: id}
	}
	delete(m.rows, id)
	return nil
}

// flatOccupier is the slice of the flats fake the allocation fake needs to
// commit the occupancy flip together with the approval.
type flatOccupier interface {
	SetOccupiedStatus(ctx context.Context, id string, status domain.OccupiedStatus) error
}

type memAllocations struct {
	mu      sync.Mutex
	rows    map[string]domain.FlatAllocation
	society map[string]string // flat id -> society id
	flats   flatOccupier
}

func newMemAllocations() *memAllocations {
	return &memAllocations{rows: map[string]domain.FlatAllocation{}, society: map[string]string{}}
}

func (m *memAllocations) Create(_ context.Context, a domain.FlatAllocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[a.ID] = a
	return nil
}

func (m *memAllocations) GetByID(_ context.Context, id string) (domain.FlatAllocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return domain.FlatAllocation{}, &domain.NotFoundError{Resource: "allocation", ID: id}
	}
	return a, nil
}

func (m *memAllocations) ListBySociety(_ context.Context, societyID string) ([]domain.FlatAllocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FlatAllocation
	for _, a := range m.rows {
		if m.society[a.FlatID] == societyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAllocations) ListByUser(_ context.Context, userID string) ([]domain.FlatAllocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FlatAllocation
	for _, a := range m.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAllocations) UpdateStatusIfPending(_ context.Context, id string, status domain.AllocationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return &domain.NotFoundError{Resource: "allocation", ID: id}
	}
	if a.Status != domain.AllocationPending {
		return &domain.ConflictError{Resource: "allocation", ID: id}
	}
	a.Status = status
	m.rows[id] = a
	return nil
}

// ApproveIfPending mirrors the sqlite adapter's transactional approve: the
// status only changes if the occupancy flip also lands.
func (m *memAllocations) ApproveIfPending(ctx context.Context, id, flatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return &domain.NotFoundError{Resource: "allocation", ID: id}
	}
	if a.Status != domain.AllocationPending {
		return &domain.ConflictError{Resource: "allocation", ID: id}
	}
	if m.flats != nil {
		if err := m.flats.SetOccupiedStatus(ctx, flatID, domain.OccupiedStatusOccupied); err != nil {
			return err
		}
	}
	a.Status = domain.AllocationApproved
	m.rows[id] = a
	return nil
}

type memComplaints struct {
	mu   sync.Mutex
	rows map[string]domain.Complaint
}

func newMemComplaints() *memComplaints {
	return &memComplaints{rows: map[string]domain.Complaint{}}
}

func (m *memComplaints) Create(_ context.Context, c domain.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[c.ID] = c
	return nil
}

func (m *memComplaints) GetByID(_ context.Context, id string) (domain.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return domain.Complaint{}, &domain.NotFoundError{Resource: "complaint", ID: id}
	}
	return c, nil
}

func (m *memComplaints) ListByFlat(_ context.Context, flatID string) ([]domain.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Complaint
	for _, c := range m.rows {
		if c.FlatID == flatID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memComplaints) ListBySociety(_ context.Context, _ string) ([]domain.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Complaint
	for _, c := range m.rows {
		out = append(out, c)
	}
	return out, nil
}

func (m *memComplaints) ListBySocietyAndStatus(_ context.Context, _ string, status domain.ComplaintStatus) ([]domain.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Complaint
	for _, c := range m.rows {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memComplaints) UpdateStatus(_ context.Context, id string, from, to domain.ComplaintStatus, resolution string, resolvedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return &domain.NotFoundError{Resource: "complaint", ID: id}
	}
	if c.Status != from {
		return &domain.ConflictError{Resource: "complaint", ID: id}
	}
	c.Status = to
	c.Resolution = resolution
	c.ResolvedAt = resolvedAt
	m.rows[id] = c
	return nil
}

type memVisitors struct {
	mu      sync.Mutex
	rows    map[string]domain.Visitor
	society map[string]string // flat id -> society id
}

func newMemVisitors() *memVisitors {
	return &memVisitors{rows: map[string]domain.Visitor{}, society: map[string]string{}}
}

func (m *memVisitors) Create(_ context.Context, v domain.Visitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[v.ID] = v
	return nil
}

func (m *memVisitors) GetByID(_ context.Context, id string) (domain.Visitor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[id]
	if !ok {
		return domain.Visitor{}, &domain.NotFoundError{Resource: "visitor", ID: id}
	}
	return v, nil
}

func (m *memVisitors) ListBySociety(_ context.Context, societyID string) ([]domain.Visitor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Visitor
	for _, v := range m.rows {
		if m.society[v.FlatID] == societyID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memVisitors) ListActiveBySociety(_ context.Context, societyID string) ([]domain.Visitor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Visitor
	for _, v := range m.rows {
		if m.society[v.FlatID] == societyID && v.ExitTime == nil {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memVisitors) ListPendingBySociety(_ context.Context, societyID string) ([]domain.Visitor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Visitor
	for _, v := range m.rows {
		if m.society[v.FlatID] == societyID && !v.Approved {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memVisitors) Approve(_ context.Context, id, approvedByID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[id]
	if !ok {
		return &domain.NotFoundError{Resource: "visitor", ID: id}
	}
	if v.Approved {
		return &domain.ConflictError{Resource: "visitor", ID: id}
	}
	v.Approved = true
	v.ApprovalTime = &at
	v.ApprovedByID = approvedByID
	m.rows[id] = v
	return nil
}

func (m *memVisitors) RecordExit(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[id]
	if !ok {
		return &domain.NotFoundError{Resource: "visitor", ID: id}
	}
	if v.ExitTime != nil {
		return &domain.ConflictError{Resource: "visitor", ID: id}
	}
	v.ExitTime = &at
	m.rows[id] = v
	return nil
}

type memBills struct {
	mu      sync.Mutex
	rows    map[string]domain.MaintenanceBill
	society map[string]string // flat id -> society id
}

func newMemBills() *memBills {
	return &memBills{rows: map[string]domain.MaintenanceBill{}, society: map[string]string{}}
}

func (m *memBills) Create(_ context.Context, b domain.MaintenanceBill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.BillNumber == b.BillNumber {
			return &domain.AlreadyExistsError{Resource: "bill", Key: b.BillNumber}
		}
	}
	m.rows[b.ID] = b
	return nil
}

func (m *memBills) GetByID(_ context.Context, id string) (domain.MaintenanceBill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return domain.MaintenanceBill{}, &domain.NotFoundError{Resource: "bill", ID: id}
	}
	return b, nil
}

func (m *memBills) ListByFlat(_ context.Context, flatID string) ([]domain.MaintenanceBill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MaintenanceBill
	for _, b := range m.rows {
		if b.FlatID == flatID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBills) ListBySociety(_ context.Context, societyID string) ([]domain.MaintenanceBill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MaintenanceBill
	for _, b := range m.rows {
		if m.society[b.FlatID] == societyID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBills) ListPendingBySociety(_ context.Context, societyID string) ([]domain.MaintenanceBill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MaintenanceBill
	for _, b := range m.rows {
		if m.society[b.FlatID] == societyID && !b.Paid {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBills) ListOverdue(_ context.Context, before time.Time) ([]domain.MaintenanceBill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MaintenanceBill
	for _, b := range m.rows {
		if !b.Paid && b.DueDate.Before(before) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBills) MarkPaid(_ context.Context, id, reference string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return &domain.NotFoundError{Resource: "bill", ID: id}
	}
	if b.Paid {
		return &domain.ConflictError{Resource: "bill", ID: id}
	}
	b.Paid = true
	b.PaymentDate = &at
	b.PaymentReference = reference
	m.rows[id] = b
	return nil
}

type memNotices struct {
	mu   sync.Mutex
	rows map[string]domain.Notice
}

func newMemNotices() *memNotices {
	return &memNotices{rows: map[string]domain.Notice{}}
}

func (m *memNotices) Create(_ context.Context, n domain.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[n.ID] = n
	return nil
}

func (m *memNotices) GetByID(_ context.Context, id string) (domain.Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rows[id]
	if !ok {
		return domain.Notice{}, &domain.NotFoundError{Resource: "notice", ID: id}
	}
	return n, nil
}

func (m *memNotices) ListBySociety(_ context.Context, societyID string) ([]domain.Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notice
	for _, n := range m.rows {
		if n.SocietyID == societyID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotices) ListActiveBySociety(_ context.Context, societyID string) ([]domain.Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notice
	for _, n := range m.rows {
		if n.SocietyID == societyID && n.Active {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotices) Update(_ context.Context, n domain.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[n.ID]; !ok {
		return &domain.NotFoundError{Resource: "notice", ID: n.ID}
	}
	m.rows[n.ID] = n
	return nil
}

func (m *memNotices) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rows[id]
	if !ok {
		return &domain.NotFoundError{Resource: "notice", ID: id}
	}
	n.Active = false
	m.rows[id] = n
	return nil
}

func (m *memNotices) DeactivateExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for id, n := range m.rows {
		if n.Active && n.ExpiresAt != nil && n.ExpiresAt.Before(now) {
			n.Active = false
			m.rows[id] = n
			count++
		}
	}
	return count, nil
}

// recordingPublisher captures everything published, optionally failing to
// exercise the fire-and-forget contract.
type recordingPublisher struct {
	mu      sync.Mutex
	envs    []domain.Envelope
	failErr error
}

func (p *recordingPublisher) Publish(_ context.Context, env domain.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failErr != nil {
		return p.failErr
	}
	p.envs = append(p.envs, env)
	return nil
}

func (p *recordingPublisher) published() []domain.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Envelope, len(p.envs))
	copy(out, p.envs)
	return out
}

// fakeTransport records deliveries by address for router tests.
type fakeTransport struct {
	mu     sync.Mutex
	users  map[string][]domain.Envelope
	topics map[string][]domain.Envelope
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		users:  map[string][]domain.Envelope{},
		topics: map[string][]domain.Envelope{},
	}
}

func (t *fakeTransport) SendToUser(_ context.Context, userID string, env domain.Envelope) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.users[userID] = append(t.users[userID], env)
	return nil
}

func (t *fakeTransport) SendToTopic(_ context.Context, topic string, env domain.Envelope) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.topics[topic] = append(t.topics[topic], env)
	return nil
}

// tableValidator applies a transition table directly, standing in for the
// FSM adapter.
type tableValidator struct {
	transitions []domain.Transition
}

func (v tableValidator) Apply(_ context.Context, current, event string) (string, error) {
	for _, tr := range v.transitions {
		if tr.Event == event && tr.Src == current {
			return tr.Dst, nil
		}
	}
	return "", &domain.TransitionError{Event: event, Current: current}
}
