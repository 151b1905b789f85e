// Package memstore is an in-memory repositories.Store used by service and
// controller tests and for local runs without PostgreSQL. Transactions
// snapshot the whole dataset and restore it when the callback fails.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/placement"
	"github.com/yigit/placementcell/internal/app/repositories"
	"github.com/yigit/placementcell/internal/pkg/apperrors"
)

type dataset struct {
	seq           int64
	tick          int64
	students      map[int64]models.Student
	performances  map[int64]models.SemesterPerformance
	backlogs      []models.BacklogUpdate
	companies     map[int64]models.Company
	applications  map[int64]models.Application
	users         map[int64]models.User
	notifications map[int64]models.NotificationLog
}

func newDataset() *dataset {
	return &dataset{
		students:      map[int64]models.Student{},
		performances:  map[int64]models.SemesterPerformance{},
		companies:     map[int64]models.Company{},
		applications:  map[int64]models.Application{},
		users:         map[int64]models.User{},
		notifications: map[int64]models.NotificationLog{},
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		seq:           d.seq,
		tick:          d.tick,
		students:      make(map[int64]models.Student, len(d.students)),
		performances:  make(map[int64]models.SemesterPerformance, len(d.performances)),
		backlogs:      append([]models.BacklogUpdate(nil), d.backlogs...),
		companies:     make(map[int64]models.Company, len(d.companies)),
		applications:  make(map[int64]models.Application, len(d.applications)),
		users:         make(map[int64]models.User, len(d.users)),
		notifications: make(map[int64]models.NotificationLog, len(d.notifications)),
	}
	for k, v := range d.students {
		c.students[k] = v
	}
	for k, v := range d.performances {
		c.performances[k] = v
	}
	for k, v := range d.companies {
		c.companies[k] = v
	}
	for k, v := range d.applications {
		c.applications[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.notifications {
		c.notifications[k] = v
	}
	return c
}

// Store is the in-memory repositories.Store
type Store struct {
	mu   *sync.Mutex
	data **dataset
	base time.Time
	inTx bool

	// FailOn, when set, is consulted before every write with an operation
	// name such as "performances.Upsert"; a non-nil result aborts the write.
	FailOn func(op string) error
}

var _ repositories.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	d := newDataset()
	return &Store{
		mu:   &sync.Mutex{},
		data: &d,
		base: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *Store) d() *dataset { return *s.data }

// now returns a strictly increasing timestamp so ordering by time is stable
func (s *Store) now() time.Time {
	s.d().tick++
	return s.base.Add(time.Duration(s.d().tick) * time.Second)
}

func (s *Store) nextID() int64 {
	s.d().seq++
	return s.d().seq
}

func (s *Store) check(op string) error {
	if s.FailOn != nil {
		return s.FailOn(op)
	}
	return nil
}

// lock serializes access outside transactions; inside one the caller
// already owns the dataset
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Students() repositories.StudentRepository         { return studentRepo{s} }
func (s *Store) Performances() repositories.PerformanceRepository { return performanceRepo{s} }
func (s *Store) BacklogUpdates() repositories.BacklogUpdateRepository {
	return backlogRepo{s}
}
func (s *Store) Companies() repositories.CompanyRepository { return companyRepo{s} }
func (s *Store) Applications() repositories.ApplicationRepository {
	return applicationRepo{s}
}
func (s *Store) Users() repositories.UserRepository { return userRepo{s} }
func (s *Store) Notifications() repositories.NotificationRepository {
	return notificationRepo{s}
}

// WithTransaction runs fn and restores the previous dataset when it fails
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d().clone()
	tx := &Store{mu: s.mu, data: s.data, base: s.base, inTx: true, FailOn: s.FailOn}
	if err := fn(ctx, tx); err != nil {
		*s.data = snapshot
		return err
	}
	return nil
}

type studentRepo struct{ s *Store }

func (r studentRepo) Create(_ context.Context, st *models.Student) error {
	defer r.s.lock()()
	if err := r.s.check("students.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.d().students {
		if existing.RollNo == st.RollNo {
			return apperrors.ErrStudentExists
		}
	}
	st.ID = r.s.nextID()
	st.CreatedAt = r.s.now()
	if st.EligibilityStatus == "" {
		st.EligibilityStatus = models.StatusEligible
	}
	stored := *st
	stored.Semesters, stored.BlockedByCompany = nil, nil
	r.s.d().students[st.ID] = stored
	return nil
}

func (r studentRepo) GetByID(_ context.Context, id int64) (*models.Student, error) {
	defer r.s.lock()()
	st, ok := r.s.d().students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return &st, nil
}

func (r studentRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Student, error) {
	return r.GetByID(ctx, id)
}

func (r studentRepo) GetByRollNoForUpdate(_ context.Context, rollNo string) (*models.Student, error) {
	defer r.s.lock()()
	for _, st := range r.s.d().students {
		if st.RollNo == rollNo {
			found := st
			return &found, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (r studentRepo) List(_ context.Context) ([]*models.Student, error) {
	defer r.s.lock()()
	out := []*models.Student{}
	for _, st := range r.s.d().students {
		st := st
		out = append(out, &st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Branch != out[j].Branch {
			return out[i].Branch < out[j].Branch
		}
		return out[i].RollNo < out[j].RollNo
	})
	return out, nil
}

func (r studentRepo) Update(_ context.Context, st *models.Student) error {
	defer r.s.lock()()
	if err := r.s.check("students.Update"); err != nil {
		return err
	}
	existing, ok := r.s.d().students[st.ID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	stored := *st
	stored.RollNo, stored.CreatedAt = existing.RollNo, existing.CreatedAt
	stored.Semesters, stored.BlockedByCompany = nil, nil
	r.s.d().students[st.ID] = stored
	return nil
}

func (r studentRepo) Delete(_ context.Context, id int64) error {
	defer r.s.lock()()
	d := r.s.d()
	if _, ok := d.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(d.students, id)
	for pid, p := range d.performances {
		if p.StudentID == id {
			delete(d.performances, pid)
		}
	}
	kept := d.backlogs[:0]
	for _, b := range d.backlogs {
		if b.StudentID != id {
			kept = append(kept, b)
		}
	}
	d.backlogs = kept
	for aid, a := range d.applications {
		if a.StudentID == id {
			delete(d.applications, aid)
		}
	}
	for uid, u := range d.users {
		if u.StudentID != nil && *u.StudentID == id {
			u.StudentID = nil
			d.users[uid] = u
		}
	}
	return nil
}

func (r studentRepo) Count(_ context.Context) (int, error) {
	defer r.s.lock()()
	return len(r.s.d().students), nil
}

type performanceRepo struct{ s *Store }

func (r performanceRepo) ListByStudent(_ context.Context, studentID int64) ([]models.SemesterPerformance, error) {
	defer r.s.lock()()
	out := []models.SemesterPerformance{}
	for _, p := range r.s.d().performances {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SemesterNo < out[j].SemesterNo })
	return out, nil
}

func (r performanceRepo) Get(_ context.Context, studentID int64, semesterNo int) (*models.SemesterPerformance, error) {
	defer r.s.lock()()
	for _, p := range r.s.d().performances {
		if p.StudentID == studentID && p.SemesterNo == semesterNo {
			found := p
			return &found, nil
		}
	}
	return nil, apperrors.ErrPerformanceNotFound
}

func (r performanceRepo) Upsert(_ context.Context, p *models.SemesterPerformance) error {
	defer r.s.lock()()
	if err := r.s.check("performances.Upsert"); err != nil {
		return err
	}
	d := r.s.d()
	if _, ok := d.students[p.StudentID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	for id, existing := range d.performances {
		if existing.StudentID == p.StudentID && existing.SemesterNo == p.SemesterNo {
			p.ID = id
			p.ImportedAt = r.s.now()
			d.performances[id] = *p
			return nil
		}
	}
	p.ID = r.s.nextID()
	p.ImportedAt = r.s.now()
	d.performances[p.ID] = *p
	return nil
}

func (r performanceRepo) UpdateBacklog(_ context.Context, id int64, backlog int) error {
	defer r.s.lock()()
	if err := r.s.check("performances.UpdateBacklog"); err != nil {
		return err
	}
	p, ok := r.s.d().performances[id]
	if !ok {
		return apperrors.ErrPerformanceNotFound
	}
	p.BacklogCount = backlog
	r.s.d().performances[id] = p
	return nil
}

type backlogRepo struct{ s *Store }

func (r backlogRepo) Create(_ context.Context, u *models.BacklogUpdate) error {
	defer r.s.lock()()
	if err := r.s.check("backlogUpdates.Create"); err != nil {
		return err
	}
	u.ID = r.s.nextID()
	u.UpdatedAt = r.s.now()
	r.s.d().backlogs = append(r.s.d().backlogs, *u)
	return nil
}

func (r backlogRepo) ListHistory(_ context.Context) ([]models.BacklogUpdate, error) {
	defer r.s.lock()()
	d := r.s.d()
	out := make([]models.BacklogUpdate, 0, len(d.backlogs))
	for i := len(d.backlogs) - 1; i >= 0; i-- {
		u := d.backlogs[i]
		if st, ok := d.students[u.StudentID]; ok {
			u.RollNo, u.StudentName = st.RollNo, st.Name
		}
		out = append(out, u)
	}
	return out, nil
}

type companyRepo struct{ s *Store }

func (r companyRepo) Create(_ context.Context, c *models.Company) error {
	defer r.s.lock()()
	if err := r.s.check("companies.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.d().companies {
		if existing.Name == c.Name {
			return apperrors.ErrCompanyExists
		}
	}
	c.ID = r.s.nextID()
	c.CreatedAt = r.s.now()
	r.s.d().companies[c.ID] = *c
	return nil
}

func (r companyRepo) GetByID(_ context.Context, id int64) (*models.Company, error) {
	defer r.s.lock()()
	c, ok := r.s.d().companies[id]
	if !ok {
		return nil, apperrors.ErrCompanyNotFound
	}
	return &c, nil
}

func (r companyRepo) List(_ context.Context) ([]*models.Company, error) {
	defer r.s.lock()()
	out := []*models.Company{}
	for _, c := range r.s.d().companies {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r companyRepo) Delete(_ context.Context, id int64) error {
	defer r.s.lock()()
	d := r.s.d()
	if _, ok := d.companies[id]; !ok {
		return apperrors.ErrCompanyNotFound
	}
	delete(d.companies, id)
	for aid, a := range d.applications {
		if a.CompanyID == id {
			delete(d.applications, aid)
		}
	}
	for sid, st := range d.students {
		if st.BlockedByCompanyID != nil && *st.BlockedByCompanyID == id {
			st.BlockedByCompanyID = nil
			d.students[sid] = st
		}
	}
	return nil
}

func (r companyRepo) Count(_ context.Context) (int, error) {
	defer r.s.lock()()
	return len(r.s.d().companies), nil
}

type applicationRepo struct{ s *Store }

func (r applicationRepo) Create(_ context.Context, a *models.Application) error {
	defer r.s.lock()()
	if err := r.s.check("applications.Create"); err != nil {
		return err
	}
	d := r.s.d()
	for _, existing := range d.applications {
		if existing.StudentID == a.StudentID && existing.CompanyID == a.CompanyID {
			return apperrors.ErrApplicationExists
		}
	}
	if a.Status == "" {
		a.Status = models.AppStatusApplied
	}
	a.ID = r.s.nextID()
	a.AppliedAt = r.s.now()
	stored := *a
	stored.Student, stored.Company = nil, nil
	d.applications[a.ID] = stored
	return nil
}

// populate attaches copies of the student and company
func (r applicationRepo) populate(a models.Application) *models.Application {
	d := r.s.d()
	if st, ok := d.students[a.StudentID]; ok {
		a.Student = &st
	}
	if c, ok := d.companies[a.CompanyID]; ok {
		a.Company = &c
	}
	return &a
}

func (r applicationRepo) GetByID(_ context.Context, id int64) (*models.Application, error) {
	defer r.s.lock()()
	a, ok := r.s.d().applications[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	return r.populate(a), nil
}

func (r applicationRepo) Exists(_ context.Context, studentID, companyID int64) (bool, error) {
	defer r.s.lock()()
	for _, a := range r.s.d().applications {
		if a.StudentID == studentID && a.CompanyID == companyID {
			return true, nil
		}
	}
	return false, nil
}

func matches(a models.Application, f repositories.ApplicationFilter) bool {
	if f.StudentID != nil && a.StudentID != *f.StudentID {
		return false
	}
	if f.CompanyID != nil && a.CompanyID != *f.CompanyID {
		return false
	}
	return true
}

func (r applicationRepo) List(_ context.Context, f repositories.ApplicationFilter) ([]*models.Application, error) {
	defer r.s.lock()()
	out := []*models.Application{}
	for _, a := range r.s.d().applications {
		if matches(a, f) {
			out = append(out, r.populate(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].AppliedAt.After(out[j].AppliedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r applicationRepo) Count(_ context.Context, f repositories.ApplicationFilter) (int, error) {
	defer r.s.lock()()
	n := 0
	for _, a := range r.s.d().applications {
		if matches(a, f) {
			n++
		}
	}
	return n, nil
}

func (r applicationRepo) UpdateStatus(_ context.Context, id int64, status models.ApplicationStatus) error {
	defer r.s.lock()()
	if err := r.s.check("applications.UpdateStatus"); err != nil {
		return err
	}
	a, ok := r.s.d().applications[id]
	if !ok {
		return apperrors.ErrApplicationNotFound
	}
	a.Status = status
	r.s.d().applications[id] = a
	return nil
}

func (r applicationRepo) MarkExported(_ context.Context, ids []int64, at time.Time) error {
	defer r.s.lock()()
	if err := r.s.check("applications.MarkExported"); err != nil {
		return err
	}
	for _, id := range ids {
		if a, ok := r.s.d().applications[id]; ok {
			stamp := at
			a.ExportedAt = &stamp
			r.s.d().applications[id] = a
		}
	}
	return nil
}

func (r applicationRepo) LatestBlockingSelection(_ context.Context, studentID int64) (*placement.BlockingSelection, error) {
	defer r.s.lock()()
	d := r.s.d()
	var best *models.Application
	for _, a := range d.applications {
		a := a
		if a.StudentID != studentID || a.Status != models.AppStatusSelected {
			continue
		}
		c, ok := d.companies[a.CompanyID]
		if !ok || c.SelectionPolicy != models.PolicyBlocking {
			continue
		}
		if best == nil || a.AppliedAt.After(best.AppliedAt) ||
			(a.AppliedAt.Equal(best.AppliedAt) && a.ID > best.ID) {
			best = &a
		}
	}
	if best == nil {
		return nil, nil
	}
	c := d.companies[best.CompanyID]
	return &placement.BlockingSelection{CompanyID: c.ID, CompanyName: c.Name}, nil
}

// SetAppliedAt overrides an application's timestamp for ordering tests
func (s *Store) SetAppliedAt(id int64, at time.Time) {
	defer s.lock()()
	if a, ok := s.d().applications[id]; ok {
		a.AppliedAt = at
		s.d().applications[id] = a
	}
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *models.User) error {
	defer r.s.lock()()
	if err := r.s.check("users.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.d().users {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
		if u.StudentID != nil && existing.StudentID != nil && *existing.StudentID == *u.StudentID {
			return apperrors.NewConflictError("This student profile is already linked to an account.")
		}
	}
	u.ID = r.s.nextID()
	u.CreatedAt = r.s.now()
	r.s.d().users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	defer r.s.lock()()
	u, ok := r.s.d().users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.d().users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r userRepo) GetStudentUser(_ context.Context, studentID int64) (*models.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.d().users {
		if u.RoleType == models.RoleStudent && u.StudentID != nil && *u.StudentID == studentID {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r userRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == apperrors.ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r userRepo) SetVerified(_ context.Context, id int64) error {
	defer r.s.lock()()
	u, ok := r.s.d().users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.IsVerified = true
	r.s.d().users[id] = u
	return nil
}

func (r userRepo) List(_ context.Context) ([]*models.User, error) {
	defer r.s.lock()()
	out := []*models.User{}
	for _, u := range r.s.d().users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r userRepo) CountByRole(_ context.Context, role models.RoleType) (int, error) {
	defer r.s.lock()()
	n := 0
	for _, u := range r.s.d().users {
		if u.RoleType == role {
			n++
		}
	}
	return n, nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *models.NotificationLog) error {
	defer r.s.lock()()
	if err := r.s.check("notifications.Create"); err != nil {
		return err
	}
	n.ID = r.s.nextID()
	n.CreatedAt = r.s.now()
	r.s.d().notifications[n.ID] = *n
	return nil
}

func (r notificationRepo) UpdateStatus(_ context.Context, n *models.NotificationLog) error {
	defer r.s.lock()()
	if err := r.s.check("notifications.UpdateStatus"); err != nil {
		return err
	}
	if _, ok := r.s.d().notifications[n.ID]; !ok {
		return apperrors.NewResourceNotFoundError("notification log not found")
	}
	r.s.d().notifications[n.ID] = *n
	return nil
}

func (r notificationRepo) ListRecent(_ context.Context, limit int) ([]*models.NotificationLog, error) {
	defer r.s.lock()()
	out := []*models.NotificationLog{}
	for _, n := range r.s.d().notifications {
		n := n
		out = append(out, &n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
