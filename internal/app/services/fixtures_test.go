package services

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/repositories/memstore"
	"github.com/yigit/placementcell/internal/pkg/auth"
	"github.com/yigit/placementcell/internal/pkg/filestorage"
	"github.com/yigit/placementcell/internal/pkg/gradesheet"
	"github.com/yigit/placementcell/internal/pkg/locks"
	"github.com/yigit/placementcell/internal/pkg/otp"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	auth.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type sentMail struct {
	To, Subject, Body string
}

type fakeSender struct {
	mu         sync.Mutex
	configured bool
	err        error
	sent       []sentMail
}

func (f *fakeSender) Configured() bool { return f.configured }

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeSender) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type fixture struct {
	store  *memstore.Store
	sender *fakeSender
	otps   *otp.MemoryStore
	files  *filestorage.LocalStorage
	dir    string
	svc    *Services
}

var staff = models.Actor{UserID: 1, Email: "coord@college.edu", Role: models.RoleCoordinator}

func newFixture(t *testing.T, tables ...gradesheet.Table) *fixture {
	t.Helper()

	store := memstore.New()
	sender := &fakeSender{configured: true}
	otpStore := otp.NewMemoryStore()
	dir := t.TempDir()
	files, err := filestorage.NewLocalStorage(dir)
	require.NoError(t, err)

	log := zerolog.Nop()
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	notifications := NewNotificationService(store, sender, MailSettings{ServerLoaded: true, Port: 587}, log)

	return &fixture{
		store:  store,
		sender: sender,
		otps:   otpStore,
		files:  files,
		dir:    dir,
		svc: &Services{
			Auth:         NewAuthService(store, otp.NewManager(otpStore, 10*time.Minute), jwtService, notifications, true, log),
			Student:      NewStudentService(store, log),
			Company:      NewCompanyService(store, log),
			Application:  NewApplicationService(store, notifications, log),
			Import:       NewImportService(store, files, gradesheet.StaticSource(tables), locks.NewLocalLocker(), log),
			Export:       NewExportService(store, log),
			Notification: notifications,
			Report:       NewReportService(store, log),
		},
	}
}

func (f *fixture) student(t *testing.T, rollNo, branch string, lateral bool) *models.Student {
	t.Helper()
	st, err := f.svc.Student.Create(context.Background(), CreateStudentInput{
		RollNo:         rollNo,
		Name:           "Student " + rollNo,
		Branch:         branch,
		IsLateralEntry: lateral,
		ResumeLink:     "https://drive.example.com/" + rollNo,
	})
	require.NoError(t, err)
	return st
}

func (f *fixture) company(t *testing.T, name string, policy models.SelectionPolicy) *models.Company {
	t.Helper()
	c, err := f.svc.Company.Create(context.Background(), CreateCompanyInput{Name: name, SelectionPolicy: string(policy)})
	require.NoError(t, err)
	return c
}

func (f *fixture) importRows(t *testing.T, branch string, semester int, credits float64, rows ...gradesheet.Row) *ImportReport {
	t.Helper()
	report, err := f.svc.Import.Reconcile(context.Background(), ImportRequest{Branch: branch, SemesterNo: semester, SemesterCredits: credits}, rows)
	require.NoError(t, err)
	return report
}

func (f *fixture) reload(t *testing.T, id int64) *models.Student {
	t.Helper()
	st, err := f.store.Students().GetByID(context.Background(), id)
	require.NoError(t, err)
	return st
}

var errBoom = errors.New("boom")

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }
