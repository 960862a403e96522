package leave

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workpulse/hr-backend-go/internal/domain/attendance"
	"github.com/workpulse/hr-backend-go/internal/domain/business"
	"github.com/workpulse/hr-backend-go/internal/domain/leave"
	"github.com/workpulse/hr-backend-go/internal/domain/notification"
	"github.com/workpulse/hr-backend-go/internal/domain/staff"
	"github.com/workpulse/hr-backend-go/internal/service/shift"
)

type memLeaveRepo struct {
	requests map[string]leave.Request
}

func newMemLeaveRepo() *memLeaveRepo {
	return &memLeaveRepo{requests: make(map[string]leave.Request)}
}

func (m *memLeaveRepo) Create(_ context.Context, req leave.Request) (leave.Request, error) {
	m.requests[req.ID] = req
	return req, nil
}

func (m *memLeaveRepo) GetByID(_ context.Context, id string) (leave.Request, error) {
	req, ok := m.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

func (m *memLeaveRepo) GetByIDForUpdate(ctx context.Context, id string) (leave.Request, error) {
	return m.GetByID(ctx, id)
}

func (m *memLeaveRepo) Update(_ context.Context, req leave.Request) error {
	m.requests[req.ID] = req
	return nil
}

func (m *memLeaveRepo) ListByEmployee(_ context.Context, employeeID string, _ leave.LeaveRequestFilter) ([]leave.Request, int64, error) {
	var out []leave.Request
	for _, req := range m.requests {
		if req.EmployeeID == employeeID {
			out = append(out, req)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memLeaveRepo) ListOverlapping(_ context.Context, employeeID string, from, to time.Time, statuses []leave.Status) ([]leave.Request, error) {
	var out []leave.Request
	for _, req := range m.requests {
		if req.EmployeeID != employeeID || req.StartDate.After(to) || req.EndDate.Before(from) {
			continue
		}
		for _, st := range statuses {
			if req.Status == st {
				out = append(out, req)
				break
			}
		}
	}
	return out, nil
}

func (m *memLeaveRepo) ApprovedOnDate(_ context.Context, employeeID string, date time.Time) (*leave.Request, error) {
	for _, req := range m.requests {
		if req.EmployeeID == employeeID && req.Status == leave.StatusApproved &&
			!date.Before(req.StartDate) && !date.After(req.EndDate) {
			r := req
			return &r, nil
		}
	}
	return nil, nil
}

type memAttendanceRepo struct {
	records map[string]attendance.Record
}

func newMemAttendanceRepo() *memAttendanceRepo {
	return &memAttendanceRepo{records: make(map[string]attendance.Record)}
}

func recordKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (m *memAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	rec, ok := m.records[recordKey(employeeID, date)]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (m *memAttendanceRepo) Create(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	m.records[recordKey(rec.EmployeeID, rec.Date)] = rec
	return rec, nil
}

func (m *memAttendanceRepo) Update(_ context.Context, rec attendance.Record) error {
	m.records[recordKey(rec.EmployeeID, rec.Date)] = rec
	return nil
}

func (m *memAttendanceRepo) Delete(_ context.Context, id string) error {
	for k, rec := range m.records {
		if rec.ID == id {
			delete(m.records, k)
		}
	}
	return nil
}

func (m *memAttendanceRepo) ListRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, rec := range m.records {
		if rec.EmployeeID == employeeID && !rec.Date.Before(from) && !rec.Date.After(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memStaffRepo struct {
	staff     map[string]staff.Staff
	templates map[string]staff.LeaveTemplate

	templateFetches int
}

func (m *memStaffRepo) GetByID(_ context.Context, id string) (staff.Staff, error) {
	st, ok := m.staff[id]
	if !ok {
		return staff.Staff{}, staff.ErrStaffNotFound
	}
	return st, nil
}

func (m *memStaffRepo) GetTemplate(_ context.Context, id string) (staff.LeaveTemplate, error) {
	m.templateFetches++
	tpl, ok := m.templates[id]
	if !ok {
		return staff.LeaveTemplate{}, staff.ErrTemplateNotFound
	}
	return tpl, nil
}

func (m *memStaffRepo) ListActiveByBusiness(_ context.Context, businessID string) ([]staff.Staff, error) {
	var out []staff.Staff
	for _, st := range m.staff {
		if st.BusinessID == businessID && st.IsActive {
			out = append(out, st)
		}
	}
	return out, nil
}

type memBusinessRepo struct {
	items map[string]business.Business
}

func (m *memBusinessRepo) GetByID(_ context.Context, id string) (business.Business, error) {
	biz, ok := m.items[id]
	if !ok {
		return business.Business{}, business.ErrBusinessNotFound
	}
	return biz, nil
}

func (m *memBusinessRepo) List(_ context.Context) ([]business.Business, error) {
	var out []business.Business
	for _, biz := range m.items {
		out = append(out, biz)
	}
	return out, nil
}

type memDispatcher struct {
	sent    []notification.Notification
	failErr error
}

func (m *memDispatcher) Dispatch(_ context.Context, n notification.Notification) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, n)
	return nil
}

type noopTx struct{}

func (noopTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

const (
	testEmployee = "emp-1"
	testBusiness = "biz-1"
	testApprover = "mgr-1"
	testTemplate = "tpl-1"
)

type fx struct {
	svc        *Service
	engine     *BalanceEngine
	leaves     *memLeaveRepo
	att        *memAttendanceRepo
	staffRepo  *memStaffRepo
	dispatcher *memDispatcher
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newFx(t *testing.T) *fx {
	t.Helper()

	templateID := testTemplate
	staffRepo := &memStaffRepo{
		staff: map[string]staff.Staff{
			testEmployee: {
				ID:              testEmployee,
				BusinessID:      testBusiness,
				FullName:        "Asha Verma",
				LeaveTemplateID: &templateID,
				IsActive:        true,
			},
		},
		templates: map[string]staff.LeaveTemplate{
			testTemplate: {
				ID:         testTemplate,
				BusinessID: testBusiness,
				Name:       "Standard",
				Types: staff.LeaveTypeConfigs{
					{Name: "Casual Leave", DayLimit: 2, CarryForward: false},
					{Name: "Sick Leave", DayLimit: 6, CarryForward: true},
					{Name: "Earned Leave", DayLimit: 12, CarryForward: false},
				},
			},
		},
	}
	bizRepo := &memBusinessRepo{items: map[string]business.Business{
		testBusiness: {
			ID:       testBusiness,
			Name:     "Acme Stores",
			Timezone: "Asia/Kolkata",
			Shift:    business.ShiftConfig{StartTime: "09:00", EndTime: "18:00"},
		},
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := shift.NewResolver(shift.Defaults{
		Timezone: "Asia/Kolkata", ShiftStart: "09:00", ShiftEnd: "18:00",
	}, logger)

	leaveRepo := newMemLeaveRepo()
	attRepo := newMemAttendanceRepo()
	dispatcher := &memDispatcher{}
	engine := NewBalanceEngine(leaveRepo, staffRepo, logger)
	reconciler := NewReconciler(attRepo, dispatcher, logger)

	svc := NewService(leaveRepo, staffRepo, bizRepo, resolver, engine, reconciler,
		dispatcher, noopTx{}, logger)
	svc.now = func() time.Time { return time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC) }

	return &fx{
		svc:        svc,
		engine:     engine,
		leaves:     leaveRepo,
		att:        attRepo,
		staffRepo:  staffRepo,
		dispatcher: dispatcher,
	}
}

func (f *fx) seedRequest(id, leaveType string, start, end time.Time, days float64, status leave.Status, session *leave.Session) {
	f.leaves.requests[id] = leave.Request{
		ID:         id,
		EmployeeID: testEmployee,
		BusinessID: testBusiness,
		Type:       leaveType,
		Kind:       leave.CanonicalKind(leaveType),
		Session:    session,
		StartDate:  start,
		EndDate:    end,
		Days:       days,
		Status:     status,
	}
}

func TestCreatePendingRequest(t *testing.T) {
	f := newFx(t)

	resp, err := f.svc.Create(context.Background(), leave.CreateLeaveRequest{
		EmployeeID: testEmployee,
		Type:       "Earned Leave",
		StartDate:  "2025-06-16",
		EndDate:    "2025-06-18",
		Reason:     "travel",
	})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, resp.Status)
	assert.Equal(t, 3.0, resp.Days)

	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, notification.KindLeaveRequested, f.dispatcher.sent[0].Kind)
}

func TestCreateHalfDayConstraints(t *testing.T) {
	f := newFx(t)

	_, err := f.svc.Create(context.Background(), leave.CreateLeaveRequest{
		EmployeeID: testEmployee,
		Type:       "Half Day",
		StartDate:  "2025-06-16",
		EndDate:    "2025-06-16",
		Reason:     "errand",
	})
	assert.ErrorIs(t, err, leave.ErrSessionRequired)

	_, err = f.svc.Create(context.Background(), leave.CreateLeaveRequest{
		EmployeeID: testEmployee,
		Type:       "Casual Leave",
		Session:    "first_half",
		StartDate:  "2025-06-16",
		EndDate:    "2025-06-17",
		Reason:     "errand",
	})
	assert.ErrorIs(t, err, leave.ErrHalfDayMultipleDays)

	resp, err := f.svc.Create(context.Background(), leave.CreateLeaveRequest{
		EmployeeID: testEmployee,
		Type:       "Casual Leave",
		Session:    "first_half",
		StartDate:  "2025-06-16",
		EndDate:    "2025-06-16",
		Reason:     "errand",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.5, resp.Days)
}

func TestCreateRejectsOverlap(t *testing.T) {
	f := newFx(t)
	f.seedRequest("lv-old", "Earned Leave", date(2025, 6, 17), date(2025, 6, 19), 3, leave.StatusApproved, nil)

	_, err := f.svc.Create(context.Background(), leave.CreateLeaveRequest{
		EmployeeID: testEmployee,
		Type:       "Casual Leave",
		StartDate:  "2025-06-16",
		EndDate:    "2025-06-17",
		Reason:     "travel",
	})
	assert.ErrorIs(t, err, leave.ErrOverlappingLeave)
}

func TestCreateRejectsOverQuota(t *testing.T) {
	f := newFx(t)
	// Casual allows 2 per month; both already approved in June.
	f.seedRequest("lv-1", "Casual Leave", date(2025, 6, 3), date(2025, 6, 3), 1, leave.StatusApproved, nil)
	f.seedRequest("lv-2", "Casual Leave", date(2025, 6, 5), date(2025, 6, 5), 1, leave.StatusApproved, nil)

	_, err := f.svc.Create(context.Background(), leave.CreateLeaveRequest{
		EmployeeID: testEmployee,
		Type:       "Casual Leave",
		StartDate:  "2025-06-20",
		EndDate:    "2025-06-20",
		Reason:     "errand",
	})

	var quotaErr *leave.QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 2.0, quotaErr.Used)
	assert.Equal(t, 1.0, quotaErr.Requested)
}

func TestApproveMaterializesAttendance(t *testing.T) {
	f := newFx(t)
	f.seedRequest("lv-1", "Earned Leave", date(2025, 6, 16), date(2025, 6, 18), 3, leave.StatusPending, nil)

	resp, err := f.svc.Approve(context.Background(), leave.ApproveLeaveRequest{RequestID: "lv-1"}, testApprover)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, resp.Status)
	require.NotNil(t, resp.ApprovedBy)
	assert.Equal(t, testApprover, *resp.ApprovedBy)

	require.Len(t, f.att.records, 3)
	for d := 16; d <= 18; d++ {
		rec, ok := f.att.records[recordKey(testEmployee, date(2025, 6, d))]
		require.True(t, ok, "missing record for day %d", d)
		assert.Equal(t, attendance.StatusOnLeave, rec.Status)
		require.NotNil(t, rec.LeaveID)
		assert.Equal(t, "lv-1", *rec.LeaveID)
	}

	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, notification.KindLeaveApproved, f.dispatcher.sent[0].Kind)
}

func TestApproveTwiceRejected(t *testing.T) {
	f := newFx(t)
	f.seedRequest("lv-1", "Earned Leave", date(2025, 6, 16), date(2025, 6, 16), 1, leave.StatusPending, nil)

	_, err := f.svc.Approve(context.Background(), leave.ApproveLeaveRequest{RequestID: "lv-1"}, testApprover)
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), leave.ApproveLeaveRequest{RequestID: "lv-1"}, testApprover)
	assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)
	// Still exactly one materialized record.
	assert.Len(t, f.att.records, 1)
}

func TestApproveRechecksQuota(t *testing.T) {
	f := newFx(t)
	f.seedRequest("lv-1", "Casual Leave", date(2025, 6, 3), date(2025, 6, 4), 2, leave.StatusApproved, nil)
	f.seedRequest("lv-2", "Casual Leave", date(2025, 6, 20), date(2025, 6, 20), 1, leave.StatusPending, nil)

	_, err := f.svc.Approve(context.Background(), leave.ApproveLeaveRequest{RequestID: "lv-2"}, testApprover)

	var quotaErr *leave.QuotaError
	require.ErrorAs(t, err, &quotaErr)
	// The pending request stays pending and nothing materializes.
	assert.Equal(t, leave.StatusPending, f.leaves.requests["lv-2"].Status)
	assert.Empty(t, f.att.records)
}

func TestCancelApprovedRevertsAttendance(t *testing.T) {
	f := newFx(t)
	f.seedRequest("lv-1", "Earned Leave", date(2025, 6, 16), date(2025, 6, 18), 3, leave.StatusPending, nil)

	_, err := f.svc.Approve(context.Background(), leave.ApproveLeaveRequest{RequestID: "lv-1"}, testApprover)
	require.NoError(t, err)
	require.Len(t, f.att.records, 3)

	resp, err := f.svc.Cancel(context.Background(), "lv-1", testEmployee)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, resp.Status)
	assert.Empty(t, f.att.records)
}

func TestRevertKeepsPunchedDays(t *testing.T) {
	f := newFx(t)
	session := leave.SessionFirstHalf
	f.seedRequest("lv-1", "Casual Leave", date(2025, 6, 16), date(2025, 6, 16), 0.5, leave.StatusPending, &session)

	_, err := f.svc.Approve(context.Background(), leave.ApproveLeaveRequest{RequestID: "lv-1"}, testApprover)
	require.NoError(t, err)

	// Employee punches in for the working half before the cancellation.
	rec := f.att.records[recordKey(testEmployee, date(2025, 6, 16))]
	punch := time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC)
	rec.PunchIn = &punch
	f.att.records[recordKey(testEmployee, date(2025, 6, 16))] = rec

	_, err = f.svc.Cancel(context.Background(), "lv-1", testEmployee)
	require.NoError(t, err)

	rec, ok := f.att.records[recordKey(testEmployee, date(2025, 6, 16))]
	require.True(t, ok, "punched record must survive the revert")
	assert.Nil(t, rec.LeaveID)
	assert.Nil(t, rec.LeaveType)
	assert.Nil(t, rec.LeaveSession)
	assert.Equal(t, attendance.StatusPending, rec.Status)
	require.NotNil(t, rec.PunchIn)
}

func TestRejectPending(t *testing.T) {
	f := newFx(t)
	f.seedRequest("lv-1", "Sick Leave", date(2025, 6, 16), date(2025, 6, 16), 1, leave.StatusPending, nil)

	resp, err := f.svc.Reject(context.Background(), leave.RejectLeaveRequest{
		RequestID: "lv-1", Reason: "coverage needed",
	}, testApprover)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, resp.Status)
	require.NotNil(t, resp.Rejection)
	assert.Empty(t, f.att.records)
}

func TestUpdateStatusAdminPath(t *testing.T) {
	f := newFx(t)
	f.seedRequest("lv-1", "Earned Leave", date(2025, 6, 16), date(2025, 6, 17), 2, leave.StatusPending, nil)

	resp, err := f.svc.UpdateStatus(context.Background(), "lv-1", leave.StatusApproved, testApprover)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, resp.Status)
	assert.Len(t, f.att.records, 2)

	// Approved can only be walked back to cancelled.
	_, err = f.svc.UpdateStatus(context.Background(), "lv-1", leave.StatusRejected, testApprover)
	assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)

	resp, err = f.svc.UpdateStatus(context.Background(), "lv-1", leave.StatusCancelled, testApprover)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, resp.Status)
	assert.Empty(t, f.att.records)
}

func TestUpdateStatusRechecksQuota(t *testing.T) {
	f := newFx(t)
	// Casual allows 2 per month; both already spent when the admin tries to
	// approve the pending third day.
	f.seedRequest("lv-1", "Casual Leave", date(2025, 6, 3), date(2025, 6, 4), 2, leave.StatusApproved, nil)
	f.seedRequest("lv-2", "Casual Leave", date(2025, 6, 20), date(2025, 6, 20), 1, leave.StatusPending, nil)

	_, err := f.svc.UpdateStatus(context.Background(), "lv-2", leave.StatusApproved, testApprover)

	var quotaErr *leave.QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 2.0, quotaErr.Used)
	assert.Equal(t, leave.StatusPending, f.leaves.requests["lv-2"].Status)
	assert.Empty(t, f.att.records)
}

func TestTransitionSurvivesNotificationFailure(t *testing.T) {
	f := newFx(t)
	f.dispatcher.failErr = assert.AnError
	f.seedRequest("lv-1", "Earned Leave", date(2025, 6, 16), date(2025, 6, 16), 1, leave.StatusPending, nil)

	resp, err := f.svc.Approve(context.Background(), leave.ApproveLeaveRequest{RequestID: "lv-1"}, testApprover)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, resp.Status)
	assert.Len(t, f.att.records, 1)
}
