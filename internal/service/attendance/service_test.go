package attendance

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
	"github.com/workpulse/hr-backend-go/internal/domain/staff"
	"github.com/workpulse/hr-backend-go/internal/service/shift"
)

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

type memStaffRepo struct {
	staff     map[string]staff.Staff
	templates map[string]staff.LeaveTemplate
}

func (m *memStaffRepo) GetByID(_ context.Context, id string) (staff.Staff, error) {
	st, ok := m.staff[id]
	if !ok {
		return staff.Staff{}, staff.ErrStaffNotFound
	}
	return st, nil
}

func (m *memStaffRepo) GetTemplate(_ context.Context, id string) (staff.LeaveTemplate, error) {
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

const (
	testEmployee = "emp-1"
	testBusiness = "biz-1"
)

type fixture struct {
	svc         *Service
	attendance  *memAttendanceRepo
	leaves      *memLeaveRepo
	staffRepo   *memStaffRepo
	localoffset *time.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	salary := 900.0
	staffRepo := &memStaffRepo{staff: map[string]staff.Staff{
		testEmployee: {
			ID:          testEmployee,
			BusinessID:  testBusiness,
			FullName:    "Asha Verma",
			DailySalary: &salary,
			IsActive:    true,
		},
	}}
	bizRepo := &memBusinessRepo{items: map[string]business.Business{
		testBusiness: {
			ID:       testBusiness,
			Name:     "Acme Stores",
			Timezone: "Asia/Kolkata",
			Shift: business.ShiftConfig{
				StartTime:          "09:00",
				EndTime:            "18:00",
				GracePeriodMinutes: 10,
				HalfDay: business.HalfDayConfig{
					SecondHalfLoginGraceMinutes: 15,
					FirstHalfLogoutGraceMinutes: 15,
				},
			},
			Fine: business.FineConfig{
				Enabled:      true,
				GraceMinutes: 10,
				Method:       business.FineShiftBased,
			},
		},
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := shift.NewResolver(shift.Defaults{
		Timezone:   "Asia/Kolkata",
		ShiftStart: "09:00",
		ShiftEnd:   "18:00",
	}, logger)

	attRepo := newMemAttendanceRepo()
	leaveRepo := newMemLeaveRepo()
	svc := NewService(attRepo, leaveRepo, staffRepo, bizRepo, resolver, logger)

	return &fixture{
		svc:         svc,
		attendance:  attRepo,
		leaves:      leaveRepo,
		staffRepo:   staffRepo,
		localoffset: time.FixedZone("IST", 5*3600+1800),
	}
}

// at freezes the service clock to the given local wall time on 2025-06-02.
func (f *fixture) at(t *testing.T, hour, minute int) {
	t.Helper()
	f.svc.now = func() time.Time {
		return time.Date(2025, 6, 2, hour, minute, 0, 0, f.localoffset)
	}
}

func TestCheckInOnTime(t *testing.T) {
	f := newFixture(t)
	f.at(t, 8, 58)

	resp, err := f.svc.CheckIn(context.Background(), testEmployee)
	require.NoError(t, err)
	assert.True(t, resp.Decision.Allowed)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
	assert.Equal(t, 0, resp.LateMinutes)
	assert.Equal(t, "0.00", resp.FineAmount)
}

func TestCheckInWithinShiftGrace(t *testing.T) {
	f := newFixture(t)
	// 8 minutes past shift start, inside the 10-minute grace period.
	f.at(t, 9, 8)

	resp, err := f.svc.CheckIn(context.Background(), testEmployee)
	require.NoError(t, err)
	assert.True(t, resp.Decision.Allowed)
	assert.Equal(t, 0, resp.LateMinutes)
	assert.Equal(t, "0.00", resp.FineAmount)
}

func TestCheckInLateBeyondGrace(t *testing.T) {
	f := newFixture(t)
	f.at(t, 9, 30)

	resp, err := f.svc.CheckIn(context.Background(), testEmployee)
	require.NoError(t, err)
	assert.True(t, resp.Decision.Allowed)
	assert.Equal(t, 30, resp.LateMinutes)
	// 900/540 per minute * 30 minutes.
	assert.Equal(t, "50.00", resp.FineAmount)
}

func TestCheckInTwiceRejected(t *testing.T) {
	f := newFixture(t)
	f.at(t, 9, 0)

	_, err := f.svc.CheckIn(context.Background(), testEmployee)
	require.NoError(t, err)

	_, err = f.svc.CheckIn(context.Background(), testEmployee)
	assert.ErrorIs(t, err, attendance.ErrAlreadyPunchedIn)
}

func TestCheckInStaffWithoutBusiness(t *testing.T) {
	f := newFixture(t)
	f.at(t, 9, 0)
	f.staffRepo.staff["emp-2"] = staff.Staff{ID: "emp-2", FullName: "Ravi Nair", IsActive: true}

	_, err := f.svc.CheckIn(context.Background(), "emp-2")
	assert.ErrorIs(t, err, attendance.ErrStaffNotConfigured)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	f := newFixture(t)
	f.at(t, 18, 0)

	_, err := f.svc.CheckOut(context.Background(), testEmployee)
	assert.ErrorIs(t, err, attendance.ErrNotPunchedIn)
}

func TestCheckOutEarlyExitFine(t *testing.T) {
	f := newFixture(t)
	f.at(t, 9, 0)
	_, err := f.svc.CheckIn(context.Background(), testEmployee)
	require.NoError(t, err)

	f.at(t, 17, 30)
	resp, err := f.svc.CheckOut(context.Background(), testEmployee)
	require.NoError(t, err)
	assert.Equal(t, 30, resp.EarlyExitMinutes)
	assert.Equal(t, "50.00", resp.FineAmount)
}

func TestCheckInDeniedOnFullDayLeave(t *testing.T) {
	f := newFixture(t)
	f.at(t, 9, 0)

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	f.leaves.requests["lv-1"] = leave.Request{
		ID:         "lv-1",
		EmployeeID: testEmployee,
		BusinessID: testBusiness,
		Type:       "Casual Leave",
		Kind:       leave.KindCasual,
		StartDate:  day,
		EndDate:    day,
		Days:       1,
		Status:     leave.StatusApproved,
	}

	resp, err := f.svc.CheckIn(context.Background(), testEmployee)
	require.NoError(t, err)
	assert.False(t, resp.Decision.Allowed)
	assert.Contains(t, resp.Decision.Reason, "approved leave")
}

func TestHalfDayLeavePreservesMaterializedRecord(t *testing.T) {
	f := newFixture(t)

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	session := leave.SessionFirstHalf
	f.leaves.requests["lv-2"] = leave.Request{
		ID:         "lv-2",
		EmployeeID: testEmployee,
		BusinessID: testBusiness,
		Type:       "Casual Leave",
		Kind:       leave.KindCasual,
		Session:    &session,
		StartDate:  day,
		EndDate:    day,
		Days:       0.5,
		Status:     leave.StatusApproved,
	}

	leaveID := "lv-2"
	leaveType := "Casual Leave"
	sessionStr := string(session)
	f.attendance.records[recordKey(testEmployee, day)] = attendance.Record{
		ID:           "att-1",
		EmployeeID:   testEmployee,
		BusinessID:   testBusiness,
		Date:         day,
		Status:       attendance.StatusHalfDay,
		LeaveID:      &leaveID,
		LeaveType:    &leaveType,
		LeaveSession: &sessionStr,
	}

	// Before the second-half window opens.
	f.at(t, 13, 10)
	resp, err := f.svc.CheckIn(context.Background(), testEmployee)
	require.NoError(t, err)
	assert.False(t, resp.Decision.Allowed)

	// Inside the window: punch lands on the materialized record without
	// clobbering its leave-derived fields.
	f.at(t, 13, 20)
	resp, err = f.svc.CheckIn(context.Background(), testEmployee)
	require.NoError(t, err)
	assert.True(t, resp.Decision.Allowed)
	assert.Equal(t, attendance.StatusHalfDay, resp.Status)

	rec := f.attendance.records[recordKey(testEmployee, day)]
	require.NotNil(t, rec.PunchIn)
	require.NotNil(t, rec.LeaveID)
	assert.Equal(t, "lv-2", *rec.LeaveID)
	assert.Equal(t, attendance.StatusHalfDay, rec.Status)
	// Expected start for a first-half leave is the midpoint, so a 13:20
	// punch is not late.
	require.NotNil(t, rec.LateMinutes)
	assert.Equal(t, 0, *rec.LateMinutes)
}

func TestSummary(t *testing.T) {
	f := newFixture(t)

	late := 20
	fine := 33.33
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }
	f.attendance.records[recordKey(testEmployee, day(2))] = attendance.Record{
		ID: "a1", EmployeeID: testEmployee, Date: day(2),
		Status: attendance.StatusPresent, LateMinutes: &late, FineAmount: &fine,
	}
	f.attendance.records[recordKey(testEmployee, day(3))] = attendance.Record{
		ID: "a2", EmployeeID: testEmployee, Date: day(3), Status: attendance.StatusOnLeave,
	}
	f.attendance.records[recordKey(testEmployee, day(4))] = attendance.Record{
		ID: "a3", EmployeeID: testEmployee, Date: day(4), Status: attendance.StatusHalfDay,
	}
	f.attendance.records[recordKey(testEmployee, day(5))] = attendance.Record{
		ID: "a4", EmployeeID: testEmployee, Date: day(5), Status: attendance.StatusAbsent,
	}

	summary, err := f.svc.Summary(context.Background(), testEmployee, 2025, time.June)
	require.NoError(t, err)
	assert.Equal(t, "2025-06", summary.Month)
	assert.Equal(t, 1, summary.PresentDays)
	assert.Equal(t, 1, summary.LeaveDays)
	assert.Equal(t, 1, summary.HalfDays)
	assert.Equal(t, 1, summary.AbsentDays)
	assert.Equal(t, 20, summary.TotalLateMinutes)
	assert.InDelta(t, 33.33, summary.TotalFineAmount, 0.001)
}
