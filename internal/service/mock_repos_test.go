package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nourhan03/Physics-Lab-P2/internal/model"
	"github.com/nourhan03/Physics-Lab-P2/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock LaboratoryRepository ──

type mockLaboratoryRepo struct {
	labs map[string]*model.Laboratory
}

func newMockLaboratoryRepo() *mockLaboratoryRepo {
	return &mockLaboratoryRepo{labs: make(map[string]*model.Laboratory)}
}

func (m *mockLaboratoryRepo) GetByID(_ context.Context, id string) (*model.Laboratory, error) {
	if l, ok := m.labs[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLaboratoryRepo) Update(_ context.Context, lab *model.Laboratory) error {
	m.labs[lab.LabID] = lab
	return nil
}

// ── Mock ExperimentRepository ──

type mockExperimentRepo struct {
	experiments map[string]*model.Experiment
	links       []*model.ExperimentDevice
}

func newMockExperimentRepo() *mockExperimentRepo {
	return &mockExperimentRepo{experiments: make(map[string]*model.Experiment)}
}

func (m *mockExperimentRepo) GetByID(_ context.Context, id string) (*model.Experiment, error) {
	if e, ok := m.experiments[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExperimentRepo) Update(_ context.Context, experiment *model.Experiment) error {
	m.experiments[experiment.ExperimentID] = experiment
	return nil
}

func (m *mockExperimentRepo) GetDeviceLink(_ context.Context, experimentID, deviceID string) (*model.ExperimentDevice, error) {
	for _, link := range m.links {
		if link.ExperimentID == experimentID && link.DeviceID == deviceID {
			return link, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExperimentRepo) ListExperimentIDsByDevice(_ context.Context, deviceID string) ([]string, error) {
	var ids []string
	for _, link := range m.links {
		if link.DeviceID == deviceID {
			ids = append(ids, link.ExperimentID)
		}
	}
	return ids, nil
}

// ── Mock DeviceRepository ──

type mockDeviceRepo struct {
	devices map[string]*model.Device
	order   []string
}

func newMockDeviceRepo() *mockDeviceRepo {
	return &mockDeviceRepo{devices: make(map[string]*model.Device)}
}

func (m *mockDeviceRepo) add(device *model.Device) {
	m.devices[device.DeviceID] = device
	m.order = append(m.order, device.DeviceID)
}

func (m *mockDeviceRepo) GetByID(_ context.Context, id string) (*model.Device, error) {
	if d, ok := m.devices[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeviceRepo) Update(_ context.Context, device *model.Device) error {
	if _, ok := m.devices[device.DeviceID]; !ok {
		m.order = append(m.order, device.DeviceID)
	}
	m.devices[device.DeviceID] = device
	return nil
}

func (m *mockDeviceRepo) ListAll(_ context.Context) ([]*model.Device, error) {
	result := make([]*model.Device, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.devices[id])
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockDeviceRepo) ListByStatusNotIn(ctx context.Context, excluded []string) ([]*model.Device, error) {
	all, _ := m.ListAll(ctx)
	var result []*model.Device
	for _, d := range all {
		skip := false
		for _, status := range excluded {
			if d.Status == status {
				skip = true
				break
			}
		}
		if !skip {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockDeviceRepo) ListSimilar(ctx context.Context, categoryName, jobDescription, excludeID string, excludedStatuses []string) ([]*model.Device, error) {
	candidates, _ := m.ListByStatusNotIn(ctx, excludedStatuses)
	var result []*model.Device
	for _, d := range candidates {
		if d.DeviceID == excludeID {
			continue
		}
		if !strings.EqualFold(d.CategoryName, categoryName) {
			continue
		}
		if !strings.EqualFold(d.JobDescription, jobDescription) {
			continue
		}
		result = append(result, d)
	}
	return result, nil
}

func (m *mockDeviceRepo) ListByCategory(ctx context.Context, categoryName, excludeID string) ([]*model.Device, error) {
	all, _ := m.ListAll(ctx)
	var result []*model.Device
	for _, d := range all {
		if d.DeviceID != excludeID && d.CategoryName == categoryName {
			result = append(result, d)
		}
	}
	return result, nil
}

// ── Mock ReservationRepository ──

type mockReservationRepo struct {
	reservations map[string]*model.Reservation
	order        []string
	users        *mockUserRepo
	seq          int
}

func newMockReservationRepo(users *mockUserRepo) *mockReservationRepo {
	return &mockReservationRepo{
		reservations: make(map[string]*model.Reservation),
		users:        users,
	}
}

func (m *mockReservationRepo) Create(_ context.Context, reservation *model.Reservation) error {
	if reservation.ReservationID == "" {
		m.seq++
		reservation.ReservationID = fmt.Sprintf("res-%d", m.seq)
	}
	m.reservations[reservation.ReservationID] = reservation
	m.order = append(m.order, reservation.ReservationID)
	return nil
}

func (m *mockReservationRepo) CreateBatch(ctx context.Context, reservations []*model.Reservation) error {
	for _, r := range reservations {
		if err := m.Create(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockReservationRepo) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	if r, ok := m.reservations[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReservationRepo) Update(_ context.Context, reservation *model.Reservation) error {
	m.reservations[reservation.ReservationID] = reservation
	return nil
}

func (m *mockReservationRepo) withUser(r *model.Reservation) *model.Reservation {
	if r.User == nil && m.users != nil {
		if u, ok := m.users.users[r.UserID]; ok {
			r.User = u
		}
	}
	return r
}

func (m *mockReservationRepo) ListAllowedByLabDate(_ context.Context, labID string, date time.Time, excludeID string) ([]*model.Reservation, error) {
	var result []*model.Reservation
	day := date.Format("2006-01-02")
	for _, id := range m.order {
		r := m.reservations[id]
		if r.LabID == labID && r.IsAllowed && r.Date.Format("2006-01-02") == day && r.ReservationID != excludeID {
			result = append(result, m.withUser(r))
		}
	}
	return result, nil
}

func (m *mockReservationRepo) ListAllowedByDeviceDate(_ context.Context, deviceID string, date time.Time, excludeID string) ([]*model.Reservation, error) {
	var result []*model.Reservation
	day := date.Format("2006-01-02")
	for _, id := range m.order {
		r := m.reservations[id]
		if r.DeviceID == deviceID && r.IsAllowed && r.Date.Format("2006-01-02") == day && r.ReservationID != excludeID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockReservationRepo) ListAllowedByLab(_ context.Context, labID string, from time.Time) ([]*model.Reservation, error) {
	var result []*model.Reservation
	for _, id := range m.order {
		r := m.reservations[id]
		if r.LabID == labID && r.IsAllowed && !r.Date.Before(from) {
			result = append(result, m.withUser(r))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

// ── Mock MaintenanceRepository ──

type mockMaintenanceRepo struct {
	records []*model.Maintenance
}

func newMockMaintenanceRepo() *mockMaintenanceRepo {
	return &mockMaintenanceRepo{}
}

func (m *mockMaintenanceRepo) CountActiveOnDate(_ context.Context, deviceID string, date time.Time) (int64, error) {
	var count int64
	day := date.Format("2006-01-02")
	for _, rec := range m.records {
		if rec.DeviceID != deviceID || rec.Status == model.MaintenanceStatusCompleted {
			continue
		}
		if rec.StartAt == nil || rec.EndAt == nil {
			continue
		}
		if rec.StartAt.Format("2006-01-02") <= day && rec.EndAt.Format("2006-01-02") >= day {
			count++
		}
	}
	return count, nil
}

func (m *mockMaintenanceRepo) LastByDeviceAndType(_ context.Context, deviceID, maintType string) (*model.Maintenance, error) {
	var latest *model.Maintenance
	for _, rec := range m.records {
		if rec.DeviceID != deviceID || rec.MaintType != maintType || rec.EndAt == nil {
			continue
		}
		if latest == nil || rec.EndAt.After(*latest.EndAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockMaintenanceRepo) LastCostByDevices(_ context.Context, deviceIDs []string, maintType string) (decimal.Decimal, bool, error) {
	idSet := make(map[string]bool, len(deviceIDs))
	for _, id := range deviceIDs {
		idSet[id] = true
	}
	var latest *model.Maintenance
	for _, rec := range m.records {
		if !idSet[rec.DeviceID] || rec.MaintType != maintType || rec.EndAt == nil {
			continue
		}
		if latest == nil || rec.EndAt.After(*latest.EndAt) {
			latest = rec
		}
	}
	if latest == nil {
		return decimal.Zero, false, nil
	}
	return latest.Cost, true, nil
}

func (m *mockMaintenanceRepo) AvgCostByType(_ context.Context, maintType string) (decimal.Decimal, bool, error) {
	sum := decimal.Zero
	count := 0
	for _, rec := range m.records {
		if rec.MaintType == maintType && rec.Cost.IsPositive() {
			sum = sum.Add(rec.Cost)
			count++
		}
	}
	if count == 0 {
		return decimal.Zero, false, nil
	}
	return sum.Div(decimal.NewFromInt(int64(count))), true, nil
}

func (m *mockMaintenanceRepo) CountByDeviceTypeSince(_ context.Context, deviceID, maintType string, since time.Time) (int64, error) {
	var count int64
	for _, rec := range m.records {
		if rec.DeviceID != deviceID || rec.MaintType != maintType {
			continue
		}
		if rec.SchedulingAt != nil && !rec.SchedulingAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockMaintenanceRepo) SumCostByDevice(_ context.Context, deviceID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, rec := range m.records {
		if rec.DeviceID == deviceID {
			sum = sum.Add(rec.Cost)
		}
	}
	return sum, nil
}

func (m *mockMaintenanceRepo) ListUpcoming(_ context.Context, from, to time.Time, statuses []string) ([]*model.Maintenance, error) {
	var result []*model.Maintenance
	for _, rec := range m.records {
		if rec.SchedulingAt == nil {
			continue
		}
		if !rec.SchedulingAt.After(from) || rec.SchedulingAt.After(to) {
			continue
		}
		for _, status := range statuses {
			if rec.Status == status {
				result = append(result, rec)
				break
			}
		}
	}
	return result, nil
}

// ── Mock SparePartRepository ──

type mockSparePartRepo struct {
	parts []*model.SparePart
	now   func() time.Time
}

func newMockSparePartRepo() *mockSparePartRepo {
	return &mockSparePartRepo{now: time.Now}
}

func (m *mockSparePartRepo) ListLowStock(_ context.Context) ([]*model.SparePart, error) {
	var result []*model.SparePart
	for _, p := range m.parts {
		if float64(p.Quantity) <= float64(p.MinimumQuantity)*1.2 {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockSparePartRepo) ListExpiringBefore(_ context.Context, before time.Time) ([]*model.SparePart, error) {
	var result []*model.SparePart
	for _, p := range m.parts {
		if p.ExpiryDate != nil && !p.ExpiryDate.After(before) && p.Quantity > 0 {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockSparePartRepo) ListWithRestockDate(_ context.Context) ([]*model.SparePart, error) {
	var result []*model.SparePart
	for _, p := range m.parts {
		if p.LastRestockDate != nil && p.Quantity > 0 {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockSparePartRepo) ListByDevice(_ context.Context, deviceID string) ([]*model.SparePart, error) {
	var result []*model.SparePart
	for _, p := range m.parts {
		if p.DeviceID != nil && *p.DeviceID == deviceID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockSparePartRepo) ListAll(_ context.Context) ([]*model.SparePart, error) {
	return m.parts, nil
}

// ── Mock TxManager ──

type mockTxManager struct {
	repo *repository.Repository
}

func (m *mockTxManager) Transaction(_ context.Context, fn func(txRepo *repository.Repository) error) error {
	return fn(m.repo)
}

// ── 聚合构造 ──

type mockRepos struct {
	users        *mockUserRepo
	labs         *mockLaboratoryRepo
	experiments  *mockExperimentRepo
	devices      *mockDeviceRepo
	reservations *mockReservationRepo
	maintenances *mockMaintenanceRepo
	spareParts   *mockSparePartRepo
}

// newMockRepository 组装带内存 Mock 的 Repository 聚合
func newMockRepository() (*repository.Repository, *mockRepos) {
	mocks := &mockRepos{
		users:       newMockUserRepo(),
		labs:        newMockLaboratoryRepo(),
		experiments: newMockExperimentRepo(),
		devices:     newMockDeviceRepo(),
		spareParts:  newMockSparePartRepo(),
	}
	mocks.reservations = newMockReservationRepo(mocks.users)
	mocks.maintenances = newMockMaintenanceRepo()

	repo := &repository.Repository{
		User:        mocks.users,
		Laboratory:  mocks.labs,
		Experiment:  mocks.experiments,
		Device:      mocks.devices,
		Reservation: mocks.reservations,
		Maintenance: mocks.maintenances,
		SparePart:   mocks.spareParts,
	}
	repo.Tx = &mockTxManager{repo: repo}
	return repo, mocks
}
