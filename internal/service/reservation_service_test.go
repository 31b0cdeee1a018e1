package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nourhan03/Physics-Lab-P2/internal/dto"
	"github.com/nourhan03/Physics-Lab-P2/internal/model"
	"github.com/nourhan03/Physics-Lab-P2/internal/repository"
)

var testNow = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

// newReservationFixture 构造带基础数据的预约服务
func newReservationFixture() (*reservationService, *repository.Repository, *mockRepos) {
	repo, mocks := newMockRepository()

	mocks.users.users["u-instr"] = &model.User{
		UserID: "u-instr", Name: "张教授", Email: "prof@lab.edu", UserType: model.UserTypeInstructor,
	}
	mocks.users.users["u-instr2"] = &model.User{
		UserID: "u-instr2", Name: "李教授", Email: "prof2@lab.edu", UserType: model.UserTypeInstructor,
	}
	mocks.users.users["u-res"] = &model.User{
		UserID: "u-res", Name: "王研究员", Email: "res@lab.edu", UserType: model.UserTypeResearcher,
	}
	mocks.users.users["u-admin"] = &model.User{
		UserID: "u-admin", Name: "管理员", Email: "admin@lab.edu", UserType: model.UserTypeAdmin,
	}

	mocks.labs.labs["lab-a"] = &model.Laboratory{
		LabID: "lab-a", Name: "光学实验室", Status: model.StatusAvailable, LabType: model.TypeAcademic,
	}
	mocks.labs.labs["lab-r"] = &model.Laboratory{
		LabID: "lab-r", Name: "量子实验室", Status: model.StatusAvailable, LabType: model.TypeResearch,
	}

	mocks.experiments.experiments["exp-a"] = &model.Experiment{
		ExperimentID: "exp-a", LabID: "lab-a", Name: "光栅衍射", ExperimentType: model.TypeAcademic,
	}
	mocks.experiments.experiments["exp-r"] = &model.Experiment{
		ExperimentID: "exp-r", LabID: "lab-r", Name: "量子纠缠", ExperimentType: model.TypeResearch,
	}

	mocks.devices.add(&model.Device{DeviceID: "dev-1", Name: "激光器A", Status: model.StatusAvailable})
	mocks.devices.add(&model.Device{DeviceID: "dev-2", Name: "分光计B", Status: model.StatusAvailable})
	mocks.devices.add(&model.Device{DeviceID: "dev-r", Name: "干涉仪C", Status: model.StatusAvailable})

	mocks.experiments.links = []*model.ExperimentDevice{
		{ExperimentID: "exp-a", DeviceID: "dev-1"},
		{ExperimentID: "exp-a", DeviceID: "dev-2"},
		{ExperimentID: "exp-r", DeviceID: "dev-r"},
	}

	svc := &reservationService{
		repo:   repo,
		logger: zap.NewNop(),
		now:    func() time.Time { return testNow },
	}
	return svc, repo, mocks
}

func TestCreateReservation_Success(t *testing.T) {
	svc, _, mocks := newReservationFixture()

	resp, err := svc.Create(context.Background(), &dto.CreateReservationRequest{
		UserID:       "u-instr",
		LabID:        "lab-a",
		ExperimentID: "exp-a",
		DeviceIDs:    []string{"dev-1", "dev-2"},
		Date:         "2026-01-10",
		StartTime:    "09:00",
		EndTime:      "11:00",
		Purpose:      "课程实验",
	})
	if err != nil {
		t.Fatalf("创建预约失败: %v", err)
	}
	if !resp.Allowed {
		t.Error("预约应被允许")
	}
	if len(resp.ReservationIDs) != 2 {
		t.Errorf("应为每台设备生成一条预约记录, got %d", len(resp.ReservationIDs))
	}
	if resp.DurationHours != 2.0 {
		t.Errorf("时长应为 2 小时, got %v", resp.DurationHours)
	}

	lab := mocks.labs.labs["lab-a"]
	if lab.UsageHours != 2.0 || lab.TotalOperatingHours != 2.0 {
		t.Errorf("实验室工时应各 +2, got usage=%v total=%v", lab.UsageHours, lab.TotalOperatingHours)
	}
	for _, id := range []string{"dev-1", "dev-2"} {
		d := mocks.devices.devices[id]
		if d.CurrentHour != 2.0 || d.TotalOperatingHours != 2.0 {
			t.Errorf("设备 %s 工时应各 +2, got current=%v total=%v", id, d.CurrentHour, d.TotalOperatingHours)
		}
	}
	if mocks.experiments.experiments["exp-a"].CompletedCount != 1 {
		t.Errorf("实验完成次数应 +1, got %d", mocks.experiments.experiments["exp-a"].CompletedCount)
	}
}

func TestCreateReservation_InstructorHolderBlocksAll(t *testing.T) {
	svc, _, mocks := newReservationFixture()

	if _, err := svc.Create(context.Background(), &dto.CreateReservationRequest{
		UserID: "u-instr", LabID: "lab-a", ExperimentID: "exp-a",
		DeviceIDs: []string{"dev-1"},
		Date:      "2026-01-10", StartTime: "09:00", EndTime: "11:00",
	}); err != nil {
		t.Fatalf("首次预约失败: %v", err)
	}

	resp, err := svc.Create(context.Background(), &dto.CreateReservationRequest{
		UserID: "u-instr2", LabID: "lab-a", ExperimentID: "exp-a",
		DeviceIDs: []string{"dev-2"},
		Date:      "2026-01-10", StartTime: "10:00", EndTime: "12:00",
	})
	if !errors.Is(err, ErrLabHeldByInstructor) {
		t.Fatalf("应返回 ErrLabHeldByInstructor, got %v", err)
	}
	if resp == nil || resp.Allowed {
		t.Fatal("冲突时应返回拒绝留痕记录")
	}

	audit, getErr := mocks.reservations.GetByID(context.Background(), resp.ReservationID)
	if getErr != nil {
		t.Fatalf("留痕记录应已持久化: %v", getErr)
	}
	if audit.IsAllowed {
		t.Error("留痕记录 IsAllowed 应为 false")
	}
	if audit.DeviceID != "dev-2" {
		t.Errorf("留痕记录应使用首个请求设备, got %s", audit.DeviceID)
	}

	// 拒绝记录不产生任何工时副作用
	if mocks.labs.labs["lab-a"].UsageHours != 2.0 {
		t.Errorf("冲突预约不应改变实验室工时, got %v", mocks.labs.labs["lab-a"].UsageHours)
	}
}

func TestCreateReservation_InstructorBlockedByResearcherHolder(t *testing.T) {
	svc, _, mocks := newReservationFixture()

	// 直接种入一条研究员占用学术实验室的历史记录
	mocks.reservations.Create(context.Background(), &model.Reservation{
		UserID: "u-res", LabID: "lab-a", ExperimentID: "exp-a", DeviceID: "dev-1",
		Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00", EndTime: "11:00", IsAllowed: true,
	})

	_, err := svc.Create(context.Background(), &dto.CreateReservationRequest{
		UserID: "u-instr", LabID: "lab-a", ExperimentID: "exp-a",
		DeviceIDs: []string{"dev-2"},
		Date:      "2026-01-10", StartTime: "10:00", EndTime: "12:00",
	})
	if !errors.Is(err, ErrLabHeldByResearcher) {
		t.Errorf("应返回 ErrLabHeldByResearcher, got %v", err)
	}
}

func TestCreateReservation_ResearcherOverlapNotBlocked(t *testing.T) {
	svc, _, _ := newReservationFixture()

	if _, err := svc.Create(context.Background(), &dto.CreateReservationRequest{
		UserID: "u-res", LabID: "lab-r", ExperimentID: "exp-r",
		DeviceIDs: []string{"dev-r"},
		Date:      "2026-01-10", StartTime: "09:00", EndTime: "11:00",
	}); err != nil {
		t.Fatalf("首次预约失败: %v", err)
	}

	// 研究员之间允许共用实验室时段，但同一设备仍互斥
	_, err := svc.Create(context.Background(), &dto.CreateReservationRequest{
		UserID: "u-res", LabID: "lab-r", ExperimentID: "exp-r",
		DeviceIDs: []string{"dev-r"},
		Date:      "2026-01-10", StartTime: "10:00", EndTime: "12:00",
	})
	if !errors.Is(err, ErrDeviceAlreadyBooked) {
		t.Errorf("同一设备重叠应返回 ErrDeviceAlreadyBooked, got %v", err)
	}
}

func TestCreateReservation_EligibilityFailuresLeaveNoTrace(t *testing.T) {
	svc, _, mocks := newReservationFixture()

	cases := []struct {
		name string
		req  *dto.CreateReservationRequest
		want error
	}{
		{"用户不存在", &dto.CreateReservationRequest{
			UserID: "ghost", LabID: "lab-a", ExperimentID: "exp-a", DeviceIDs: []string{"dev-1"},
			Date: "2026-01-10", StartTime: "09:00", EndTime: "10:00",
		}, ErrUserNotFound},
		{"用户校验先于日期校验", &dto.CreateReservationRequest{
			UserID: "ghost", LabID: "lab-a", ExperimentID: "exp-a", DeviceIDs: []string{"dev-1"},
			Date: "2020-01-01", StartTime: "09:00", EndTime: "10:00",
		}, ErrUserNotFound},
		{"实验室类型校验先于日期解析", &dto.CreateReservationRequest{
			UserID: "u-res", LabID: "lab-a", ExperimentID: "exp-a", DeviceIDs: []string{"dev-1"},
			Date: "not-a-date", StartTime: "09:00", EndTime: "10:00",
		}, ErrLabTypeMismatch},
		{"管理员无预约权限", &dto.CreateReservationRequest{
			UserID: "u-admin", LabID: "lab-a", ExperimentID: "exp-a", DeviceIDs: []string{"dev-1"},
			Date: "2026-01-10", StartTime: "09:00", EndTime: "10:00",
		}, ErrUserTypeNotAllowed},
		{"研究员预约学术实验室", &dto.CreateReservationRequest{
			UserID: "u-res", LabID: "lab-a", ExperimentID: "exp-a", DeviceIDs: []string{"dev-1"},
			Date: "2026-01-10", StartTime: "09:00", EndTime: "10:00",
		}, ErrLabTypeMismatch},
		{"过去日期", &dto.CreateReservationRequest{
			UserID: "u-instr", LabID: "lab-a", ExperimentID: "exp-a", DeviceIDs: []string{"dev-1"},
			Date: "2025-12-31", StartTime: "09:00", EndTime: "10:00",
		}, ErrPastDate},
		{"时段倒置", &dto.CreateReservationRequest{
			UserID: "u-instr", LabID: "lab-a", ExperimentID: "exp-a", DeviceIDs: []string{"dev-1"},
			Date: "2026-01-10", StartTime: "11:00", EndTime: "09:00",
		}, ErrInvertedInterval},
		{"设备未关联实验", &dto.CreateReservationRequest{
			UserID: "u-instr", LabID: "lab-a", ExperimentID: "exp-a", DeviceIDs: []string{"dev-r"},
			Date: "2026-01-10", StartTime: "09:00", EndTime: "10:00",
		}, ErrDeviceNotLinked},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), c.req)
			if !errors.Is(err, c.want) {
				t.Errorf("期望 %v, got %v", c.want, err)
			}
		})
	}
	if len(mocks.reservations.reservations) != 0 {
		t.Errorf("资格类校验失败不应写入任何记录, got %d 条", len(mocks.reservations.reservations))
	}
}

func TestCreateReservation_DeviceInMaintenance(t *testing.T) {
	svc, _, mocks := newReservationFixture()

	start := time.Date(2026, 1, 9, 8, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 11, 18, 0, 0, 0, time.UTC)
	mocks.maintenances.records = append(mocks.maintenances.records, &model.Maintenance{
		MaintenanceID: "m-1", DeviceID: "dev-1",
		MaintType: model.MaintenanceTypeRepair, Status: model.MaintenanceStatusInProgress,
		StartAt: &start, EndAt: &end,
	})

	_, err := svc.Create(context.Background(), &dto.CreateReservationRequest{
		UserID: "u-instr", LabID: "lab-a", ExperimentID: "exp-a",
		DeviceIDs: []string{"dev-1"},
		Date:      "2026-01-10", StartTime: "09:00", EndTime: "10:00",
	})
	if !errors.Is(err, ErrDeviceInMaintenance) {
		t.Fatalf("应返回 ErrDeviceInMaintenance, got %v", err)
	}
	// 维护冲突不属于占用冲突，不落留痕记录
	if len(mocks.reservations.reservations) != 0 {
		t.Error("维护冲突不应写入留痕记录")
	}
}

func TestCreateReservation_EmptyDeviceList(t *testing.T) {
	svc, _, mocks := newReservationFixture()

	_, err := svc.Create(context.Background(), &dto.CreateReservationRequest{
		UserID: "u-instr", LabID: "lab-a", ExperimentID: "exp-a",
		DeviceIDs: []string{},
		Date:      "2026-01-10", StartTime: "09:00", EndTime: "10:00",
	})
	if !errors.Is(err, ErrNoDevicesSelected) {
		t.Fatalf("空设备列表应返回 ErrNoDevicesSelected, got %v", err)
	}
	if len(mocks.reservations.reservations) != 0 {
		t.Error("空设备列表不应写入任何记录")
	}
}

func TestUpdateReservation_MovesHoursExactly(t *testing.T) {
	svc, _, mocks := newReservationFixture()

	resp, err := svc.Create(context.Background(), &dto.CreateReservationRequest{
		UserID: "u-instr", LabID: "lab-a", ExperimentID: "exp-a",
		DeviceIDs: []string{"dev-1"},
		Date:      "2026-01-10", StartTime: "09:00", EndTime: "11:00",
	})
	if err != nil {
		t.Fatalf("创建预约失败: %v", err)
	}

	newStart, newEnd := "13:00", "16:00"
	updated, err := svc.Update(context.Background(), resp.ReservationID, &dto.UpdateReservationRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	if err != nil {
		t.Fatalf("修改预约失败: %v", err)
	}
	if updated.DurationHours != 3.0 {
		t.Errorf("新时长应为 3 小时, got %v", updated.DurationHours)
	}

	// 旧 2 小时回退，新 3 小时累加
	lab := mocks.labs.labs["lab-a"]
	if lab.UsageHours != 3.0 || lab.TotalOperatingHours != 3.0 {
		t.Errorf("实验室工时应净 +3, got usage=%v total=%v", lab.UsageHours, lab.TotalOperatingHours)
	}
	device := mocks.devices.devices["dev-1"]
	if device.CurrentHour != 3.0 || device.TotalOperatingHours != 3.0 {
		t.Errorf("设备工时应净 +3, got current=%v total=%v", device.CurrentHour, device.TotalOperatingHours)
	}

	row := mocks.reservations.reservations[resp.ReservationID]
	if row.StartTime != "13:00" || row.EndTime != "16:00" || !row.IsAllowed {
		t.Errorf("记录字段未正确更新: %+v", row)
	}
	// 实验未变时完成次数回退再累加，净值不变
	if mocks.experiments.experiments["exp-a"].CompletedCount != 1 {
		t.Errorf("实验完成次数应保持 1, got %d", mocks.experiments.experiments["exp-a"].CompletedCount)
	}
}

func TestUpdateReservation_MovesExperimentCount(t *testing.T) {
	svc, _, mocks := newReservationFixture()

	// 同一实验室下的第二个学术实验
	mocks.experiments.experiments["exp-a2"] = &model.Experiment{
		ExperimentID: "exp-a2", LabID: "lab-a", Name: "偏振测量", ExperimentType: model.TypeAcademic,
	}
	mocks.experiments.links = append(mocks.experiments.links,
		&model.ExperimentDevice{ExperimentID: "exp-a2", DeviceID: "dev-2"})

	resp, err := svc.Create(context.Background(), &dto.CreateReservationRequest{
		UserID: "u-instr", LabID: "lab-a", ExperimentID: "exp-a",
		DeviceIDs: []string{"dev-1"},
		Date:      "2026-01-10", StartTime: "09:00", EndTime: "11:00",
	})
	if err != nil {
		t.Fatalf("创建预约失败: %v", err)
	}
	if mocks.experiments.experiments["exp-a"].CompletedCount != 1 {
		t.Fatalf("创建后 exp-a 完成次数应为 1, got %d", mocks.experiments.experiments["exp-a"].CompletedCount)
	}

	newExp := "exp-a2"
	if _, err := svc.Update(context.Background(), resp.ReservationID, &dto.UpdateReservationRequest{
		ExperimentID: &newExp,
		DeviceIDs:    []string{"dev-2"},
	}); err != nil {
		t.Fatalf("修改预约失败: %v", err)
	}

	// 完成次数随预约迁移：旧实验回退，新实验累加
	if got := mocks.experiments.experiments["exp-a"].CompletedCount; got != 0 {
		t.Errorf("exp-a 完成次数应回退为 0, got %d", got)
	}
	if got := mocks.experiments.experiments["exp-a2"].CompletedCount; got != 1 {
		t.Errorf("exp-a2 完成次数应为 1, got %d", got)
	}
}

func TestUpdateReservation_OwnSlotDoesNotConflict(t *testing.T) {
	svc, _, _ := newReservationFixture()

	resp, err := svc.Create(context.Background(), &dto.CreateReservationRequest{
		UserID: "u-instr", LabID: "lab-a", ExperimentID: "exp-a",
		DeviceIDs: []string{"dev-1"},
		Date:      "2026-01-10", StartTime: "09:00", EndTime: "11:00",
	})
	if err != nil {
		t.Fatalf("创建预约失败: %v", err)
	}

	// 仅改用途，时段不变：自身不应视为冲突
	purpose := "补充测量"
	if _, err := svc.Update(context.Background(), resp.ReservationID, &dto.UpdateReservationRequest{
		Purpose: &purpose,
	}); err != nil {
		t.Errorf("时段未变的修改不应冲突: %v", err)
	}
}

func TestUpdateReservation_NotFound(t *testing.T) {
	svc, _, _ := newReservationFixture()
	_, err := svc.Update(context.Background(), "missing", &dto.UpdateReservationRequest{})
	if !errors.Is(err, ErrReservationNotFound) {
		t.Errorf("应返回 ErrReservationNotFound, got %v", err)
	}
}
