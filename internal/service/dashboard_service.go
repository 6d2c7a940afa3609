package service

import (
	"time"

	"hr_training_backend/internal/model"
	"hr_training_backend/internal/repository"
)

type DashboardService struct {
	users       *repository.UserRepository
	modules     *repository.ModuleRepository
	enrollments *repository.EnrollmentRepository
}

func NewDashboardService(userRepo *repository.UserRepository, moduleRepo *repository.ModuleRepository, enrollRepo *repository.EnrollmentRepository) *DashboardService {
	return &DashboardService{
		users:       userRepo,
		modules:     moduleRepo,
		enrollments: enrollRepo,
	}
}

// ModuleOverview HR侧看到的单模块统计
type ModuleOverview struct {
	ModuleID       uint    `json:"moduleId"`
	Title          string  `json:"title"`
	Published      bool    `json:"published"`
	Enrolled       int64   `json:"enrolled"`
	Completed      int64   `json:"completed"`
	CompletionRate float64 `json:"completionRate"`
	AvgProgress    float64 `json:"avgProgress"`
	AvgScore       float64 `json:"avgScore"`
}

type HROverview struct {
	TotalModules    int64            `json:"totalModules"`
	ActiveEmployees int64            `json:"activeEmployees"` // 近7天活跃
	Modules         []ModuleOverview `json:"modules"`
}

// GetHROverview 汇总所有模块的报名和完成情况
func (s *DashboardService) GetHROverview() (*HROverview, error) {
	modules, err := s.modules.ListAll()
	if err != nil {
		return nil, err
	}

	activeEmployees, err := s.users.CountActiveSince(time.Now().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}

	overview := &HROverview{
		TotalModules:    int64(len(modules)),
		ActiveEmployees: activeEmployees,
		Modules:         make([]ModuleOverview, 0, len(modules)),
	}

	for _, m := range modules {
		stats, err := s.enrollments.StatsByModule(m.ID)
		if err != nil {
			return nil, err
		}

		mo := ModuleOverview{
			ModuleID:    m.ID,
			Title:       m.Title,
			Published:   m.Published,
			Enrolled:    stats.Enrolled,
			Completed:   stats.Completed,
			AvgProgress: stats.AvgProgress,
			AvgScore:    stats.AvgScore,
		}
		if stats.Enrolled > 0 {
			mo.CompletionRate = float64(stats.Completed) / float64(stats.Enrolled) * 100
		}
		overview.Modules = append(overview.Modules, mo)
	}

	return overview, nil
}

type EmployeeOverview struct {
	Enrolled    int64              `json:"enrolled"`
	InProgress  int64              `json:"inProgress"`
	Completed   int64              `json:"completed"`
	AvgScore    float64            `json:"avgScore"`
	Enrollments []model.Enrollment `json:"enrollments"`
}

// GetEmployeeOverview 员工看到的自己的学习概览
func (s *DashboardService) GetEmployeeOverview(userID uint) (*EmployeeOverview, error) {
	es, err := s.enrollments.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	overview := &EmployeeOverview{Enrollments: es}

	var scoreSum float64
	var scored int64
	for _, e := range es {
		switch e.Status {
		case model.Completed:
			overview.Completed++
		case model.InProgress:
			overview.InProgress++
		default:
			overview.Enrolled++
		}
		if e.Score != nil {
			scoreSum += *e.Score
			scored++
		}
	}
	if scored > 0 {
		overview.AvgScore = scoreSum / float64(scored)
	}

	return overview, nil
}
