package service

import (
	"ai_teaching_backend/internal/model"
	"ai_teaching_backend/pkg/logger"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultSeedCourseCode = "MATH101"

type seedUser struct {
	Name     string
	Email    string
	Password string
	Role     model.UserRole
}

type seedKnowledgePoint struct {
	Title         string
	Difficulty    string
	Importance    string
	EstimatedTime int
}

type seedChapter struct {
	Title           string
	Description     string
	Duration        int
	KnowledgePoints []seedKnowledgePoint
}

var (
	seedTeacher = seedUser{Name: "Teacher One", Email: "teacher1@example.com", Password: "teacher123", Role: model.Teacher}
	seedStudent = seedUser{Name: "Student One", Email: "student1@example.com", Password: "student123", Role: model.Student}

	seedChapters = []seedChapter{
		{
			Title:       "第一章 函数与极限",
			Description: "函数的概念、数列与函数的极限",
			Duration:    120,
			KnowledgePoints: []seedKnowledgePoint{
				{Title: "函数的概念", Difficulty: "easy", Importance: "medium", EstimatedTime: 30},
				{Title: "极限概念", Difficulty: "medium", Importance: "high", EstimatedTime: 45},
				{Title: "无穷小与无穷大", Difficulty: "medium", Importance: "medium", EstimatedTime: 40},
				{Title: "函数的连续性", Difficulty: "hard", Importance: "high", EstimatedTime: 60},
			},
		},
		{
			Title:       "第二章 导数与微分",
			Description: "导数的定义、求导法则与微分",
			Duration:    90,
			KnowledgePoints: []seedKnowledgePoint{
				{Title: "导数的定义", Difficulty: "medium", Importance: "high", EstimatedTime: 45},
				{Title: "求导法则", Difficulty: "easy", Importance: "high", EstimatedTime: 50},
				{Title: "高阶导数", Difficulty: "hard", Importance: "low", EstimatedTime: 40},
			},
		},
		{
			Title:       "第三章 积分",
			Description: "不定积分与定积分",
			Duration:    90,
			KnowledgePoints: []seedKnowledgePoint{
				{Title: "不定积分", Difficulty: "medium", Importance: "high", EstimatedTime: 60},
				{Title: "定积分的应用", Difficulty: "hard", Importance: "medium", EstimatedTime: 75},
			},
		},
	}
)

// TableCount 按表统计的行数
type TableCount struct {
	Table string `json:"table"`
	Count int64  `json:"count"`
}

type SeedReport struct {
	CourseID        string `json:"courseId"`
	TeacherID       uint   `json:"teacherId"`
	StudentID       uint   `json:"studentId"`
	Chapters        int    `json:"chapters"`
	KnowledgePoints int    `json:"knowledgePoints"`
	Created         int    `json:"created"`
}

// SeedService 测试数据的写入、清理和核对
type SeedService struct {
	DB *gorm.DB
	// OnStep 每完成一步回调一次，命令行用它驱动进度条
	OnStep func(step string)
}

func NewSeedService(db *gorm.DB) *SeedService {
	return &SeedService{DB: db}
}

// SeedSteps Seed 会触发的回调次数
func SeedSteps() int {
	n := 4 // 两个用户、课程、选课
	for _, ch := range seedChapters {
		n += 1 + len(ch.KnowledgePoints)
	}
	return n
}

func (s *SeedService) step(name string) {
	if s.OnStep != nil {
		s.OnStep(name)
	}
}

// firstOrCreate 已存在则复用，返回是否新建
func firstOrCreate[T any](tx *gorm.DB, dst *T, create func() error, query string, args ...interface{}) (bool, error) {
	err := tx.Where(query, args...).First(dst).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, create()
}

// Seed 可重复执行，已存在的数据会被复用
func (s *SeedService) Seed(code string) (*SeedReport, error) {
	report := &SeedReport{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		teacher, err := s.seedUser(tx, seedTeacher, report)
		if err != nil {
			return err
		}
		student, err := s.seedUser(tx, seedStudent, report)
		if err != nil {
			return err
		}
		report.TeacherID, report.StudentID = teacher.ID, student.ID

		var course model.Course
		created, err := firstOrCreate(tx, &course, func() error {
			course = model.Course{
				Code:        code,
				Name:        "高等数学",
				Description: "高等数学课程",
				Category:    "基础课程",
				Credits:     3,
				Status:      model.CoursePublished,
				TeacherID:   teacher.ID,
			}
			return tx.Create(&course).Error
		}, "code = ?", code)
		if err != nil {
			return err
		}
		s.count(report, created)
		s.step("course " + code)
		report.CourseID = course.ID

		for i, sc := range seedChapters {
			var ch model.Chapter
			created, err := firstOrCreate(tx, &ch, func() error {
				ch = model.Chapter{
					CourseID:    course.ID,
					Title:       sc.Title,
					Description: sc.Description,
					Duration:    sc.Duration,
					Order:       i + 1,
					Status:      model.ChapterPublished,
				}
				return tx.Create(&ch).Error
			}, "course_id = ? AND title = ?", course.ID, sc.Title)
			if err != nil {
				return err
			}
			s.count(report, created)
			report.Chapters++
			s.step("chapter " + sc.Title)

			for j, sk := range sc.KnowledgePoints {
				var kp model.KnowledgePoint
				created, err := firstOrCreate(tx, &kp, func() error {
					kp = model.KnowledgePoint{
						ChapterID:     ch.ID,
						Title:         sk.Title,
						Difficulty:    sk.Difficulty,
						Importance:    sk.Importance,
						EstimatedTime: sk.EstimatedTime,
						Order:         j + 1,
						Status:        model.KPPublished,
					}
					return tx.Create(&kp).Error
				}, "chapter_id = ? AND title = ?", ch.ID, sk.Title)
				if err != nil {
					return err
				}
				s.count(report, created)
				report.KnowledgePoints++
				s.step("knowledge point " + sk.Title)
			}
		}

		var e model.Enrollment
		created, err = firstOrCreate(tx, &e, func() error {
			e = model.Enrollment{
				UserID:     student.ID,
				CourseID:   course.ID,
				Status:     model.EnrollmentActive,
				EnrolledAt: time.Now(),
			}
			return tx.Create(&e).Error
		}, "user_id = ? AND course_id = ?", student.ID, course.ID)
		if err != nil {
			return err
		}
		s.count(report, created)
		s.step("enrollment")
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("测试数据写入完成", zap.String("code", code), zap.Int("created", report.Created))
	return report, nil
}

func (s *SeedService) count(r *SeedReport, created bool) {
	if created {
		r.Created++
	}
}

func (s *SeedService) seedUser(tx *gorm.DB, u seedUser, report *SeedReport) (*model.User, error) {
	var user model.User
	created, err := firstOrCreate(tx, &user, func() error {
		hashed, err := HashPassword(u.Password)
		if err != nil {
			return err
		}
		user = model.User{Name: u.Name, Email: u.Email, Password: hashed, Role: u.Role}
		return tx.Create(&user).Error
	}, "email = ?", u.Email)
	if err != nil {
		return nil, err
	}
	s.count(report, created)
	s.step("user " + u.Email)
	return &user, nil
}

// Cleanup 按依赖顺序物理删除课程数据，返回每张表删除的行数。
// 用户不会被删除。
func (s *SeedService) Cleanup(code string) ([]TableCount, error) {
	var out []TableCount
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		tx = tx.Unscoped().Session(&gorm.Session{})
		courseIDs := tx.Model(&model.Course{}).Select("id").Where("code = ?", code)
		chapterIDs := tx.Model(&model.Chapter{}).Select("id").Where("course_id IN (?)", courseIDs)
		kpIDs := tx.Model(&model.KnowledgePoint{}).Select("id").Where("chapter_id IN (?)", chapterIDs)

		steps := []struct {
			table string
			run   func() *gorm.DB
		}{
			{"submissions", func() *gorm.DB {
				return tx.Where("assignment_id IN (?)", tx.Model(&model.Assignment{}).Select("id").Where("course_id IN (?)", courseIDs)).
					Delete(&model.Submission{})
			}},
			{"assignments", func() *gorm.DB {
				return tx.Where("course_id IN (?)", courseIDs).Delete(&model.Assignment{})
			}},
			{"knowledge_point_progress", func() *gorm.DB {
				return tx.Where("knowledge_point_id IN (?)", kpIDs).Delete(&model.KnowledgePointProgress{})
			}},
			{"chapter_progress", func() *gorm.DB {
				return tx.Where("course_id IN (?)", courseIDs).Delete(&model.ChapterProgress{})
			}},
			{"knowledge_points", func() *gorm.DB {
				return tx.Where("chapter_id IN (?)", chapterIDs).Delete(&model.KnowledgePoint{})
			}},
			{"chapters", func() *gorm.DB {
				return tx.Where("course_id IN (?)", courseIDs).Delete(&model.Chapter{})
			}},
			{"enrollments", func() *gorm.DB {
				return tx.Where("course_id IN (?)", courseIDs).Delete(&model.Enrollment{})
			}},
			{"graph_snapshots", func() *gorm.DB {
				return tx.Where("course_id IN (?)", courseIDs).Delete(&model.GraphSnapshot{})
			}},
			{"courses", func() *gorm.DB {
				return tx.Where("code = ?", code).Delete(&model.Course{})
			}},
		}
		for _, st := range steps {
			res := st.run()
			if res.Error != nil {
				return res.Error
			}
			out = append(out, TableCount{Table: st.table, Count: res.RowsAffected})
			s.step("cleanup " + st.table)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Verify 统计课程在各表中的数据量
func (s *SeedService) Verify(code string) ([]TableCount, error) {
	courseIDs := s.DB.Model(&model.Course{}).Select("id").Where("code = ?", code)
	chapterIDs := s.DB.Model(&model.Chapter{}).Select("id").Where("course_id IN (?)", courseIDs)
	kpIDs := s.DB.Model(&model.KnowledgePoint{}).Select("id").Where("chapter_id IN (?)", chapterIDs)

	queries := []struct {
		table string
		query *gorm.DB
	}{
		{"courses", s.DB.Model(&model.Course{}).Where("code = ?", code)},
		{"chapters", s.DB.Model(&model.Chapter{}).Where("course_id IN (?)", courseIDs)},
		{"knowledge_points", s.DB.Model(&model.KnowledgePoint{}).Where("chapter_id IN (?)", chapterIDs)},
		{"enrollments", s.DB.Model(&model.Enrollment{}).Where("course_id IN (?)", courseIDs)},
		{"chapter_progress", s.DB.Model(&model.ChapterProgress{}).Where("course_id IN (?)", courseIDs)},
		{"knowledge_point_progress", s.DB.Model(&model.KnowledgePointProgress{}).Where("knowledge_point_id IN (?)", kpIDs)},
		{"graph_snapshots", s.DB.Model(&model.GraphSnapshot{}).Where("course_id IN (?)", courseIDs)},
		{"assignments", s.DB.Model(&model.Assignment{}).Where("course_id IN (?)", courseIDs)},
		{"submissions", s.DB.Model(&model.Submission{}).
			Where("assignment_id IN (?)", s.DB.Model(&model.Assignment{}).Select("id").Where("course_id IN (?)", courseIDs))},
	}

	out := make([]TableCount, 0, len(queries))
	for _, q := range queries {
		var n int64
		if err := q.query.Count(&n).Error; err != nil {
			return nil, err
		}
		out = append(out, TableCount{Table: q.table, Count: n})
	}
	return out, nil
}

// CleanupSteps Cleanup 触发的回调次数
const CleanupSteps = 9

// Empty 所有计数是否为 0
func Empty(counts []TableCount) bool {
	for _, c := range counts {
		if c.Count != 0 {
			return false
		}
	}
	return true
}
