package mock

// 前端开发用的模拟数据。字段写法刻意保持不统一：
// 重要性用 1-5 的数值，难度有大写写法，进度可能越界

type Course struct {
	ID                string  `json:"id"`
	Name              string  `json:"name,omitempty"`
	Title             string  `json:"title,omitempty"`
	Description       string  `json:"description"`
	Progress          float64 `json:"progress"`
	TotalChapters     int     `json:"totalChapters"`
	CompletedChapters int     `json:"completedChapters"`
}

type Chapter struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId"`
	CourseName  string `json:"courseName"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	Status      string `json:"status"`
}

type KnowledgePoint struct {
	ID            string `json:"id"`
	ChapterID     string `json:"chapterId"`
	CourseID      string `json:"courseId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Difficulty    string `json:"difficulty"`
	Importance    int    `json:"importance"`
	EstimatedTime int    `json:"estimatedTime"`
	Progress      any    `json:"progress"`
}

var Courses = []Course{
	{ID: "course-math", Name: "高等数学", Description: "函数、极限、导数与积分", Progress: 35, TotalChapters: 3, CompletedChapters: 1},
	{ID: "course-physics", Title: "大学物理", Description: "力学与热学基础", Progress: 120, TotalChapters: 1},
	{ID: "course-c", Name: "C 语言程序设计", Description: "从变量到指针", Progress: 0, TotalChapters: 1},
}

var Chapters = []Chapter{
	{ID: "ch-math-2", CourseID: "course-math", CourseName: "高等数学", Title: "第二章 导数与微分", Description: "导数的定义与计算", Order: 2, Status: "published"},
	{ID: "ch-math-1", CourseID: "course-math", CourseName: "高等数学", Title: "第一章 函数与极限", Description: "函数概念与极限运算", Order: 1, Status: "published"},
	{ID: "ch-math-3", CourseID: "course-math", CourseName: "高等数学", Title: "第三章 积分", Description: "不定积分与定积分", Order: 3, Status: "draft"},
	{ID: "ch-phy-1", CourseID: "course-physics", CourseName: "大学物理", Title: "质点运动学", Description: "位移、速度、加速度", Order: 1, Status: "published"},
	{ID: "ch-c-1", CourseID: "course-c", CourseName: "C 语言程序设计", Title: "基本数据类型", Description: "整型、浮点型与字符型", Order: 1, Status: "published"},
}

var KnowledgePoints = []KnowledgePoint{
	{ID: "kp-limit", ChapterID: "ch-math-1", CourseID: "course-math", Title: "极限的概念", Description: "数列极限与函数极限", Difficulty: "EASY", Importance: 5, EstimatedTime: 30, Progress: 100},
	{ID: "kp-limit-ops", ChapterID: "ch-math-1", CourseID: "course-math", Title: "极限运算法则", Description: "四则运算与复合函数极限", Difficulty: "medium", Importance: 4, EstimatedTime: 45, Progress: 60},
	{ID: "kp-continuity", ChapterID: "ch-math-1", CourseID: "course-math", Title: "函数的连续性", Description: "连续与间断点", Difficulty: "Medium", Importance: 3, EstimatedTime: 40, Progress: "NaN"},
	{ID: "kp-derivative", ChapterID: "ch-math-2", CourseID: "course-math", Title: "导数的定义", Description: "导数的几何意义", Difficulty: "HARD", Importance: 5, EstimatedTime: 50, Progress: 150},
	{ID: "kp-diff", ChapterID: "ch-math-2", CourseID: "course-math", Title: "微分及其应用", Description: "微分近似计算", Difficulty: "hard", Importance: 2, EstimatedTime: 35, Progress: -10},
	{ID: "kp-integral", ChapterID: "ch-math-3", CourseID: "course-math", Title: "不定积分", Description: "原函数与积分表", Difficulty: "medium", Importance: 4, EstimatedTime: 60, Progress: 0},
	{ID: "kp-orphan", ChapterID: "ch-removed", CourseID: "course-math", Title: "已删除章节的知识点", Description: "章节已不存在", Difficulty: "easy", Importance: 1, EstimatedTime: 10, Progress: 0},
	{ID: "kp-velocity", ChapterID: "ch-phy-1", CourseID: "course-physics", Title: "速度与加速度", Description: "瞬时速度", Difficulty: "easy", Importance: 4, EstimatedTime: 25, Progress: 20},
	{ID: "kp-int-types", ChapterID: "ch-c-1", CourseID: "course-c", Title: "整型与取值范围", Description: "有符号与无符号", Difficulty: "EASY", Importance: 3, EstimatedTime: 20, Progress: 0},
}

func ChaptersOf(courseID string) []Chapter {
	out := []Chapter{}
	for _, ch := range Chapters {
		if courseID == "" || ch.CourseID == courseID {
			out = append(out, ch)
		}
	}
	return out
}

func KnowledgePointsOf(courseID, chapterID string) []KnowledgePoint {
	out := []KnowledgePoint{}
	for _, kp := range KnowledgePoints {
		if courseID != "" && kp.CourseID != courseID {
			continue
		}
		if chapterID != "" && kp.ChapterID != chapterID {
			continue
		}
		out = append(out, kp)
	}
	return out
}
