package model

// All 需要自动迁移的模型，按依赖顺序排列
func All() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Chapter{},
		&KnowledgePoint{},
		&Enrollment{},
		&ChapterProgress{},
		&KnowledgePointProgress{},
		&GraphSnapshot{},
		&Assignment{},
		&Submission{},
	}
}
