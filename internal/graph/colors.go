package graph

const (
	CourseColor  = "#1976d2"
	ChapterColor = "#4caf50"
	DefaultColor = "#9e9e9e"

	selectedStroke = "#ff9800"
	normalStroke   = "#ffffff"
	edgeColor      = "#90a4ae"
)

var knowledgeColors = map[Difficulty]map[Importance]string{
	DifficultyEasy: {
		ImportanceLow:    "#c8e6c9",
		ImportanceMedium: "#81c784",
		ImportanceHigh:   "#388e3c",
	},
	DifficultyMedium: {
		ImportanceLow:    "#fff59d",
		ImportanceMedium: "#ffca28",
		ImportanceHigh:   "#f57f17",
	},
	DifficultyHard: {
		ImportanceLow:    "#ffcdd2",
		ImportanceMedium: "#e57373",
		ImportanceHigh:   "#c62828",
	},
}

// KnowledgeColor 按 难度×重要性 查表，查不到时返回灰色
func KnowledgeColor(d Difficulty, i Importance) string {
	if row, ok := knowledgeColors[d]; ok {
		if c, ok := row[i]; ok {
			return c
		}
	}
	return DefaultColor
}
