package repository

// OrderUpdate 批量调整排序的单项
type OrderUpdate struct {
	ID    string `json:"id" binding:"required"`
	Order int    `json:"order"`
}

func orderIDs(updates []OrderUpdate) []string {
	ids := make([]string, 0, len(updates))
	for _, u := range updates {
		ids = append(ids, u.ID)
	}
	return ids
}
