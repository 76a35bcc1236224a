package service

import "FormKeeper/internal/cli/model"

// BuildBatches разбивает список вложений на батчи по мягкому бюджету байт и
// максимуму элементов. Каждый индекс входит ровно в один батч, порядок
// сохраняется. Первый элемент батча добавляется безусловно, поэтому файл
// крупнее бюджета уходит собственным батчем, а не блокирует отправку.
func BuildBatches(sizes []int64, budget int64, maxItems int) []model.Batch {
	if len(sizes) == 0 {
		return []model.Batch{{Final: true}}
	}
	var batches []model.Batch
	cur := model.Batch{}
	var running int64
	for i, size := range sizes {
		if len(cur.Indexes) == 0 {
			cur.Indexes = append(cur.Indexes, i)
			running = size
			continue
		}
		if running+size < budget && len(cur.Indexes) < maxItems {
			cur.Indexes = append(cur.Indexes, i)
			running += size
			continue
		}
		batches = append(batches, cur)
		cur = model.Batch{Indexes: []int{i}}
		running = size
	}
	batches = append(batches, cur)
	batches[len(batches)-1].Final = true
	return batches
}
