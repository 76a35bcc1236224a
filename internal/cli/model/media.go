package model

// Media — бинарное вложение записи. Directory равен instanceID владеющей
// записи; составной ключ Directory+"/"+FileName уникален.
type Media struct {
	Directory string
	FileName  string
	Blob      []byte
	Size      int64
}

// Found сообщает, было ли вложение найдено при извлечении из хранилища.
// Отсутствие содержимого — не ошибка: файл мог быть удалён после прежней
// успешной отправки.
func (m *Media) Found() bool { return m.Blob != nil }

// Batch — эфемерная группа вложений для одного POST. Никогда не сохраняется.
type Batch struct {
	// Indexes — индексы вложений исходного списка, вошедшие в батч.
	Indexes []int
	// Final: у всех батчей, кроме последнего, в запросе выставляется
	// маркер неполноты, чтобы сервер ждал продолжение того же инстанса.
	Final bool
}
