package model

// Record — локальная запись формы. Сериализуется в JSON как есть и хранится
// в локальной БД под своим ключом (отображаемым именем записи).
type Record struct {
	// Data — сериализованный XML инстанса формы.
	Data string `json:"data"`
	// Draft: черновик не попадает в автоматическую очередь отправки.
	Draft bool `json:"draft"`
	// LastSaved — отметка времени последнего успешного сохранения, unix millis.
	// Строго возрастает при каждой записи ключа.
	LastSaved int64 `json:"lastSaved"`
	// Form — маркер происхождения записи. Записи без маркера считаются
	// чужими данными в том же пространстве ключей и игнорируются.
	Form string `json:"form,omitempty"`

	// EditTargetID — id ранее отправленного инстанса при повторной отправке правки.
	EditTargetID string `json:"editTargetId,omitempty"`
	AssignmentID string `json:"assignmentId,omitempty"`
	// AccessKey — краткоживущий ключ доступа, встраивается в URL отправки.
	AccessKey string `json:"accessKey,omitempty"`
}

// RecordInfo — элемент списка записей для отображения очереди.
type RecordInfo struct {
	Key       string `json:"key"`
	Draft     bool   `json:"draft"`
	LastSaved int64  `json:"lastSaved"`
}

// NamedRecord — запись вместе со своим ключом; возвращается выборками.
type NamedRecord struct {
	Key string
	Record
}
