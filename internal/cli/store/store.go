package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"FormKeeper/internal/cli/model"
)

// Status — результат SetRecord.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusRequire   Status = "require"   // пустой или некорректный ключ
	StatusForbidden Status = "forbidden" // ключ из зарезервированного пространства
	StatusExisting  Status = "existing"  // ключ занят, overwrite не запрошен
	StatusFull      Status = "full"      // квота хранилища исчерпана
	StatusError     Status = "error"
)

// reservedKeys — служебные ключи конфигурации и учёта. Никогда не используются
// как имена пользовательских записей.
var reservedKeys = []string{
	"user_locale", "__settings", "__history", "__bookmark", "__counter",
	"__current_server", "__loadLog", "__writetest", "__maxSize",
}

const counterKey = "__counter"

// counterRecord — содержимое зарезервированной записи счётчика имён.
type counterRecord struct {
	Counter int64 `json:"counter"`
}

// RecordStore — долговременное key/value-хранилище записей формы поверх
// локальной БД SQLite. Единственный компонент, который читает и пишет записи.
type RecordStore struct {
	db *sql.DB
	// maxBytes — квота хранилища; 0 отключает проверку.
	maxBytes int64
	// onListChanged вызывается после удаления нерезервированной записи.
	onListChanged func([]model.RecordInfo)
}

// Open открывает (и создаёт при необходимости) файл БД записей в каталоге dir.
// Вторым значением возвращается путь к БД.
func Open(dir string) (*RecordStore, string, error) {
	if dir == "" {
		return nil, "", errors.New("empty directory for record store")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, "", err
	}
	dbPath := filepath.Join(dir, "records.sqlite")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, "", err
	}
	return &RecordStore{db: db}, dbPath, nil
}

// Close закрывает соединение с БД.
func (s *RecordStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate гарантирует наличие необходимой таблицы.
func (s *RecordStore) Migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS records (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	_, err := s.db.Exec(ddl)
	return err
}

// SetQuota устанавливает квоту хранилища в байтах. 0 — без ограничения.
func (s *RecordStore) SetQuota(maxBytes int64) { s.maxBytes = maxBytes }

// SetOnListChanged регистрирует получателя уведомлений об изменении списка.
func (s *RecordStore) SetOnListChanged(fn func([]model.RecordInfo)) { s.onListChanged = fn }

// IsReservedKey сообщает, входит ли ключ в служебное пространство.
func (s *RecordStore) IsReservedKey(k string) bool {
	for _, r := range reservedKeys {
		if k == r {
			return true
		}
	}
	return false
}

// ReservedKeys возвращает список служебных ключей (используется в тестах).
func (s *RecordStore) ReservedKeys() []string {
	out := make([]string, len(reservedKeys))
	copy(out, reservedKeys)
	return out
}

// IsExistingKey сообщает, занят ли ключ.
func (s *RecordStore) IsExistingKey(k string) bool {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM records WHERE key = ?`, k).Scan(&one)
	return err == nil
}

// SetRecord сохраняет запись под ключом newKey.
//
// deleteOld используется при переименовании: прежняя запись под oldKey
// удаляется только ПОСЛЕ успешной записи новой, чтобы частичный сбой не
// терял данные. overwrite разрешает занять уже существующий ключ.
func (s *RecordStore) SetRecord(newKey string, rec *model.Record, deleteOld, overwrite bool, oldKey string) Status {
	if rec == nil {
		return StatusError
	}
	newKey = strings.TrimSpace(newKey)
	oldKey = strings.TrimSpace(oldKey)
	if newKey == "" {
		return StatusRequire
	}
	if s.IsReservedKey(newKey) {
		return StatusForbidden
	}
	if s.IsExistingKey(newKey) && !overwrite {
		return StatusExisting
	}

	// отметка времени строго возрастает даже при часах с грубым разрешением
	stamp := time.Now().UnixMilli()
	if prev := s.GetRecord(newKey); prev != nil && prev.LastSaved >= stamp {
		stamp = prev.LastSaved + 1
	}
	rec.LastSaved = stamp

	raw, err := json.Marshal(rec)
	if err != nil {
		return StatusError
	}

	if s.maxBytes > 0 {
		used, err := s.usedBytes(newKey)
		if err != nil {
			return StatusError
		}
		if used+int64(len(newKey))+int64(len(raw)) > s.maxBytes {
			// квота — локальное синхронное состояние; повтор её не изменит
			return StatusFull
		}
	}

	// перед данными обновляем счётчик имён (его собственная служебная запись)
	next, _ := strconv.ParseInt(s.GetCounterValue(), 10, 64)
	if err := s.setRaw(counterKey, counterRecord{Counter: next}); err != nil {
		return StatusError
	}
	if err := s.setRaw(newKey, rec); err != nil {
		return StatusError
	}

	if oldKey != "" && oldKey != newKey && deleteOld {
		s.RemoveRecord(oldKey)
	}
	return StatusSuccess
}

// setRaw пишет произвольное значение под ключ без проверок SetRecord.
func (s *RecordStore) setRaw(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO records(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw))
	return err
}

// usedBytes считает занятый объём, не учитывая заменяемую запись excludeKey.
func (s *RecordStore) usedBytes(excludeKey string) (int64, error) {
	var n int64
	err := s.db.QueryRow(
		`SELECT IFNULL(SUM(LENGTH(key) + LENGTH(value)), 0) FROM records WHERE key <> ?`,
		excludeKey).Scan(&n)
	return n, err
}

// GetRecord возвращает запись по ключу. При отсутствии ключа или повреждённом
// содержимом возвращает nil, никогда не паникует.
func (s *RecordStore) GetRecord(key string) *model.Record {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM records WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		return nil
	}
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return nil
	}
	var rec model.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil
	}
	return &rec
}

// RemoveRecord удаляет запись. Для нерезервированных ключей рассылает
// уведомление об изменении списка.
func (s *RecordStore) RemoveRecord(key string) bool {
	if _, err := s.db.Exec(`DELETE FROM records WHERE key = ?`, key); err != nil {
		return false
	}
	if !s.IsReservedKey(key) && s.onListChanged != nil {
		s.onListChanged(s.GetRecordList())
	}
	return true
}

// RemoveAllRecords удаляет все пользовательские записи (служебные остаются).
func (s *RecordStore) RemoveAllRecords() {
	for _, rec := range s.GetSurveyRecords(false, "") {
		s.RemoveRecord(rec.Key)
	}
}

// GetRecordList возвращает ключи и статусы записей по возрастанию lastSaved.
func (s *RecordStore) GetRecordList() []model.RecordInfo {
	records := s.GetSurveyRecords(false, "")
	list := make([]model.RecordInfo, 0, len(records))
	for _, r := range records {
		list = append(list, model.RecordInfo{Key: r.Key, Draft: r.Draft, LastSaved: r.LastSaved})
	}
	return list
}

// GetSurveyRecords возвращает записи формы, отфильтровав служебные ключи и
// чужие данные без маркера form. finalOnly исключает черновики, excludeKey —
// открытую в данный момент запись.
func (s *RecordStore) GetSurveyRecords(finalOnly bool, excludeKey string) []model.NamedRecord {
	rows, err := s.db.Query(`SELECT key, value FROM records`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var records []model.NamedRecord
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			continue
		}
		if s.IsReservedKey(key) || key == excludeKey {
			continue
		}
		var rec model.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			// запись не в ожидаемом формате JSON — игнорируем
			continue
		}
		if rec.Form == "" {
			continue
		}
		if finalOnly && rec.Draft {
			continue
		}
		records = append(records, model.NamedRecord{Key: key, Record: rec})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].LastSaved < records[j].LastSaved })
	return records
}

// GetCounterValue возвращает следующее значение счётчика для автоимён записей.
// При отсутствии счётчика отсчёт начинается с 0.
func (s *RecordStore) GetCounterValue() string {
	var n int64
	var raw string
	if err := s.db.QueryRow(`SELECT value FROM records WHERE key = ?`, counterKey).Scan(&raw); err == nil {
		var c counterRecord
		if err := json.Unmarshal([]byte(raw), &c); err == nil {
			n = c.Counter
		}
	}
	return strconv.FormatInt(n+1, 10)
}

// IsWritable проверяет, что хранилище доступно на запись: пишет и удаляет
// служебную запись __writetest.
func (s *RecordStore) IsWritable() bool {
	if err := s.setRaw("__writetest", "x"); err != nil {
		return false
	}
	_, err := s.db.Exec(`DELETE FROM records WHERE key = ?`, "__writetest")
	return err == nil
}

// ExportString собирает все записи в один XML-фрагмент для резервной копии.
func (s *RecordStore) ExportString() string {
	var b strings.Builder
	for _, rec := range s.GetSurveyRecords(false, "") {
		draft := ""
		if rec.Draft {
			draft = ` draft="true()"`
		}
		fmt.Fprintf(&b, `<record name="%s" lastSaved="%d"%s>%s</record>`,
			rec.Key, rec.LastSaved, draft, rec.Data)
	}
	return b.String()
}
