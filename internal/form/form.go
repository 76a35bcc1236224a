// Package form — разбор сериализованного XML-инстанса формы: извлечение
// instanceID, перечисление файловых узлов и нормализация имён медиафайлов.
package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ErrNoInstanceID возвращается, когда в данных нет элемента meta/instanceID.
var ErrNoInstanceID = errors.New("instance data has no instanceID")

func parse(data string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(data); err != nil {
		return nil, fmt.Errorf("parse instance XML: %w", err)
	}
	return doc, nil
}

// DeriveInstanceID извлекает стабильный идентификатор инстанса из
// сериализованных данных. Им именуется каталог вложений записи.
func DeriveInstanceID(data string) (string, error) {
	doc, err := parse(data)
	if err != nil {
		return "", err
	}
	for _, path := range []string{"//meta/instanceID", "//instanceID"} {
		if el := doc.FindElement(path); el != nil {
			if id := strings.TrimSpace(el.Text()); id != "" {
				return id, nil
			}
		}
	}
	return "", ErrNoInstanceID
}

// MediaFileNames возвращает имена файлов из всех узлов с атрибутом
// type="file" в порядке документа.
func MediaFileNames(data string) ([]string, error) {
	doc, err := parse(data)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, el := range doc.FindElements(`//*[@type='file']`) {
		if name := strings.TrimSpace(el.Text()); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// Имена, которые некоторые клиенты захвата присваивают всем файлам подряд.
const (
	genericImage = "image.jpg"
	genericVideo = "capturedvideo.MOV"
)

// MediaNamer переписывает повторяющиеся стандартные имена медиафайлов в
// уникальные с числовым суффиксом. Клиент прогоняет через него ссылки в XML,
// сервер — имена входящих частей, поэтому обе стороны приходят к одинаковым
// именам. Один экземпляр ведёт счётчики для всей записи.
type MediaNamer struct {
	image int
	video int
}

// Observe учитывает уже присвоенное ранее имя: счётчики продолжатся за ним.
// Так сервер нумерует файлы следующих батчей вслед за уже принятыми.
func (n *MediaNamer) Observe(name string) {
	var i int
	if _, err := fmt.Sscanf(name, "image_%d.jpg", &i); err == nil && i >= n.image {
		n.image = i + 1
	}
	if _, err := fmt.Sscanf(name, "capturedvideo_%d.MOV", &i); err == nil && i >= n.video {
		n.video = i + 1
	}
}

// Fix возвращает очередное уникальное имя для стандартного дублирующегося;
// остальные имена возвращает как есть.
func (n *MediaNamer) Fix(name string) string {
	switch name {
	case genericImage:
		name = fmt.Sprintf("image_%d.jpg", n.image)
		n.image++
	case genericVideo:
		name = fmt.Sprintf("capturedvideo_%d.MOV", n.video)
		n.video++
	}
	return name
}

// FixMediaNames переписывает ссылки на медиафайлы в данных инстанса по схеме
// MediaNamer.
func FixMediaNames(data string) (string, error) {
	doc, err := parse(data)
	if err != nil {
		return "", err
	}
	var namer MediaNamer
	for _, el := range doc.FindElements(`//*[@type='file']`) {
		name := strings.TrimSpace(el.Text())
		if fixed := namer.Fix(name); fixed != name {
			el.SetText(fixed)
		}
	}
	return doc.WriteToString()
}
