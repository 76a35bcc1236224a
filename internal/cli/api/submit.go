package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"FormKeeper/internal/cli/model"
)

// Поля multipart-запроса отправки. Контракт сервера: XML всегда в
// xml_submission_data, маркер неполноты присутствует только у нефинальных
// батчей.
const (
	FieldXMLSubmissionData = "xml_submission_data"
	FieldAssignmentID      = "assignment_id"
	FieldIncomplete        = "*isIncomplete*"
)

// SubmissionURL строит адрес отправки записи: базовый эндпойнт, необязательный
// сегмент ключа доступа, необязательный сегмент id правимого инстанса и
// идентификатор устройства.
func SubmissionURL(serverURL, accessKey, editTargetID, deviceID string) string {
	u := serverURL + "/submission"
	if accessKey != "" {
		u += "/key/" + url.PathEscape(accessKey)
	}
	if editTargetID != "" {
		u += "/" + url.PathEscape(editTargetID)
	}
	return u + "?deviceID=" + url.QueryEscape(deviceID)
}

// BuildBatchBody собирает multipart-тело одного батча: XML, необязательный
// assignment_id, по части на вложение (имя части — имя файла) и маркер
// неполноты для всех батчей, кроме последнего.
func BuildBatchBody(xmlData, assignmentID string, media []model.Media, final bool) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if err := w.WriteField(FieldXMLSubmissionData, xmlData); err != nil {
		return nil, "", err
	}
	if assignmentID != "" {
		if err := w.WriteField(FieldAssignmentID, assignmentID); err != nil {
			return nil, "", err
		}
	}
	for _, m := range media {
		part, err := w.CreateFormFile(m.FileName, m.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(m.Blob); err != nil {
			return nil, "", err
		}
	}
	if !final {
		if err := w.WriteField(FieldIncomplete, "yes"); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

// PostBatch отправляет один батч и возвращает HTTP-статус ответа.
// Статус 0 означает, что ответа не было (сетевая ошибка или таймаут).
func PostBatch(ctx context.Context, client *http.Client, url string, body *bytes.Buffer, contentType string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()
	// тело ответа не используется, но соединение нужно дочитать
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
