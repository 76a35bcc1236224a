package api

import "fmt"

// Outcome — итог одной попытки отправки, классифицированный по HTTP-статусу.
// Управляет выбором между повтором по расписанию и фатальной ошибкой записи.
type Outcome int

const (
	// OutcomeUnknown — непредвиденный статус; консервативно считается временным.
	OutcomeUnknown Outcome = iota
	// OutcomeCreated — 201, сервер создал новый инстанс.
	OutcomeCreated
	// OutcomeAccepted — 202, сервер распознал дубликат; тоже успех.
	OutcomeAccepted
	// OutcomeAuthExpired — 401, ключ доступа истёк; нужен новый ключ.
	OutcomeAuthExpired
	// OutcomeClientError — фатально для записи; автоматически не повторяется.
	OutcomeClientError
	// OutcomeServerError — временная проблема сервера; повторится со следующим тиком очереди.
	OutcomeServerError
	// OutcomeNetworkError — сеть недоступна или таймаут; повторится со следующим тиком.
	OutcomeNetworkError
)

// Success сообщает, принята ли отправка сервером.
func (o Outcome) Success() bool { return o == OutcomeCreated || o == OutcomeAccepted }

// Transient сообщает, имеет ли смысл автоматический повтор.
func (o Outcome) Transient() bool {
	return o == OutcomeServerError || o == OutcomeNetworkError || o == OutcomeUnknown
}

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeAccepted:
		return "accepted"
	case OutcomeAuthExpired:
		return "authExpired"
	case OutcomeClientError:
		return "clientError"
	case OutcomeServerError:
		return "serverError"
	case OutcomeNetworkError:
		return "networkError"
	default:
		return "unknown"
	}
}

// Classify относит HTTP-статус к одному из итогов. Статус 0 означает, что
// ответ не был получен вовсе (обрыв сети, таймаут).
func Classify(status int) Outcome {
	switch status {
	case 0:
		return OutcomeNetworkError
	case 201:
		return OutcomeCreated
	case 202:
		return OutcomeAccepted
	case 401:
		return OutcomeAuthExpired
	case 400, 403, 404, 413:
		return OutcomeClientError
	}
	if status >= 500 {
		return OutcomeServerError
	}
	return OutcomeUnknown
}

// UserMessage возвращает текст для пользователя по статусу ответа.
func UserMessage(status int) string {
	switch status {
	case 0:
		return "Failed (offline?). Sending will be retried when the connection is back."
	case 201:
		return "Done!"
	case 202:
		return "Done! (duplicate)"
	case 400:
		return "Data server rejected the submission."
	case 401:
		return "Authorisation expired."
	case 403:
		return "Not allowed to post data to this data server. Contact the survey administrator please."
	case 404:
		return "Submission service on data server not found."
	case 413:
		return "Data is too large."
	}
	if status >= 500 {
		return "Sorry, the data server is not available. Please try again later."
	}
	return fmt.Sprintf("Unknown error occurred when submitting data (status %d).", status)
}
