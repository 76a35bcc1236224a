package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"FormKeeper/internal/config"
	"FormKeeper/internal/form"
	"FormKeeper/internal/middleware"
	"FormKeeper/internal/model"
	"FormKeeper/internal/service"
)

// Имена полей multipart-формы отправки.
const (
	fieldXMLSubmissionData = "xml_submission_data"
	fieldAssignmentID      = "assignment_id"
	fieldIncomplete        = "*isIncomplete*"
)

// SubmissionHandler принимает батчи отправок.
type SubmissionHandler struct {
	SubmissionService *service.SubmissionService
	UserService       *service.UserService
	Logger            *zap.SugaredLogger
	Config            *config.Config
}

// NewSubmissionHandler создаёт хендлер отправок
func NewSubmissionHandler(
	submissionService *service.SubmissionService,
	userService *service.UserService,
	logger *zap.SugaredLogger,
	cfg *config.Config,
) *SubmissionHandler {
	return &SubmissionHandler{
		SubmissionService: submissionService,
		UserService:       userService,
		Logger:            logger,
		Config:            cfg,
	}
}

// authorize находит пользователя батча: сперва по ключу доступа в пути,
// затем по сессионной cookie. 401 по истёкшему ключу — сигнал клиенту
// запросить новый через /login/key.
func (h *SubmissionHandler) authorize(r *http.Request) (int64, bool) {
	if key := chi.URLParam(r, "accessKey"); key != "" {
		u, err := h.UserService.UserByAccessKey(r.Context(), key)
		if err != nil {
			if !errors.Is(err, service.ErrUnknownAccessKey) {
				h.Logger.Errorw("authorize: access key lookup failed", "error", err)
			}
			return 0, false
		}
		return u.ID, true
	}
	return middleware.GetUserIDFromContext(r.Context())
}

// Receive принимает один multipart-батч отправки.
//
// Ответы: 201 — запись принята целиком; 202 — нефинальный батч или повтор
// уже принятой записи; 400 — нет данных или instanceID; 401 — ни сессии,
// ни действующего ключа; 413 — батч больше лимита.
func (h *SubmissionHandler) Receive(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// запас поверх клиентского бюджета: бюджет мягкий, первый файл батча
	// может его превысить
	maxBody := h.Config.MaxPostSize*2 + 1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.Logger.Warnw("Receive: invalid multipart form", "error", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	xml := r.FormValue(fieldXMLSubmissionData)
	if xml == "" {
		http.Error(w, "missing submission data", http.StatusBadRequest)
		return
	}
	instanceID, err := form.DeriveInstanceID(xml)
	if err != nil {
		http.Error(w, "submission has no instance id", http.StatusBadRequest)
		return
	}

	attachments, err := h.readAttachments(r)
	if err != nil {
		h.Logger.Warnw("Receive: failed to read attachments", "error", err)
		http.Error(w, "invalid attachment", http.StatusBadRequest)
		return
	}

	req := service.ReceiveRequest{
		InstanceID:   instanceID,
		XML:          xml,
		DeviceID:     r.URL.Query().Get("deviceID"),
		AssignmentID: r.FormValue(fieldAssignmentID),
		EditTargetID: chi.URLParam(r, "editTargetID"),
		Incomplete:   r.FormValue(fieldIncomplete) == "yes",
		Attachments:  attachments,
	}

	outcome, err := h.SubmissionService.Receive(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, service.ErrMissingInstanceID) {
			http.Error(w, "submission has no instance id", http.StatusBadRequest)
			return
		}
		h.Logger.Errorw("Receive: service error", "user_id", userID, "instance_id", instanceID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	switch outcome {
	case service.OutcomeStored:
		w.WriteHeader(http.StatusCreated)
	default:
		// нефинальный батч или повторная доставка
		w.WriteHeader(http.StatusAccepted)
	}
}

// readAttachments собирает файловые части формы, кроме служебных полей.
func (h *SubmissionHandler) readAttachments(r *http.Request) ([]model.Attachment, error) {
	var atts []model.Attachment
	for name, headers := range r.MultipartForm.File {
		if name == fieldXMLSubmissionData {
			continue
		}
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			content, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				return nil, err
			}
			atts = append(atts, model.Attachment{
				ID:       uuid.NewString(),
				FileName: name,
				Content:  content,
				Size:     int64(len(content)),
			})
		}
	}
	return atts, nil
}

// List отдаёт записи пользователя текущей сессии, новые первыми.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	subs, err := h.SubmissionService.List(r.Context(), userID)
	if err != nil {
		h.Logger.Errorw("List: service error", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]map[string]any, 0, len(subs))
	for _, s := range subs {
		out = append(out, map[string]any{
			"instance_id": s.InstanceID,
			"device_id":   s.DeviceID,
			"complete":    s.Complete,
			"created_at":  s.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
