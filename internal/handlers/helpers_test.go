package handlers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"FormKeeper/internal/config"
	"FormKeeper/internal/handlers"
	"FormKeeper/internal/middleware"
	"FormKeeper/internal/model"
	"FormKeeper/internal/repo"
	"FormKeeper/internal/service"
)

// Local light mocks
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) GetUserByAccessKey(ctx context.Context, key string) (*model.User, error) {
	args := m.Called(ctx, key)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) UpdateAccessKey(ctx context.Context, userID int64, key string) error {
	return m.Called(ctx, userID, key).Error(0)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

type mockSubmissionRepo struct{ mock.Mock }

func (m *mockSubmissionRepo) GetByInstanceID(ctx context.Context, userID int64, instanceID string) (*model.Submission, error) {
	args := m.Called(ctx, userID, instanceID)
	if s, ok := args.Get(0).(*model.Submission); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSubmissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	return m.Called(ctx, sub).Error(0)
}
func (m *mockSubmissionRepo) AddAttachments(ctx context.Context, submissionID string, atts []model.Attachment) error {
	return m.Called(ctx, submissionID, atts).Error(0)
}
func (m *mockSubmissionRepo) Update(ctx context.Context, submissionID, xml string, complete bool) error {
	return m.Called(ctx, submissionID, xml, complete).Error(0)
}
func (m *mockSubmissionRepo) ListByUser(ctx context.Context, userID int64) ([]model.Submission, error) {
	args := m.Called(ctx, userID)
	if v, ok := args.Get(0).([]model.Submission); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.SubmissionRepository = (*mockSubmissionRepo)(nil)

// --- Helpers ---

func newTestRouter(t *testing.T, ur repo.UserRepository, sr repo.SubmissionRepository) (http.Handler, *config.Config) {
	t.Helper()
	cfg := &config.Config{AuthSecret: "test-secret", MaxPostSize: 10 * 1000 * 1000}
	logger := zap.NewNop().Sugar()

	if ur == nil {
		ur = &mockUserRepo{}
	}
	if sr == nil {
		sr = &mockSubmissionRepo{}
	}
	userSvc := service.NewUserService(ur)
	subSvc := service.NewSubmissionService(sr, logger)

	h := handlers.NewHandler(userSvc, subSvc, logger, cfg)
	return h.Router, cfg
}

func addAuthCookie(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

// multipartBody собирает тело батча: XML, файлы и, при need, маркер неполноты.
func multipartBody(t *testing.T, xml string, files map[string][]byte, incomplete bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if xml != "" {
		if err := w.WriteField("xml_submission_data", xml); err != nil {
			t.Fatal(err)
		}
	}
	for name, content := range files {
		part, err := w.CreateFormFile(name, name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if incomplete {
		if err := w.WriteField("*isIncomplete*", "yes"); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return body, w.FormDataContentType()
}

const testInstanceXML = `<survey id="s1"><site>x</site><meta><instanceID>uuid:h1</instanceID></meta></survey>`
