package retrieval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/futig/studyroom-rag/internal/config"
	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/futig/studyroom-rag/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type fakeUsecase struct {
	roomID string
	req    *entity.ContextRequest
}

func (f *fakeUsecase) BuildContext(_ context.Context, roomID string, req *entity.ContextRequest) (*entity.ContextResponse, error) {
	f.roomID, f.req = roomID, req
	return &entity.ContextResponse{Context: "스택과 큐", Found: true, Scope: entity.TopicScopeSpecific, Length: 5}, nil
}

func (f *fakeUsecase) ExportContext(_ context.Context, roomID string, req *entity.ContextRequest) (*entity.ExportedContext, error) {
	f.roomID, f.req = roomID, req
	return &entity.ExportedContext{Data: []byte("# t\n"), ContentType: "text/markdown; charset=utf-8", FileName: "context.md", Found: true}, nil
}

func newTestRouter(uc *fakeUsecase) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, validator.NewFileValidator(config.FileUploadConfig{})))
	return r
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBuildContext(t *testing.T) {
	uc := &fakeUsecase{}
	roomID := uuid.NewString()
	fileID := uuid.NewString()

	rec := post(newTestRouter(uc), "/rooms/"+roomID+"/context", `{"topic":"자료구조 스택 구현","file_ids":["`+fileID+`"],"max_chars":500}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp entity.ContextResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Found || resp.Scope != entity.TopicScopeSpecific {
		t.Errorf("unexpected response %+v", resp)
	}
	if uc.roomID != roomID || uc.req.MaxChars != 500 || uc.req.FileIDs[0] != fileID {
		t.Errorf("request not forwarded: room %s, req %+v", uc.roomID, uc.req)
	}
}

func TestBuildContext_BadRequests(t *testing.T) {
	roomID := uuid.NewString()

	tests := []struct {
		name string
		path string
		body string
	}{
		{"bad room", "/rooms/room-1/context", `{"topic":"x"}`},
		{"malformed json", "/rooms/" + roomID + "/context", `{"topic":`},
		{"negative budget", "/rooms/" + roomID + "/context", `{"topic":"x","max_chars":-1}`},
		{"bad file id", "/rooms/" + roomID + "/context", `{"topic":"x","file_ids":["nope"]}`},
		{"bad format", "/rooms/" + roomID + "/context/export", `{"topic":"x","format":"html"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := post(newTestRouter(&fakeUsecase{}), tt.path, tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestExportContext(t *testing.T) {
	rec := post(newTestRouter(&fakeUsecase{}), "/rooms/"+uuid.NewString()+"/context/export", `{"topic":"총정리","format":"markdown"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="context.md"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if rec.Body.String() != "# t\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
