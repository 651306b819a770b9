package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/glokal-ai/docchat/internal/model"
	"github.com/glokal-ai/docchat/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, logger.NewNop())
}

func TestChatSendsPayloadAndDecodesResponse(t *testing.T) {
	var got model.ChatRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(model.ChatResponse{Response: "42"})
	}))

	resp, err := c.Chat(context.Background(), "s-1", "What is the answer?")
	require.NoError(t, err)
	require.Equal(t, "42", resp.Response)
	require.Empty(t, resp.Error)
	require.Equal(t, model.ChatRequest{SessionID: "s-1", Message: "What is the answer?"}, got)
}

func TestChatSurfacesBackendErrorField(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(model.ChatResponse{Error: "Invalid session ID"})
	}))

	// A backend-reported failure is data, not a transport error.
	resp, err := c.Chat(context.Background(), "bogus", "hello")
	require.NoError(t, err)
	require.Equal(t, "Invalid session ID", resp.Error)
	require.Empty(t, resp.Response)
}

func TestChatNon2xxWithoutFailureFieldIsAnError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "An unexpected error occurred"}`))
	}))

	// The body decodes into ChatResponse as a zero value; that must not
	// look like an empty success.
	_, err := c.Chat(context.Background(), "s-1", "hello")
	require.Error(t, err)
}

func TestListSessionsNon2xxIsAnError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "An unexpected error occurred"}`))
	}))

	// A failed list must never decode into an empty registry snapshot.
	sessions, err := c.ListSessions(context.Background())
	require.Error(t, err)
	require.Nil(t, sessions)
}

func TestListFilesNon2xxIsAnError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "An unexpected error occurred"}`))
	}))

	// A failed list must never decode into an empty attachment set.
	files, err := c.ListFiles(context.Background(), "s-1")
	require.Error(t, err)
	require.Nil(t, files)
}

func TestChatHistoryNon2xxIsAnError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Session not found"}`))
	}))

	_, err := c.ChatHistory(context.Background(), "missing")
	require.Error(t, err)
}

func TestDeleteFileNon2xxWithErrorFieldIsSurfaced(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(model.DeleteFileResponse{Error: "File not found"})
	}))

	resp, err := c.DeleteFile(context.Background(), "s-1", "missing.pdf")
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, "File not found", resp.Error)
}

func TestChatNon2xxWithoutBodyIsAnError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.Chat(context.Background(), "s-1", "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestRegenerateRejectsErrorAndEmptyResponses(t *testing.T) {
	t.Run("error field", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(model.RegenerateResponse{Error: "limit reached"})
		}))
		_, err := c.Regenerate(context.Background(), "s-1", "again")
		require.Error(t, err)
		require.Contains(t, err.Error(), "limit reached")
	})

	t.Run("empty response", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(model.RegenerateResponse{})
		}))
		_, err := c.Regenerate(context.Background(), "s-1", "again")
		require.Error(t, err)
	})

	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/regenerate", r.URL.Path)
			json.NewEncoder(w).Encode(model.RegenerateResponse{
				Response:          "another take",
				RegenerationCount: 2,
			})
		}))
		resp, err := c.Regenerate(context.Background(), "s-1", "again")
		require.NoError(t, err)
		require.Equal(t, "another take", resp.Response)
		require.Equal(t, 2, resp.RegenerationCount)
	})
}

func TestListSessionsParsesTimestamps(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sessions", r.URL.Path)
		json.NewEncoder(w).Encode(model.ListSessionsResponse{
			Sessions: []model.SessionRecord{
				{SessionID: "s-1", Title: "First", LastUpdated: "2026-08-01T10:30:00Z"},
				{SessionID: "s-2", Title: "Second", LastUpdated: "garbage"},
			},
		})
	}))

	sessions, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, "First", sessions[0].Title)
	require.Equal(t, 2026, sessions[0].LastUpdated.Year())
	require.True(t, sessions[1].LastUpdated.IsZero())
}

func TestGenerateSessionRequiresID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/generate_session", r.URL.Path)
		json.NewEncoder(w).Encode(model.GenerateSessionResponse{})
	}))

	_, err := c.GenerateSession(context.Background())
	require.Error(t, err)
}

func TestChatHistoryPassesSessionID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat_history", r.URL.Path)
		require.Equal(t, "s-9", r.URL.Query().Get("session_id"))
		json.NewEncoder(w).Encode(model.ChatHistoryResponse{
			History: []model.HistoryRecord{
				{Type: "HumanMessage", Content: "hi"},
				{Type: "AIMessage", Content: "hello"},
			},
		})
	}))

	history, err := c.ChatHistory(context.Background(), "s-9")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, model.SenderUser, history[0].Message().Sender)
	require.Equal(t, model.SenderBot, history[1].Message().Sender)
}

func TestUpdateSessionTitleUsesQueryParams(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/update_session_title", r.URL.Path)
		require.Equal(t, "s-1", r.URL.Query().Get("session_id"))
		require.Equal(t, "New Title", r.URL.Query().Get("new_title"))
	}))

	require.NoError(t, c.UpdateSessionTitle(context.Background(), "s-1", "New Title"))
}

func TestDeleteSessionUsesQueryParams(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/delete_session", r.URL.Path)
		require.Equal(t, "s-1", r.URL.Query().Get("session_id"))
	}))

	require.NoError(t, c.DeleteSession(context.Background(), "s-1"))
}

func TestUploadSendsMultipartForm(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		require.Equal(t, "s-1", r.FormValue("session_id"))
		require.Len(t, r.MultipartForm.File["files"], 2)
		require.Equal(t, "a.pdf", r.MultipartForm.File["files"][0].Filename)
		require.Equal(t, "b.txt", r.MultipartForm.File["files"][1].Filename)

		json.NewEncoder(w).Encode(model.UploadResponse{
			Success:       true,
			UploadedFiles: []string{"a.pdf", "b.txt"},
		})
	}))

	resp, err := c.Upload(context.Background(), "s-1", []model.FileUpload{
		{Name: "a.pdf", Content: []byte("%PDF-1.4")},
		{Name: "b.txt", Content: []byte("plain text")},
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, []string{"a.pdf", "b.txt"}, resp.UploadedFiles)
}

func TestDeleteFileSendsJSONBody(t *testing.T) {
	var got model.DeleteFileRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/delete_file", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(model.DeleteFileResponse{Success: true})
	}))

	resp, err := c.DeleteFile(context.Background(), "s-1", "spec.pdf")
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, model.DeleteFileRequest{SessionID: "s-1", Filename: "spec.pdf"}, got)
}

func TestListFilesDecodesRecords(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/uploaded_files", r.URL.Path)
		require.Equal(t, "s-1", r.URL.Query().Get("session_id"))
		json.NewEncoder(w).Encode(model.ListFilesResponse{
			Files: []model.FileRecord{
				{Name: "spec.pdf", Type: "file", Size: 204800, OCRProcessed: true},
				{Name: "scrape-0.txt", Type: "webpage", OriginalURL: "https://example.com"},
			},
		})
	}))

	files, err := c.ListFiles(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, files, 2)

	a := files[0].Attachment()
	require.Equal(t, model.AttachmentFile, a.Kind)
	require.Equal(t, model.StatusOCRProcessed, a.Status)

	b := files[1].Attachment()
	require.Equal(t, model.AttachmentWebpage, b.Kind)
	require.Equal(t, "https://example.com", b.SourceURL)
}

func TestAddWebLinksRoundTrip(t *testing.T) {
	var got model.AddWebLinksRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/add_web_links", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(model.AddWebLinksResponse{
			Success:     true,
			ScrapedURLs: []model.ScrapedURL{{URL: "https://example.com", Filename: "scrape-0.txt"}},
		})
	}))

	resp, err := c.AddWebLinks(context.Background(), "s-1", []string{"https://example.com"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, []string{"https://example.com"}, got.URLs)
	require.Equal(t, "s-1", got.SessionID)
}

func TestSelectAlternativeSendsIndex(t *testing.T) {
	var got model.SelectAlternativeRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/select_alternative", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))

	err := c.SelectAlternative(context.Background(), "s-1", "m-7", 2)
	require.NoError(t, err)
	require.Equal(t, model.SelectAlternativeRequest{
		SessionID:        "s-1",
		MessageID:        "m-7",
		AlternativeIndex: 2,
	}, got)
}

func TestHealthProbe(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
	}))
	require.NoError(t, c.Health(context.Background()))

	down := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	require.Error(t, down.Health(context.Background()))
}

func TestTransportErrorIsWrapped(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second, logger.NewNop())
	_, err := c.Chat(context.Background(), "s-1", "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "chat")
}
