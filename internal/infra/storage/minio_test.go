package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"u/resume.pdf":  "application/pdf",
		"u/resume.PDF":  "application/pdf",
		"u/resume.docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"u/resume.doc":  "application/msword",
		"u/resume.txt":  "text/plain",
		"u/resume.odt":  "application/octet-stream",
	}
	for key, want := range cases {
		assert.Equal(t, want, contentTypeFor(key), key)
	}
}

// fakeS3 menerima HEAD bucket dan PUT object path-style
type fakeS3 struct {
	mu   sync.Mutex
	puts map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.puts[r.URL.Path] = body
		f.mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func TestPutResume_ReturnsObjectKey(t *testing.T) {
	s3 := &fakeS3{puts: map[string][]byte{}}
	srv := httptest.NewServer(s3)
	defer srv.Close()

	ctx := context.Background()
	endpoint := strings.TrimPrefix(srv.URL, "http://")
	st, err := New(ctx, endpoint, "us-east-1", "", "access", "secret", false)
	require.NoError(t, err)
	require.NoError(t, st.Check(ctx))

	path, err := st.PutResume(ctx, "user-1/resume.pdf", strings.NewReader("pdf"), 3, "")
	require.NoError(t, err)
	assert.Equal(t, "user-1/resume.pdf", path)

	s3.mu.Lock()
	defer s3.mu.Unlock()
	assert.Contains(t, s3.puts, "/"+DefaultBucket+"/user-1/resume.pdf")
}
