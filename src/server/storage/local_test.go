package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadAndServe(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocal(dir, "/exports/")
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))

	key := "reports/statistics-1.txt"
	require.NoError(t, s.Upload(ctx, key, strings.NewReader("***Highway-To-Peak***\n"), "text/plain"))

	raw, err := os.ReadFile(filepath.Join(dir, "reports", "statistics-1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "***Highway-To-Peak***\n", string(raw))

	u, err := s.PresignedURL(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "/exports/reports/statistics-1.txt", u)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/statistics-1.txt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "***Highway-To-Peak***\n", rec.Body.String())
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocal(t.TempDir(), "/exports")
	require.NoError(t, err)

	for _, key := range []string{"", "../secret.txt", "reports/../../x", "/abs.txt"} {
		err := s.Upload(context.Background(), key, strings.NewReader("x"), "text/plain")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}
