package shared_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/phrazzld/task-tracker/internal/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		values url.Values
		want   bool
	}{
		{url.Values{"c": {"true"}}, true},
		{url.Values{"c": {"on"}}, true},
		{url.Values{"c": {"1"}}, true},
		{url.Values{"c": {"TRUE"}}, true},
		{url.Values{"c": {"true", "false"}}, true},
		{url.Values{"c": {"false", "true"}}, false},
		{url.Values{"c": {"yes"}}, false},
		{url.Values{}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, shared.FormBool(tt.values, "c"), "%v", tt.values)
	}
}

func TestParseForm(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/Task/Create?description=query",
		strings.NewReader("description=Buy+milk"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	values, err := shared.ParseForm(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", shared.FormString(values, "description"))
}

func TestParseForm_TooLarge(t *testing.T) {
	t.Parallel()

	body := "description=" + strings.Repeat("a", 128<<10)
	req := httptest.NewRequest(http.MethodPost, "/Task/Create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err := shared.ParseForm(httptest.NewRecorder(), req)
	assert.Error(t, err)
}
