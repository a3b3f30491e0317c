package shared

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `json:"name" validate:"required,max=8"`
	Count int    `json:"count" validate:"gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		wantErr     bool
		errContains string
	}{
		{name: "valid json", body: `{"name": "test", "count": 3}`},
		{name: "invalid json", body: `{"name": "test",}`, wantErr: true, errContains: "invalid character"},
		{name: "empty body", body: "", wantErr: true, errContains: ErrEmptyBody.Error()},
		{name: "unknown field", body: `{"name": "a", "age": 3}`, wantErr: true, errContains: "unknown field"},
		{name: "trailing data", body: `{"name": "a"} {}`, wantErr: true, errContains: "unexpected data"},
		{name: "oversized", body: `{"name": "` + strings.Repeat("x", MaxRequestBodyBytes) + `"}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(tc.body))

			var target sampleRequest
			err := DecodeJSON(req, &target)

			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "test", target.Name)
				assert.Equal(t, 3, target.Count)
				return
			}
			require.Error(t, err)
			if tc.errContains != "" {
				assert.Contains(t, err.Error(), tc.errContains)
			}
		})
	}
}

func TestDecodeJSONNoBody(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	err := DecodeJSON(req, &sampleRequest{})
	assert.ErrorIs(t, err, ErrEmptyBody)
}

type selfValidating struct {
	Value string `json:"value" validate:"required"`
}

var errSelfCheck = errors.New("value must be upper case")

func (s selfValidating) Validate() error {
	if strings.ToUpper(s.Value) != s.Value {
		return errSelfCheck
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	t.Run("struct tags", func(t *testing.T) {
		t.Parallel()
		err := ValidateRequest(sampleRequest{Count: -1})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)

		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		assert.ElementsMatch(t, []string{"name", "count"}, fields, "json names are reported")
	})

	t.Run("tags run before Validate method", func(t *testing.T) {
		t.Parallel()
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, ValidateRequest(selfValidating{}), &verrs)
		assert.ErrorIs(t, ValidateRequest(selfValidating{Value: "abc"}), errSelfCheck)
		assert.NoError(t, ValidateRequest(selfValidating{Value: "ABC"}))
	})
}
