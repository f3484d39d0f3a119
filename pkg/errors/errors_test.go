package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeThroughWrapping(t *testing.T) {
	base := New(CodeNotFound, "chart not found")
	wrapped := fmt.Errorf("load chart: %w", base)

	assert.True(t, IsCode(wrapped, CodeNotFound))
	assert.False(t, IsCode(wrapped, CodeInternal))
	assert.Equal(t, CodeUnknown, CodeOf(stderrors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalid:        http.StatusBadRequest,
		CodeMissingContext: http.StatusBadRequest,
		CodeNotFound:       http.StatusNotFound,
		CodeConflict:       http.StatusConflict,
		CodeUnauthorized:   http.StatusUnauthorized,
		CodeForbidden:      http.StatusForbidden,
		CodeInternal:       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(New(code, "x")), string(code))
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("boom")))
}

func TestWrapNil(t *testing.T) {
	e := Wrap(nil, CodeInvalid, "bad input")
	assert.Nil(t, e.Err)
	assert.Equal(t, "invalid: bad input", e.Error())

	e = Wrap(stderrors.New("eof"), CodeInvalid, "bad input").WithMeta("field", "data")
	assert.Equal(t, "invalid: bad input: eof", e.Error())
	assert.Equal(t, "data", e.Meta["field"])
}
