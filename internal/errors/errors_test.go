package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsInnerCode(t *testing.T) {
	base := New(CodeMissingColumn, `column "LinearSpeed [km/s]" not found`)
	wrapped := Wrap(base, "load stage failed")
	twice := Wrapf(wrapped, "run %s failed", "abc")

	assert.Equal(t, CodeMissingColumn, GetCode(wrapped))
	assert.Equal(t, CodeMissingColumn, GetCode(twice))
	assert.True(t, HasCode(twice, CodeMissingColumn))
	assert.Contains(t, twice.Error(), "run abc failed")
	assert.Contains(t, twice.Error(), "LinearSpeed")
}

func TestWrapPlainError(t *testing.T) {
	sentinel := stderrors.New("disk full")
	wrapped := Wrap(sentinel, "write pivot")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, sentinel))
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
	assert.Nil(t, WithCode(CodeIOError, nil))
}

func TestWithCode(t *testing.T) {
	sentinel := stderrors.New("permission denied")
	err := WithCode(CodeIOError, fmt.Errorf("open output: %w", sentinel))

	assert.Equal(t, CodeIOError, GetCode(err))
	assert.True(t, stderrors.Is(err, sentinel))
	assert.Equal(t, "UNKNOWN", GetCode(sentinel))
}

func TestConstructors(t *testing.T) {
	cause := stderrors.New("boom")

	assert.Equal(t, CodeIOError, IOError("save heatmap", cause).Code)
	assert.Equal(t, CodeRenderError, RenderError("heatmap", cause).Code)
	assert.Equal(t, CodeDatabaseError, DatabaseError("insert run", cause).Code)
	assert.Equal(t, CodeConfigInvalid, ConfigInvalid("bad").Code)
	assert.Equal(t, CodeInvalidInput, InvalidInput("bad").Code)
	assert.Equal(t, "run not found", NotFound("run").Error())
	assert.ErrorIs(t, RenderError("bars", cause), cause)
}
