package apperr

import (
	"errors"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindStorage, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Status())
		})
	}
}

func TestAsWrapsForeignErrors(t *testing.T) {
	e := As(errors.New("disk full"))
	assert.Equal(t, KindStorage, e.Kind)
	assert.Contains(t, e.Error(), "disk full")

	conflict := Conflict("table %s is occupied", "3")
	wrapped := pkgerrors.Wrap(conflict, "assign")
	assert.Same(t, conflict, As(wrapped))
	assert.True(t, Is(wrapped, KindConflict))
	assert.False(t, Is(wrapped, KindNotFound))
	assert.Nil(t, As(nil))
}
