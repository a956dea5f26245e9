package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrLastFile, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrStore, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatus(c.err), "for %v", c.err)
	}
}

func TestHTTPStatusSeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: content is empty", ErrValidation)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(wrapped))

	double := fmt.Errorf("handling request: %w", wrapped)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(double))
}
