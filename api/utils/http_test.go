// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapHandlerFunc(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{BadRequest(errors.New("bad")), http.StatusBadRequest},
		{Forbidden(errors.New("no")), http.StatusForbidden},
		{NotFound(errors.New("missing")), http.StatusNotFound},
		{Conflict(errors.New("busy")), http.StatusConflict},
		{errors.Wrap(Conflict(errors.New("busy")), "wrapped"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return c.err })(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, c.status, rec.Code)
		if c.err != nil {
			assert.Contains(t, rec.Body.String(), c.err.Error())
		}
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"a":1,"b":2}`), &v))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, M{"k": "v"}))
	assert.Equal(t, JSONContentType, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"k":"v"}`, rec.Body.String())
}

func TestParseUint(t *testing.T) {
	v, err := ParseUint("", 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)
	v, err = ParseUint("12", 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), v)
	_, err = ParseUint("-1", 7)
	assert.Error(t, err)
}
