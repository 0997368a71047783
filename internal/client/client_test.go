package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/bugtracker/internal/domain"
	"github.com/sumire/bugtracker/internal/handler"
	"github.com/sumire/bugtracker/internal/repository"
	"github.com/sumire/bugtracker/internal/service"
)

func newAPI(t *testing.T) *Client {
	t.Helper()

	e := handler.NewRouter(handler.RouterConfig{},
		service.NewBugService(repository.NewMemoryBugRepository()))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL + "/api/bugs/")
	require.NoError(t, err)
	return c
}

func TestClient_CRUD(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()

	bugs, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bugs)

	created, err := c.Create(ctx, domain.BugInput{Title: "Bug 1", Description: "Description 1"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.BugStatusOpen, created.Status)

	updated, err := c.Update(ctx, created.ID, domain.BugInput{Title: "Bug 1", Description: "Fixed", Status: domain.BugStatusResolved})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, domain.BugStatusResolved, updated.Status)

	bugs, err = c.List(ctx)
	require.NoError(t, err)
	require.Len(t, bugs, 1)
	assert.Equal(t, "Fixed", bugs[0].Description)

	require.NoError(t, c.Delete(ctx, created.ID))

	err = c.Delete(ctx, created.ID)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusNotFound, ce.Status)
	assert.Equal(t, "Bug not found", ce.Message)
}

func TestClient_ValidationFailure(t *testing.T) {
	c := newAPI(t)

	_, err := c.Create(context.Background(), domain.BugInput{})

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusBadRequest, ce.Status)
	assert.Equal(t, "Something went wrong", ce.Message)
	assert.Equal(t, map[string]string{
		"title":       "Title is required",
		"description": "Description is required",
	}, ce.Fields)
}

func TestClient_NoResponse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url + "/api/bugs")
	require.NoError(t, err)

	_, err = c.List(context.Background())
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 0, ce.Status)
	assert.Equal(t, "No response from server. Please try again.", ce.Message)
	assert.Equal(t, ce.Message, Message(err))
}

func TestResponseError(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantMsg    string
		wantFields map[string]string
	}{
		{name: "server message", body: `{"message":"Bug not found"}`, wantMsg: "Bug not found"},
		{name: "empty message", body: `{"message":""}`, wantMsg: "Something went wrong"},
		{name: "message with detail", body: `{"message":"Something went wrong","error":"db down"}`, wantMsg: "Something went wrong"},
		{
			name:       "store field errors",
			body:       `{"errors":{"status":"bad"}}`,
			wantMsg:    "Something went wrong",
			wantFields: map[string]string{"status": "bad"},
		},
		{name: "not json", body: `<html>`, wantMsg: "Something went wrong"},
		{name: "empty", body: ``, wantMsg: "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := responseError(http.StatusBadRequest, []byte(tt.body))
			assert.Equal(t, tt.wantMsg, e.Message)
			assert.Equal(t, tt.wantFields, e.Fields)
		})
	}
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New("localhost:8080")
	assert.Error(t, err)

	_, err = New("ftp://example.com/api/bugs")
	assert.Error(t, err)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Equal(t, "Bug not found", Message(&Error{Message: "Bug not found"}))
}
