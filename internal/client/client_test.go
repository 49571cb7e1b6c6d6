package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mininotes/internal/apperr"
	"github.com/starford/mininotes/internal/testutil"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	srv, _ := testutil.TestServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)

	_, err = New("http://")
	assert.Error(t, err)

	c, err := New("http://localhost:8000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
}

func TestHealth(t *testing.T) {
	c := newTestClient(t)
	assert.NoError(t, c.Health(context.Background()))
}

func TestCreateAndListRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateNote(ctx, "Hello", "World")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, "Hello", created.Title)
	assert.Equal(t, "World", created.Content)

	notes, err := c.ListNotes(ctx, "")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, created.ID, notes[0].ID)
	assert.Equal(t, created.Title, notes[0].Title)
	assert.Equal(t, created.Content, notes[0].Content)
	assert.True(t, created.CreatedAt.Equal(notes[0].CreatedAt))

	got, err := c.GetNote(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestListNotesWithQuery(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	_, err := c.CreateNote(ctx, "Python Guide", "Learn Python")
	require.NoError(t, err)
	_, err = c.CreateNote(ctx, "Rust Guide", "Learn Rust")
	require.NoError(t, err)

	notes, err := c.ListNotes(ctx, "python")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Python Guide", notes[0].Title)

	notes, err = c.ListNotes(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestCreateValidationError(t *testing.T) {
	c := newTestClient(t)
	_, err := c.CreateNote(context.Background(), "title", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Contains(t, err.Error(), "content")
}

func TestGetNoteNotFound(t *testing.T) {
	c := newTestClient(t)
	_, err := c.GetNote(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestNetworkErrorWhenServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)
	_, err = c.ListNotes(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNetwork))
	assert.Equal(t, apperr.MsgNetwork, apperr.MessageOf(err))
}

func TestTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := New(srv.URL, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	_, err = c.ListNotes(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNetwork))
	assert.Contains(t, err.Error(), "timed out")
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestWithHTTPClientUsesCopy(t *testing.T) {
	srv, _ := testutil.TestServer(t)

	calls := 0
	hc := &http.Client{
		Timeout: time.Minute,
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return http.DefaultTransport.RoundTrip(r)
		}),
	}
	c, err := New(srv.URL, WithHTTPClient(hc), WithTimeout(time.Second))
	require.NoError(t, err)

	require.NoError(t, c.Health(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Equal(t, time.Minute, hc.Timeout, "caller's client must not be modified")
}

func TestServerErrorIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.ListNotes(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUnknown))
	assert.Equal(t, apperr.MsgUnknown, err.Error())
}

func TestMalformedResponseIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.ListNotes(context.Background(), "")
	assert.True(t, errors.Is(err, apperr.ErrUnknown))
}
