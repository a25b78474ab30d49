//go:build integration

package integration

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/hustlehub/marketplace/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testUser is a signed-in client bound to a seeded profile.
type testUser struct {
	ID     string
	Email  string
	Client *testutil.Client
}

// newUser seeds a profile with role and returns a client signed in as it.
// An empty role seeds no profile at all.
func newUser(t *testing.T, role string) *testUser {
	t.Helper()

	id := uuid.NewString()
	email := testutil.RandomEmail()
	if role != "" {
		_, err := testDB.Exec(context.Background(),
			`INSERT INTO profiles (id, email, role) VALUES ($1, $2, $3)`, id, email, role)
		require.NoError(t, err)
	}

	client := newTestClient(t)
	client.SignInAs(t, testJWTSecret, id, email)
	return &testUser{ID: id, Email: email, Client: client}
}

// submit posts a form action and returns the response.
func submit(t *testing.T, client *testutil.Client, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(path, form)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// requireRedirect asserts a 303 to location.
func requireRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, location, resp.Header.Get("Location"))
}

// countRows runs a COUNT query against the test database.
func countRows(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, testDB.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

// createCourse creates a course through the form action and returns its id.
func createCourse(t *testing.T, owner *testUser, title string) string {
	t.Helper()
	resp := submit(t, owner.Client, "/actions/courses", url.Values{
		"title": {title},
		"price": {"19.99"},
	})
	requireRedirect(t, resp, "/dashboard/courses")

	var id string
	err := testDB.QueryRow(context.Background(),
		`SELECT id FROM courses WHERE user_id = $1 AND title = $2`, owner.ID, title).Scan(&id)
	require.NoError(t, err)
	return id
}
