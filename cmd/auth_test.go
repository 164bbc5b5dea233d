// ABOUTME: Tests for the account commands
// ABOUTME: Covers login, signup, logout and whoami against the fake storefront

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markalston/storefront-cli/internal/client"
	"github.com/markalston/storefront-cli/internal/session"
	"github.com/markalston/storefront-cli/internal/shoptest"
)

func TestRunLogin_SavesSession(t *testing.T) {
	newShop(t)
	ctx := context.Background()

	var buf bytes.Buffer
	code := runLogin(ctx, &buf, shoptest.Email, shoptest.Password)
	require.Equal(t, 0, code, buf.String())
	assert.Contains(t, buf.String(), "Login successful!")
	assert.Contains(t, buf.String(), "Logged in as "+shoptest.FullName)

	buf.Reset()
	code = runWhoami(ctx, &buf, time.Now())
	assert.Equal(t, 0, code)
	assert.Contains(t, buf.String(), "Email:   "+shoptest.Email)
}

func TestRunLogin_WrongPassword(t *testing.T) {
	newShop(t)

	var buf bytes.Buffer
	code := runLogin(context.Background(), &buf, shoptest.Email, "wrong")

	assert.Equal(t, 1, code)
	assert.Equal(t, 1, strings.Count(buf.String(), "Invalid email or password"))
	assert.NotContains(t, buf.String(), "Error:", "the notice already explained the failure")
}

func TestRunLogin_JSON(t *testing.T) {
	newShop(t)
	jsonOutput = true

	var buf bytes.Buffer
	code := runLogin(context.Background(), &buf, shoptest.Email, shoptest.Password)
	require.Equal(t, 0, code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), buf.String())
	assert.Equal(t, shoptest.FullName, out["fullName"])
	assert.Equal(t, true, out["isLoggedIn"])
	assert.NotContains(t, buf.String(), shoptest.Token)
}

func TestRunLogin_Unreachable(t *testing.T) {
	isolateConfig(t)
	apiURL = "http://127.0.0.1:1"

	var buf bytes.Buffer
	code := runLogin(context.Background(), &buf, shoptest.Email, shoptest.Password)

	assert.Equal(t, 2, code)
	assert.Contains(t, buf.String(), "Something went wrong")
}

func TestRunSignup_ShortPassword(t *testing.T) {
	newShop(t)

	var buf bytes.Buffer
	code := runSignup(context.Background(), &buf, client.SignupRequest{
		FullName: "Grace Hopper",
		Email:    "grace@example.com",
		Password: "abc",
	})

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "password must be longer than or equal to 6 characters")
}

func TestRunSignup_LogsIn(t *testing.T) {
	newShop(t)

	var buf bytes.Buffer
	code := runSignup(context.Background(), &buf, client.SignupRequest{
		FullName: "Grace Hopper",
		Email:    "grace@example.com",
		Password: "cobol-1959",
	})

	require.Equal(t, 0, code, buf.String())
	assert.Contains(t, buf.String(), "Logged in as Grace Hopper")
}

func TestRunLogout(t *testing.T) {
	newShop(t)
	loginAs(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.Equal(t, 0, runLogout(ctx, &buf))

	buf.Reset()
	assert.Equal(t, 1, runWhoami(ctx, &buf, time.Now()))
	assert.Contains(t, buf.String(), "Not logged in")
}

func TestRunWhoami_NotLoggedInJSON(t *testing.T) {
	newShop(t)
	jsonOutput = true

	var buf bytes.Buffer
	code := runWhoami(context.Background(), &buf, time.Now())

	assert.Equal(t, 1, code)
	assert.JSONEq(t, `{"isLoggedIn": false}`, buf.String())
}

func TestFormatSession_FallsBackToEmail(t *testing.T) {
	jsonOutput = false
	got := formatSession(session.Session{Email: "ada@example.com", IsLoggedIn: true})
	assert.Equal(t, "Logged in as ada@example.com", got)
}
