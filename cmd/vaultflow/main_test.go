package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/vaultflow"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCmd(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newRelay(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"messageId":"msg-42"}`))
	}))
	t.Cleanup(server.Close)
	t.Setenv(vaultflow.EnvEmailURL, server.URL)
	return server
}

func TestCLI_DraftListApprove(t *testing.T) {
	newRelay(t)
	root := t.TempDir()

	out, err := run(t, "--vault", root, "draft", "email", "--to", "a@b.com", "--subject", "Hi", "--body", "Hello", "--name", "welcome")
	require.NoError(t, err)
	assert.Equal(t, "drafted email-welcome\n", out)

	out, err = run(t, "--vault", root, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "email-welcome")
	assert.Contains(t, out, "to a@b.com: Hi")

	out, err = run(t, "--vault", root, "count")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = run(t, "--vault", root, "approve", "email-welcome")
	require.NoError(t, err)
	assert.Contains(t, out, "msg-42")
	_, err = os.Stat(filepath.Join(root, "Done", "Email", "welcome.md"))
	assert.NoError(t, err)

	_, err = run(t, "--vault", root, "approve", "email-welcome")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), vaultflow.ReasonNotFound))

	out, err = run(t, "--vault", root, "ls", "--stage", "done")
	require.NoError(t, err)
	assert.Contains(t, out, "email-welcome")
}

func TestCLI_RejectSocial(t *testing.T) {
	newRelay(t)
	root := t.TempDir()
	body := filepath.Join(t.TempDir(), "post.txt")
	require.NoError(t, os.WriteFile(body, []byte("Launch day!"), 0o644))

	out, err := run(t, "--vault", root, "draft", "social", "--platform", "Facebook", "--body-file", body, "--name", "launch")
	require.NoError(t, err)
	assert.Equal(t, "drafted social-launch\n", out)

	out, err = run(t, "--vault", root, "reject", "social-launch")
	require.NoError(t, err)
	assert.Contains(t, out, "rejected social-launch")
	_, err = os.Stat(filepath.Join(root, "Rejected", "launch.md"))
	assert.NoError(t, err)
}

func TestCLI_PromoteComplete(t *testing.T) {
	newRelay(t)
	root := t.TempDir()
	dir := filepath.Join(root, "Needs_Action", "WhatsApp")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "msg_1.md"), []byte("---\nfrom: +100\n---\nInvoice please"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "msg_2.md"), []byte("---\nfrom: +200\n---\nThanks"), 0o644))

	out, err := run(t, "--vault", root, "ls", "--stage", "needs_action")
	require.NoError(t, err)
	assert.Contains(t, out, "from +100: Invoice please")

	_, err = run(t, "--vault", root, "promote", "whatsapp-msg_1")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "Pending_Approval", "WhatsApp", "msg_1.md"))
	assert.NoError(t, err)

	_, err = run(t, "--vault", root, "complete", "whatsapp-msg_2")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "Done", "WhatsApp", "msg_2.md"))
	assert.NoError(t, err)
}

func TestCLI_Errors(t *testing.T) {
	newRelay(t)
	root := t.TempDir()

	_, err := run(t, "--vault", root, "approve", "nodash")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), vaultflow.ReasonInvalidID))

	_, err = run(t, "--vault", root, "ls", "--stage", "archive")
	assert.Error(t, err)

	_, err = run(t, "--vault", root, "draft", "email", "--body", "Hello")
	assert.EqualError(t, err, "--to is required")

	_, err = run(t, "--vault", root, "approve")
	assert.Error(t, err)
}
