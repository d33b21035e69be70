package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/service/stage"
	"github.com/viant/vaultflow/service/stage/fs"
)

func newTestRegistry(t *testing.T, files map[string]string) *Service {
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir failed: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	store, err := fs.New(afs.New(), root)
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	return New(store)
}

func TestService_Snapshot(t *testing.T) {
	registry := newTestRegistry(t, map[string]string{
		"Pending_Approval/Email/draft1.md":              "---\nto: a@b.com\nsubject: Hi\n---\nHello",
		"Pending_Approval/Email/2026-02-18-order-99.md": "---\nrecipient: c@d.com\n---\nOrder",
		"Pending_Approval/Social/post1.md":              "---\nplatform: Facebook + Instagram\ndate: 2026-02-18\n---\nNew post",
		"Needs_Action/WhatsApp/msg1.md":                 "---\nfrom: +100\nkeywords: invoice\n---\nneed invoice",
		"Rejected/old.md":                               "no header",
		"Done/Email/sent.md":                            "---\nto: x@y.com\n---\nsent",
		"Pending_Approval/Email/broken.md":              "---\nto a@b.com\nno fence",
	})
	ctx := context.Background()

	items, err := registry.Snapshot(ctx, model.StagePendingApproval)
	if !assert.NoError(t, err) {
		return
	}
	var ids []string
	for _, item := range items {
		ids = append(ids, item.ID)
		assert.Equal(t, model.StagePendingApproval, item.Stage)
	}
	assert.EqualValues(t, []string{"email-2026-02-18-order-99", "email-broken", "email-draft1", "social-post1"}, ids)

	draft := items[2]
	if assert.NotNil(t, draft.Email) {
		assert.Equal(t, "a@b.com", draft.Email.To)
		assert.Equal(t, "Hi", draft.Email.Subject)
	}
	assert.Equal(t, "Hello", draft.Body)

	broken := items[1]
	assert.Equal(t, 0, broken.Metadata.Len())
	assert.Equal(t, "---\nto a@b.com\nno fence", broken.Body)

	social := items[3]
	if assert.NotNil(t, social.Social) {
		assert.EqualValues(t, []string{"facebook", "instagram"}, social.Social.Platforms)
	}

	all, err := registry.Snapshot(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 7)
	assert.Equal(t, model.StageNeedsAction, all[0].Stage)
	assert.Equal(t, model.StageDone, all[len(all)-1].Stage)
}

func TestService_Snapshot_EmptyVault(t *testing.T) {
	registry := newTestRegistry(t, nil)
	items, err := registry.Snapshot(context.Background(), model.StageNeedsAction)
	assert.NoError(t, err)
	assert.Empty(t, items)

	dirItems, err := registry.List(context.Background(), registry.Layout().Directory(model.StageNeedsAction, model.KindWhatsApp))
	assert.NoError(t, err)
	assert.Empty(t, dirItems)
}

func TestService_PendingCount(t *testing.T) {
	registry := newTestRegistry(t, map[string]string{
		"Pending_Approval/Email/a.md":  "a",
		"Pending_Approval/Social/b.md": "b",
		"Pending_Approval/Files/c.md":  "c",
		"Needs_Action/Email/d.md":      "d",
	})
	ctx := context.Background()

	count, err := registry.PendingCount(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = registry.PendingCount(ctx, model.StageNeedsAction, model.StagePendingApproval)
	assert.NoError(t, err)
	assert.Equal(t, 4, count)

	counts, err := registry.Counts(ctx)
	assert.NoError(t, err)
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	assert.Equal(t, 4, total)
}

func TestService_Lookup(t *testing.T) {
	registry := newTestRegistry(t, map[string]string{
		"Pending_Approval/Email/2026-02-18-order-99.md": "---\nto: a@b.com\n---\nbody",
		"Approved/post1.md":                             "---\nplatform: linkedin\n---\npost",
	})
	ctx := context.Background()

	item, err := registry.Lookup(ctx, model.StagePendingApproval, "email-2026-02-18-order-99")
	if assert.NoError(t, err) {
		assert.Equal(t, model.KindEmail, item.Kind)
		assert.Equal(t, "2026-02-18-order-99", item.Base())
	}

	approved, err := registry.Lookup(ctx, model.StageApproved, "social-post1")
	if assert.NoError(t, err) {
		assert.Equal(t, "social-post1", approved.ID)
		assert.EqualValues(t, []string{"linkedin"}, approved.Social.Platforms)
	}

	_, err = registry.Lookup(ctx, model.StagePendingApproval, "email-missing")
	assert.ErrorIs(t, err, stage.ErrNotFound)

	_, err = registry.Lookup(ctx, model.StagePendingApproval, "nokind")
	assert.ErrorIs(t, err, model.ErrInvalidID)
}
