package vault

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/service/approval"
	"github.com/viant/vaultflow/service/dispatcher"
	"github.com/viant/vaultflow/service/registry"
	"github.com/viant/vaultflow/service/stage"
	"github.com/viant/vaultflow/service/stage/fs"
)

type fakeDispatcher struct {
	calls   int32
	outcome func(item *model.Item) *dispatcher.Outcome
}

func (f *fakeDispatcher) Execute(ctx context.Context, item *model.Item) *dispatcher.Outcome {
	atomic.AddInt32(&f.calls, 1)
	return f.outcome(item)
}

func delivered(externalID string) func(item *model.Item) *dispatcher.Outcome {
	return func(item *model.Item) *dispatcher.Outcome {
		return &dispatcher.Outcome{Delivered: true, ExternalID: externalID}
	}
}

const emailDraft = "---\nto: client@example.com\nsubject: Invoice #42\ndate: 2026-02-18\n---\n# Hello\n\nPlease find the invoice attached.\n"

const socialDraft = "---\nplatform: Facebook + Instagram\n---\nBig launch today!\n"

func writeRecord(t *testing.T, root string, parts ...string) {
	path := filepath.Join(append([]string{root}, parts[:len(parts)-1]...)...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(parts[len(parts)-1]), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func newTestService(t *testing.T, options ...Option) (approval.Service, string) {
	root := t.TempDir()
	store, err := fs.New(afs.New(), root)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return New(registry.New(store), options...), root
}

// locations returns every relative path holding name under root.
func locations(t *testing.T, root, name string) []string {
	var ret []string
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && info.Name() == name {
			rel, _ := filepath.Rel(root, path)
			ret = append(ret, filepath.ToSlash(rel))
		}
		return nil
	})
	return ret
}

func TestService_ApproveEmail(t *testing.T) {
	fake := &fakeDispatcher{outcome: delivered("msg-77")}
	srv, root := newTestService(t, WithDispatcher(fake))
	writeRecord(t, root, "Pending_Approval", "Email", "reply_client.md", emailDraft)
	ctx := context.Background()

	decision, err := srv.Decide(ctx, "email-reply_client", approval.ActionApprove)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "msg-77", decision.ExternalID)
	assert.Equal(t, model.StageDone, decision.To)
	assert.True(t, decision.Moved)
	assert.Equal(t, int32(1), fake.calls)
	assert.Equal(t, []string{"Done/Email/reply_client.md"}, locations(t, root, "reply_client.md"))

	data, err := os.ReadFile(filepath.Join(root, "Done", "Email", "reply_client.md"))
	assert.NoError(t, err)
	assert.Equal(t, emailDraft, string(data))

	event, err := approval.WaitForEvent(ctx, srv, "email-reply_client", time.Second)
	if assert.NoError(t, err) {
		assert.Equal(t, approval.TopicDecisionCreated, event.Topic)
		assert.Equal(t, "msg-77", event.Decision.ExternalID)
	}
}

func TestService_ApproveFailureThenRetry(t *testing.T) {
	var attempt int32
	fake := &fakeDispatcher{outcome: func(item *model.Item) *dispatcher.Outcome {
		if atomic.AddInt32(&attempt, 1) == 1 {
			return &dispatcher.Outcome{Reason: "relay unreachable"}
		}
		return &dispatcher.Outcome{Delivered: true, ExternalID: "msg-2"}
	}}
	srv, root := newTestService(t, WithDispatcher(fake))
	writeRecord(t, root, "Pending_Approval", "Email", "retry.md", emailDraft)
	ctx := context.Background()

	decision, err := srv.Decide(ctx, "email-retry", approval.ActionApprove)
	assert.ErrorIs(t, err, approval.ErrSideEffect)
	assert.Contains(t, err.Error(), "relay unreachable")
	assert.False(t, decision.Moved)
	assert.Equal(t, []string{"Pending_Approval/Email/retry.md"}, locations(t, root, "retry.md"))

	event, err := approval.WaitForEvent(ctx, srv, "email-retry", time.Second)
	if assert.NoError(t, err) {
		assert.Equal(t, approval.TopicDecisionFailed, event.Topic)
	}

	decision, err = srv.Decide(ctx, "email-retry", approval.ActionApprove)
	assert.NoError(t, err)
	assert.Equal(t, "msg-2", decision.ExternalID)
	assert.Equal(t, []string{"Done/Email/retry.md"}, locations(t, root, "retry.md"))
}

func TestService_RejectIsIdempotent(t *testing.T) {
	fake := &fakeDispatcher{outcome: delivered("never")}
	srv, root := newTestService(t, WithDispatcher(fake))
	writeRecord(t, root, "Pending_Approval", "Email", "spam.md", emailDraft)
	ctx := context.Background()

	decision, err := srv.Decide(ctx, "email-spam", approval.ActionReject)
	assert.NoError(t, err)
	assert.Equal(t, model.StageRejected, decision.To)
	assert.Equal(t, []string{"Rejected/spam.md"}, locations(t, root, "spam.md"))

	_, err = srv.Decide(ctx, "email-spam", approval.ActionReject)
	assert.ErrorIs(t, err, stage.ErrNotFound)
	assert.Equal(t, []string{"Rejected/spam.md"}, locations(t, root, "spam.md"))
	assert.Equal(t, int32(0), fake.calls)
}

func TestService_ApproveSocial(t *testing.T) {
	var testCases = []struct {
		description string
		options     []Option
		expectPath  string
		expectCalls int32
		expectStage model.Stage
		expectExtID string
	}{
		{
			description: "no side effect",
			expectPath:  "Approved/launch.md",
			expectStage: model.StageApproved,
		},
		{
			description: "publish on approve",
			options:     []Option{WithSideEffectKinds(model.KindEmail, model.KindSocial)},
			expectPath:  "Done/Social/launch.md",
			expectCalls: 1,
			expectStage: model.StageDone,
			expectExtID: "facebook:1",
		},
	}

	for _, testCase := range testCases {
		fake := &fakeDispatcher{outcome: delivered("facebook:1")}
		srv, root := newTestService(t, append([]Option{WithDispatcher(fake)}, testCase.options...)...)
		writeRecord(t, root, "Pending_Approval", "Social", "launch.md", socialDraft)

		decision, err := srv.Decide(context.Background(), "social-launch", approval.ActionApprove)
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.Equal(t, testCase.expectStage, decision.To, testCase.description)
		assert.Equal(t, testCase.expectExtID, decision.ExternalID, testCase.description)
		assert.Equal(t, testCase.expectCalls, fake.calls, testCase.description)
		assert.Equal(t, []string{testCase.expectPath}, locations(t, root, "launch.md"), testCase.description)
	}
}

func TestService_DecideErrors(t *testing.T) {
	srv, root := newTestService(t, WithDispatcher(&fakeDispatcher{outcome: delivered("x")}))
	writeRecord(t, root, "Pending_Approval", "Email", "a.md", emailDraft)
	writeRecord(t, root, "Done", "Email", "dup.md", "already sent")
	writeRecord(t, root, "Pending_Approval", "Email", "dup.md", emailDraft)
	ctx := context.Background()

	var testCases = []struct {
		description string
		id          string
		action      approval.Action
		expect      error
	}{
		{description: "no separator", id: "nokind", action: approval.ActionApprove, expect: approval.ErrInvalidID},
		{description: "empty base", id: "email-", action: approval.ActionApprove, expect: approval.ErrInvalidID},
		{description: "unknown action", id: "email-a", action: "archive", expect: approval.ErrInvalidAction},
		{description: "promote is not a decision", id: "email-a", action: approval.ActionPromote, expect: approval.ErrInvalidAction},
		{description: "missing record", id: "email-missing", action: approval.ActionApprove, expect: stage.ErrNotFound},
		{description: "unknown kind", id: "fax-a", action: approval.ActionReject, expect: stage.ErrNotFound},
		{description: "collision at done", id: "email-dup", action: approval.ActionApprove, expect: stage.ErrCollisionAtTarget},
	}
	for _, testCase := range testCases {
		_, err := srv.Decide(ctx, testCase.id, testCase.action)
		assert.ErrorIs(t, err, testCase.expect, testCase.description)
	}
	assert.Equal(t, []string{"Pending_Approval/Email/a.md"}, locations(t, root, "a.md"))
	assert.ElementsMatch(t, []string{"Done/Email/dup.md", "Pending_Approval/Email/dup.md"}, locations(t, root, "dup.md"))
}

func TestService_NoDispatcher(t *testing.T) {
	srv, root := newTestService(t)
	writeRecord(t, root, "Pending_Approval", "Email", "a.md", emailDraft)
	_, err := srv.Decide(context.Background(), "email-a", approval.ActionApprove)
	assert.ErrorIs(t, err, approval.ErrSideEffect)
	assert.Equal(t, []string{"Pending_Approval/Email/a.md"}, locations(t, root, "a.md"))
}

func TestService_ConcurrentDecisions(t *testing.T) {
	fake := &fakeDispatcher{outcome: func(item *model.Item) *dispatcher.Outcome {
		time.Sleep(5 * time.Millisecond)
		return &dispatcher.Outcome{Delivered: true, ExternalID: "msg-1"}
	}}
	srv, root := newTestService(t, WithDispatcher(fake))
	writeRecord(t, root, "Pending_Approval", "Email", "race.md", emailDraft)
	ctx := context.Background()

	var wg sync.WaitGroup
	var successes, notFound int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			action := approval.ActionApprove
			if i%2 == 1 {
				action = approval.ActionReject
			}
			_, err := srv.Decide(ctx, "email-race", action)
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case assert.ErrorIs(t, err, stage.ErrNotFound):
				atomic.AddInt32(&notFound, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes)
	assert.Equal(t, int32(7), notFound)
	assert.LessOrEqual(t, fake.calls, int32(1))
	assert.Len(t, locations(t, root, "race.md"), 1)
}

func TestService_PromoteAndComplete(t *testing.T) {
	srv, root := newTestService(t)
	writeRecord(t, root, "Needs_Action", "Email", "EMAIL_inbound.md", "---\nfrom: a@b.io\n---\nhi\n")
	writeRecord(t, root, "Needs_Action", "WhatsApp", "WHATSAPP_msg.md", "---\nfrom: +1555\n---\nping\n")
	ctx := context.Background()

	decision, err := srv.Promote(ctx, "email-EMAIL_inbound")
	assert.NoError(t, err)
	assert.Equal(t, approval.ActionPromote, decision.Action)
	assert.Equal(t, []string{"Pending_Approval/Email/EMAIL_inbound.md"}, locations(t, root, "EMAIL_inbound.md"))

	pending, err := srv.ListPending(ctx, approval.WithKind(model.KindEmail))
	assert.NoError(t, err)
	if assert.Len(t, pending, 1) {
		assert.Equal(t, "email-EMAIL_inbound", pending[0].ID)
	}

	decision, err = srv.Complete(ctx, "WhatsApp-WHATSAPP_msg")
	assert.NoError(t, err)
	assert.Equal(t, model.StageDone, decision.To)
	assert.Equal(t, []string{"Done/WhatsApp/WHATSAPP_msg.md"}, locations(t, root, "WHATSAPP_msg.md"))

	_, err = srv.Complete(ctx, "whatsapp-WHATSAPP_msg")
	assert.ErrorIs(t, err, stage.ErrNotFound)
	_, err = srv.Promote(ctx, "bad")
	assert.ErrorIs(t, err, approval.ErrInvalidID)
}

func TestService_ListPendingEmptyVault(t *testing.T) {
	srv, _ := newTestService(t)
	items, err := srv.ListPending(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, items)

	whatsapp, err := srv.ListPending(context.Background(), approval.WithKind(model.KindWhatsApp))
	assert.NoError(t, err)
	assert.Empty(t, whatsapp)
}

func TestService_RejectsIDsEscapingTheVault(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "vault")
	store, err := fs.New(afs.New(), root)
	if !assert.NoError(t, err) {
		return
	}
	fake := &fakeDispatcher{outcome: delivered("msg-1")}
	srv := New(registry.New(store), WithDispatcher(fake))
	writeRecord(t, parent, "outside", "notes.md", emailDraft)
	writeRecord(t, root, "Pending_Approval", "Email", "keep.md", emailDraft)
	ctx := context.Background()

	for _, id := range []string{"../../outside-notes", "..-notes", "email-../../outside/notes", `..\..\outside-notes`} {
		for _, action := range []approval.Action{approval.ActionReject, approval.ActionApprove} {
			_, err := srv.Decide(ctx, id, action)
			assert.ErrorIs(t, err, approval.ErrInvalidID, id)
		}
		_, err := srv.Promote(ctx, id)
		assert.ErrorIs(t, err, approval.ErrInvalidID, id)
		_, err = srv.Complete(ctx, id)
		assert.ErrorIs(t, err, approval.ErrInvalidID, id)
	}

	assert.Equal(t, []string{"outside/notes.md"}, locations(t, parent, "notes.md"))
	assert.Equal(t, []string{"vault/Pending_Approval/Email/keep.md"}, locations(t, parent, "keep.md"))
	assert.EqualValues(t, 0, atomic.LoadInt32(&fake.calls))
}
