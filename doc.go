// Package vaultflow tracks Markdown drafts through the stage directories of
// a shared vault and applies human approval decisions to them.
//
// Upstream watchers drop records into Needs_Action/<Kind>/ and
// Pending_Approval/<Kind>/. A reviewer approves or rejects pending records;
// approving an email sends it through the relay before the record moves to
// Done/<Kind>/, while other kinds move straight to Approved/ or Rejected/.
//
//	srv, _ := vaultflow.New(ctx, vaultflow.DefaultConfig())
//	defer srv.Close()
//	pending, _ := srv.ListPending(ctx)
//	result := srv.Submit(ctx, pending[0].ID, "approve")
//
// The same façade backs the HTTP API (service/httpapi) and the vaultflow
// command.
package vaultflow
