package draft

import "lyricclash/internal/models"

// Reconcile merges the locally cached and remotely persisted copies of a
// draft, taking whichever was written last. Snapshots are adopted whole,
// never merged field by field. fromCache reports that the local copy won, so
// the UI can show a one-time "restored unsaved work" notice. With neither
// copy present both results are nil and the caller starts an empty draft.
func Reconcile(local, remote *models.AttemptDraft) (adopted *models.AttemptDraft, fromCache bool) {
	switch {
	case local == nil:
		return remote, false
	case remote == nil:
		return local, true
	case remote.UpdatedAt.Before(local.UpdatedAt):
		return local, true
	default:
		// Equal timestamps prefer the remote copy; it is the durable one
		return remote, false
	}
}
