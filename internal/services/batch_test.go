package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"image-selector/internal/logger"
	"image-selector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAssets(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".jpeg"), []byte("jpeg:"+name), 0o644))
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func newOperator(t *testing.T) (*BatchOperator, string, *models.ImageRepository) {
	t.Helper()
	dir := t.TempDir()
	writeAssets(t, dir, "img1", "img2", "img3")
	repo := models.NewImageRepository(nil)
	op, err := NewBatchOperator(dir, []string{"img1", "img2", "img3"}, repo, nil)
	require.NoError(t, err)
	return op, dir, repo
}

func TestListCandidatesBundledThenSaved(t *testing.T) {
	op, _, repo := newOperator(t)
	external := models.MustReference(filepath.Join(t.TempDir(), "pic.png"))

	_, err := repo.Add(external)
	require.NoError(t, err)
	_, err = repo.Add(models.MustReference("img2"))
	require.NoError(t, err)

	got := op.ListCandidates()
	want := []models.ImageReference{
		models.MustReference("img1"),
		models.MustReference("img2"),
		models.MustReference("img3"),
		external,
	}
	assert.Equal(t, want, got)
	assert.Equal(t, want, op.ListCandidates(), "listing must be deterministic")
}

func TestNewBatchOperatorRejectsBadInput(t *testing.T) {
	_, err := NewBatchOperator("", nil, nil, nil)
	require.Error(t, err)

	_, err = NewBatchOperator(t.TempDir(), []string{"ok", "bad/name"}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidReference))
}

func TestConfirmWithEmptySelectionIsNoop(t *testing.T) {
	for _, kind := range []models.ActionKind{models.ActionCopy, models.ActionDelete} {
		t.Run(kind.String(), func(t *testing.T) {
			op, dir, _ := newOperator(t)
			before := listDir(t, dir)

			sel := op.NewSelection()
			var action models.PendingAction
			var err error
			if kind == models.ActionCopy {
				action, err = op.RequestCopy(sel)
			} else {
				action, err = op.RequestDelete(sel)
			}
			require.NoError(t, err)

			result, err := op.Confirm(context.Background(), action)
			require.NoError(t, err)
			assert.Zero(t, result.Total())
			assert.Equal(t, before, listDir(t, dir))
			assert.Equal(t, StateIdle, op.State())
		})
	}
}

func TestCopyIsNonDestructive(t *testing.T) {
	op, dir, repo := newOperator(t)
	img1 := models.MustReference("img1")

	sel := op.NewSelection()
	sel.Toggle(img1, true)

	action, err := op.RequestCopy(sel)
	require.NoError(t, err)
	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.FileExists(t, filepath.Join(dir, "img1.jpeg"))

	copied, err := os.ReadFile(filepath.Join(dir, "copied_img1.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg:img1", string(copied))

	assert.True(t, repo.Contains(models.MustReference(filepath.Join(dir, "copied_img1.jpeg"))))
}

func TestCopyAbsoluteReferenceUsesPathAsIs(t *testing.T) {
	op, dir, _ := newOperator(t)
	external := filepath.Join(t.TempDir(), "holiday.png")
	require.NoError(t, os.WriteFile(external, []byte("png"), 0o644))

	sel := op.NewSelection()
	sel.Toggle(models.MustReference(external), true)

	action, err := op.RequestCopy(sel)
	require.NoError(t, err)
	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)

	assert.True(t, result.OK())
	assert.FileExists(t, filepath.Join(dir, "copied_holiday.jpeg"))
	assert.FileExists(t, external)
}

func TestCopyContinuesPastMissingSource(t *testing.T) {
	op, dir, _ := newOperator(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "img2.jpeg")))

	sel := op.NewSelection()
	sel.SetAll(true)

	action, err := op.RequestCopy(sel)
	require.NoError(t, err)
	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, models.MustReference("img2"), result.Failures[0].Ref)
	assert.True(t, errors.Is(result.Failures[0].Err, models.ErrSourceNotFound))
	assert.FileExists(t, filepath.Join(dir, "copied_img1.jpeg"))
	assert.FileExists(t, filepath.Join(dir, "copied_img3.jpeg"))
	assert.NoFileExists(t, filepath.Join(dir, "copied_img2.jpeg"))
}

func TestCopyWriteFailureIsPerItem(t *testing.T) {
	op, dir, _ := newOperator(t)
	// A directory squatting on the destination makes the create fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "copied_img1.jpeg"), 0o755))

	sel := op.NewSelection()
	sel.Toggle(models.MustReference("img1"), true)
	sel.Toggle(models.MustReference("img3"), true)

	action, err := op.RequestCopy(sel)
	require.NoError(t, err)
	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Failures, 1)
	assert.True(t, errors.Is(result.Failures[0].Err, models.ErrWriteFailure))
}

func TestDeleteRemovesExactlyIncluded(t *testing.T) {
	op, dir, _ := newOperator(t)

	candidates := op.ListCandidates()
	require.Equal(t, []models.ImageReference{
		models.MustReference("img1"), models.MustReference("img2"), models.MustReference("img3"),
	}, candidates)

	sel := op.NewSelection()
	sel.Toggle(models.MustReference("img2"), true)

	action, err := op.RequestDelete(sel)
	require.NoError(t, err)
	assert.Equal(t, StateConfirming, op.State())

	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.NoFileExists(t, filepath.Join(dir, "img2.jpeg"))
	assert.FileExists(t, filepath.Join(dir, "img1.jpeg"))
	assert.FileExists(t, filepath.Join(dir, "img3.jpeg"))
	assert.Equal(t, StateIdle, op.State())
}

func TestDeleteAbsoluteFallback(t *testing.T) {
	op, dir, repo := newOperator(t)
	external := filepath.Join(t.TempDir(), "outside.png")
	require.NoError(t, os.WriteFile(external, []byte("png"), 0o644))
	ref := models.MustReference(external)
	_, err := repo.Add(ref)
	require.NoError(t, err)

	sel := op.NewSelection()
	sel.Toggle(ref, true)

	action, err := op.RequestDelete(sel)
	require.NoError(t, err)
	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)

	assert.True(t, result.OK())
	assert.NoFileExists(t, external)
	assert.NoFileExists(t, filepath.Join(dir, "outside.jpeg"))
	assert.False(t, repo.Contains(ref), "deleted saved images are pruned")
	assert.Len(t, listDir(t, dir), 3)
}

func TestDeleteMissingIsSourceNotFound(t *testing.T) {
	op, _, _ := newOperator(t)

	sel := op.NewSelection()
	sel.Toggle(models.MustReference("ghost"), true)
	sel.Toggle(models.MustReference(filepath.Join(t.TempDir(), "gone.png")), true)

	action, err := op.RequestDelete(sel)
	require.NoError(t, err)
	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Failed)
	for _, f := range result.Failures {
		assert.True(t, errors.Is(f.Err, models.ErrSourceNotFound), f.Err.Error())
	}
}

func TestCancelLeavesFilesystemUntouched(t *testing.T) {
	op, dir, _ := newOperator(t)
	before := listDir(t, dir)

	sel := op.NewSelection()
	sel.SetAll(true)

	action, err := op.RequestDelete(sel)
	require.NoError(t, err)
	require.NoError(t, op.Cancel(action))

	assert.Equal(t, before, listDir(t, dir))
	assert.Equal(t, StateIdle, op.State())
	_, ok := op.Pending()
	assert.False(t, ok)

	_, err = op.Confirm(context.Background(), action)
	assert.ErrorIs(t, err, ErrNoPendingAction)
}

func TestRequestWhileConfirmingIsRejected(t *testing.T) {
	op, _, _ := newOperator(t)

	sel := op.NewSelection()
	sel.Toggle(models.MustReference("img1"), true)

	first, err := op.RequestCopy(sel)
	require.NoError(t, err)

	_, err = op.RequestDelete(sel)
	assert.ErrorIs(t, err, ErrActionPending)

	pending, ok := op.Pending()
	require.True(t, ok)
	assert.Equal(t, first.ID, pending.ID)
	assert.Equal(t, models.ActionCopy, pending.Kind)
}

func TestConfirmRejectsStaleAction(t *testing.T) {
	op, _, _ := newOperator(t)

	first, err := op.RequestCopy(op.NewSelection())
	require.NoError(t, err)
	require.NoError(t, op.Cancel(first))

	second, err := op.RequestDelete(op.NewSelection())
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	_, err = op.Confirm(context.Background(), first)
	assert.ErrorIs(t, err, ErrActionMismatch)
	assert.Equal(t, StateConfirming, op.State())
}

func TestPendingActionSnapshotsSelection(t *testing.T) {
	op, dir, _ := newOperator(t)

	sel := op.NewSelection()
	sel.Toggle(models.MustReference("img1"), true)
	action, err := op.RequestDelete(sel)
	require.NoError(t, err)

	// Changes after the request do not leak into the pending action.
	sel.Toggle(models.MustReference("img3"), true)
	action.Refs = append(action.Refs, models.MustReference("img2"))

	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total())
	assert.FileExists(t, filepath.Join(dir, "img2.jpeg"))
	assert.FileExists(t, filepath.Join(dir, "img3.jpeg"))
}

func TestConfirmCancelledContextFailsRemaining(t *testing.T) {
	op, dir, _ := newOperator(t)

	sel := op.NewSelection()
	sel.SetAll(true)
	action, err := op.RequestDelete(sel)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := op.Confirm(ctx, action)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Failed)
	assert.Len(t, listDir(t, dir), 3)
	assert.ErrorIs(t, result.Failures[0].Err, context.Canceled)
}

func TestDeleteAbsoluteSkipsUnselectedBundledNamesake(t *testing.T) {
	op, dir, repo := newOperator(t)
	external := filepath.Join(t.TempDir(), "img1.png")
	require.NoError(t, os.WriteFile(external, []byte("png"), 0o644))
	ref := models.MustReference(external)
	_, err := repo.Add(ref)
	require.NoError(t, err)

	sel := op.NewSelection()
	sel.Toggle(ref, true)

	action, err := op.RequestDelete(sel)
	require.NoError(t, err)
	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)

	assert.True(t, result.OK())
	assert.FileExists(t, filepath.Join(dir, "img1.jpeg"), "bundled img1 was not selected")
	assert.NoFileExists(t, external)
	assert.False(t, repo.Contains(ref))
}

func TestDeleteNamedLeavesAbsoluteNamesake(t *testing.T) {
	op, dir, repo := newOperator(t)
	external := filepath.Join(t.TempDir(), "img1.png")
	require.NoError(t, os.WriteFile(external, []byte("png"), 0o644))
	ref := models.MustReference(external)
	_, err := repo.Add(ref)
	require.NoError(t, err)

	sel := op.NewSelection()
	sel.Toggle(models.MustReference("img1"), true)

	action, err := op.RequestDelete(sel)
	require.NoError(t, err)
	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.NoFileExists(t, filepath.Join(dir, "img1.jpeg"))
	assert.FileExists(t, external)
	assert.True(t, repo.Contains(ref))
}

func TestDeleteDirectoryIsInvalidReference(t *testing.T) {
	op, dir, _ := newOperator(t)
	folder := filepath.Join(dir, "folder.jpeg")
	require.NoError(t, os.Mkdir(folder, 0o755))

	sel := op.NewSelection()
	sel.Toggle(models.MustReference("folder"), true)
	sel.Toggle(models.MustReference("img1"), true)

	action, err := op.RequestDelete(sel)
	require.NoError(t, err)
	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, models.MustReference("folder"), result.Failures[0].Ref)
	assert.ErrorIs(t, result.Failures[0].Err, models.ErrInvalidReference)
	assert.DirExists(t, folder)
	assert.NoFileExists(t, filepath.Join(dir, "img1.jpeg"))
}

func TestCopyDirectorySourceIsInvalidReference(t *testing.T) {
	op, dir, _ := newOperator(t)
	folder := filepath.Join(dir, "folder.jpeg")
	require.NoError(t, os.Mkdir(folder, 0o755))

	sel := op.NewSelection()
	sel.Toggle(models.MustReference("folder"), true)
	sel.Toggle(models.MustReference("img2"), true)

	action, err := op.RequestCopy(sel)
	require.NoError(t, err)
	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Failures, 1)
	assert.ErrorIs(t, result.Failures[0].Err, models.ErrInvalidReference)
	assert.DirExists(t, folder)
	assert.NoFileExists(t, filepath.Join(dir, "copied_folder.jpeg"))
	assert.FileExists(t, filepath.Join(dir, "copied_img2.jpeg"))
}

func TestCopyWarnsWhenDestinationExists(t *testing.T) {
	dir := t.TempDir()
	writeAssets(t, dir, "img1")
	var buf bytes.Buffer
	op, err := NewBatchOperator(dir, []string{"img1"}, nil, logger.NewZerolog(&buf, logger.WarnLevel))
	require.NoError(t, err)

	external := filepath.Join(t.TempDir(), "img1.png")
	require.NoError(t, os.WriteFile(external, []byte("png"), 0o644))

	sel := op.NewSelection()
	sel.Toggle(models.MustReference("img1"), true)
	sel.Toggle(models.MustReference(external), true)

	action, err := op.RequestCopy(sel)
	require.NoError(t, err)
	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Contains(t, buf.String(), "overwriting existing copy")
	assert.Contains(t, buf.String(), action.ID)

	copied, err := os.ReadFile(filepath.Join(dir, "copied_img1.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(copied))
}

func TestDeleteThroughRelativeGuessKeepsSavedEntry(t *testing.T) {
	op, dir, repo := newOperator(t)
	writeAssets(t, dir, "stray")
	external := filepath.Join(t.TempDir(), "stray.png")
	require.NoError(t, os.WriteFile(external, []byte("png"), 0o644))
	ref := models.MustReference(external)
	_, err := repo.Add(ref)
	require.NoError(t, err)

	sel := op.NewSelection()
	sel.Toggle(ref, true)

	action, err := op.RequestDelete(sel)
	require.NoError(t, err)
	result, err := op.Confirm(context.Background(), action)
	require.NoError(t, err)

	assert.True(t, result.OK())
	assert.NoFileExists(t, filepath.Join(dir, "stray.jpeg"))
	assert.FileExists(t, external)
	assert.True(t, repo.Contains(ref), "the saved file is still on disk")
}
