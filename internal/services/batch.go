package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"image-selector/internal/logger"
	"image-selector/internal/models"

	"github.com/oklog/ulid/v2"
)

const batchComponent = "BatchOperator"

// State of the request/confirm cycle
type State int

const (
	StateIdle State = iota
	StateConfirming
)

func (s State) String() string {
	if s == StateConfirming {
		return "confirming"
	}
	return "idle"
}

// BatchOperator runs confirmation-gated bulk copy and delete over a selection
// of image references. Only one action may await confirmation at a time.
type BatchOperator struct {
	assetsDir string
	bundled   []models.ImageReference
	repo      *models.ImageRepository
	logger    logger.Logger

	mu      sync.Mutex
	state   State
	pending *models.PendingAction

	now   func() time.Time
	newID func() string
}

// NewBatchOperator creates an operator over assetsDir. bundled lists the asset
// names shipped with the application, in display order.
func NewBatchOperator(assetsDir string, bundled []string, repo *models.ImageRepository, log logger.Logger) (*BatchOperator, error) {
	if assetsDir == "" {
		return nil, fmt.Errorf("assets directory is required")
	}
	if repo == nil {
		repo = models.NewImageRepository(nil)
	}
	if log == nil {
		log = logger.NewNop()
	}

	refs := make([]models.ImageReference, 0, len(bundled))
	for _, name := range bundled {
		ref, err := models.NewNamedReference(name)
		if err != nil {
			return nil, fmt.Errorf("bundled asset %q: %w", name, err)
		}
		refs = append(refs, ref)
	}

	return &BatchOperator{
		assetsDir: assetsDir,
		bundled:   refs,
		repo:      repo,
		logger:    log,
		state:     StateIdle,
		now:       time.Now,
		newID:     func() string { return ulid.Make().String() },
	}, nil
}

// AssetsDir returns the directory relative references resolve against
func (o *BatchOperator) AssetsDir() string {
	return o.assetsDir
}

// ListCandidates returns the bundled assets followed by the saved images, with
// duplicates removed. The order is stable for a given saved list.
func (o *BatchOperator) ListCandidates() []models.ImageReference {
	saved := o.repo.Saved()
	out := make([]models.ImageReference, 0, len(o.bundled)+len(saved))
	seen := make(map[models.ImageReference]struct{}, cap(out))

	for _, group := range [][]models.ImageReference{o.bundled, saved} {
		for _, ref := range group {
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	return out
}

// NewSelection returns a fresh selection over the current candidates
func (o *BatchOperator) NewSelection() *models.SelectionSet {
	return models.NewSelectionSet(o.ListCandidates())
}

// RequestCopy snapshots the selection into a pending copy action
func (o *BatchOperator) RequestCopy(sel *models.SelectionSet) (models.PendingAction, error) {
	return o.request(models.ActionCopy, sel)
}

// RequestDelete snapshots the selection into a pending delete action
func (o *BatchOperator) RequestDelete(sel *models.SelectionSet) (models.PendingAction, error) {
	return o.request(models.ActionDelete, sel)
}

func (o *BatchOperator) request(kind models.ActionKind, sel *models.SelectionSet) (models.PendingAction, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateConfirming {
		return models.PendingAction{}, fmt.Errorf("%w: %s %s", ErrActionPending, o.pending.Kind, o.pending.ID)
	}

	var refs []models.ImageReference
	if sel != nil {
		refs = sel.Included()
	}

	action := models.PendingAction{
		ID:          o.newID(),
		Kind:        kind,
		Refs:        refs,
		RequestedAt: o.now(),
	}
	o.pending = &action
	o.state = StateConfirming

	o.logger.Debug(batchComponent, "action requested", map[string]interface{}{
		"action": kind.String(),
		"id":     action.ID,
		"items":  len(refs),
	})

	return clonePending(action), nil
}

// Confirm executes the pending action and returns to idle. The error is only
// non-nil when action is not the one awaiting confirmation; item failures are
// reported in the result.
func (o *BatchOperator) Confirm(ctx context.Context, action models.PendingAction) (models.BatchResult, error) {
	pending, err := o.take(action)
	if err != nil {
		return models.BatchResult{}, err
	}

	start := o.now()
	result := models.BatchResult{ActionID: pending.ID, Kind: pending.Kind}
	log := o.logger.With(map[string]interface{}{
		"action": pending.Kind.String(),
		"id":     pending.ID,
	})

	var guard guessGuard
	if pending.Kind == models.ActionDelete {
		guard = o.newGuessGuard(pending.Refs)
	}

	for i, ref := range pending.Refs {
		if ctxErr := ctx.Err(); ctxErr != nil {
			for _, rest := range pending.Refs[i:] {
				result.Failed++
				result.Failures = append(result.Failures, models.ItemFailure{Ref: rest, Err: ctxErr})
			}
			break
		}

		var itemErr error
		switch pending.Kind {
		case models.ActionCopy:
			itemErr = o.copyOne(log, ref)
		case models.ActionDelete:
			itemErr = o.deleteOne(log, ref, guard)
		default:
			itemErr = fmt.Errorf("%w: unsupported action %s", models.ErrInvalidReference, pending.Kind)
		}

		if itemErr != nil {
			result.Failed++
			result.Failures = append(result.Failures, models.ItemFailure{Ref: ref, Err: itemErr})
			log.Warning(batchComponent, "item skipped", map[string]interface{}{
				"ref":   ref.String(),
				"error": itemErr.Error(),
			})
			continue
		}
		result.Succeeded++
	}

	result.Duration = o.now().Sub(start)
	log.Info(batchComponent, "batch finished", map[string]interface{}{
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	})
	return result, nil
}

// Cancel discards the pending action without touching the filesystem
func (o *BatchOperator) Cancel(action models.PendingAction) error {
	pending, err := o.take(action)
	if err != nil {
		return err
	}
	o.logger.Debug(batchComponent, "action cancelled", map[string]interface{}{
		"action": pending.Kind.String(),
		"id":     pending.ID,
	})
	return nil
}

// State returns the current state of the request/confirm cycle
func (o *BatchOperator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Pending returns the action awaiting confirmation, if any
func (o *BatchOperator) Pending() (models.PendingAction, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return models.PendingAction{}, false
	}
	return clonePending(*o.pending), true
}

// take consumes the pending action if it matches and returns to idle
func (o *BatchOperator) take(action models.PendingAction) (models.PendingAction, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateConfirming || o.pending == nil {
		return models.PendingAction{}, ErrNoPendingAction
	}
	if action.ID != o.pending.ID {
		return models.PendingAction{}, fmt.Errorf("%w: got %q, pending %q", ErrActionMismatch, action.ID, o.pending.ID)
	}

	pending := *o.pending
	o.pending = nil
	o.state = StateIdle
	return pending, nil
}

func (o *BatchOperator) copyOne(log logger.Logger, ref models.ImageReference) error {
	src := ref.Source(o.assetsDir)
	dst := ref.CopyDestination(o.assetsDir)

	in, err := openRegular(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if _, err := os.Lstat(dst); err == nil {
		log.Warning(batchComponent, "overwriting existing copy", map[string]interface{}{
			"ref":         ref.String(),
			"destination": dst,
		})
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", models.ErrWriteFailure, dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("%w: %s: %w", models.ErrWriteFailure, dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("%w: %s: %w", models.ErrWriteFailure, dst, err)
	}

	o.recordCopy(log, dst)
	return nil
}

// guessGuard lists the bundled or saved names that an absolute reference's
// relative guess must not remove because they are candidates outside the batch.
type guessGuard map[models.ImageReference]struct{}

func (o *BatchOperator) newGuessGuard(batch []models.ImageReference) guessGuard {
	selected := make(map[models.ImageReference]struct{}, len(batch))
	for _, ref := range batch {
		selected[ref] = struct{}{}
	}
	guard := guessGuard{}
	for _, ref := range o.ListCandidates() {
		if ref.IsAbsolute() {
			continue
		}
		if _, ok := selected[ref]; !ok {
			guard[ref] = struct{}{}
		}
	}
	return guard
}

// protects reports whether the guess for an absolute ref is an unselected
// candidate
func (g guessGuard) protects(ref models.ImageReference) bool {
	if !ref.IsAbsolute() {
		return false
	}
	named, err := models.NewNamedReference(ref.BaseName())
	if err != nil {
		return false
	}
	_, ok := g[named]
	return ok
}

// deleteOne removes the relative guess first and falls back to the absolute
// path when the guess does not exist. The guess is skipped when it names an
// unselected candidate. Only removing the file a saved entry points at prunes
// that entry.
func (o *BatchOperator) deleteOne(log logger.Logger, ref models.ImageReference, guard guessGuard) error {
	guess := ref.RelativeGuess(o.assetsDir)
	target := guess

	var err error
	switch {
	case ref.IsAbsolute() && guess != ref.Path() && guard.protects(ref):
		log.Debug(batchComponent, "relative guess is an unselected candidate, using absolute path", map[string]interface{}{
			"guess": guess,
			"path":  ref.Path(),
		})
		target = ref.Path()
		err = removeRegular(target)
	default:
		err = removeRegular(guess)
		if err != nil && errors.Is(err, fs.ErrNotExist) && ref.IsAbsolute() {
			log.Debug(batchComponent, "relative guess missing, using absolute path", map[string]interface{}{
				"guess": guess,
				"path":  ref.Path(),
			})
			target = ref.Path()
			err = removeRegular(target)
		}
	}

	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", models.ErrSourceNotFound, ref.String())
	case errors.Is(err, models.ErrInvalidReference):
		return err
	default:
		return fmt.Errorf("%w: %w", models.ErrWriteFailure, err)
	}

	if ref.IsAbsolute() && target != ref.Path() {
		return nil
	}
	if _, perr := o.repo.Remove(ref); perr != nil {
		log.Error(batchComponent, perr, map[string]interface{}{"ref": ref.String()})
	}
	return nil
}

func (o *BatchOperator) recordCopy(log logger.Logger, dst string) {
	ref, err := models.NewPathReference(dst)
	if err != nil {
		return
	}
	if _, err := o.repo.Add(ref); err != nil {
		log.Error(batchComponent, err, map[string]interface{}{"copy": dst})
	}
}

func openRegular(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrSourceNotFound, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", models.ErrInvalidReference, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrSourceNotFound, path, err)
	}
	return f, nil
}

// removeRegular refuses directories so a stray reference never removes one
func removeRegular(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", models.ErrInvalidReference, path)
	}
	return os.Remove(path)
}

func clonePending(p models.PendingAction) models.PendingAction {
	p.Refs = append([]models.ImageReference(nil), p.Refs...)
	return p
}
