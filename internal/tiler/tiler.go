/*
Package tiler saves images that may be too large for their target format.

A save first tries to encode the whole image into one file. When the sink
reports that the image is too large, the image is split into vertical strips
which are written as numbered files into a new directory next to the
requested path. The tile count is found by trying increasing candidates until
every strip of one candidate could be encoded.
*/
package tiler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/kiesman99/splitsave/pkg/tile"
	"github.com/spf13/afero"
)

const maxDirSuffix = 1000

// Observer receives progress of the tiled path
type Observer interface {
	CandidateStarted(steps int)
	TileSaved(r tile.Region, steps int, path string)
	CandidateAbandoned(steps int, err error)
}

type nopObserver struct{}

func (nopObserver) CandidateStarted(int)               {}
func (nopObserver) TileSaved(tile.Region, int, string) {}
func (nopObserver) CandidateAbandoned(int, error)      {}

// Options contains the tunables of a TiledEncoder
type Options struct {
	Policy tile.SplitPolicy

	// DisableSplit reports a too large image as failure instead of splitting it
	DisableSplit bool

	// ConfirmSplit is asked before falling back to tiles; nil means yes
	ConfirmSplit func(err error, width, height int) bool

	// KeepPartial leaves the tiles of a failed candidate on disk
	KeepPartial bool

	Cropper  Cropper
	Observer Observer
	Logger   *log.Logger

	// Now is used for directory names, time.Now if nil
	Now func() time.Time
}

// TiledEncoder performs save operations. It keeps no per-save state and may
// be shared between goroutines when its sink and filesystem allow it.
type TiledEncoder struct {
	fs   afero.Fs
	sink Sink
	opts Options
}

// New creates a TiledEncoder writing through sink and managing files on fs
func New(fs afero.Fs, sink Sink, opts Options) *TiledEncoder {
	if opts.Cropper == nil {
		opts.Cropper = SubImageCropper{}
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &TiledEncoder{
		fs:   fs,
		sink: sink,
		opts: opts,
	}
}

// Save writes img to path, falling back to tiles when it is too large.
// The returned error is the outcome's Err.
func (e *TiledEncoder) Save(ctx context.Context, img image.Image, path string) (*Outcome, error) {
	b := img.Bounds()
	out := &Outcome{
		Width:  b.Dx(),
		Height: b.Dy(),
	}

	if b.Empty() {
		return e.fail(out, fmt.Errorf("image is empty (%d*%d pixels)", b.Dx(), b.Dy()))
	}

	// a file that was already there is not ours to delete
	existed, _ := afero.Exists(e.fs, path)

	err := e.encode(ctx, img, path)
	if err == nil {
		out.Kind = SingleFileSaved
		out.Path = path
		e.opts.Logger.Printf("saved %dx%d image to %s", out.Width, out.Height, path)
		return out, nil
	}

	if !existed {
		e.remove(path)
	}

	if !tooLarge(err) {
		return e.fail(out, err)
	}

	e.opts.Logger.Printf("single file save failed: %v", err)

	if e.opts.DisableSplit {
		return e.fail(out, err)
	}
	if e.opts.ConfirmSplit != nil && !e.opts.ConfirmSplit(err, out.Width, out.Height) {
		return e.fail(out, err)
	}

	return e.saveTiled(ctx, img, path, out)
}

func (e *TiledEncoder) saveTiled(ctx context.Context, img image.Image, path string, out *Outcome) (*Outcome, error) {
	parent, base, ext := tile.SplitName(path)

	ok, err := afero.DirExists(e.fs, parent)
	if err != nil {
		return e.fail(out, err)
	}
	if !ok {
		return e.fail(out, fmt.Errorf("output directory %s does not exist", parent))
	}

	dir, err := e.makeDir(parent, base)
	if err != nil {
		return e.fail(out, err)
	}

	var (
		last error
		kept []string
	)
	for _, steps := range e.opts.Policy.Candidates(out.Width) {
		out.Tried = append(out.Tried, steps)

		files, err := e.tryCandidate(ctx, img, dir, base, ext, steps)

		// only the files of the latest attempted candidate stay in the directory
		if !errors.Is(err, tile.ErrPlan) {
			e.removeExcept(kept, files)
			kept = files
		}

		if err == nil {
			out.Kind = TiledSaved
			out.Directory = dir
			out.Files = files
			out.Steps = steps
			e.opts.Logger.Printf("saved %dx%d image as %d tiles in %s", out.Width, out.Height, steps, dir)
			return out, nil
		}

		if !tooLarge(err) && !errors.Is(err, tile.ErrPlan) {
			e.abandonDir(out, dir)
			return e.fail(out, err)
		}

		e.opts.Logger.Printf("abandoned %d tiles: %v", steps, err)

		// keep the last encode failure over an inapplicable tile count
		if last == nil || !errors.Is(err, tile.ErrPlan) {
			last = err
		}
	}

	e.abandonDir(out, dir)
	return e.fail(out, &ExhaustedError{
		Candidates: out.Tried,
		Last:       last,
	})
}

// tryCandidate writes all tiles of one split in ascending order, stopping at
// the first failure. On failure the written prefix is returned if it was kept.
func (e *TiledEncoder) tryCandidate(ctx context.Context, img image.Image, dir, base, ext string, steps int) ([]string, error) {
	b := img.Bounds()

	plan, err := tile.NewPlan(b.Dx(), b.Dy(), steps)
	if err != nil {
		return nil, &CandidateError{Steps: steps, Index: -1, Err: err}
	}

	e.opts.Observer.CandidateStarted(steps)

	files := make([]string, 0, steps)
	for i := 0; i < plan.Steps; i++ {
		r := plan.Region(i)
		p := filepath.Join(dir, tile.FileName(base, ext, r.Sequence(), steps))

		region := e.opts.Cropper.Crop(img, r.Rect().Add(b.Min))

		if err := e.encode(ctx, region, p); err != nil {
			e.remove(p)
			if !e.opts.KeepPartial {
				for _, f := range files {
					e.remove(f)
				}
				files = nil
			}

			cerr := &CandidateError{Steps: steps, Index: i, Err: err}
			e.opts.Observer.CandidateAbandoned(steps, cerr)
			return files, cerr
		}

		files = append(files, p)
		e.opts.Observer.TileSaved(r, steps, p)
	}

	return files, nil
}

func (e *TiledEncoder) encode(ctx context.Context, img image.Image, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.sink.Encode(img, path)
}

// makeDir creates the tile directory of this run, picking a new name when
// an earlier run already used the timestamped one
func (e *TiledEncoder) makeDir(parent, base string) (string, error) {
	name := tile.DirName(base, e.opts.Now())

	for n := 1; n <= maxDirSuffix; n++ {
		dir := filepath.Join(parent, tile.DisambiguatedDirName(name, n))

		// Mkdir fails on an existing name, so concurrent saves never share a directory
		err := e.fs.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("creating tile directory: %w", err)
		}
	}

	return "", fmt.Errorf("no free tile directory name for %q", name)
}

// removeExcept removes every file of stale that is not in keep
func (e *TiledEncoder) removeExcept(stale, keep []string) {
	if len(stale) == 0 {
		return
	}
	current := make(map[string]bool, len(keep))
	for _, f := range keep {
		current[f] = true
	}
	for _, f := range stale {
		if !current[f] {
			e.remove(f)
		}
	}
}

func (e *TiledEncoder) remove(path string) {
	if err := e.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		e.opts.Logger.Printf("can't remove %s: %v", path, err)
	}
}

// abandonDir drops the tile directory of a failed run if nothing is left in it
func (e *TiledEncoder) abandonDir(out *Outcome, dir string) {
	if e.opts.KeepPartial {
		out.Directory = dir
		return
	}
	empty, err := afero.IsEmpty(e.fs, dir)
	if err != nil || !empty {
		return
	}
	if err := e.fs.Remove(dir); err != nil {
		e.opts.Logger.Printf("can't remove %s: %v", dir, err)
	}
}

func (e *TiledEncoder) fail(out *Outcome, err error) (*Outcome, error) {
	out.Kind = Failed
	out.Err = err
	e.opts.Logger.Printf("save failed: %v", err)
	return out, err
}
