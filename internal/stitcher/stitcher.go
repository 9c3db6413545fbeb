// Package stitcher reassembles the tiles of a split save into one image and
// fetches source images over HTTP.
package stitcher

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"time"

	"github.com/disintegration/gift"
	"github.com/spf13/afero"

	"github.com/kiesman99/splitsave/pkg/tile"
)

// Result contains the stitching result
type Result struct {
	Image  *image.RGBA
	Width  int
	Height int
	Files  []string
}

// TileError reports tiles that could not be joined
type TileError struct {
	Message         string
	FailedTiles     []FailedTile
	SuccessfulTiles int
	TotalTiles      int
}

func (e *TileError) Error() string {
	return e.Message
}

// FailedTile represents a single tile that could not be used
type FailedTile struct {
	Path  string
	Error string
}

// Stitcher performs join and download operations
type Stitcher struct {
	fs        afero.Fs
	client    *http.Client
	userAgent string
}

// New creates a new stitcher instance reading tiles from fs
func New(fs afero.Fs, userAgent string) *Stitcher {
	if userAgent == "" {
		userAgent = "splitsave"
	}

	return &Stitcher{
		fs: fs,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: userAgent,
	}
}

// Join decodes every tile in dir, in file name order, and places them side by
// side. Neighbouring tiles share one column, which is written once.
func (s *Stitcher) Join(ctx context.Context, dir string) (*Result, error) {
	files, err := s.tileFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no tiles found in %s", dir)
	}

	var (
		tiles       []image.Image
		failedTiles []FailedTile
		width       int
		height      = -1
	)

	for _, f := range files {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := tile.ReadImage(s.fs, f)
		if err != nil {
			failedTiles = append(failedTiles, FailedTile{
				Path:  f,
				Error: err.Error(),
			})
			continue
		}

		b := img.Bounds()
		if height >= 0 && b.Dy() != height {
			failedTiles = append(failedTiles, FailedTile{
				Path:  f,
				Error: fmt.Sprintf("wrong tile height: got %d, expected %d", b.Dy(), height),
			})
			continue
		}
		height = b.Dy()

		tiles = append(tiles, img)
		width += b.Dx()
	}

	if len(failedTiles) > 0 {
		return nil, &TileError{
			Message:         fmt.Sprintf("%d of %d tiles in %s could not be joined", len(failedTiles), len(files), dir),
			FailedTiles:     failedTiles,
			SuccessfulTiles: len(tiles),
			TotalTiles:      len(files),
		}
	}

	// every tile but the last bleeds one column into its neighbour
	width -= len(tiles) - 1

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	g := gift.New()

	x := 0
	for _, img := range tiles {
		g.DrawAt(dst, img, image.Pt(x, 0), gift.CopyOperator)
		x += img.Bounds().Dx() - 1
	}

	return &Result{
		Image:  dst,
		Width:  width,
		Height: height,
		Files:  files,
	}, nil
}

// tileFiles lists the regular files of dir. Sequence numbers are zero-padded,
// so name order is tile order.
func (s *Stitcher) tileFiles(dir string) ([]string, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, fi := range infos {
		if fi.Mode().IsRegular() {
			files = append(files, filepath.Join(dir, fi.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}

// Download fetches and decodes the image at url
func (s *Stitcher) Download(ctx context.Context, url string, headers map[string]string) (image.Image, error) {
	data, err := s.fetch(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}

	img, err := tile.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	return img, nil
}

func (s *Stitcher) fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", s.userAgent)

	// Set additional headers
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}
