// internal/faces/faces.go
//
// Card face sources for the deck builder.
//
// Responsibilities:
//   - List the face values a deck can be built from.
//   - Map a face value back to its image file when faces come from disk.
//
// Sources:
//   - DirSource: numbered image files ("1.png", "2.jpg", ...) in a directory.
//     For each number PNG wins over JPG, JPG over JPEG. The face value is the
//     number as a decimal string, so values stay stable across restarts.
//   - ListSource: a fixed list of values.
//   - Embedded: the built-in list from assets/faces.txt.
//
// Selection (FromConfig):
//   1. If a face directory is configured, use DirSource over it.
//   2. Otherwise fall back to the embedded list so the server runs without
//      any image files.

package faces

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/assets"
)

// Source lists available face values.
type Source interface {
	Values() ([]string, error)
}

// ImageSource resolves a face value to an image file on disk.
type ImageSource interface {
	Path(value string) (string, bool)
}

// extensions in order of preference.
var extensions = []string{".png", ".jpg", ".jpeg"}

// DirSource reads numbered image files from Dir.
type DirSource struct {
	Dir string
}

// Values returns the numbers of all usable image files in ascending order.
// Gaps in the numbering are logged and skipped.
func (s DirSource) Values() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read face dir %s: %w", s.Dir, err)
	}

	best := make(map[int]int) // face number -> extension rank
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, rank, ok := parseName(e.Name())
		if !ok {
			continue
		}
		if cur, seen := best[n]; !seen || rank < cur {
			best[n] = rank
		}
	}

	nums := make([]int, 0, len(best))
	for n := range best {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	out := make([]string, 0, len(nums))
	next := 1
	for _, n := range nums {
		for ; next < n; next++ {
			log.Warn().Int("face", next).Str("dir", s.Dir).Msg("no image file found for face (expected .png or .jpg)")
		}
		next = n + 1
		log.Debug().Str("file", strconv.Itoa(n)+extensions[best[n]]).Msg("loaded face")
		out = append(out, strconv.Itoa(n))
	}
	return out, nil
}

// Path returns the preferred image file for value.
func (s DirSource) Path(value string) (string, bool) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 || strconv.Itoa(n) != value {
		return "", false
	}
	for _, ext := range extensions {
		for _, e := range []string{ext, strings.ToUpper(ext)} {
			p := filepath.Join(s.Dir, value+e)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				return p, true
			}
		}
	}
	return "", false
}

// parseName splits "12.PNG" into (12, rank of .png, true).
func parseName(name string) (int, int, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	rank := -1
	for i, e := range extensions {
		if ext == e {
			rank = i
			break
		}
	}
	if rank < 0 {
		return 0, 0, false
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	n, err := strconv.Atoi(stem)
	if err != nil || n <= 0 || strconv.Itoa(n) != stem {
		return 0, 0, false
	}
	return n, rank, true
}

// ListSource is a fixed list of face values.
type ListSource []string

// Values returns a copy of the list.
func (s ListSource) Values() ([]string, error) {
	return append([]string(nil), s...), nil
}

var (
	embeddedOnce sync.Once
	embedded     ListSource
	embeddedErr  error
)

// Embedded returns the built-in face list, loaded once.
func Embedded() (ListSource, error) {
	embeddedOnce.Do(func() {
		list, err := assets.FacesList()
		if err != nil {
			embeddedErr = fmt.Errorf("load embedded faces: %w", err)
			return
		}
		embedded = ListSource(list)
	})
	return embedded, embeddedErr
}

// FromConfig picks DirSource when dir is set, else the embedded list.
func FromConfig(dir string) (Source, error) {
	if dir != "" {
		fi, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("face dir: %w", err)
		}
		if !fi.IsDir() {
			return nil, fmt.Errorf("face dir %s is not a directory", dir)
		}
		log.Info().Str("dir", dir).Msg("using face images from directory")
		return DirSource{Dir: dir}, nil
	}
	list, err := Embedded()
	if err != nil {
		return nil, err
	}
	log.Info().Int("faces", len(list)).Msg("using embedded face list")
	return list, nil
}
