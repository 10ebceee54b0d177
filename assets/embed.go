package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed faces.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// FacesList returns the built-in card faces.
func FacesList() ([]string, error) {
	return readLines("faces.txt")
}
