// assets/embed.go
//
// Embedded data for the reference backend:
//   - en.txt / de.txt: word pools, one word per line, '#' comments.
//   - sql/*.sql: schema migrations applied in lexical order.
package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed en.txt de.txt
var wordFS embed.FS

//go:embed sql/*.sql
var migrationFS embed.FS

// Migrations exposes the sql/ directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFS, "sql")
	if err != nil {
		// The directory is embedded at build time; Sub only fails on a bad path.
		panic(err)
	}
	return sub
}

// ReadLines returns the non-empty, non-comment lines of f, lower-cased.
func ReadLines(f fs.File) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// WordList returns the embedded pool for lang ("en" or "de").
func WordList(lang string) ([]string, error) {
	f, err := wordFS.Open(lang + ".txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}
