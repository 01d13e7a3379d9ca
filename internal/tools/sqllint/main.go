// sqllint checks that every inline SQL constant carries a `--sql <uuid>`
// audit marker on its first line, and that no two constants share a
// marker. Run it over the repository root in CI:
//
//	go run ./internal/tools/sqllint ./internal/sqlinline
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	sqlKeyword = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with)\b`)
	sqlMarker  = regexp.MustCompile(`^--sql ([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})$`)
)

type finding struct {
	pos     token.Position
	name    string
	message string
}

type linter struct {
	fset     *token.FileSet
	markers  map[string]string // marker uuid -> first declaration seen
	findings []finding
}

func main() {
	flag.Parse()
	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	l := &linter{fset: token.NewFileSet(), markers: map[string]string{}}
	for _, path := range paths {
		if err := l.lintPath(path); err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			os.Exit(1)
		}
	}

	if len(l.findings) == 0 {
		return
	}
	for _, f := range l.findings {
		fmt.Fprintf(os.Stderr, "%s:%d: %s: %s\n", f.pos.Filename, f.pos.Line, f.name, f.message)
	}
	os.Exit(1)
}

func (l *linter) lintPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return l.lintFile(path)
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(p, ".go") || strings.HasSuffix(p, "_test.go") {
			return nil
		}
		return l.lintFile(p)
	})
}

func (l *linter) lintFile(path string) error {
	file, err := parser.ParseFile(l.fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		return err
	}
	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for i, value := range spec.Values {
			lit, ok := value.(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				continue
			}
			text, err := literalText(lit.Value)
			if err != nil || !sqlKeyword.MatchString(text) {
				continue
			}
			name := "_"
			if i < len(spec.Names) && spec.Names[i] != nil {
				name = spec.Names[i].Name
			}
			l.check(l.fset.Position(lit.Pos()), name, text)
		}
		return true
	})
	return nil
}

func (l *linter) check(pos token.Position, name, text string) {
	head := firstLine(text)
	m := sqlMarker.FindStringSubmatch(head)
	if m == nil {
		l.findings = append(l.findings, finding{pos: pos, name: name, message: "missing or invalid --sql <uuid> marker"})
		return
	}
	if prev, seen := l.markers[m[1]]; seen {
		l.findings = append(l.findings, finding{pos: pos, name: name, message: "marker already used by " + prev})
		return
	}
	l.markers[m[1]] = name
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\r\n \t")
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func literalText(raw string) (string, error) {
	if strings.HasPrefix(raw, "`") {
		return strings.Trim(raw, "`"), nil
	}
	return strconv.Unquote(raw)
}
