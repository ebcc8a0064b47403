package contextcollector

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

type markerSource struct {
	path   []string
	format func(data []byte) string
}

var markerSources = []markerSource{
	{path: []string{".promptline", "active"}, format: firstLine},
	{path: []string{".venv", "pyvenv.cfg"}, format: pyvenvVersion},
	{path: []string{".python-version"}, format: prefixed("py ", firstLine)},
	{path: []string{".nvmrc"}, format: prefixed("node ", func(b []byte) string { return strings.TrimPrefix(firstLine(b), "v") })},
	{path: []string{"go.mod"}, format: goDirective},
}

// ActiveMarker reports the runtime marker of dir: an explicit
// .promptline/active file, then Python, Node and Go version files. Missing
// files are skipped; an unreadable file is an error.
func ActiveMarker(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	for _, src := range markerSources {
		data, err := os.ReadFile(filepath.Join(append([]string{dir}, src.path...)...))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", err
		}
		if marker := src.format(data); marker != "" {
			return marker, nil
		}
	}
	return "", nil
}

func firstLine(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
			return line
		}
	}
	return ""
}

func prefixed(prefix string, format func([]byte) string) func([]byte) string {
	return func(data []byte) string {
		if v := format(data); v != "" {
			return prefix + v
		}
		return ""
	}
}

func pyvenvVersion(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "version", "version_info":
			if v := strings.TrimSpace(value); v != "" {
				return "py " + v
			}
		}
	}
	return "venv"
}

func goDirective(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 && fields[0] == "go" {
			return "go " + fields[1]
		}
	}
	return ""
}
