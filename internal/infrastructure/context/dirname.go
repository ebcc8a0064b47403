package contextcollector

import (
	"strings"

	"github.com/doeshing/promptline/internal/domain"
)

// DirectoryName returns the last element of a path written with either
// separator convention. Empty, root and drive-only paths yield
// domain.FallbackDirectoryName.
func DirectoryName(path string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(path), `/\`)
	if trimmed == "" {
		return domain.FallbackDirectoryName
	}
	name := trimmed[strings.LastIndexAny(trimmed, `/\`)+1:]
	if name == "" || name == "." || isDriveSpec(name) {
		return domain.FallbackDirectoryName
	}
	return name
}

func isDriveSpec(name string) bool {
	if len(name) != 2 || name[1] != ':' {
		return false
	}
	c := name[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
