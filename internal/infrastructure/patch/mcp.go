package patch

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/doeshing/promptline/internal/domain"
)

// MCPPath is the project's MCP server manifest.
func MCPPath(root string) string {
	return filepath.Join(root, ".mcp.json")
}

// mcpStep wraps npx-launched stdio servers in "cmd /c" for a windows target,
// where npx is a batch file that cannot be spawned directly. Other targets
// and projects without a manifest have nothing to do.
func mcpStep(opts Options) domain.PatchStep {
	return singleFileStep(StepMCPWrapper, opts.Root, func() (desiredFile, error) {
		path := MCPPath(opts.Root)
		if !opts.windows() {
			return desiredFile{path: path}, nil
		}
		current, found, err := readOptional(path)
		if err != nil {
			return desiredFile{}, fmt.Errorf("read %s: %w", path, err)
		}
		if !found {
			return desiredFile{path: path}, nil
		}
		want, wrapped, err := WrapNpxServers(current)
		if err != nil {
			return desiredFile{}, err
		}
		return desiredFile{
			path:    path,
			current: current,
			want:    want,
			perm:    domain.FilePermissions,
			summary: fmt.Sprintf("wrapped %d npx server(s) with cmd /c", wrapped),
		}, nil
	})
}

// WrapNpxServers rewrites {"command":"npx","args":[...]} entries of
// mcpServers to {"command":"cmd","args":["/c","npx",...]}. Servers whose
// first argument is npx get "cmd" with "/c" prepended to their arguments.
// SSE servers are left alone.
func WrapNpxServers(manifest []byte) ([]byte, int, error) {
	if !gjson.ValidBytes(manifest) {
		return nil, 0, errors.New("parse .mcp.json: invalid JSON")
	}
	doc := string(manifest)
	type edit struct {
		key  string
		args []string
	}
	var edits []edit
	gjson.Get(doc, "mcpServers").ForEach(func(name, server gjson.Result) bool {
		if server.Get("type").String() == "sse" {
			return true
		}
		var args []string
		for _, arg := range server.Get("args").Array() {
			args = append(args, arg.String())
		}
		var wrapped []string
		switch {
		case server.Get("command").String() == "npx":
			wrapped = append([]string{"/c", "npx"}, args...)
		case len(args) > 0 && args[0] == "npx":
			wrapped = append([]string{"/c"}, args...)
		default:
			return true
		}
		edits = append(edits, edit{key: "mcpServers." + escapePathKey(name.String()), args: wrapped})
		return true
	})

	for _, e := range edits {
		var err error
		if doc, err = sjson.Set(doc, e.key+".command", "cmd"); err != nil {
			return nil, 0, fmt.Errorf("update %s: %w", e.key, err)
		}
		if doc, err = sjson.Set(doc, e.key+".args", e.args); err != nil {
			return nil, 0, fmt.Errorf("update %s: %w", e.key, err)
		}
	}
	return []byte(doc), len(edits), nil
}
