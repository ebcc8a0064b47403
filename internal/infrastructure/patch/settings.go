package patch

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/doeshing/promptline/internal/domain"
)

// SettingsPath is the editor settings file rewritten by the settings step.
func SettingsPath(root string) string {
	return filepath.Join(root, ".claude", "settings.json")
}

// settingsStep rewrites absolute project-root references anywhere in the
// settings document to the portable placeholder. Edits go through sjson so
// key order and formatting of the rest of the file survive.
func settingsStep(opts Options) domain.PatchStep {
	return singleFileStep(StepSettings, opts.Root, func() (desiredFile, error) {
		path := SettingsPath(opts.Root)
		current, found, err := readOptional(path)
		if err != nil {
			return desiredFile{}, fmt.Errorf("read %s: %w", path, err)
		}
		d := desiredFile{path: path, current: current, perm: domain.FilePermissions}

		switch {
		case !found:
			d.want = freshSettings(opts)
			d.summary = "created settings with portable statusLine command"
		case !gjson.ValidBytes(current) || !gjson.ParseBytes(current).IsObject():
			d.want = freshSettings(opts)
			d.backup = path + ".bak"
			d.summary = "replaced malformed settings (backup kept as settings.json.bak)"
		default:
			want, rewritten, err := PortableSettings(current, opts)
			if err != nil {
				return desiredFile{}, err
			}
			d.want = want
			d.summary = fmt.Sprintf("rewrote %d value(s)", rewritten)
		}
		return d, nil
	})
}

// PortableSettings returns settings with every string value made portable
// and the number of values that changed. Keys are left as they are.
func PortableSettings(settings []byte, opts Options) ([]byte, int, error) {
	doc := string(settings)
	rewritten := 0
	for _, leaf := range stringLeaves(gjson.Parse(doc), "") {
		next := PortableCommand(leaf.value, opts)
		if next == leaf.value {
			continue
		}
		updated, err := sjson.Set(doc, leaf.path, next)
		if err != nil {
			return nil, 0, fmt.Errorf("update %s: %w", leaf.path, err)
		}
		doc = updated
		rewritten++
	}
	return []byte(doc), rewritten, nil
}

type stringLeaf struct {
	path  string
	value string
}

// stringLeaves lists every string value below node with its sjson path.
func stringLeaves(node gjson.Result, prefix string) []stringLeaf {
	switch {
	case node.Type == gjson.String:
		return []stringLeaf{{path: prefix, value: node.String()}}
	case node.IsObject():
		var leaves []stringLeaf
		node.ForEach(func(key, value gjson.Result) bool {
			leaves = append(leaves, stringLeaves(value, joinPath(prefix, escapePathKey(key.String())))...)
			return true
		})
		return leaves
	case node.IsArray():
		var leaves []stringLeaf
		i := 0
		node.ForEach(func(_, value gjson.Result) bool {
			leaves = append(leaves, stringLeaves(value, joinPath(prefix, strconv.Itoa(i)))...)
			i++
			return true
		})
		return leaves
	default:
		return nil
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// PortableCommand replaces the absolute project root with the placeholder and
// converts placeholder references to the syntax of the target shell.
func PortableCommand(cmd string, opts Options) string {
	name := opts.placeholderVar()
	placeholder := domain.PlaceholderFor(name, opts.TargetOS)
	for _, form := range rootForms(opts.Root) {
		cmd = replaceRoot(cmd, form, placeholder, isWindowsPath(form))
	}

	posix, braced, win := "$"+name, "${"+name+"}", "%"+name+"%"
	if opts.windows() {
		cmd = strings.ReplaceAll(cmd, braced, win)
		cmd = replaceVariable(cmd, posix, win)
	} else {
		cmd = strings.ReplaceAll(cmd, win, posix)
	}
	return cmd
}

func freshSettings(opts Options) []byte {
	command := domain.PlaceholderFor(opts.placeholderVar(), opts.TargetOS) + "/" + StateDirName + "/scripts/" + RunnerName(opts.TargetOS)
	if opts.windows() {
		command = strings.ReplaceAll(command, "/", `\`)
	}
	doc, _ := sjson.Set(`{}`, "statusLine.type", "command")
	doc, _ = sjson.Set(doc, "statusLine.command", command)
	return pretty.Pretty([]byte(doc))
}

// rootForms returns the spellings of root found in hand-edited settings.
// Windows roots are matched with either separator. Filesystem roots are
// skipped so no separator is ever replaced on its own.
func rootForms(root string) []string {
	if root == "" {
		return nil
	}
	clean := filepath.Clean(root)
	if clean == filepath.Dir(clean) || isDriveRoot(clean) {
		return nil
	}
	forms := []string{clean}
	if !isWindowsPath(clean) {
		return forms
	}
	for _, form := range []string{strings.ReplaceAll(clean, `\`, "/"), strings.ReplaceAll(clean, "/", `\`)} {
		if !contains(forms, form) {
			forms = append(forms, form)
		}
	}
	return forms
}

func isDriveRoot(path string) bool {
	return len(path) >= 2 && path[1] == ':' && strings.Trim(path[2:], `\/`) == ""
}

func isWindowsPath(path string) bool {
	return strings.Contains(path, `\`) || (len(path) >= 2 && path[1] == ':')
}

// replaceRoot replaces root only where it stands as a whole path, so
// /work/proj never matches inside /work/project2 or /x/work/proj. fold
// matches ASCII letters case-insensitively, as windows paths compare.
func replaceRoot(s, root, placeholder string, fold bool) string {
	needle, haystack := root, s
	if fold {
		needle, haystack = asciiLower(root), asciiLower(s)
	}
	var b strings.Builder
	pos := 0
	for {
		idx := strings.Index(haystack[pos:], needle)
		if idx < 0 {
			b.WriteString(s[pos:])
			return b.String()
		}
		idx += pos
		end := idx + len(needle)
		b.WriteString(s[pos:idx])
		if startsPath(s, idx) && endsPath(s, end) {
			b.WriteString(placeholder)
		} else {
			b.WriteString(s[idx:end])
		}
		pos = end
	}
}

func startsPath(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	c := s[idx-1]
	return !isIdentChar(c) && !strings.ContainsRune(`-./\`, rune(c))
}

func endsPath(s string, end int) bool {
	return end == len(s) || strings.ContainsRune(`/\"' :;,)]}=`, rune(s[end]))
}

// asciiLower lowers ASCII letters only, so byte offsets match the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// replaceVariable replaces a $NAME reference not followed by an identifier character.
func replaceVariable(s, ref, repl string) string {
	var b strings.Builder
	for {
		idx := strings.Index(s, ref)
		if idx < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := idx + len(ref)
		b.WriteString(s[:idx])
		if end < len(s) && isIdentChar(s[end]) {
			b.WriteString(ref)
		} else {
			b.WriteString(repl)
		}
		s = s[end:]
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// escapePathKey escapes gjson/sjson path syntax inside a single key.
func escapePathKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(`\.*?|#@!=<>%`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
