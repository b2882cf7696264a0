package suggest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nacre-sh/nacre/internal/session"
)

// CompletePath completes filesystem paths, UNC share paths and provider
// drive items. The word decides the flavor: a \\server prefix enumerates
// shares, a drive-qualified word like env:HO completes items of that
// provider drive, anything else walks the filesystem.
func (e *Engine) CompletePath(ctx *Context) []Result {
	word := ctx.WordToComplete
	if strings.HasPrefix(word, `\\`) || strings.HasPrefix(word, "//") {
		return e.completeShares(ctx, word)
	}
	if drive, rest, ok := splitDriveWord(word); ok {
		switch strings.ToLower(drive) {
		case "env":
			return e.completeDriveItems(ctx, "get-environment", drive, rest)
		case "variable":
			return e.completeDriveItems(ctx, "get-variable", drive, rest)
		}
	}
	return e.completeFilesystem(ctx, word)
}

// splitDriveWord splits "env:PA" into ("env", "PA"). A single letter before
// the colon is a filesystem drive and is left to the filesystem walker.
func splitDriveWord(word string) (drive, rest string, ok bool) {
	i := strings.IndexByte(word, ':')
	if i <= 1 {
		return "", "", false
	}
	drive = word[:i]
	if strings.ContainsAny(drive, `/\.`) {
		return "", "", false
	}
	return drive, word[i+1:], true
}

func (e *Engine) completeDriveItems(ctx *Context, helper, drive, rest string) []Result {
	pattern := rest + "*"
	var results []Result
	for _, obj := range e.runHelper(helper, nil) {
		v, ok := obj.(*session.Variable)
		if !ok || !matchWildcard(pattern, v.Name) {
			continue
		}
		full := drive + ":" + v.Name
		results = append(results, NewResult(quoteIfNeeded(ctx, full), v.Name, KindProviderItem, variableToolTip(v)))
	}
	sortResults(results)
	return orderValues(results, rest)
}

// completeShares completes \\server\share words against the remote share
// list. Administrative shares with a $ suffix are merged in only when the
// typed word already reaches past the first character of the share name, so
// a bare \\server\ stays uncluttered.
func (e *Engine) completeShares(ctx *Context, word string) []Result {
	sep := string(word[0])
	trimmed := strings.TrimLeft(word, `\/`)
	parts := strings.SplitN(strings.ReplaceAll(trimmed, "/", `\`), `\`, 2)
	server := parts[0]
	if len(parts) < 2 {
		// still typing the server name, nothing to enumerate
		return []Result{}
	}
	leaf := parts[1]
	if ctx.Host == nil {
		return []Result{}
	}
	shares, err := ctx.Host.ListShares(server)
	if err != nil {
		e.log.Debug().Str("server", server).Err(err).Msg("share enumeration failed")
		return []Result{}
	}
	pattern := leaf + "*"
	var results []Result
	for _, share := range shares {
		if ctx.cancelled() {
			return []Result{}
		}
		if share.Hidden && (e.opts.IgnoreHiddenShares || leaf == "") {
			continue
		}
		if !matchWildcard(pattern, share.Name) {
			continue
		}
		full := sep + sep + server + sep + share.Name
		if sep == "/" {
			full = "//" + server + "/" + share.Name
		}
		results = append(results, NewResult(quoteIfNeeded(ctx, full), share.Name, KindProviderContainer, full))
	}
	sortResults(results)
	return orderValues(results, leaf)
}

func (e *Engine) completeFilesystem(ctx *Context, word string) []Result {
	dirPart, leaf := splitPathWord(word)
	base := e.resolveBaseDir(ctx, dirPart)
	entries, err := os.ReadDir(base)
	if err != nil {
		e.log.Debug().Str("dir", base).Err(err).Msg("directory listing failed")
		return []Result{}
	}
	showHidden := strings.HasPrefix(leaf, ".")
	pattern := leaf + "*"
	var results []Result
	for _, entry := range entries {
		name := entry.Name()
		if !showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if !matchWildcard(pattern, name) {
			continue
		}
		completion := e.presentPath(ctx, base, dirPart, name)
		kind := KindProviderItem
		tip := completion
		if entry.IsDir() {
			kind = KindProviderContainer
			completion += string(os.PathSeparator)
			tip = completion
		}
		if e.opts.LiteralPaths {
			completion = escapeWildcards(completion)
		}
		results = append(results, NewResult(quoteIfNeeded(ctx, completion), name, kind, tip))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ListItemText < results[j].ListItemText })
	return results
}

// splitPathWord splits the typed word into the directory part to keep in
// the completion and the leaf fragment to match on.
func splitPathWord(word string) (dir, leaf string) {
	i := strings.LastIndexAny(word, `/\`)
	if i < 0 {
		return "", word
	}
	return word[:i+1], word[i+1:]
}

// presentPath renders one completed entry according to the relative-path
// policy: nil preserves the shape the user typed, true forces a dot-relative
// path against the working directory, false forces an absolute path.
func (e *Engine) presentPath(ctx *Context, base, dirPart, name string) string {
	if e.opts.RelativePaths == nil {
		return joinPathWord(dirPart, name)
	}
	full := filepath.Join(base, name)
	if !*e.opts.RelativePaths {
		return full
	}
	wd := e.sessionWorkingDir()
	rel, err := filepath.Rel(wd, full)
	if err != nil {
		return full
	}
	if !strings.HasPrefix(rel, ".") {
		rel = relativePrefix() + rel
	}
	return rel
}

func joinPathWord(dirPart, name string) string {
	if dirPart == "" {
		if rel := relativePrefix(); rel != "" {
			return rel + name
		}
		return name
	}
	return dirPart + name
}

// relativePrefix is the prefix given to bare relative completions.
func relativePrefix() string {
	return "." + string(os.PathSeparator)
}

// resolveBaseDir maps the typed directory part to a real directory,
// expanding ~ and resolving relative paths against the session's working
// directory.
func (e *Engine) resolveBaseDir(ctx *Context, dirPart string) string {
	dir := dirPart
	if dir == "" {
		dir = "."
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") || strings.HasPrefix(dir, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			dir = home + dir[1:]
		}
	}
	if !filepath.IsAbs(dir) {
		if wd := e.sessionWorkingDir(); wd != "" {
			dir = filepath.Join(wd, dir)
		}
	}
	return dir
}

func (e *Engine) sessionWorkingDir() string {
	for _, obj := range e.runHelper("get-variable", nil) {
		if v, ok := obj.(*session.Variable); ok && strings.EqualFold(v.Name, "PWD") {
			if s, ok := v.Value.(string); ok {
				return s
			}
		}
	}
	wd, _ := os.Getwd()
	return wd
}

// escapeWildcards backtick-escapes glob metacharacters so a completed name
// containing them round-trips through literal path APIs.
func escapeWildcards(path string) string {
	if !strings.ContainsAny(path, "*?[]") {
		return path
	}
	var b strings.Builder
	b.Grow(len(path) + 4)
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '*', '?', '[', ']':
			b.WriteByte('`')
		}
		b.WriteByte(path[i])
	}
	return b.String()
}
