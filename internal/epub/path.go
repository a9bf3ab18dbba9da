package epub

import (
	"net/url"
	"path"
	"strings"
)

// ResolvePath resolves href against the directory of base. When base has no
// parent directory the href is returned as is. The result always uses forward
// slashes since archive entry names never contain backslashes.
func ResolvePath(base, href string) string {
	base = toSlash(base)
	href = toSlash(href)

	dir := path.Dir(base)
	if dir == "." || dir == "/" || dir == "" {
		return href
	}
	return path.Join(dir, href)
}

// toSlash replaces every backslash with a forward slash regardless of the
// host separator.
func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// splitFragment splits a reference into its path and fragment identifier.
func splitFragment(src string) (p, fragment string) {
	p, fragment, _ = strings.Cut(src, "#")
	return p, fragment
}

// unescapedVariant returns the percent-decoded form of p when it differs
// from p. Manifest hrefs are IRIs and may be escaped while entry names are not.
func unescapedVariant(p string) (string, bool) {
	u, err := url.PathUnescape(p)
	if err != nil || u == p {
		return "", false
	}
	return u, true
}
