package catalog

import "strings"

// WithSeparator returns p with exactly the trailing "/" every browse path keeps.
func WithSeparator(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

// Parent returns the folder above current. At root, or when no parent
// separator exists, it returns root.
func Parent(current, root string) string {
	root = WithSeparator(root)
	if current == root {
		return root
	}

	cut := strings.LastIndexByte(current, '/')
	if cut <= 0 {
		return root
	}
	trimmed := current[:cut]
	cut = strings.LastIndexByte(trimmed, '/')
	if cut < 0 {
		return root
	}
	parent := trimmed[:cut+1]
	if len(parent) < len(root) {
		return root
	}
	return parent
}
