// Package routes lets domain handlers publish their endpoints as data. The
// API module registers every group on one ServeMux.
package routes

import "net/http"

// Route is one method and pattern, relative to its Group prefix. An empty
// Pattern serves the prefix itself.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group nests routes under Prefix; Children inherit it.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Patterns lists the full ServeMux patterns of g and its children in
// declaration order.
func (g Group) Patterns() []string {
	var out []string
	g.walk("", func(pattern string, _ http.HandlerFunc) {
		out = append(out, pattern)
	})
	return out
}

func (g Group) walk(parent string, visit func(string, http.HandlerFunc)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		visit(r.Method+" "+prefix+r.Pattern, r.Handler)
	}
	for _, child := range g.Children {
		child.walk(prefix, visit)
	}
}

// Register adds every route of groups to mux and returns the registered
// patterns.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var registered []string
	for _, g := range groups {
		g.walk("", func(pattern string, h http.HandlerFunc) {
			mux.HandleFunc(pattern, h)
			registered = append(registered, pattern)
		})
	}
	return registered
}
