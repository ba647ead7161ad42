// Package router maps navigation fragments ("#/", "#/course/<id>") to views.
package router

import (
	"net/url"
	"strings"
)

type Name string

const (
	Home   Name = "home"
	Course Name = "course"
)

type Route struct {
	Name Name   `json:"name"`
	ID   string `json:"id,omitempty"`
}

// ParseRoute resolves a fragment. Only a leading "#/" is stripped, so "#course/x"
// and "/course/x" are not course routes. Anything that is not a course route with a
// non-empty id falls back to home.
func ParseRoute(fragment string) Route {
	fragment = strings.TrimPrefix(fragment, "#/")
	parts := strings.Split(fragment, "/")
	if parts[0] == "course" && len(parts) > 1 && parts[1] != "" {
		return Route{Name: Course, ID: parts[1]}
	}
	return Route{Name: Home}
}

// FromPath resolves a server path such as "/course/html-basics".
func FromPath(path string) Route {
	return ParseRoute("#/" + strings.TrimPrefix(path, "/"))
}

// Fragment is the hash form of the route.
func (r Route) Fragment() string {
	return "#" + r.Path()
}

// Path is the server path that renders the route.
func (r Route) Path() string {
	if r.Name == Course {
		return "/course/" + url.PathEscape(r.ID)
	}
	return "/"
}
