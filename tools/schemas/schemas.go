// Package schemas contains the tool descriptors for the built-in
// executor. Descriptors define each tool's name, description, and
// parameter schema; handlers live in the tools package and are bound
// to these descriptors at registration time.
package schemas

import (
	"github.com/promptwire/promptwire/llm"
)

// All returns the descriptors for every built-in tool except
// web_search, which is registered only when a search provider is
// installed.
func All() []llm.ToolSpec {
	specs := []llm.ToolSpec{Bash()}
	specs = append(specs, Filesystem()...)
	specs = append(specs, Search()...)
	specs = append(specs, WebFetch())
	return specs
}
