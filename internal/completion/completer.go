package completion

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Completer provides cobra completion functions backed by the file cache.
// It never builds an App or touches the network.
type Completer struct {
	dir func() string
}

// NewCompleter returns a completer. dir is resolved at completion time; nil
// selects DefaultDir.
func NewCompleter(dir func() string) *Completer {
	if dir == nil {
		dir = DefaultDir
	}
	return &Completer{dir: dir}
}

// For completes the first positional argument from a cache section. Later
// arguments are not completed.
func (c *Completer) For(section Section) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		items := NewStore(c.dir()).Items(section)
		return Filter(items, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// Filter returns items whose id or name contains toComplete, sorted by name.
func Filter(items []Item, toComplete string) []cobra.Completion {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(label(sorted[i])) < strings.ToLower(label(sorted[j]))
	})

	needle := strings.ToLower(toComplete)
	var out []cobra.Completion
	for _, it := range sorted {
		if needle != "" &&
			!strings.HasPrefix(strings.ToLower(it.ID), needle) &&
			!strings.Contains(strings.ToLower(it.Name), needle) {
			continue
		}
		if it.Name == "" {
			out = append(out, cobra.Completion(it.ID))
			continue
		}
		out = append(out, cobra.CompletionWithDesc(it.ID, it.Name))
	}
	return out
}

func label(it Item) string {
	if it.Name != "" {
		return it.Name
	}
	return it.ID
}
