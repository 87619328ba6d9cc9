package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/itemfilter/internal/domain/view"
)

// ViewSummary describes one configured view.
type ViewSummary struct {
	Name   string              `json:"name"`
	Mode   string              `json:"mode,omitempty"`
	Groups map[string][]string `json:"groups,omitempty"`
	Sort   []string            `json:"sort,omitempty"`
	Count  string              `json:"count,omitempty"`
}

// NewViewsCommand creates the views command.
func NewViewsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "Validate the views of a config file and list them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			views, err := LoadViews(rootOpts.Config)
			if err != nil {
				return err
			}
			return writeViews(cmd.OutOrStdout(), rootOpts.Format, summarize(views))
		},
	}
}

func summarize(views map[string]*view.View) []ViewSummary {
	out := make([]ViewSummary, 0, len(views))
	for _, v := range views {
		s := ViewSummary{Name: v.Name()}
		if v.Filtering() {
			s.Mode = string(v.Mode())
			s.Groups = make(map[string][]string, len(v.Groups()))
			for _, g := range v.Groups() {
				s.Groups[g.ID()] = g.Buttons()
			}
		}
		for _, o := range v.SortOptions() {
			s.Sort = append(s.Sort, o.String())
		}
		if v.Counting() {
			s.Count = v.CountFormat()
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b ViewSummary) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func writeViews(w io.Writer, format string, views []ViewSummary) error {
	if format == "json" {
		return sonic.ConfigDefault.NewEncoder(w).Encode(views)
	}
	for _, v := range views {
		fmt.Fprintf(w, "%s\n", v.Name)
		if v.Mode != "" {
			fmt.Fprintf(w, "  filter: %s\n", v.Mode)
			groups := make([]string, 0, len(v.Groups))
			for g := range v.Groups {
				groups = append(groups, g)
			}
			slices.Sort(groups)
			for _, g := range groups {
				fmt.Fprintf(w, "    %s: %s\n", g, strings.Join(v.Groups[g], " "))
			}
		}
		for i, s := range v.Sort {
			fmt.Fprintf(w, "  sort[%d]: %s\n", i, s)
		}
		if v.Count != "" {
			fmt.Fprintf(w, "  count: %q\n", v.Count)
		}
	}
	return nil
}
