package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/itemfilter/internal/domain"
	"github.com/kailas-cloud/itemfilter/internal/domain/sorting"
	"github.com/kailas-cloud/itemfilter/internal/domain/view"
	"github.com/kailas-cloud/itemfilter/internal/engine"
	sessionuc "github.com/kailas-cloud/itemfilter/internal/usecase/session"
)

// RunOptions holds flags of the run command.
type RunOptions struct {
	View      string
	Clicks    []string
	SortBy    string
	SortIndex int
	Desc      bool
}

// RunResult is the state after replaying the requested operations.
type RunResult struct {
	View   string   `json:"view"`
	Filter string   `json:"filter"`
	Sort   string   `json:"sort,omitempty"`
	Shown  []string `json:"shown"`
	Hidden []string `json:"hidden"`
	Order  []string `json:"order"`
	Count  string   `json:"count,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <catalog>",
		Short: "Apply clicks and a sort to a catalog and print the result",
		Long: `Loads items from a YAML or JSON catalog, applies each --click in order
through the chosen view, then the sort if one is requested.

Clicks are "group=value" for grouped views and plain values otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := Run(rootOpts.Config, args[0], *opts)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), rootOpts.Format, res)
		},
	}

	cmd.Flags().StringVar(&opts.View, "view", sessionuc.DefaultView, "view name")
	cmd.Flags().StringArrayVar(&opts.Clicks, "click", nil, "button click, repeatable")
	cmd.Flags().StringVar(&opts.SortBy, "sort", "", `sort attribute, e.g. ".price, number" or "*"`)
	cmd.Flags().IntVar(&opts.SortIndex, "option", -1, "index of a view sort option")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "sort descending")
	cmd.MarkFlagsMutuallyExclusive("sort", "option")

	return cmd
}

// Run executes a run command without printing.
func Run(configPath, catalogPath string, opts RunOptions) (RunResult, error) {
	items, err := LoadCatalog(catalogPath)
	if err != nil {
		return RunResult{}, err
	}
	v, err := lookupView(configPath, opts.View)
	if err != nil {
		return RunResult{}, err
	}

	cfg := sessionuc.EngineConfig(v)
	cfg.Logger = zap.NewNop()
	eng, err := engine.New(items, cfg)
	if err != nil {
		return RunResult{}, err
	}
	defer eng.Close()

	for _, c := range opts.Clicks {
		group, value := splitClick(v, c)
		if err := v.ValidateClick(group, value); err != nil {
			return RunResult{}, fmt.Errorf("click %q: %w", c, err)
		}
		eng.Click(group, value)
	}

	if err := applySort(eng, v, opts); err != nil {
		return RunResult{}, err
	}

	res := RunResult{
		View:   v.Name(),
		Filter: eng.Filter().String(),
		Shown:  eng.Visible(),
		Hidden: eng.Hidden(),
		Order:  eng.Order(),
		Count:  eng.Count(),
	}
	if spec, ok := eng.SortSpec(); ok {
		res.Sort = spec.String()
	}
	return res, nil
}

func lookupView(configPath, name string) (*view.View, error) {
	if name == "" {
		name = sessionuc.DefaultView
	}
	views := map[string]*view.View{}
	if configPath != "" {
		var err error
		if views, err = LoadViews(configPath); err != nil {
			return nil, err
		}
	}
	if v, ok := views[name]; ok {
		return v, nil
	}
	if name == sessionuc.DefaultView {
		return view.Default(), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrViewNotFound, name)
}

// splitClick reads "group=value" when the text before "=" is a declared group.
// Anything else, such as an attribute selector, is taken whole as the value.
func splitClick(v *view.View, click string) (group, value string) {
	if !v.Grouping() {
		return "", click
	}
	if g, val, ok := strings.Cut(click, "="); ok && slices.Contains(v.GroupIDs(), g) {
		return g, val
	}
	return "", click
}

func applySort(eng *engine.Engine, v *view.View, opts RunOptions) error {
	var (
		spec sorting.Spec
		err  error
	)
	switch {
	case opts.SortIndex >= 0:
		spec, err = v.SortOption(opts.SortIndex)
	case opts.SortBy != "":
		spec, err = sorting.Parse(opts.SortBy, !opts.Desc)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	return eng.Sort(spec)
}

func writeResult(w io.Writer, format string, res RunResult) error {
	if format == "json" {
		return sonic.ConfigDefault.NewEncoder(w).Encode(res)
	}
	fmt.Fprintf(w, "view:   %s\n", res.View)
	fmt.Fprintf(w, "filter: %s\n", res.Filter)
	if res.Sort != "" {
		fmt.Fprintf(w, "sort:   %s\n", res.Sort)
	}
	if res.Count != "" {
		fmt.Fprintf(w, "count:  %s\n", res.Count)
	}
	fmt.Fprintf(w, "shown:  %s\n", strings.Join(res.Shown, " "))
	fmt.Fprintf(w, "hidden: %s\n", strings.Join(res.Hidden, " "))
	_, err := fmt.Fprintf(w, "order:  %s\n", strings.Join(res.Order, " "))
	return err
}
