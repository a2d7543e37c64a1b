package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"
)

type RegionsCmd struct{}

func (r *RegionsCmd) Run(ctx *Context) error {
	names := make([]string, 0, len(ctx.Config.Regions))
	for name := range ctx.Config.Regions {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tmin-lat\tmax-lat\tmin-lon\tmax-lon")
	for _, name := range names {
		region := ctx.Config.Regions[name]
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%.1f\t%.1f\n",
			name, region.MinLat, region.MaxLat, region.MinLon, region.MaxLon)
	}
	return tw.Flush()
}
