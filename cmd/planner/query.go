package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/study-planner/internal/application"
	"github.com/example/study-planner/internal/filter"
	"github.com/example/study-planner/internal/interval"
)

func dateArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func newDayCommand(current func() *runtime, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Show the busy and free slots of one day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := current()
			date, err := rt.service.ParseDate(dateArg(args))
			if err != nil {
				return err
			}
			view, err := rt.service.Day(cmd.Context(), date)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, view, renderDay)
		},
	}
}

func newWeekCommand(current func() *runtime, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "week [YYYY-MM-DD]",
		Short: "Summarize the week containing a date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := current()
			date, err := rt.service.ParseDate(dateArg(args))
			if err != nil {
				return err
			}
			view, err := rt.service.Week(cmd.Context(), date)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, view, renderWeek)
		},
	}
}

func newUrgentCommand(current func() *runtime, opts *globalOptions) *cobra.Command {
	var top bool
	cmd := &cobra.Command{
		Use:   "urgent",
		Short: "Rank pending assignments and exams by urgency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := current()
			if top {
				ranked, err := rt.service.MostUrgent(cmd.Context())
				if errors.Is(err, application.ErrNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), "nothing pending")
					return nil
				}
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, ranked, renderRanked)
			}
			view, err := rt.service.Urgent(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, view, renderUrgent)
		},
	}
	cmd.Flags().BoolVar(&top, "top", false, "print only the most urgent pending event")
	return cmd
}

type searchOptions struct {
	params   filter.Params
	from, to string
}

func newSearchCommand(current func() *runtime, opts *globalOptions) *cobra.Command {
	so := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "List events matching kinds, courses, statuses, text and flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := current()
			so.params.Query = strings.TrimSpace(so.params.Query)
			rng, err := so.searchRange(rt.service)
			if err != nil {
				return err
			}
			events, err := rt.service.Search(cmd.Context(), so.params, rng)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, events, renderEvents)
		},
	}
	flags := cmd.Flags()
	flags.StringSliceVar(&so.params.Kinds, "kind", nil, "event kinds to include")
	flags.StringSliceVar(&so.params.Courses, "course", nil, "course ids to include")
	flags.StringSliceVar(&so.params.Statuses, "status", nil, `statuses to include, "all" for every status`)
	flags.StringVarP(&so.params.Query, "query", "q", "", "case-insensitive text to look for")
	flags.BoolVar(&so.params.Favorite, "favorite", false, "only favorite events")
	flags.BoolVar(&so.params.Saved, "saved", false, "only saved events")
	flags.StringVar(&so.from, "from", "", "first date to search (inclusive)")
	flags.StringVar(&so.to, "to", "", "last date to search (inclusive)")
	return cmd
}

// searchRange turns --from/--to into a range. Either bound alone searches
// that single day.
func (so *searchOptions) searchRange(service *application.PlannerService) (*interval.Interval, error) {
	from, to := strings.TrimSpace(so.from), strings.TrimSpace(so.to)
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}
	start, err := service.ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := service.ParseDate(to)
	if err != nil {
		return nil, err
	}
	rng := interval.New(start, end.AddDate(0, 0, 1))
	return &rng, nil
}
