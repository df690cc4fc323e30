package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/worktime/internal/daemon"
	"github.com/username/worktime/internal/schedule"
	"github.com/username/worktime/internal/server"
	"github.com/username/worktime/internal/worktime"
	"github.com/username/worktime/pkg/dateutil"
)

// withApp builds the shared components, runs fn and releases them
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(context.Background(), a)
}

func weekCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show a week with logged and remaining hours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			weekKey := dateutil.FormatDate(dateutil.CurrentWeekStart())
			if week != "" {
				var err error
				if weekKey, err = worktime.WeekKeyFor(week); err != nil {
					return err
				}
			}

			return withApp(func(ctx context.Context, a *app) error {
				summary, err := a.service.WeekSummary(ctx, weekKey)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, FormatWeek(summary))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&week, "week", "w", "", "Any date inside the week (default: current week)")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved weeks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				fmt.Fprintln(out, FormatWeekList(a.service.Weeks(ctx)))
				return nil
			})
		},
	}
}

func addCmd() *cobra.Command {
	var title, link string

	cmd := &cobra.Command{
		Use:   "add <date> <hours>",
		Short: "Log hours on a day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("%w: %q", worktime.ErrInvalidHours, args[1])
			}
			if link != "" && !worktime.IsValidYunxiaoLink(link) {
				logger.Warn("Link is not a recognised task tracker URL", zap.String("link", link))
			}

			return withApp(func(ctx context.Context, a *app) error {
				item, err := a.service.AddItem(ctx, args[0], schedule.WorkItem{
					Title: title,
					Link:  link,
					Hours: hours,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(out, FormatItemAdded(args[0], item))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Task title (parsed from --link when empty)")
	cmd.Flags().StringVarP(&link, "link", "l", "", "Task tracker link")
	return cmd
}

func editCmd() *cobra.Command {
	var title, link string
	var hours float64

	cmd := &cobra.Command{
		Use:   "edit <date> <id>",
		Short: "Change a logged item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekKey, err := worktime.WeekKeyFor(args[0])
			if err != nil {
				return err
			}

			var update worktime.ItemUpdate
			if cmd.Flags().Changed("title") {
				update.Title = &title
			}
			if cmd.Flags().Changed("link") {
				update.Link = &link
			}
			if cmd.Flags().Changed("hours") {
				update.Hours = &hours
			}
			if update == (worktime.ItemUpdate{}) {
				return errors.New("nothing to change: pass --title, --link or --hours")
			}

			return withApp(func(ctx context.Context, a *app) error {
				item, err := a.service.UpdateItem(ctx, weekKey, args[1], update)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, FormatItemUpdated(item))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&link, "link", "l", "", "New link")
	cmd.Flags().Float64Var(&hours, "hours", 0, "New hours")
	return cmd
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <date> <id>",
		Short: "Remove a logged item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekKey, err := worktime.WeekKeyFor(args[0])
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, a *app) error {
				if err := a.service.RemoveItem(ctx, weekKey, args[1]); err != nil {
					return err
				}
				fmt.Fprintln(out, Success("Removed "+args[1]))
				return nil
			})
		},
	}
}

func deleteWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-week <weekKey>",
		Short: "Delete a saved week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if err := a.service.DeleteWeek(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(out, Success("Deleted week "+args[0]))
				return nil
			})
		},
	}
}

func clearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all data without --yes")
			}

			return withApp(func(ctx context.Context, a *app) error {
				if err := a.service.ClearAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, Success("All saved weeks deleted"))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	return cmd
}

func cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Apply the retention policy now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				removed, err := a.service.Cleanup(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, Success(fmt.Sprintf("Removed %d old week(s)", removed)))
				return nil
			})
		},
	}
}

func holidayCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "holiday <date>...",
		Short: "Classify dates with the working calendar",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if refresh {
					a.primary.ClearCache()
				}
				fmt.Fprintln(out, FormatHolidays(a.holidays, args))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Drop downloaded calendar years before the lookup")
	return cmd
}

func linkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <url>",
		Short: "Parse a task tracker link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(out, FormatLink(args[0]))
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the preview server and daily maintenance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Daemon.Enabled {
				hour, minute := cfg.Daemon.GetDailyTime()
				d := daemon.NewScheduledDaemon(a.service, a.primary, hour, minute, logger)
				go func() {
					if err := d.Run(ctx); err != nil {
						logger.Error("Daemon failed", zap.Error(err))
					}
				}()
			}

			srv := server.New(cfg.Server, a.service, a.holidays, logger)
			return srv.Run(ctx)
		},
	}
}
