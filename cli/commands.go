package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dashtodo/app"
	"dashtodo/model"
	"dashtodo/session"
)

func newLoginCmd(stdout io.Writer, e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "login <name>",
		Short: "Sign in as name (2-20 characters)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, _ := e.workspace()
			name, err := auth.Login(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, session.GreetingPrefix(now().Hour())+", "+name)
			return nil
		},
	}
}

func newLogoutCmd(stdout io.Writer, e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, _ := e.workspace()
			if !auth.LoggedIn() {
				fmt.Fprintln(stdout, "Not signed in")
				return nil
			}
			if err := auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(stdout io.Writer, e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, _ := e.workspace()
			if !auth.LoggedIn() {
				return ErrSignedOut
			}
			fmt.Fprintln(stdout, auth.Username())
			return nil
		},
	}
}

func newAddCmd(stdout io.Writer, e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task to the top of the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := e.signedIn()
			if err != nil {
				return err
			}
			res := mgr.Apply(app.CreateTask{Text: strings.Join(args, " ")})
			if res.Err != nil {
				return res.Err
			}
			fmt.Fprintf(stdout, "Added %d: %s\n", res.Task.ID, res.Task.Text)
			return nil
		},
	}
}

func newListCmd(stdout io.Writer, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := e.signedIn()
			if err != nil {
				return err
			}
			filter, _ := cmd.Flags().GetString("filter")
			if err := mgr.Apply(app.SetFilter{Filter: model.Filter(filter)}).Err; err != nil {
				return err
			}

			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(mgr.VisibleTasks())
			}
			printView(stdout, mgr.View())
			return nil
		},
	}
	cmd.Flags().StringP("filter", "f", string(model.FilterAll), "Show all, active or done tasks")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}

func printView(w io.Writer, v model.View) {
	if len(v.Items) == 0 {
		fmt.Fprintln(w, v.Empty)
	}
	for _, it := range v.Items {
		check := "[ ]"
		if it.Done {
			check = "[x]"
		}
		fmt.Fprintf(w, "%s %d  %s\n", check, it.ID, it.Text)
	}
	fmt.Fprintln(w, v.Summary)
}

func newDoneCmd(stdout io.Writer, e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between open and done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mgr, err := e.signedIn()
			if err != nil {
				return err
			}
			res := mgr.Apply(app.ToggleTask{ID: id})
			if res.Err != nil {
				return res.Err
			}
			state := "open"
			if res.Task.Done {
				state = "done"
			}
			fmt.Fprintf(stdout, "%d is %s\n", id, state)
			return nil
		},
	}
}

func newEditCmd(stdout io.Writer, e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text>",
		Short: "Replace the text of a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mgr, err := e.signedIn()
			if err != nil {
				return err
			}
			if err := mgr.Apply(app.BeginEdit{ID: id}).Err; err != nil {
				return err
			}
			res := mgr.Apply(app.SaveEdit{ID: id, Text: strings.Join(args[1:], " ")})
			if res.Err != nil {
				return res.Err
			}
			fmt.Fprintf(stdout, "Updated %d: %s\n", id, res.Task.Text)
			return nil
		},
	}
}

func newRemoveCmd(stdout io.Writer, e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mgr, err := e.signedIn()
			if err != nil {
				return err
			}
			if err := mgr.Apply(app.DeleteTask{ID: id}).Err; err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Deleted %d\n", id)
			return nil
		},
	}
}

func newMoveCmd(stdout io.Writer, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mv <id>",
		Short: "Reorder an open task (--before <id>, --after <id> or --end)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			before, _ := cmd.Flags().GetString("before")
			after, _ := cmd.Flags().GetString("after")
			end, _ := cmd.Flags().GetBool("end")

			var move app.Command
			switch {
			case end && before == "" && after == "":
				move = app.MoveTaskToEnd{Source: id}
			case !end && before != "" && after == "":
				target, err := parseID(before)
				if err != nil {
					return err
				}
				move = app.MoveTask{Source: id, Target: target, Position: model.Before}
			case !end && after != "" && before == "":
				target, err := parseID(after)
				if err != nil {
					return err
				}
				move = app.MoveTask{Source: id, Target: target, Position: model.After}
			default:
				return errors.New("use exactly one of --before, --after or --end")
			}

			mgr, err := e.signedIn()
			if err != nil {
				return err
			}
			if !mgr.Apply(move).OK {
				fmt.Fprintln(stdout, "Order unchanged")
				return nil
			}
			printView(stdout, mgr.View())
			return nil
		},
	}
	cmd.Flags().String("before", "", "Place the task before this task id")
	cmd.Flags().String("after", "", "Place the task after this task id")
	cmd.Flags().Bool("end", false, "Place the task after every open task")
	return cmd
}

func newClearDoneCmd(stdout io.Writer, e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-done",
		Short: "Remove every completed task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := e.signedIn()
			if err != nil {
				return err
			}
			res := mgr.Apply(app.ClearCompleted{})
			if res.Err != nil {
				return res.Err
			}
			fmt.Fprintf(stdout, "Removed %d completed tasks\n", res.Removed)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}
