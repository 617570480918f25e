package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"clash-tracker/internal/presenter"
	"clash-tracker/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

var errDeleteNotConfirmed = errors.New("refusing to delete without confirmation, pass --yes")

func newShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the saved profile, then revalidate it against the API",
		Args:  cobra.NoArgs,
		RunE: withApp("show", func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			shown := 0

			unsubscribe := a.profile.Subscribe(func(s presenter.State) {
				switch s.Status {
				case presenter.Loaded:
					if shown > 0 {
						fmt.Fprintln(out, "\nUpdated from the API:")
					}
					shown++
					_ = renderPlayer(out, s.Player, asJSON)
				case presenter.Empty:
					fmt.Fprintln(out, "No saved profile. Use `tracker save TAG` to pick one.")
				case presenter.Error:
					fmt.Fprintln(out, s.Message)
				}
			})
			defer unsubscribe()

			a.profile.Load(ctx)
			a.profile.Wait()

			if st := a.profile.State(); st.Status == presenter.Error {
				return errors.New(st.Message)
			}
			if at, err := a.store.LastUpdated(ctx); err == nil && !asJSON {
				fmt.Fprintf(out, "Last updated: %s\n", at.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var asJSON, refresh, save bool

	cmd := &cobra.Command{
		Use:   "search TAG",
		Short: "Look up any player by tag",
		Args:  cobra.ExactArgs(1),
		RunE: withApp("search", func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			search := a.players.Search
			if refresh {
				search = a.players.Refresh
			}

			player, err := search(ctx, args[0])
			if err != nil {
				return err
			}
			if err := renderPlayer(cmd.OutOrStdout(), player, asJSON); err != nil {
				return err
			}

			if !save {
				return nil
			}
			if err := a.players.SaveAsProfile(ctx, player); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s as your profile.\n", player.PlayerTag)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the response cache")
	cmd.Flags().BoolVar(&save, "save", false, "Save the result as your profile")
	return cmd
}

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save TAG",
		Short: "Fetch a player and save it as your profile",
		Args:  cobra.ExactArgs(1),
		RunE: withApp("save", func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			player, err := a.players.Search(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.players.SaveAsProfile(ctx, player); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s) as your profile.\n", player.PlayerName, player.PlayerTag)
			return nil
		}),
	}
}

func newRefreshCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch the saved profile from the API",
		Args:  cobra.NoArgs,
		RunE: withApp("refresh", func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			stored, err := a.store.GetProfile(ctx, false)
			if err != nil {
				return err
			}
			if stored == nil {
				return service.ErrNoProfile
			}

			a.profile.ProfileSaved(stored)
			if err := a.profile.Refresh(ctx); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Could not refresh, showing the saved profile.")
				_ = renderPlayer(cmd.OutOrStdout(), stored, asJSON)
				return err
			}
			return renderPlayer(cmd.OutOrStdout(), a.profile.State().Player, asJSON)
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the saved profile",
		Args:  cobra.NoArgs,
		RunE: withApp("delete", func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !a.store.HasProfile(ctx) {
				fmt.Fprintln(out, "No saved profile.")
				return nil
			}

			if !yes {
				ok, err := confirm(cmd.InOrStdin(), out, "Delete the saved profile?")
				if err != nil {
					return err
				}
				if !ok {
					return errDeleteNotConfirmed
				}
			}

			if err := a.players.DeleteProfile(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "Profile deleted.")
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newChartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chart [TAG]",
		Short: "Print the trophy chart URL for a player, or for the saved profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp("chart", func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			var tag string
			if len(args) == 1 {
				tag = args[0]
			} else {
				stored, err := a.store.GetProfile(ctx, false)
				if err != nil {
					return err
				}
				if stored == nil {
					return service.ErrNoProfile
				}
				tag = stored.PlayerTag
			}

			u, err := a.client.ChartURL(tag)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		}),
	}
}

// confirm asks only when stdin is a terminal; anything else reads as no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	f, ok := in.(*os.File)
	if !ok || !isTerminal(int(f.Fd())) {
		return false, nil
	}

	if _, err := fmt.Fprint(out, prompt+" [y/N] "); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
