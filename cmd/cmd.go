// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"
)

// setupCommand writes a starter config and prepares the database backend.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml from the template and initialize the credential database",
		Action: r.Setup,
	}
}

// authCommand handles sign-in and the stored refresh token
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in to Google and manage the stored credential",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in through the browser using a loopback redirect",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the consent URL instead of opening a browser",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the redirect",
						Value: defaultLoginTimeout,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "exchange",
				Usage: "Finish sign-in with a redirect URL pasted from the browser",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "redirect-url"},
				},
				Action: r.AuthExchange,
			},
			{
				Name:  "url",
				Usage: "Print the consent URL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "state",
						Usage: "State value to embed (random when empty)",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:   "status",
				Usage:  "Report whether a refresh token is stored and who it belongs to",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored refresh token",
				Action: r.AuthLogout,
			},
		},
	}
}

// subscriptionsCommand lists and exports the signed-in user's subscriptions
func subscriptionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "subscriptions",
		Aliases: []string{"subs"},
		Usage:   "List and export subscriptions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show one page of subscriptions",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "page",
						Usage: "Page cursor from a previous listing",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SubscriptionsList,
			},
			{
				Name:  "all",
				Usage: "Fetch every page of subscriptions",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "details",
						Usage: "Fetch channel statistics for every subscription",
					},
					&cli.IntFlag{
						Name:  "max-pages",
						Usage: "Stop after this many pages (0 for all)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SubscriptionsAll,
			},
			{
				Name:  "export",
				Usage: "Export every subscription to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: subscriptions.<ext>)",
					},
					&cli.BoolFlag{
						Name:  "details",
						Usage: "Include channel statistics",
					},
				},
				Action: r.SubscriptionsExport,
			},
		},
	}
}

// channelCommand shows a channel with statistics
func channelCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "channel",
		Usage: "Show channel details",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Channel,
	}
}

// accountCommand shows the signed-in user's channel
func accountCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Show the signed-in account",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Account,
	}
}

// tuiCommand returns the top-level TUI command for browsing subscriptions.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse subscriptions interactively",
		Action:  r.TUI,
	}
}
