package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aniladanir/hirechat/internal/client"
	"github.com/aniladanir/hirechat/internal/domain"
	"github.com/aniladanir/hirechat/internal/poller"
	"github.com/aniladanir/hirechat/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type options struct {
	applicationID string
	email         string
	role          string
	verbose       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var cfg *Config

	rootCmd := &cobra.Command{
		Use:          "chatctl",
		Short:        "Terminal client for application conversations and video calls",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err = LoadConfig(viper.New())
			return err
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.applicationID, "app", "a", "", "application id (required)")
	rootCmd.PersistentFlags().StringVarP(&opts.email, "email", "e", "", "your email (required)")
	rootCmd.PersistentFlags().StringVarP(&opts.role, "role", "r", string(domain.RoleCandidate), "employer or candidate")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log poll failures")
	rootCmd.MarkPersistentFlagRequired("app")
	rootCmd.MarkPersistentFlagRequired("email")

	api := func() *client.Client { return client.New(cfg.Server.URL, nil) }

	rootCmd.AddCommand(
		newWatchCmd(opts, func() *Config { return cfg }, api),
		newSendCmd(opts, api),
		newCallCmd(opts, api),
	)
	return rootCmd
}

func (o *options) identity() poller.Identity {
	return poller.Identity{ApplicationID: o.applicationID, Email: o.email, Role: domain.Role(o.role)}
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelError
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newWatchCmd(opts *options, cfg func() *Config, api func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the conversation; lines typed on stdin are sent as messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := &printer{w: cmd.OutOrStdout(), me: opts.email}
			p := poller.New(api(), out, opts.identity(), poller.Config{
				Interval: cfg().Poll.Interval,
				Logger:   opts.logger(),
			})
			p.Start()
			defer p.Stop()

			lines := make(chan string)
			go func() {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					lines <- scanner.Text()
				}
				close(lines)
			}()

			for {
				select {
				case <-ctx.Done():
					return nil
				case line, ok := <-lines:
					if !ok {
						return nil
					}
					if strings.TrimSpace(line) == "" {
						continue
					}
					if _, err := p.Send(ctx, line); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "failed to send message: %v\n", err)
					}
				}
			}
		},
	}
}

func newSendCmd(opts *options, api func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "send <text>",
		Short: "Send a single message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := api().SendMessage(cmd.Context(), service.SendMessageParams{
				ApplicationID: opts.applicationID,
				Sender:        domain.Role(opts.role),
				SenderEmail:   opts.email,
				Text:          strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", msg.ID)
			return nil
		},
	}
}

func newCallCmd(opts *options, api func() *client.Client) *cobra.Command {
	callCmd := &cobra.Command{
		Use:   "call",
		Short: "Start, answer or end the conversation's video call",
	}

	callCmd.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Ring the other participant, or connect if they are already ringing",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := api().StartCall(cmd.Context(), service.StartCallParams{
					ApplicationID:  opts.applicationID,
					InitiatorEmail: opts.email,
					InitiatorRole:  domain.Role(opts.role),
				})
				if err != nil {
					return err
				}
				printCall(cmd.OutOrStdout(), res.Call)
				return nil
			},
		},
		&cobra.Command{
			Use:   "answer",
			Short: "Answer the ringing call",
			RunE: func(cmd *cobra.Command, args []string) error {
				return transition(cmd.Context(), cmd.OutOrStdout(), api(), opts.applicationID, domain.CallActive)
			},
		},
		&cobra.Command{
			Use:   "end",
			Short: "Hang up the ongoing call",
			RunE: func(cmd *cobra.Command, args []string) error {
				return transition(cmd.Context(), cmd.OutOrStdout(), api(), opts.applicationID, domain.CallEnded)
			},
		},
	)
	return callCmd
}

func transition(ctx context.Context, w io.Writer, api poller.API, applicationID string, status domain.CallStatus) error {
	current, err := api.GetCurrentCall(ctx, applicationID)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("no ongoing call for application %s", applicationID)
	}
	call, err := api.SetCallStatus(ctx, current.ID, status)
	if err != nil {
		return err
	}
	printCall(w, call)
	return nil
}

func printCall(w io.Writer, call domain.VideoCall) {
	fmt.Fprintf(w, "call %s %s (started by %s)", call.ID, call.Status, call.InitiatorEmail)
	if call.RoomURL != "" {
		fmt.Fprintf(w, " room %s", call.RoomURL)
	}
	fmt.Fprintln(w)
}
