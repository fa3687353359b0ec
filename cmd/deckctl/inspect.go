package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	sd "twitchDeck/internal/interface/streamdeck"
	"twitchDeck/internal/usecase/inspector"
)

type inspectOptions struct {
	port          int
	uuid          string
	registerEvent string
	actionInfo    string
	sets          []string
	test          bool
	resolve       bool
	timeout       time.Duration
}

func newInspectCommand() *cobra.Command {
	var opts inspectOptions
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Run a headless property inspector against a running host",
		Long: "Connects to the host as a property inspector, loads the settings, applies any\n" +
			"--set field=value changes and optionally runs a connection test or ID lookup.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.port, "port", 0, "host websocket port")
	f.StringVar(&opts.uuid, "uuid", "", "inspector registration uuid")
	f.StringVar(&opts.registerEvent, "register-event", sd.RegisterPropertyInspector, "registration event")
	f.StringVar(&opts.actionInfo, "action-info", "", "actionInfo JSON passed by the host")
	f.StringArrayVar(&opts.sets, "set", nil, "field=value to change, repeatable")
	f.BoolVar(&opts.test, "test", false, "run a connection test")
	f.BoolVar(&opts.resolve, "resolve", false, "ask the plugin to resolve broadcaster and moderator ids")
	f.DurationVar(&opts.timeout, "timeout", 20*time.Second, "give up after this long")
	_ = cmd.MarkFlagRequired("port")
	_ = cmd.MarkFlagRequired("uuid")
	return cmd
}

func parseSets(sets []string) ([][2]string, error) {
	out := make([][2]string, 0, len(sets))
	for _, s := range sets {
		field, value, ok := strings.Cut(s, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("inspect: --set %q: want field=value", s)
		}
		out = append(out, [2]string{field, value})
	}
	return out, nil
}

func runInspect(cmd *cobra.Command, opts inspectOptions) error {
	changes, err := parseSets(opts.sets)
	if err != nil {
		return err
	}

	params := sd.Params{Port: opts.port, UUID: opts.uuid, RegisterEvent: opts.registerEvent}
	if opts.actionInfo != "" {
		params.ActionInfo, err = sd.ParseActionInfo(opts.actionInfo)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	updates := make(chan inspector.State, 16)
	loaded := make(chan struct{}, 1)

	var sess *inspector.Session
	handlers := sd.Handlers{
		sd.EventDidReceiveSettings: func(_ context.Context, ev sd.Envelope) {
			var p sd.ActionPayload
			if err := ev.DecodePayload(&p); err == nil {
				sess.OnSettings(p.Settings)
			}
		},
		sd.EventDidReceiveGlobalSettings: func(_ context.Context, ev sd.Envelope) {
			var p sd.GlobalSettingsPayload
			if err := ev.DecodePayload(&p); err == nil {
				sess.OnGlobalSettings(p.Settings)
			}
			select {
			case loaded <- struct{}{}:
			default:
			}
		},
		sd.EventSendToPropertyInspector: func(_ context.Context, ev sd.Envelope) {
			sess.OnPluginMessage(ev.Payload)
		},
	}

	client, err := sd.NewClient(sd.RoleInspector, params, handlers, sd.Options{})
	if err != nil {
		return err
	}
	sess = inspector.NewSession(client, inspector.Options{
		ActionID:  params.ActionInfo.Action,
		ContextID: params.UUID,
		OnUpdate: func(st inspector.State) {
			select {
			case updates <- st:
			default:
			}
		},
	})

	runErr := make(chan error, 1)
	go func() { runErr <- client.Run(ctx) }()

	result := make(chan error, 1)
	go func() { result <- drive(ctx, sess, changes, opts, loaded, updates) }()

	var driveErr error
	select {
	case driveErr = <-result:
		_ = client.Close()
		<-runErr
	case err := <-runErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return errors.New("inspect: host closed the connection")
	}
	if driveErr != nil {
		return driveErr
	}
	return printState(newPrinter(cmd), sess.State())
}

func drive(ctx context.Context, sess *inspector.Session, changes [][2]string, opts inspectOptions, loaded <-chan struct{}, updates <-chan inspector.State) error {
	select {
	case <-loaded:
	case <-ctx.Done():
		return fmt.Errorf("inspect: waiting for settings: %w", ctx.Err())
	}

	for _, c := range changes {
		if err := sess.Change(c[0], c[1]); err != nil {
			return err
		}
	}

	if opts.resolve {
		sess.ResolveIDs()
		if err := waitFor(ctx, sess, updates, func(st inspector.State) bool {
			return st.Status != inspector.StatusResolve
		}); err != nil {
			return err
		}
	}
	if opts.test {
		sess.TestConnection()
		if err := waitFor(ctx, sess, updates, func(st inspector.State) bool {
			return st.ButtonEnabled
		}); err != nil {
			return err
		}
	}
	return nil
}

// waitFor polls the session on every update, and periodically in case an update was dropped.
func waitFor(ctx context.Context, sess *inspector.Session, updates <-chan inspector.State, done func(inspector.State) bool) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if done(sess.State()) {
			return nil
		}
		select {
		case <-updates:
		case <-ticker.C:
		case <-ctx.Done():
			return fmt.Errorf("inspect: %w", ctx.Err())
		}
	}
}

func maskToken(token string) string {
	token = strings.TrimPrefix(strings.TrimSpace(token), "oauth:")
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

func printState(p *printer, st inspector.State) error {
	st.Form.Token = maskToken(st.Form.Token)
	if p.jsonMode {
		return p.JSON(st)
	}
	f := st.Form
	p.Linef("channel         %s", f.Channel)
	p.Linef("broadcaster id  %s", f.BroadcasterID)
	p.Linef("moderator id    %s", f.ModeratorID)
	p.Linef("token           %s", f.Token)
	p.Linef("client id       %s", f.ClientID)
	p.Linef("shield duration %s", f.ShieldDuration)
	p.Linef("follow duration %s", f.FollowDuration)
	p.Linef("slow delay      %s", f.SlowDelay)
	p.Linef("configured      %t", st.Configured)
	if st.Raider != nil {
		p.Linef("raider          %s (%d viewers)", st.Raider.Name(), st.Raider.Viewers)
	}
	for _, e := range st.Report.Errors {
		p.Linef("error           %s: %s", e.Field, e.Message)
	}
	for _, w := range st.Report.Warnings {
		p.Linef("warning         %s", w)
	}
	if st.Status != "" {
		p.Linef("status          %s", st.Status)
	}
	return nil
}
