// Command scm-helper audits a swimming club's membership records in
// Swim Club Manager: it cross-references groups, sessions, roles and
// codes of conduct, reports inconsistencies, and can fix a subset of
// them with per-fix confirmation.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ColinRobbins/scm-helper/internal/archive"
	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/internal/core"
	"github.com/ColinRobbins/scm-helper/internal/scmapi"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

const keyFileName = "apikey.enc"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "scm-helper",
		Short:         "Audit and fix Swim Club Manager membership data",
		Version:       scmapi.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default ~/scm-helper/config.yaml)")

	root.AddCommand(newReportCmd(&configPath))
	root.AddCommand(newFixCmd(&configPath))
	root.AddCommand(newBackupCmd(&configPath))
	root.AddCommand(newVerifyCmd(&configPath))
	root.AddCommand(newConfigCmd(&configPath))
	return root
}

// app carries the state every command needs once the configuration is
// loaded and the operator authenticated.
type app struct {
	policy   *config.Policy
	vault    *archive.Vault
	notifier core.Notifier
	confirm  *core.ReaderConfirmer
}

func newApp(configPath string) (*app, error) {
	if configPath == "" {
		var err error
		configPath, err = config.Path()
		if err != nil {
			return nil, err
		}
	}

	policy, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		policy:   policy,
		notifier: core.WriterNotifier{W: os.Stdout},
		confirm:  &core.ReaderConfirmer{In: os.Stdin, Out: os.Stdout},
	}

	password, ok := a.confirm.Text("Password: ")
	if !ok || password == "" {
		return nil, fmt.Errorf("a password is required")
	}
	a.vault = archive.NewVault(password, policy.Club())
	return a, nil
}

// client opens the API transport, sealing the API key on first use.
func (a *app) client() (*scmapi.Client, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	keyPath := filepath.Join(home, config.Dir, keyFileName)

	key, err := a.vault.ReadKeyFile(keyPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		entered, ok := a.confirm.Text("API key: ")
		if !ok || entered == "" {
			return nil, fmt.Errorf("an API key is required")
		}
		if err := a.vault.WriteKeyFile(keyPath, entered); err != nil {
			return nil, err
		}
		key = entered
	}

	return scmapi.New(key, a.policy.Club()), nil
}

// audit runs the load, link and analyse passes over the transport.
func (a *app) audit(ctx context.Context, t core.Transport, clock domain.Clock) (*core.Dataset, error) {
	d := core.NewDataset(a.policy, clock, a.notifier)
	if err := d.Load(ctx, t); err != nil {
		return nil, err
	}
	if err := d.Link(); err != nil {
		return nil, err
	}
	d.Analyse()
	return d, nil
}

func newReportCmd(configPath *string) *cobra.Command {
	var byName bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Audit the live data and print the issues found",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			d, err := a.audit(cmd.Context(), client, domain.NewClock(time.Now()))
			if err != nil {
				return err
			}

			if byName {
				fmt.Print(d.Ledger().RenderByName())
			} else {
				fmt.Print(d.Ledger().RenderByKind())
			}
			fmt.Print(d.Summary(false))
			return nil
		},
	}
	cmd.Flags().BoolVar(&byName, "by-name", false, "group the report by member instead of by issue")
	return cmd
}

func newFixCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fix",
		Short: "Audit the live data and apply fixable corrections, one confirmation each",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			d, err := a.audit(cmd.Context(), client, domain.NewClock(time.Now()))
			if err != nil {
				return err
			}

			fmt.Print(d.Ledger().RenderByKind())
			if err := d.ApplyFixes(cmd.Context(), client, a.confirm); err != nil {
				return err
			}
			d.Update(cmd.Context(), client)
			fmt.Print(d.Summary(true))
			return nil
		},
	}
}

func newBackupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Snapshot every collection into the encrypted archive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			snap, err := archive.Capture(cmd.Context(), client, a.notifier, time.Now())
			if err != nil {
				return err
			}

			store, err := archive.Open(a.vault)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Save(cmd.Context(), snap); err != nil {
				return err
			}
			a.notifier.Notify("Backup Done.\n")
			return nil
		},
	}
}

func newVerifyCmd(configPath *string) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Audit an archived snapshot instead of the live data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}

			var date time.Time
			if dateFlag != "" {
				date, err = time.Parse(archive.DateFormat, dateFlag)
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
			}

			store, err := archive.Open(a.vault)
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := store.Load(cmd.Context(), date)
			if err != nil {
				return err
			}
			a.notifier.Notify(fmt.Sprintf("Verifying backup from %s...\n", snap.Taken.Format(domain.PrintDateFormat)))

			d, err := a.audit(cmd.Context(), archive.NewPlayback(snap), domain.NewClock(snap.Taken))
			if err != nil {
				return err
			}

			fmt.Print(d.Ledger().RenderByKind())
			fmt.Print(d.Summary(true))
			return nil
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "", "snapshot date (YYYY-MM-DD, default latest)")
	return cmd
}

func newConfigCmd(configPath *string) *cobra.Command {
	var initialise bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
		RunE: func(_ *cobra.Command, _ []string) error {
			path := *configPath
			if path == "" {
				var err error
				path, err = config.Path()
				if err != nil {
					return err
				}
			}

			if !initialise {
				fmt.Printf("Configuration file: %s\n", path)
				return nil
			}

			confirm := &core.ReaderConfirmer{In: os.Stdin, Out: os.Stdout}
			club, ok := confirm.Text("Club name: ")
			if !ok || club == "" {
				return fmt.Errorf("a club name is required")
			}
			if err := config.WriteDefault(path, club); err != nil {
				return err
			}
			fmt.Printf("Created %s - edit it before the first audit.\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&initialise, "init", false, "create a starter configuration")
	return cmd
}
