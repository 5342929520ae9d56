package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-datedots/internal/config"
	"github.com/tartampluch/go-datedots/internal/datedot"
	"github.com/tartampluch/go-datedots/internal/engine"
	"github.com/tartampluch/go-datedots/internal/feed"
	"github.com/tartampluch/go-datedots/internal/i18n"
	"github.com/tartampluch/go-datedots/internal/recurrence"
	"github.com/tartampluch/go-datedots/internal/server"
	"github.com/tartampluch/go-datedots/internal/source"
	"github.com/tartampluch/go-datedots/internal/store"
	"github.com/zalando/go-keyring"
)

var (
	debugMode    bool
	settingsPath string
	logCloser    io.Closer
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "go-datedots",
		Short:         "Track recurring personal dates and serve them as a calendar feed",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logCloser = setupLogging(debugMode)
			logStartupInfo()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				_ = logCloser.Close()
			}
		},
	}

	root.PersistentFlags().BoolVar(&debugMode, config.FlagDebug, false, config.FlagDescDebug)
	root.PersistentFlags().StringVar(&settingsPath, config.FlagConfig, "", config.FlagDescConfig)

	root.AddCommand(syncCmd())
	root.AddCommand(listCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(noteCmd())
	root.AddCommand(removeCmd())
	root.AddCommand(authCmd())
	root.AddCommand(versionCmd())
	return root
}

// -----------------------------------------------------------------------------
// Wiring helpers
// -----------------------------------------------------------------------------

func loadSettings() (*config.Settings, error) {
	path := settingsPath
	if path == "" {
		var err error
		path, err = config.DefaultSettingsPath()
		if err != nil {
			return nil, err
		}
	}
	return config.LoadSettings(path)
}

func openStore(s *config.Settings) (*store.Store, error) {
	path := s.StorePath
	if path == "" {
		var err error
		path, err = config.DefaultStorePath()
		if err != nil {
			return nil, err
		}
	}
	return store.New(path)
}

// syncConfig maps settings onto the engine's sync parameters, resolving the
// CardDAV password from the system keyring in web mode.
func syncConfig(s *config.Settings) engine.SyncConfig {
	cfg := engine.SyncConfig{
		Mode:      s.SourceMode,
		LocalPath: s.LocalPath,
		WebURL:    s.WebURL,
		WebUser:   s.WebUser,
	}
	if s.SourceMode == config.SourceModeWeb && s.WebUser != "" {
		pass, err := keyring.Get(config.KeyringService, s.WebUser)
		if err != nil {
			slog.Debug("Password retrieval failed (might be empty)",
				config.LogKeyComponent, config.CompMain,
				config.LogKeyError, err,
			)
		}
		cfg.WebPass = pass
	}
	return cfg
}

func runSync(ctx context.Context, s *config.Settings, st *store.Store) (engine.Report, error) {
	syncer := &engine.Syncer{
		Clock:   engine.RealClock{},
		Fetcher: engine.NewHTTPFetcher(),
		Store:   st,
	}
	return syncer.RunSync(ctx, syncConfig(s), source.Static(s))
}

// findByPrefix resolves a record by ID prefix, the way the records are
// printed by `list`.
func findByPrefix(records []datedot.Record, prefix string) (datedot.Record, error) {
	for _, rec := range records {
		if strings.HasPrefix(rec.ID, prefix) {
			return rec, nil
		}
	}
	return datedot.Record{}, fmt.Errorf("%s: %s", config.ErrRecordNotFound, prefix)
}

// -----------------------------------------------------------------------------
// Commands
// -----------------------------------------------------------------------------

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Import dates from the configured sources into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			st, err := openStore(s)
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := runSync(cmd.Context(), s, st)
			if err != nil {
				return err
			}

			fmt.Printf("Sync complete: %d created, %d unchanged, %d skipped (of %d candidates)\n",
				report.Created, report.Unchanged, report.Skipped, report.Candidates)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored dates sorted by the next occurrence",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			st, err := openStore(s)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.FetchAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No dates stored yet. Use 'go-datedots sync' to import some.")
				return nil
			}

			now := engine.RealClock{}.Now()
			loc := i18n.New(s.Language)

			type upcoming struct {
				rec datedot.Record
				occ recurrence.Occurrence
			}
			rows := make([]upcoming, 0, len(records))
			for _, rec := range records {
				occ, err := recurrence.Next(rec.Date, now)
				if err != nil {
					// A stored record with an impossible date should not
					// hide the rest of the list.
					slog.Warn(config.MsgSkippedDate,
						config.LogKeyComponent, config.CompMain,
						config.LogKeyName, rec.Name,
						config.LogKeyError, err,
					)
					continue
				}
				rows = append(rows, upcoming{rec: rec, occ: occ})
			}

			sort.Slice(rows, func(i, j int) bool {
				if rows[i].occ.DaysUntil != rows[j].occ.DaysUntil {
					return rows[i].occ.DaysUntil < rows[j].occ.DaysUntil
				}
				return rows[i].rec.Name < rows[j].rec.Name
			})

			for _, row := range rows {
				fmt.Printf("%s  %s  %3dd  %s\n",
					row.rec.ID[:8],
					row.occ.Date.Format(config.DateFormatFullDash),
					row.occ.DaysUntil,
					loc.Summary(row.rec.AbbreviatedName, row.rec.Category, row.occ.Age, row.occ.AgeKnown),
				)
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Sync, then serve the ICS feed on localhost",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			st, err := openStore(s)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()

			// A failed sync should not prevent serving what is already
			// stored.
			if _, err := runSync(ctx, s, st); err != nil {
				slog.Warn(config.MsgSyncFailed,
					config.LogKeyComponent, config.CompMain,
					config.LogKeyError, err,
				)
			}

			records, err := st.FetchAll(ctx)
			if err != nil {
				return err
			}

			builder := &feed.Builder{
				Localizer:       i18n.New(s.Language),
				ReminderTrigger: s.ReminderTrigger,
			}
			data, _, err := builder.Build(records, engine.RealClock{}.Now())
			if err != nil {
				return err
			}

			srv := server.NewFeedServer(s.ServerPort)
			srv.Update(data)
			return srv.Start(ctx)
		},
	}
}

func noteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <id> <gifts|plans|other> [body...]",
		Short: "Read or write a note attached to a record",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			noteType, err := datedot.ParseNoteType(args[1])
			if err != nil {
				return err
			}

			s, err := loadSettings()
			if err != nil {
				return err
			}
			st, err := openStore(s)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.FetchAll(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := findByPrefix(records, args[0])
			if err != nil {
				return err
			}

			if len(args) == 2 {
				for _, note := range rec.Notes {
					if note.Type == noteType {
						fmt.Println(note.Body)
						return nil
					}
				}
				fmt.Printf("No %s note for %s yet.\n", noteType, rec.Name)
				return nil
			}

			body := strings.Join(args[2:], " ")
			if err := st.UpsertNote(cmd.Context(), rec.ID, datedot.Note{Type: noteType, Body: body}); err != nil {
				return err
			}
			fmt.Printf("Saved %s note for %s.\n", noteType, rec.Name)
			return nil
		},
	}
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a record with its address and notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			st, err := openStore(s)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.FetchAll(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := findByPrefix(records, args[0])
			if err != nil {
				return err
			}

			if err := st.Delete(cmd.Context(), rec.ID); err != nil {
				return err
			}
			fmt.Printf("Removed %s (%s).\n", rec.Name, rec.Category)
			return nil
		},
	}
}

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the CardDAV password in the system keyring",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Store the CardDAV password (read from stdin)",
		RunE: func(c *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			if s.WebUser == "" {
				return errors.New(config.ErrWebUserEmpty)
			}

			fmt.Print("Password: ")
			scanner := bufio.NewScanner(os.Stdin)
			if !scanner.Scan() {
				return scanner.Err()
			}
			return keyring.Set(config.KeyringService, s.WebUser, scanner.Text())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored CardDAV password",
		RunE: func(c *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			if s.WebUser == "" {
				return errors.New(config.ErrWebUserEmpty)
			}
			return keyring.Delete(config.KeyringService, s.WebUser)
		},
	})

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show application version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf(config.MsgVersionOutput,
				config.AppName,
				config.Version,
				runtime.GOOS,
				runtime.GOARCH,
			)
		},
	}
}
