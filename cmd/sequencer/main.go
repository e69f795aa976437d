package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pg-sharding/spqr-sequencer/pkg"
	"github.com/pg-sharding/spqr-sequencer/pkg/config"
	"github.com/pg-sharding/spqr-sequencer/pkg/spqrlog"
	"github.com/pg-sharding/spqr-sequencer/pkg/statistics"
	"github.com/pg-sharding/spqr-sequencer/qdb"
	"github.com/pg-sharding/spqr-sequencer/sequencer"
	"github.com/pg-sharding/spqr-sequencer/sequencer/app"
	"github.com/pg-sharding/spqr-sequencer/sequencer/xqdbseq"
)

var (
	cfgPath  string
	logLevel string

	seqStart int64
	seqStep  int64
	count    int

	rootCmd = &cobra.Command{
		Use:   "spqr-sequencer run --config `path-to-config`",
		Short: "spqr-sequencer",
		Long:  "spqr-sequencer hands out unique increasing ids for named sequences",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Version:       pkg.SequencerVersionRevision,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "/etc/spqr/sequencer.yaml", "path to sequencer config file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "overrides log_level from the config file")

	createCmd.Flags().Int64Var(&seqStart, "start", 0, "initial high-water mark, the first issued value is start+1")
	createCmd.Flags().Int64Var(&seqStep, "step", 1000, "number of values claimed per refill")
	nextvalCmd.Flags().IntVarP(&count, "count", "n", 1, "number of values to fetch")

	rootCmd.AddCommand(runCmd, initCmd, createCmd, nextvalCmd, currvalCmd, listCmd)
}

// setup loads the config and prepares logging and statistics.
func setup() (*config.Sequencer, error) {
	if err := config.LoadSequencerCfg(cfgPath); err != nil {
		return nil, errors.Wrap(err, "failed to load sequencer config")
	}
	scfg := config.SequencerConfig()

	if err := spqrlog.ReloadLogger(scfg.LogFileName, scfg.LogLevel, scfg.PrettyLogging); err != nil {
		return nil, errors.Wrap(err, "failed to init logger")
	}
	if logLevel != "" {
		if err := spqrlog.UpdateZeroLogLevel(logLevel); err != nil {
			return nil, errors.Wrap(err, "failed to set log level")
		}
	}
	spqrlog.ReloadSLogger(scfg.LogMinDurationStatementDuration())

	if err := statistics.InitStatisticsStr(scfg.TimeQuantiles); err != nil {
		return nil, errors.Wrap(err, "failed to init statistics")
	}
	return scfg, nil
}

func newManager(ctx context.Context, scfg *config.Sequencer) (qdb.XQDB, *sequencer.Manager, error) {
	db, err := qdb.NewXQDB(ctx, scfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to sequence storage")
	}
	store := xqdbseq.NewRangeStore(db, scfg.MaxAttempts(), scfg.RetryBackoffDuration())
	return db, sequencer.NewManager(db, store, scfg.RegistryStripes, scfg.MaxBatch), nil
}

// withManager runs fn against a manager built from the config and closes
// the storage afterwards.
func withManager(cmd *cobra.Command, fn func(ctx context.Context, mgr *sequencer.Manager) error) error {
	scfg, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	db, mgr, err := newManager(ctx, scfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			spqrlog.Zero.Error().Err(err).Msg("failed to close sequence storage")
		}
	}()
	return fn(ctx, mgr)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run sequencer",
	RunE: func(cmd *cobra.Command, args []string) error {
		scfg, err := setup()
		if err != nil {
			return err
		}

		ctx, cancelCtx := context.WithCancel(context.Background())
		defer cancelCtx()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case s := <-sigs:
					spqrlog.Zero.Info().Str("signal", s.String()).Msg("received signal")

					switch s {
					case syscall.SIGHUP:
						if err := spqrlog.ReloadLogger(scfg.LogFileName, scfg.LogLevel, scfg.PrettyLogging); err != nil {
							spqrlog.Zero.Error().Err(err).Msg("failed to reopen log file")
						}
					case syscall.SIGINT, syscall.SIGTERM:
						cancelCtx()
						return
					}
				}
			}
		}()

		db, mgr, err := newManager(ctx, scfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				spqrlog.Zero.Error().Err(err).Msg("failed to close sequence storage")
			}
		}()

		return app.NewApp(scfg, mgr).Run(ctx)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "create the sequence table if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		scfg, err := setup()
		if err != nil {
			return err
		}
		db, err := qdb.NewXQDB(cmd.Context(), scfg)
		if err != nil {
			return errors.Wrap(err, "failed to connect to sequence storage")
		}
		defer db.Close()

		return errors.Wrap(db.InitSchema(cmd.Context()), "failed to create sequence table")
	},
}

var createCmd = &cobra.Command{
	Use:   "create <sequence>",
	Short: "provision a sequence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(ctx context.Context, mgr *sequencer.Manager) error {
			return mgr.CreateSequence(ctx, args[0], seqStart, seqStep)
		})
	},
}

var nextvalCmd = &cobra.Command{
	Use:   "nextval <sequence>",
	Short: "fetch next values of a sequence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(ctx context.Context, mgr *sequencer.Manager) error {
			vals, err := mgr.NextValList(ctx, args[0], count)
			if err != nil {
				return err
			}
			for _, v := range vals {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		})
	},
}

var currvalCmd = &cobra.Command{
	Use:   "currval <sequence>",
	Short: "show the persisted high-water mark of a sequence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(ctx context.Context, mgr *sequencer.Manager) error {
			v, err := mgr.CurrVal(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list provisioned sequences",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(ctx context.Context, mgr *sequencer.Manager) error {
			seqs, err := mgr.ListSequences(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(seqs)
		})
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		spqrlog.Zero.Fatal().Err(err).Msg("")
	}
}
