package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Makepad-fr/tada/internal/cachemanager"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/registry"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/memstore"
	"github.com/Makepad-fr/tada/internal/store/sqlitestore"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Exit codes: 0 ok, 1 error, 2 usage (bad arguments, rejected input, unknown list).
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError marks errors caused by how the command was invoked.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// app is the state shared by subcommands for one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	reg     *registry.Registry
	cleanup []func()
}

// NewRootCommand builds the command tree. Each call is independent,
// so tests can run several invocations in one process.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "todo",
		Short: "priority to-do lists",
		Long: `todo - priority to-do lists

Create a list, add items tagged low/medium/high (baixa/média/alta),
and come back to it later with its id.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return usagef("missing subcommand")
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usagef("%v", err)
	})

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: .tada/config.yaml or ~/.config/tada/config.yaml)")
	flags.String("store", "", "storage backend: memory, json or sqlite")
	flags.String("data", "", "data file for the json or sqlite backend")
	flags.String("locale", "", "priority labels: pt (baixa/média/alta) or en")
	flags.String("theme", "", "output theme: classic, neon or mono")
	flags.Bool("debug", false, "write a debug log (also TADA_DEBUG=1)")

	_ = a.v.BindPFlag("store.backend", flags.Lookup("store"))
	_ = a.v.BindPFlag("store.path", flags.Lookup("data"))
	_ = a.v.BindPFlag("ui.locale", flags.Lookup("locale"))
	_ = a.v.BindPFlag("ui.theme", flags.Lookup("theme"))
	_ = a.v.BindPFlag("log.debug", flags.Lookup("debug"))

	root.AddCommand(
		newNewCommand(a),
		newAddCommand(a),
		newShowCommand(a),
		newUICommand(a),
		newConfigCommand(a),
	)
	return root
}

// loadConfig reads configuration and applies presentation settings.
func (a *app) loadConfig() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	ui.SetTheme(cfg.UI.Theme)

	if cfg.Log.Debug || os.Getenv("TADA_DEBUG") != "" {
		closeLog, err := log.Init(cfg.Log.Path)
		if err != nil {
			return err
		}
		a.cleanup = append(a.cleanup, closeLog)
	}
	return nil
}

// open loads configuration and builds the registry over the configured store.
func (a *app) open() error {
	if err := a.loadConfig(); err != nil {
		return err
	}

	s, err := openStore(a.cfg)
	if err != nil {
		return err
	}

	var opts []registry.Option
	if a.cfg.Cache.TTL > 0 {
		c := cachemanager.NewInMemoryCacheManager[model.ListID, model.List]("lists", a.cfg.Cache.TTL, a.cfg.Cache.CleanupInterval)
		opts = append(opts, registry.WithCache(c, a.cfg.Cache.TTL))
	}
	a.reg = registry.New(s, opts...)
	log.Debug(log.CatCLI, "registry ready", "backend", a.cfg.Store.Backend, "cache_ttl", a.cfg.Cache.TTL.String())
	return nil
}

func openStore(cfg config.Config) (store.Store, error) {
	if cfg.Store.Backend == store.BackendMemory {
		return memstore.New(), nil
	}
	path, err := cfg.DataPath()
	if err != nil {
		return nil, err
	}
	switch cfg.Store.Backend {
	case store.BackendSQLite:
		return sqlitestore.Open(path)
	default:
		return jsonstore.Open(path)
	}
}

func (a *app) close() {
	if a.reg != nil {
		if err := a.reg.Close(); err != nil {
			log.ErrorErr(log.CatCLI, "closing store", err)
		}
		a.reg = nil
	}
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

// withRegistry wraps a RunE that needs the registry.
func (a *app) withRegistry(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(); err != nil {
			return err
		}
		defer a.close()
		return run(cmd, args)
	}
}

// minArgs and exactArgs report arity problems as usage errors.
func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < n {
			return usagef("usage: %s", usage)
		}
		return nil
	}
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: %s", usage)
		}
		return nil
	}
}

// parseListID rejects malformed ids up front. They were never issued,
// so they are reported the same way as unknown ones.
func parseListID(s string) (model.ListID, error) {
	id := model.ListID(s)
	if !id.IsValid() {
		return "", &model.NotFoundError{ID: id}
	}
	return id, nil
}

// ExitCode maps an error returned by the command tree to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ue *usageError
	if errors.As(err, &ue) || model.IsValidation(err) || model.IsNotFound(err) {
		return ExitUsage
	}
	return ExitError
}

// asUsage turns cobra's own dispatch errors into usage errors.
func asUsage(err error) error {
	if err != nil && strings.HasPrefix(err.Error(), "unknown command") {
		return &usageError{msg: err.Error()}
	}
	return err
}

// Run executes the command tree with args and returns an exit code.
func Run(args []string) int {
	return Execute(args, os.Stdout, os.Stderr)
}

// Execute runs one invocation writing to out and errOut.
// Errors are printed to errOut.
func Execute(args []string, out, errOut io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	return report(root, asUsage(root.Execute()))
}

func report(root *cobra.Command, err error) int {
	if err != nil {
		ui.Fail(root.ErrOrStderr(), err.Error())
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(root.ErrOrStderr(), ui.Current().Muted.Render("Hint: run `todo --help`"))
		}
	}
	return ExitCode(err)
}
