package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/fireflow/internal/buildinfo"
	"github.com/dmitrijs2005/fireflow/internal/client/config"
)

// noApp marks commands that run without opening the database.
const noApp = "no-app"

type options struct {
	configFile    string
	dotEnv        string
	dbPath        string
	passphrase    string
	askPassphrase bool
	cipher        string
	devBackend    string
	redisAddr     string
	logLevel      string
	timeout       time.Duration
}

// runtime is shared by every command of one invocation. app is set by the
// root PersistentPreRunE.
type runtime struct {
	opts options
	app  *App
}

func (rt *runtime) close() error {
	if rt.app == nil {
		return nil
	}
	err := rt.app.Close()
	rt.app = nil
	return err
}

// overrides copies the flags that were set explicitly onto the config.
func (rt *runtime) overrides(cmd *cobra.Command) func(*config.Config) {
	return func(c *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("db") {
			c.DatabasePath = rt.opts.dbPath
		}
		if flags.Changed("passphrase") {
			c.Passphrase = rt.opts.passphrase
		}
		if flags.Changed("cipher") {
			c.Cipher = rt.opts.cipher
		}
		if flags.Changed("dev-backend") {
			c.DevelopmentBackend = rt.opts.devBackend
		}
		if flags.Changed("redis-addr") {
			c.RedisAddr = rt.opts.redisAddr
		}
		if flags.Changed("log-level") {
			c.LogLevel = rt.opts.logLevel
		}
		if flags.Changed("timeout") {
			c.OperationTimeout = rt.opts.timeout
		}
	}
}

func skipsApp(cmd *cobra.Command) bool {
	if cmd.Annotations[noApp] != "" || cmd.Name() == "help" {
		return true
	}
	return cmd.HasParent() && cmd.Parent().Name() == "completion"
}

func (rt *runtime) open(cmd *cobra.Command) error {
	if rt.app != nil || skipsApp(cmd) {
		return nil
	}

	cfg, err := config.Load(config.Sources{File: rt.opts.configFile, DotEnv: rt.opts.dotEnv}, rt.overrides(cmd))
	if err != nil {
		return err
	}

	passphrase := []byte(cfg.Passphrase)
	if rt.opts.askPassphrase {
		passphrase, err = GetPassword(cmd.ErrOrStderr(), "Passphrase")
		if err != nil {
			return fmt.Errorf("failed to read passphrase: %w", err)
		}
	}

	app, err := NewApp(cmd.Context(), cfg, passphrase, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	rt.app = app
	return nil
}

func newRootCommand(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "fireflow",
		Short:         "Local preferences and accounts of the fireflow client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.open(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&rt.opts.configFile, "config", "c", "", "config file, JSON or YAML")
	f.StringVar(&rt.opts.dotEnv, "env-file", ".env", "dotenv file, ignored when missing")
	f.StringVar(&rt.opts.dbPath, "db", "", "database file")
	f.StringVarP(&rt.opts.passphrase, "passphrase", "p", "", "passphrase protecting the secured tier")
	f.BoolVarP(&rt.opts.askPassphrase, "ask-passphrase", "P", false, "prompt for the passphrase")
	f.StringVar(&rt.opts.cipher, "cipher", "", "cipher for new keys (aes256-gcm, xchacha20-poly1305)")
	f.StringVar(&rt.opts.devBackend, "dev-backend", "", "development tier backend (sqlite, memory, redis)")
	f.StringVar(&rt.opts.redisAddr, "redis-addr", "", "redis address for the redis backend")
	f.StringVar(&rt.opts.logLevel, "log-level", "", "debug, info, warn or error")
	f.DurationVar(&rt.opts.timeout, "timeout", 0, "timeout of one storage operation")

	addCommands(root, rt)
	root.AddCommand(shellCmd(rt), versionCmd())
	return root
}

// addCommands attaches the storage commands. The shell reuses it to build a
// fresh tree per line.
func addCommands(parent *cobra.Command, rt *runtime) {
	parent.AddCommand(prefsCmd(rt), accountsCmd(rt), usersCmd(rt))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Annotations: map[string]string{noApp: "true"},
		Args:        cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	rt := &runtime{}
	defer rt.close()
	return newRootCommand(rt).ExecuteContext(ctx)
}
