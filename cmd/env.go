package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/vimgym/internal/config"
	"github.com/zjrosen/vimgym/internal/content"
	"github.com/zjrosen/vimgym/internal/flags"
	"github.com/zjrosen/vimgym/internal/infrastructure/sqlite"
	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/mode"
	"github.com/zjrosen/vimgym/internal/paths"
	"github.com/zjrosen/vimgym/internal/progress"
	"github.com/zjrosen/vimgym/internal/session"
	"github.com/zjrosen/vimgym/internal/tracing"
	"github.com/zjrosen/vimgym/internal/ui/markdown"
	"github.com/zjrosen/vimgym/internal/ui/styles"
	vguser "github.com/zjrosen/vimgym/internal/user"
)

// defaultUsername is used when neither the flag, the config nor the OS
// names a learner.
const defaultUsername = "learner"

// environment is everything a command needs, opened in dependency order
// and closed in reverse.
type environment struct {
	cfg      config.Config
	cfgPath  string
	dataDir  string
	flags    *flags.Registry
	tracing  *tracing.Provider
	registry *content.Registry
	db       *sqlite.DB
	users    *vguser.Manager
	user     *vguser.User
	tracker  *progress.Tracker
	sessions *session.Manager

	closers []func()
}

// openEnvironment loads config, logging, tracing, lessons and the
// database. With login set it also logs the learner in and loads their
// progress.
func openEnvironment(ctx context.Context, login bool) (_ *environment, err error) {
	env := &environment{}
	defer func() {
		if err != nil {
			env.Close()
		}
	}()

	env.cfg, env.cfgPath, err = config.Load(newViper(), cfgFile)
	if err != nil {
		return nil, err
	}
	env.dataDir = paths.ResolveDataDir(env.cfg.DataDir)
	if err := os.MkdirAll(env.dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	if debug || log.EnabledFromEnv() {
		closeLog, err := log.Init(paths.DebugLog(env.dataDir))
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, closeLog)
	}
	env.flags = flags.New(env.cfg.Flags)

	tcfg := tracing.DefaultConfig()
	tcfg.Enabled = env.cfg.Tracing.Enabled
	if env.cfg.Tracing.Exporter != "" {
		tcfg.Exporter = env.cfg.Tracing.Exporter
	}
	tcfg.FilePath = paths.ExpandHome(env.cfg.Tracing.FilePath)
	if tcfg.FilePath == "" {
		tcfg.FilePath = paths.Traces(env.dataDir)
	}
	tcfg.OTLPEndpoint = env.cfg.Tracing.OTLPEndpoint
	tcfg.SampleRate = env.cfg.Tracing.SampleRate
	env.tracing, err = tracing.NewProvider(tcfg)
	if err != nil {
		return nil, fmt.Errorf("start tracing: %w", err)
	}
	env.closers = append(env.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := env.tracing.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Failed to flush traces", err)
		}
	})

	var opts []content.Option
	if dir := env.cfg.Content.UserDir; dir != "" {
		env.cfg.Content.UserDir = paths.ExpandHome(dir)
		opts = append(opts, content.WithUserDir(env.cfg.Content.UserDir))
	}
	env.registry, err = content.NewRegistry(opts...)
	if err != nil {
		return nil, err
	}
	env.closers = append(env.closers, env.registry.Close)

	env.db, err = sqlite.NewDB(paths.Database(env.dataDir), sqlite.WithTracer(env.tracing.Tracer()))
	if err != nil {
		return nil, err
	}
	env.closers = append(env.closers, func() { _ = env.db.Close() })
	env.users = vguser.NewManager(env.db.UserRepository(), nil)
	env.sessions = session.NewManager(env.db.SessionRepository(), nil)

	if days := env.cfg.Session.MaxAgeDays; days > 0 {
		if _, err := env.sessions.CleanupOld(ctx, time.Duration(days)*24*time.Hour); err != nil {
			log.ErrorErr(log.CatSession, "Session cleanup failed", err)
		}
	}

	if !login {
		return env, nil
	}
	u, created, err := env.users.LoginOrCreate(ctx, env.username())
	if err != nil {
		return nil, fmt.Errorf("log in: %w", err)
	}
	if created {
		log.Info(log.CatSession, "Created learner", "user", u.Username)
	}
	env.user = u
	env.tracker, err = progress.Load(ctx, env.db.ProgressRepository(), env.registry, u.ID, nil)
	if err != nil {
		return nil, err
	}
	return env, nil
}

// newViper returns the config defaults with --user bound over the user
// key.
func newViper() *viper.Viper {
	v := config.NewViper()
	if err := v.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user")); err != nil {
		log.Warn(log.CatConfig, "Ignoring --user", "error", err)
	}
	return v
}

// username picks the learner: --user or the config, then the OS account
// when it is a valid username.
func (e *environment) username() string {
	if e.cfg.User != "" {
		return e.cfg.User
	}
	if u, err := user.Current(); err == nil && vguser.ValidateUsername(u.Username) == nil {
		return u.Username
	}
	return defaultUsername
}

// services builds the screen dependencies. It needs a logged-in learner.
func (e *environment) services() (mode.Services, error) {
	if e.user == nil {
		return mode.Services{}, errors.New("no learner logged in")
	}
	theme, err := styles.NewTheme(styles.ThemeConfig{
		Preset: e.cfg.Theme.Preset,
		Mode:   e.cfg.Theme.Mode,
		Colors: e.cfg.Theme.FlattenedColors(),
	})
	if err != nil {
		return mode.Services{}, fmt.Errorf("theme: %w", err)
	}
	md, err := markdown.New(e.cfg.UI.MarkdownStyle)
	if err != nil {
		return mode.Services{}, fmt.Errorf("markdown: %w", err)
	}
	return mode.Services{
		Config:   &e.cfg,
		Flags:    e.flags,
		Theme:    theme,
		Markdown: md,
		Registry: e.registry,
		Tracker:  e.tracker,
		Sessions: e.sessions,
		Users:    e.users,
		User:     e.user,
		Tracer:   e.tracing.Tracer(),
	}, nil
}

// Close releases everything in reverse order of opening.
func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}
