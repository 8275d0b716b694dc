package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/marcus/sbx/internal/api"
	"github.com/marcus/sbx/internal/app"
	"github.com/marcus/sbx/internal/config"
	"github.com/marcus/sbx/internal/db"
	"github.com/marcus/sbx/internal/session"
)

const logFileName = "sbx.log"

// env is everything a command needs, opened from the data directory.
type env struct {
	dir     string
	cfg     *config.Config
	sess    *session.Session
	app     *app.App
	logger  *slog.Logger
	logFile *os.File
	prev    *slog.Logger
}

// getBaseDir returns the data directory
func getBaseDir() string {
	if baseDir != "" {
		return baseDir
	}
	return config.DefaultDir()
}

// openEnv loads config and session, opens the cache and the log file, and
// builds the app.
func openEnv() (*env, error) {
	dir := getBaseDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	e := &env{dir: dir, cfg: cfg, prev: slog.Default()}
	if err := e.openLog(); err != nil {
		return nil, err
	}

	sess, err := session.GetOrCreate(dir)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.sess = sess
	e.logger = e.logger.With("session", sess.ID)
	slog.SetDefault(e.logger)

	cache, err := db.Open(dir)
	if err != nil {
		e.Close()
		return nil, err
	}

	token := cfg.Token
	if token == "" {
		token = sess.Token
	}
	var opts []api.Option
	if cfg.RequestTimeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.RequestTimeout))
	}
	if version != "" {
		opts = append(opts, api.WithUserAgent("sbx/"+version))
	}

	a, err := app.New(app.Deps{
		BaseDir: dir,
		Config:  cfg,
		API:     api.New(cfg.APIURL, token, opts...),
		Cache:   cache,
		Session: sess,
		Logger:  e.logger,
	})
	if err != nil {
		cache.Close()
		e.Close()
		return nil, err
	}
	e.app = a
	return e, nil
}

func (e *env) openLog() error {
	f, err := os.OpenFile(filepath.Join(e.dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	level := e.cfg.SlogLevel()
	if debug {
		level = slog.LevelDebug
	}
	e.logFile = f
	e.logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(e.logger)
	return nil
}

// Close shuts the app down and restores the default logger.
func (e *env) Close() {
	if e.app != nil {
		if err := e.app.Shutdown(); err != nil {
			e.logger.Warn("shutdown", "err", err)
		}
	}
	if e.prev != nil {
		slog.SetDefault(e.prev)
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
}
