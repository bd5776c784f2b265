package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"

	"github.com/mcncl/objgen/internal/errors"
)

// WatchCmd regenerates output each time the input file changes.
type WatchCmd struct {
	GenerateCmd `embed:""`
}

func (c *WatchCmd) Run(env *Env) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.watch(ctx, env)
}

// watch generates once, then again on every write to the input file, until
// ctx is done. Generation errors are reported and do not stop the watch.
func (c *WatchCmd) watch(ctx context.Context, env *Env) error {
	if c.Input == "" {
		return errors.NewInputError("watch needs an input file: pass --input", errors.ErrNoInput)
	}

	s, err := c.setup(ctx, env, c.overrides())
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewInputError("failed to start file watcher", err)
	}
	defer func() {
		_ = w.Close()
	}()

	// Editors often save by renaming a temporary file over the original,
	// which drops a watch on the file itself.
	target, err := filepath.Abs(c.Input)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("invalid input path '%s'", c.Input), errors.ErrInvalidFilePath)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return errors.NewInputError(fmt.Sprintf("failed to watch '%s'", c.Input), err)
	}

	c.regenerate(ctx, s, env)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.logger.Debug("input changed", "path", ev.Name, "op", ev.Op.String())
			c.regenerate(ctx, s, env)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "error", err)
		}
	}
}

func (c *WatchCmd) regenerate(ctx context.Context, s *session, env *Env) {
	input, err := readInput(c.Input, nil)
	if err == nil {
		var code string
		code, err = s.generate(ctx, input)
		if err == nil {
			err = writeOutput(c.Output, code, env)
		}
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "%s\n", errors.UserFriendlyError(err))
	}
}
