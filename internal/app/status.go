package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/raggleton/htcondenser/internal/ctxlog"
	"github.com/raggleton/htcondenser/internal/render"
	"github.com/raggleton/htcondenser/internal/status"
)

// Status is the monitoring tool: it reads the scheduler's node status feed
// and renders it as a styled table, once or continuously.
type Status struct {
	outW     io.Writer
	logger   *slog.Logger
	cfg      *StatusConfig
	renderer *render.Renderer
}

// NewStatus builds the tool, loading style overrides when configured.
func NewStatus(outW io.Writer, cfg *StatusConfig) (*Status, error) {
	styles := render.DefaultStyles()
	if cfg.StylesPath != "" {
		loaded, err := render.LoadStyles(cfg.StylesPath)
		if err != nil {
			return nil, fmt.Errorf("loading styles: %w", err)
		}
		styles = loaded
	}
	return &Status{
		outW:     outW,
		logger:   newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr),
		cfg:      cfg,
		renderer: render.New(styles),
	}, nil
}

// Run renders the feed once, or keeps polling until every node is done when
// follow mode is on.
func (s *Status) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, s.logger)

	if !s.cfg.Follow {
		snap, err := status.ParseFeedFile(s.cfg.FeedPath)
		if err != nil {
			return fmt.Errorf("reading status feed: %w", err)
		}
		s.render(snap)
		return nil
	}

	store := status.NewStore()
	interval := time.Duration(s.cfg.IntervalSeconds) * time.Second
	poller := status.NewPoller(s.cfg.FeedPath, interval, nil, store)
	poller.OnUpdate(s.render)
	return poller.Run(ctx)
}

func (s *Status) render(snap status.Snapshot) {
	if s.cfg.Summary {
		s.renderer.Summary(s.outW, s.cfg.FeedPath, snap)
		return
	}
	s.renderer.Table(s.outW, s.cfg.FeedPath, snap)
}
