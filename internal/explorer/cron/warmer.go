// Package cron keeps the snapshot cache warm so the first visitor after a
// TTL expiry does not pay the Postgres round-trips.
package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Warmable is the service surface the warmer drives.
type Warmable interface {
	ProjectSlugs(ctx context.Context) ([]string, error)
	WarmProject(ctx context.Context, slug string) error
	CachedProjectSlugs(ctx context.Context) ([]string, error)
}

type Warmer struct {
	svc      Warmable
	schedule string
	c        *cron.Cron
}

func NewWarmer(svc Warmable, schedule string) *Warmer {
	return &Warmer{svc: svc, schedule: schedule}
}

// Start schedules the warm-up job. A warm pass also runs immediately so the
// cache is populated before the first request.
func (w *Warmer) Start() error {
	w.c = cron.New(cron.WithSeconds())

	if _, err := w.c.AddFunc(w.schedule, w.run); err != nil {
		return err
	}

	log.Printf("Snapshot warmer started (schedule %q)", w.schedule)
	w.c.Start()
	go w.run()
	return nil
}

func (w *Warmer) Stop() {
	if w.c != nil {
		w.c.Stop()
	}
}

func (w *Warmer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	slugs, err := w.svc.ProjectSlugs(ctx)
	if err != nil {
		log.Printf("[warn] operation=snapshot_warm error=%v", err)
		return
	}

	for _, slug := range slugs {
		if err := w.svc.WarmProject(ctx, slug); err != nil {
			log.Printf("[warn] operation=snapshot_warm slug=%s error=%v", slug, err)
		}
	}

	cached, err := w.svc.CachedProjectSlugs(ctx)
	if err != nil {
		log.Printf("[warn] operation=snapshot_warm error=%v", err)
	}
	log.Printf("[info] operation=snapshot_warm projects=%d cached=%d", len(slugs), len(cached))
}
