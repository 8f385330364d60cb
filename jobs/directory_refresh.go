// Package jobs holds the background schedules: periodic warming of the
// employee directory cache so logins and name resolution never pay the
// fetch latency.
package jobs

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/antoniovieira1/api-solicitacao-servico/directory"
)

const directoryRefreshSpec = "@every 5m"

// StartDirectoryRefresh warms the directory cache now and keeps it fresh
// on a fixed schedule. The returned cron is already running.
func StartDirectoryRefresh(dir *directory.Client, log *slog.Logger) (*cron.Cron, error) {
	refresh := func() {
		if err := dir.Refresh(); err != nil {
			// The cache keeps serving the previous snapshot.
			log.Warn("directory refresh failed", "error", err)
			return
		}
		log.Debug("directory cache refreshed")
	}
	refresh()

	c := cron.New()
	if _, err := c.AddFunc(directoryRefreshSpec, refresh); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
