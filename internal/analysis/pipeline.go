package analysis

import (
	"time"

	"go.uber.org/zap"
)

// Run executes every stage in order over the loaded files.
func (c *Context) Run() {
	c.stage("partition", c.Partition)
	c.log.Debug("sessions collected",
		zap.Int("sessions", len(c.sessions)),
		zap.Int("ignored_lines", len(c.ignored)))

	c.stage("tag", c.Tag)
	c.stage("call numbers", c.ExtractCallNumbers)
	c.stage("classify", c.Classify)
}

func (c *Context) stage(name string, fn func()) {
	start := time.Now()
	fn()
	c.log.Info("stage complete",
		zap.String("stage", name),
		zap.Duration("elapsed", time.Since(start)))
}
