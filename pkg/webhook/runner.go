package webhook

import (
	"context"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Runner executes the deploy script in the background, one run at a time.
type Runner struct {
	script  string
	timeout time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

func NewRunner(script string, timeout time.Duration, log *zap.Logger) *Runner {
	return &Runner{script: script, timeout: timeout, log: log}
}

// Trigger starts a run and reports false when one is already in progress.
func (r *Runner) Trigger(ref, commit string) bool {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return false
	}
	r.running = true
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
		}()
		r.run(ref, commit)
	}()
	return true
}

func (r *Runner) run(ref, commit string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	log := r.log.With(zap.String("ref", ref), zap.String("commit", commit))
	log.Info("deploy started", zap.String("script", r.script))
	start := time.Now()

	cmd := exec.CommandContext(ctx, r.script)
	cmd.Env = append(cmd.Environ(), "DEPLOY_REF="+ref, "DEPLOY_COMMIT="+commit)
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("deploy failed", zap.Error(err), zap.Duration("took", time.Since(start)), zap.ByteString("output", out))
		return
	}
	log.Info("deploy finished", zap.Duration("took", time.Since(start)), zap.ByteString("output", out))
}

// Wait blocks until the current run, if any, has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
