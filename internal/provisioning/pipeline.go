package provisioning

import (
	"fmt"
	"time"
)

// RunPhases executes phases sequentially and stops at the first failure.
// Hosts named by remote failures are marked failed on ctx.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting %d phases on %d hosts...", len(phases), len(ctx.Hosts))

	for i, phase := range phases {
		if err := ctx.Err(); err != nil {
			ctx.Fail()
			return fmt.Errorf("%s phase not started: %w", phase.Name(), err)
		}

		phaseStart := time.Now()
		obs := ctx.Observer.WithFields(map[string]string{"step": fmt.Sprintf("%d/%d", i+1, len(phases))})
		LogPhaseStart(obs, phase.Name())

		err := phase.Provision(ctx)
		ctx.Metrics.ObserveStage(ctx.Role, phase.Name(), time.Since(phaseStart), err)
		if err != nil {
			LogPhaseFailed(obs, phase.Name(), err)
			var hosts []string
			for _, rerr := range RemoteErrors(err) {
				hosts = append(hosts, rerr.Host)
			}
			ctx.Fail(hosts...)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		LogPhaseComplete(obs, phase.Name(), time.Since(phaseStart))
		ctx.Observer.Progress(ctx.Role, i+1, len(phases))
	}

	ctx.Observer.Printf("Phases completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
