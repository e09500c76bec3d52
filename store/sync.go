package store

import (
	"context"
	"time"

	"github.com/vividtools/vivid-ide/pkg/profiling"
	"github.com/vividtools/vivid-ide/pkg/runtime"
)

// Initialize connects the store to the runtime: it wires the event stream,
// polls readiness (100ms interval, 3s timeout by default), performs one full
// refresh once the runtime answers ready, and starts the steady-state
// reconciliation poll. Event delivery is best effort; the reconciliation
// poll re-fetches compile status and selection so a missed event heals
// within one interval.
func (s *Store) Initialize(ctx context.Context) {
	events, err := s.client.Bridge().Subscribe(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Event subscription failed, relying on polling")
	} else {
		go s.consumeEvents(ctx, events)
	}

	if s.pollReady(ctx) {
		s.Set(Partial{RuntimeReady: Ptr(true)})
		s.RefreshAll(ctx)
	} else {
		s.logger.Warn("Runtime did not become ready within the poll window")
	}

	if s.reconcileInterval > 0 {
		go s.reconcileLoop(ctx)
	}
}

// pollReady asks the runtime for readiness at the configured interval until
// it answers true or the timeout elapses.
func (s *Store) pollReady(ctx context.Context) bool {
	interval := time.Duration(s.readyPollInterval) * time.Millisecond
	deadline := time.Now().Add(time.Duration(s.readyTimeout) * time.Millisecond)

	for {
		ready, err := s.client.IsReady(ctx)
		if err != nil {
			s.logger.WithError(err).Debug("Readiness check failed")
		} else if ready {
			return true
		}

		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
}

func (s *Store) consumeEvents(ctx context.Context, events <-chan runtime.Event) {
	for ev := range events {
		s.handleEvent(ctx, ev)
		if s.relay != nil {
			s.relay(ev)
		}
	}
}

func (s *Store) handleEvent(ctx context.Context, ev runtime.Event) {
	switch ev.Name {
	case runtime.EventInitialized:
		payload, err := ev.DecodeInitialized()
		if err != nil {
			s.logger.WithError(err).Warn("Bad initialized payload")
			return
		}
		s.Set(Partial{
			RuntimeReady:  Ptr(true),
			ProjectLoaded: Ptr(payload.ProjectLoaded),
		})
		s.RefreshAll(ctx)

	case runtime.EventProjectLoaded:
		payload, err := ev.DecodeInitialized()
		if err != nil {
			s.logger.WithError(err).Warn("Bad project-loaded payload")
			return
		}
		p := Partial{ProjectLoaded: Ptr(payload.ProjectLoaded)}
		if payload.ProjectPath != "" {
			p.ProjectPath = Ptr(payload.ProjectPath)
		}
		s.Set(p)
		s.RefreshAll(ctx)

	case runtime.EventCompileStatus:
		status, err := ev.DecodeCompileStatus()
		if err != nil {
			s.logger.WithError(err).Warn("Bad compile-status payload")
			return
		}
		s.Set(Partial{CompileStatus: &status})
		// A successful compile may have changed the chain, so re-sync the
		// operator list and the selected operator's parameters.
		if status.Success {
			s.RefreshOperators(ctx)
			s.refreshSelectedParams(ctx)
		}

	case runtime.EventOperatorSelected:
		payload, err := ev.DecodeOperatorSelected()
		if err != nil {
			s.logger.WithError(err).Warn("Bad operator-selected payload")
			return
		}
		s.adoptSelection(ctx, payload.Name)
	}
}

// reconcileLoop re-fetches compile status and runtime selection on a timer.
func (s *Store) reconcileLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(s.reconcileInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if status, err := s.client.CompileStatus(ctx); err != nil {
			s.logger.WithError(err).Debug("Compile status poll failed")
		} else {
			s.Set(Partial{CompileStatus: &status})
		}

		if name, err := s.client.SelectedOperator(ctx); err != nil {
			s.logger.WithError(err).Debug("Selection poll failed")
		} else if name != s.Get().SelectedOperator {
			s.adoptSelection(ctx, name)
		}
	}
}

// SelectOperator records the selection locally, fetches the operator's
// parameters, then informs the runtime. Selecting the already-selected
// operator is a no-op and issues no fetch. A fetch failure clears the
// parameter list rather than leaving another operator's values behind.
func (s *Store) SelectOperator(ctx context.Context, name string) {
	if s.Get().SelectedOperator == name {
		return
	}

	s.applySelection(ctx, name)

	if err := s.client.SelectOperator(ctx, name); err != nil {
		s.logger.WithError(err).WithField("operator", name).
			Warn("Failed to inform runtime of selection")
	}
}

// adoptSelection applies a selection that originated in the runtime, so it
// is not echoed back.
func (s *Store) adoptSelection(ctx context.Context, name string) {
	if s.Get().SelectedOperator == name {
		return
	}
	s.applySelection(ctx, name)
}

// applySelection updates the local selection and fetches its parameters.
// The fetch is tagged with the selection name; a result whose tag no longer
// matches the current selection is discarded, so a slow fetch cannot
// overwrite a newer selection's parameters.
func (s *Store) applySelection(ctx context.Context, name string) {
	s.selMu.Lock()
	s.selTag = name
	s.selMu.Unlock()

	s.Set(Partial{SelectedOperator: Ptr(name)})

	if name == "" {
		s.Set(Partial{SelectedOperatorParams: Ptr([]runtime.ParamInfo{})})
		return
	}

	params, err := s.client.OperatorParams(ctx, name)
	if err != nil {
		s.logger.WithError(err).WithField("operator", name).
			Warn("Parameter fetch failed")
		params = []runtime.ParamInfo{}
	}

	s.selMu.Lock()
	stale := s.selTag != name
	s.selMu.Unlock()
	if stale {
		return
	}
	s.Set(Partial{SelectedOperatorParams: &params})
}

// refreshSelectedParams re-fetches the current selection's parameters.
func (s *Store) refreshSelectedParams(ctx context.Context) {
	name := s.Get().SelectedOperator
	if name == "" {
		return
	}

	params, err := s.client.OperatorParams(ctx, name)
	if err != nil {
		s.logger.WithError(err).WithField("operator", name).
			Warn("Parameter refresh failed")
		return
	}

	s.selMu.Lock()
	stale := s.selTag != "" && s.selTag != name
	s.selMu.Unlock()
	if stale || s.Get().SelectedOperator != name {
		return
	}
	s.Set(Partial{SelectedOperatorParams: &params})
}

// RefreshAll re-syncs the full state from the runtime. Each fetch logs its
// own failure and leaves the previous value in place, so one failing call
// does not block the rest.
func (s *Store) RefreshAll(ctx context.Context) {
	defer profiling.Start("store.refresh_all").Stop()

	if info, err := s.client.ProjectInfo(ctx); err != nil {
		s.logger.WithError(err).Warn("Project info fetch failed")
	} else {
		s.Set(Partial{
			ProjectLoaded: Ptr(info.Loaded),
			ProjectPath:   Ptr(info.ProjectPath),
			ChainPath:     Ptr(info.ChainPath),
		})
	}

	if status, err := s.client.CompileStatus(ctx); err != nil {
		s.logger.WithError(err).Warn("Compile status fetch failed")
	} else {
		s.Set(Partial{CompileStatus: &status})
	}

	s.RefreshOperators(ctx)

	if name, err := s.client.SelectedOperator(ctx); err != nil {
		s.logger.WithError(err).Warn("Selection fetch failed")
	} else if name != s.Get().SelectedOperator {
		s.adoptSelection(ctx, name)
	} else {
		s.refreshSelectedParams(ctx)
	}

	s.RefreshPerformanceStats(ctx)
}

// RefreshOperators re-fetches the operator chain.
func (s *Store) RefreshOperators(ctx context.Context) {
	ops, err := s.client.Operators(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Operator list fetch failed")
		return
	}
	s.Set(Partial{Operators: &ops})
}

// RefreshPerformanceStats re-fetches the rolling performance snapshot.
func (s *Store) RefreshPerformanceStats(ctx context.Context) {
	stats, err := s.client.PerformanceStats(ctx)
	if err != nil {
		s.logger.WithError(err).Debug("Performance stats fetch failed")
		return
	}
	s.Set(Partial{PerformanceStats: &stats})
}

// Client exposes the runtime client for panels issuing direct commands
// (set_param, file IO, input forwarding).
func (s *Store) Client() *runtime.Client {
	return s.client
}
