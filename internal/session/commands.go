package session

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-switcher/internal/delta"
	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// channelPath splits a canonical path and checks its channel.
func channelPath(canonical string, want state.Channel) ([]string, error) {
	path := state.Split(canonical)
	if len(path) < 2 || path[0] != string(want) {
		return nil, fmt.Errorf("%w: %q is not a %s path", ErrWrongChannel, canonical, want)
	}
	return path, nil
}

// SetValue sends a hardware command setting the canonical path to v. The
// path and value are rewritten into the unit's schema first.
//
// It is safe to call from any goroutine except the loop itself.
func (s *Session) SetValue(ctx context.Context, canonical string, v state.Value) error {
	path, err := channelPath(canonical, state.ChannelHardware)
	if err != nil {
		return err
	}

	var payload []byte
	err = s.Do(ctx, func() error {
		rawPath, rawValue := s.store.RawPath(path, v)
		if len(rawPath) == 0 || rawPath[0] != string(state.ChannelHardware) {
			return fmt.Errorf("%w: %q rewrote outside hardware", ErrWrongChannel, canonical)
		}
		var encErr error
		payload, encErr = delta.EncodeSetValue(rawPath[1:], rawValue)
		return encErr
	})
	if err != nil {
		return err
	}

	if err := s.transport.Send(ctx, payload); err != nil {
		return fmt.Errorf("sending set value %s: %w", canonical, err)
	}
	s.opts.logger.Debug("set value sent", "path", canonical)
	return nil
}

// CollectionOp sends a named-verb command (add, remove, replace or toggle)
// for the shared collection at the canonical path. The arguments are
// rewritten as a list addressed at that path.
//
// It is safe to call from any goroutine except the loop itself.
func (s *Session) CollectionOp(ctx context.Context, verb, canonical string, args ...state.Value) error {
	path, err := channelPath(canonical, state.ChannelShared)
	if err != nil {
		return err
	}

	var payload []byte
	err = s.Do(ctx, func() error {
		rawPath, rawArgs := s.store.RawPath(path, state.List(args...))
		if len(rawPath) == 0 || rawPath[0] != string(state.ChannelShared) {
			return fmt.Errorf("%w: %q rewrote outside shared", ErrWrongChannel, canonical)
		}
		items, _ := rawArgs.AsList()
		var encErr error
		payload, encErr = delta.EncodeCollectionOp(verb, rawPath[1:], items)
		return encErr
	})
	if err != nil {
		return err
	}

	if err := s.transport.Send(ctx, payload); err != nil {
		return fmt.Errorf("sending %s %s: %w", verb, canonical, err)
	}
	s.opts.logger.Debug("collection op sent", "verb", verb, "path", canonical, "args", len(args))
	return nil
}

// WriteLocal stores v at a canonical local path and dispatches the change.
//
// It is safe to call from any goroutine except the loop itself.
func (s *Session) WriteLocal(ctx context.Context, canonical string, v state.Value) error {
	path, err := channelPath(canonical, state.ChannelLocal)
	if err != nil {
		return err
	}
	return s.Do(ctx, func() error {
		if err := s.store.Write(path, v); err != nil {
			return err
		}
		s.notify(s.dispatcher.Dispatch(state.Join(path), v, true))
		return nil
	})
}

// CaptureLast returns the latched hardware change in canonical form.
//
// Returns ErrNoCapture when nothing has been latched yet.
func (s *Session) CaptureLast(ctx context.Context) (Captured, error) {
	var captured Captured
	err := s.Do(ctx, func() error {
		raw, ok := s.pipeline.Latch().Last()
		if !ok {
			return ErrNoCapture
		}
		captured.Path, captured.Value = s.store.Canonical(raw.Path, raw.Value)
		return nil
	})
	return captured, err
}

// Read returns the canonical value at a canonical path.
func (s *Session) Read(ctx context.Context, canonical string) (state.Value, error) {
	var v state.Value
	err := s.Do(ctx, func() error {
		v = s.store.Read(state.Split(canonical)).Clone()
		return nil
	})
	return v, err
}

// ReadRaw returns the raw value at a raw path.
func (s *Session) ReadRaw(ctx context.Context, raw string) (state.Value, error) {
	var v state.Value
	err := s.Do(ctx, func() error {
		v = s.store.ReadRaw(state.Split(raw)).Clone()
		return nil
	})
	return v, err
}

// Describe returns the session's Info.
func (s *Session) Describe(ctx context.Context) (Info, error) {
	var info Info
	err := s.Do(ctx, func() error {
		info = s.Info()
		return nil
	})
	return info, err
}

// DerivedOutputs returns a copy of every derived output.
func (s *Session) DerivedOutputs(ctx context.Context) (map[string]state.Value, error) {
	var out map[string]state.Value
	err := s.Do(ctx, func() error {
		out = s.outputs.Snapshot()
		return nil
	})
	return out, err
}
