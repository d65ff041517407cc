// Package view turns a fetch.State into output by choosing one of three
// rendering variants: loading, error, or success.
package view

import (
	"encoding/json"

	"github.com/rshade/agentview/internal/fetch"
)

// Renderer produces output of type T for each fetch variant.
type Renderer[T any] interface {
	Loading() T
	Error(err error) T
	Success(data json.RawMessage) T
}

// Component renders a resolved payload. It is what a Renderer delegates to
// in its Success variant.
type Component[T any] func(data json.RawMessage) T

// Delegate picks the variant for state and renders it with r.
func Delegate[T any](state fetch.State, r Renderer[T]) T {
	switch state.Status() {
	case fetch.StatusSuccess:
		return r.Success(state.Data)
	case fetch.StatusError:
		return r.Error(state.Err)
	default:
		return r.Loading()
	}
}

// Funcs adapts three functions to a Renderer. Nil functions yield the zero
// value of T.
type Funcs[T any] struct {
	OnLoading func() T
	OnError   func(err error) T
	OnSuccess Component[T]
}

// Loading implements Renderer.
func (f Funcs[T]) Loading() T {
	var zero T
	if f.OnLoading == nil {
		return zero
	}
	return f.OnLoading()
}

// Error implements Renderer.
func (f Funcs[T]) Error(err error) T {
	var zero T
	if f.OnError == nil {
		return zero
	}
	return f.OnError(err)
}

// Success implements Renderer.
func (f Funcs[T]) Success(data json.RawMessage) T {
	var zero T
	if f.OnSuccess == nil {
		return zero
	}
	return f.OnSuccess(data)
}
