package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
	"github.com/Togather-Foundation/dashlog/internal/storage/memory"
	"github.com/rs/zerolog"
)

var errBackendDown = errors.New("backend down")

// brokenRepository fails every operation.
type brokenRepository struct{}

func (brokenRepository) Init(context.Context) error { return errBackendDown }
func (brokenRepository) Insert(context.Context, entries.Entry) (entries.Entry, error) {
	return entries.Entry{}, errBackendDown
}
func (brokenRepository) List(context.Context) ([]entries.Entry, error) { return nil, errBackendDown }
func (brokenRepository) Clear(context.Context) (int64, error)          { return 0, errBackendDown }
func (brokenRepository) Count(context.Context) (int64, error)          { return 0, errBackendDown }
func (brokenRepository) Backend() string                               { return "broken" }

func newMemoryStore(t *testing.T) *entries.Store {
	t.Helper()
	return entries.NewStore(memory.NewEntryRepository(), time.UTC, zerolog.Nop())
}

func newBrokenStore(t *testing.T) *entries.Store {
	t.Helper()
	return entries.NewStore(brokenRepository{}, time.UTC, zerolog.Nop())
}
