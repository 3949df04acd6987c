package handler

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"health-companion-api/internal/api"
	"health-companion-api/internal/auth"
	"health-companion-api/internal/clock"
	"health-companion-api/internal/store"
)

// Archiver keeps a copy of exported files (see internal/archive).
type Archiver interface {
	Archive(ctx context.Context, key string, body []byte) error
}

type Handler struct {
	store    store.Store
	issuer   *auth.Issuer
	clock    clock.Clock
	loc      *time.Location
	archiver Archiver
	logger   *log.Logger
	newID    func() string
}

var _ api.HealthServiceServer = (*Handler)(nil)

type Option func(*Handler)

func WithClock(c clock.Clock) Option { return func(h *Handler) { h.clock = c } }

// WithLocation sets the canonical zone for local dates and next-dose times.
func WithLocation(loc *time.Location) Option { return func(h *Handler) { h.loc = loc } }

func WithArchiver(a Archiver) Option { return func(h *Handler) { h.archiver = a } }

func WithLogger(l *log.Logger) Option { return func(h *Handler) { h.logger = l } }

func New(st store.Store, issuer *auth.Issuer, opts ...Option) *Handler {
	h := &Handler{
		store:  st,
		issuer: issuer,
		clock:  clock.New(),
		loc:    time.UTC,
		logger: log.New(io.Discard, "", 0),
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// caller is the callable-function auth check: no identity, no call.
func caller(ctx context.Context, msg string) (string, error) {
	uid, ok := auth.Caller(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, msg)
	}
	return uid, nil
}

// internal re-signals a storage failure with its message.
func internal(err error) error {
	return status.Error(codes.Internal, err.Error())
}
