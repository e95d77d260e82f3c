// Package moderation owns every transition of a job listing's approval
// status and the reports and appeals that drive it. Each operation runs in one
// store transaction that re-reads the current state, checks the precondition,
// writes the new state and its audit entry. Notifications and translations are
// handed to a dispatcher only after commit.
package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"blue-collar-portal/internal/config"
	"blue-collar-portal/internal/dispatch"
	"blue-collar-portal/internal/domain/audit"
	"blue-collar-portal/internal/domain/notification"
	"blue-collar-portal/internal/domain/risk"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Dispatcher interface {
	Submit(name string, fn dispatch.Task) bool
}

type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type Translator interface {
	Translate(ctx context.Context, text string, langs []string) (map[string]string, error)
}

type ObjectStore interface {
	Put(ctx context.Context, data []byte, contentType, logicalPath string) (string, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, keys []string) error
}

type Deps struct {
	Store      repository.Store
	Risk       risk.Assessor
	Notifier   notification.Sender
	Objects    ObjectStore
	Translator Translator
	Dispatcher Dispatcher
	Locker     Locker
	Logger     *logrus.Logger
	Clock      func() time.Time
}

type Policy struct {
	RiskRejectThreshold       int
	MinReasonLength           int
	MinAppealLength           int
	FanOutLimit               int
	AllowAppealAfterRejection bool
	MaxEvidenceFiles          int

	RiskTimeout    time.Duration
	StorageTimeout time.Duration
	SignedURLTTL   time.Duration
	CascadeLockTTL time.Duration

	Languages []string
}

func DefaultPolicy() Policy {
	return Policy{
		RiskRejectThreshold: 70,
		MinReasonLength:     10,
		MinAppealLength:     50,
		FanOutLimit:         50,
		MaxEvidenceFiles:    5,
		RiskTimeout:         8 * time.Second,
		StorageTimeout:      15 * time.Second,
		SignedURLTTL:        10 * time.Minute,
		CascadeLockTTL:      5 * time.Minute,
	}
}

func PolicyFromConfig(cfg config.Config) Policy {
	p := DefaultPolicy()
	if cfg.Moderation.RiskRejectThreshold > 0 {
		p.RiskRejectThreshold = cfg.Moderation.RiskRejectThreshold
	}
	if cfg.Moderation.MinReasonLength > 0 {
		p.MinReasonLength = cfg.Moderation.MinReasonLength
	}
	if cfg.Moderation.MinAppealLength > 0 {
		p.MinAppealLength = cfg.Moderation.MinAppealLength
	}
	if cfg.Moderation.FanOutLimit > 0 {
		p.FanOutLimit = cfg.Moderation.FanOutLimit
	}
	p.AllowAppealAfterRejection = cfg.Moderation.AllowAppealAfterRejection
	if cfg.Risk.Timeout > 0 {
		p.RiskTimeout = cfg.Risk.Timeout
	}
	if cfg.Storage.Timeout > 0 {
		p.StorageTimeout = cfg.Storage.Timeout
	}
	if cfg.Storage.SignedURLTTL > 0 {
		p.SignedURLTTL = cfg.Storage.SignedURLTTL
	}
	p.Languages = cfg.Translation.Languages
	return p
}

type Engine struct {
	store      repository.Store
	risk       risk.Assessor
	notifier   notification.Sender
	objects    ObjectStore
	translator Translator
	dispatcher Dispatcher
	locker     Locker
	logger     *logrus.Logger
	clock      func() time.Time
	policy     Policy
}

func NewEngine(d Deps, p Policy) *Engine {
	def := DefaultPolicy()
	if p.RiskRejectThreshold <= 0 {
		p.RiskRejectThreshold = def.RiskRejectThreshold
	}
	if p.MinReasonLength <= 0 {
		p.MinReasonLength = def.MinReasonLength
	}
	if p.MinAppealLength <= 0 {
		p.MinAppealLength = def.MinAppealLength
	}
	if p.FanOutLimit <= 0 {
		p.FanOutLimit = def.FanOutLimit
	}
	if p.MaxEvidenceFiles <= 0 {
		p.MaxEvidenceFiles = def.MaxEvidenceFiles
	}
	if p.RiskTimeout <= 0 {
		p.RiskTimeout = def.RiskTimeout
	}
	if p.StorageTimeout <= 0 {
		p.StorageTimeout = def.StorageTimeout
	}
	if p.SignedURLTTL <= 0 {
		p.SignedURLTTL = def.SignedURLTTL
	}
	if p.CascadeLockTTL <= 0 {
		p.CascadeLockTTL = def.CascadeLockTTL
	}

	logger := d.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	dispatcher := d.Dispatcher
	if dispatcher == nil {
		dispatcher = dispatch.Inline{Logger: logger}
	}
	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Engine{
		store:      d.Store,
		risk:       d.Risk,
		notifier:   d.Notifier,
		objects:    d.Objects,
		translator: d.Translator,
		dispatcher: dispatcher,
		locker:     d.Locker,
		logger:     logger,
		clock:      clock,
		policy:     p,
	}
}

func (e *Engine) Policy() Policy { return e.policy }

func (e *Engine) now() time.Time {
	return e.clock().UTC()
}

// effects collects what must happen after a transaction commits.
type effects struct {
	messages     []notification.Message
	translations []translationJob
}

type translationJob struct {
	listingID uuid.UUID
	text      string
}

func (fx *effects) notify(msgs ...notification.Message) {
	for _, m := range msgs {
		if m.UserID == uuid.Nil {
			continue
		}
		fx.messages = append(fx.messages, m)
	}
}

func (fx *effects) translate(listingID uuid.UUID, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	fx.translations = append(fx.translations, translationJob{listingID: listingID, text: text})
}

// inTx runs fn in one transaction and releases its side effects only on
// commit. Store errors come back in this package's taxonomy.
func (e *Engine) inTx(ctx context.Context, fn func(ctx context.Context, r repository.Repositories, fx *effects) error) error {
	fx := &effects{}
	err := e.store.RunInTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		return fn(ctx, r, fx)
	})
	if err != nil {
		return normalizeStoreError(err)
	}
	e.release(fx)
	return nil
}

func (e *Engine) release(fx *effects) {
	if e.notifier != nil {
		for _, m := range fx.messages {
			msg := m
			e.dispatcher.Submit("notify", func(ctx context.Context) error {
				return e.notifier.Send(ctx, msg)
			})
		}
	}

	if e.translator == nil || len(e.policy.Languages) == 0 {
		return
	}
	langs := append([]string(nil), e.policy.Languages...)
	for _, j := range fx.translations {
		job := j
		e.dispatcher.Submit("translate_reason", func(ctx context.Context) error {
			out, err := e.translator.Translate(ctx, job.text, langs)
			if err != nil {
				return err
			}
			return e.store.Repos().Listings.SetReasonTranslations(ctx, job.listingID, job.text, out)
		})
	}
}

func (e *Engine) record(ctx context.Context, r repository.Repositories, actor user.Actor, action audit.ActionType, target audit.TargetType, targetID uuid.UUID, reason, notes string) error {
	entry := &audit.Entry{
		ID:         uuid.New(),
		ActorID:    actor.AuditID(),
		ActorRole:  string(actor.Role),
		Action:     action,
		TargetType: target,
		TargetID:   targetID,
		Reason:     optional(reason),
		Notes:      optional(notes),
		CreatedAt:  e.now(),
	}
	return r.Audit.Record(ctx, entry)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (e *Engine) validReason(reason string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(reason)) >= e.policy.MinReasonLength
}

func (e *Engine) reasonError(field string) error {
	return invalid(ErrInvalidReason, field, fmt.Sprintf("must be at least %d characters", e.policy.MinReasonLength))
}

func requireAdmin(actor user.Actor) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func requireAdminOrSystem(actor user.Actor) error {
	if !actor.IsAdmin() && !actor.IsSystem() {
		return ErrForbidden
	}
	return nil
}
