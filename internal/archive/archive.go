// Package archive moves records between their live table and the matching
// archived_* table. Every move runs in one transaction together with its
// audit entry, so an id is always in exactly one of the two tables.
package archive

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/database"
	"baby-bliss/internal/models"

	"gorm.io/gorm"
)

type Kind string

const (
	Clients  Kind = "clients"
	Bookings Kind = "bookings"
	Payments Kind = "payments"
	Expenses Kind = "expenses"
	Messages Kind = "messages"
)

// Meta describes who archives a record and why.
type Meta struct {
	Reason string
	Actor  database.Actor
}

// Result identifies both sides of a move.
type Result struct {
	Kind       Kind   `json:"kind"`
	OriginalID uint   `json:"original_id"`
	ArchivedID uint   `json:"archived_id"`
	Label      string `json:"label"`
	Children   int    `json:"children"`
}

// Rules carries the booking limits a restore must respect. A zero
// MaxPerDay skips the capacity check.
type Rules struct {
	MaxPerDay int
}

type ListQuery struct {
	Page   database.Page
	Search string
}

type handler interface {
	resource() string
	archive(tx *gorm.DB, id uint, m Meta, at time.Time) (Result, error)
	restore(tx *gorm.DB, archivedID uint, rules Rules) (Result, error)
	purge(tx *gorm.DB, archivedID uint) (Result, error)
	list(db *gorm.DB, q ListQuery) (any, int64, error)
}

var registry = map[Kind]handler{
	Clients:  clientHandler{},
	Bookings: bookingHandler{},
	Payments: paymentHandler{},
	Expenses: expenseHandler{},
	Messages: messageHandler{},
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[k]; !ok {
		return "", apperr.InvalidInput(fmt.Sprintf("unknown archive kind %q", s))
	}
	return k, nil
}

func Kinds() []Kind {
	return []Kind{Clients, Bookings, Payments, Expenses, Messages}
}

// Archive snapshots the live record into its archive table, cascades to
// dependent rows and removes the original.
func Archive(db *gorm.DB, kind Kind, id uint, m Meta) (Result, error) {
	h, err := lookup(kind)
	if err != nil {
		return Result{}, err
	}
	m.Reason = strings.TrimSpace(m.Reason)
	if m.Reason == "" {
		return Result{}, apperr.Validation("a reason is required to delete a record", map[string]any{"reason": "required"})
	}

	var res Result
	err = db.Transaction(func(tx *gorm.DB) error {
		r, err := h.archive(tx, id, m, time.Now())
		if err != nil {
			return err
		}
		res = r
		res.Kind = kind
		details := fmt.Sprintf("%s %s archived: %s", h.resource(), res.Label, m.Reason)
		if res.Children > 0 {
			details += fmt.Sprintf(" (%d related records archived)", res.Children)
		}
		return database.RecordAudit(tx, m.Actor, h.resource()+".archive", details)
	})
	return res, err
}

// Restore puts an archived record back under its original id.
func Restore(db *gorm.DB, kind Kind, archivedID uint, actor database.Actor, rules Rules) (Result, error) {
	h, err := lookup(kind)
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = db.Transaction(func(tx *gorm.DB) error {
		r, err := h.restore(tx, archivedID, rules)
		if err != nil {
			return err
		}
		res = r
		res.Kind = kind
		details := fmt.Sprintf("%s %s restored", h.resource(), res.Label)
		if res.Children > 0 {
			details += fmt.Sprintf(" (%d related records restored)", res.Children)
		}
		return database.RecordAudit(tx, actor, h.resource()+".restore", details)
	})
	return res, err
}

// Purge removes an archived record for good, with its cascaded children.
func Purge(db *gorm.DB, kind Kind, archivedID uint, actor database.Actor) (Result, error) {
	h, err := lookup(kind)
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = db.Transaction(func(tx *gorm.DB) error {
		r, err := h.purge(tx, archivedID)
		if err != nil {
			return err
		}
		res = r
		res.Kind = kind
		return database.RecordAudit(tx, actor, h.resource()+".purge",
			fmt.Sprintf("%s %s permanently deleted", h.resource(), res.Label))
	})
	return res, err
}

// List returns archived records of a kind, most recently deleted first.
func List(db *gorm.DB, kind Kind, q ListQuery) (any, int64, error) {
	h, err := lookup(kind)
	if err != nil {
		return nil, 0, err
	}
	q.Page = q.Page.Normalize()
	return h.list(db, q)
}

func lookup(kind Kind) (handler, error) {
	h, ok := registry[kind]
	if !ok {
		return nil, apperr.InvalidInput(fmt.Sprintf("unknown archive kind %q", kind))
	}
	return h, nil
}

// first loads one row, turning a miss into a NOT_FOUND app error.
func first(tx *gorm.DB, dest any, id uint, resource string) error {
	err := tx.First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource)
	}
	return err
}

func exists(tx *gorm.DB, model any, id uint) (bool, error) {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ensureFree refuses a restore when the original id is taken again.
func ensureFree(tx *gorm.DB, model any, id uint, resource string) error {
	taken, err := exists(tx, model, id)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict(fmt.Sprintf("an active %s with id %d already exists", resource, id))
	}
	return nil
}

func listArchived[T any](db *gorm.DB, q ListQuery, columns ...string) ([]T, int64, error) {
	query := db.Model(new(T)).
		Scopes(database.Search(q.Search, append(columns, "reason")...)).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := []T{}
	err := query.Scopes(database.Paginate(q.Page)).
		Order("deleted_at DESC").
		Order("id DESC").
		Find(&items).Error
	return items, total, err
}

func newInfo(m Meta, at time.Time) models.ArchiveInfo {
	ai := models.ArchiveInfo{
		Reason:        m.Reason,
		DeletedByName: m.Actor.Username,
		DeletedAt:     at,
	}
	if m.Actor.UserID != 0 {
		uid := m.Actor.UserID
		ai.DeletedBy = &uid
	}
	return ai
}

var archivedModels = map[Kind]any{
	Clients:  &models.ArchivedClient{},
	Bookings: &models.ArchivedBooking{},
	Payments: &models.ArchivedPayment{},
	Expenses: &models.ArchivedExpense{},
	Messages: &models.ArchivedMessage{},
}

// Counts reports how many archived rows each kind holds.
func Counts(db *gorm.DB) (map[Kind]int64, error) {
	out := make(map[Kind]int64, len(archivedModels))
	for kind, model := range archivedModels {
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, nil
}
