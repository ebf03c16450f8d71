package archive_test

import (
	"net/http"
	"testing"
	"time"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/archive"
	"baby-bliss/internal/database"
	"baby-bliss/internal/models"
	"baby-bliss/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var admin = database.Actor{UserID: 1, Username: "admin", IP: "127.0.0.1"}

var rules = archive.Rules{MaxPerDay: 5}

func meta(reason string) archive.Meta {
	return archive.Meta{Reason: reason, Actor: admin}
}

func seedClient(t *testing.T, db *gorm.DB, name, email string) models.Client {
	t.Helper()
	c := models.Client{ClientData: models.ClientData{FullName: name, Email: email}}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedBooking(t *testing.T, db *gorm.DB, clientID *uint, ref string) models.Booking {
	t.Helper()
	b := models.Booking{BookingData: models.BookingData{
		Reference:     ref,
		ClientID:      clientID,
		ClientName:    "Maria Santos",
		ClientEmail:   "maria@example.com",
		EventDate:     time.Now().AddDate(0, 1, 0).UTC().Truncate(24 * time.Hour),
		Venue:         "Garden Hall",
		Package:       models.PackagePremium,
		TotalAmount:   10000,
		Status:        models.BookingConfirmed,
		PaymentStatus: models.PaymentUnpaid,
		Source:        models.SourceAdmin,
	}}
	require.NoError(t, db.Create(&b).Error)
	return b
}

func seedPayment(t *testing.T, db *gorm.DB, bookingID uint, amount float64) models.Payment {
	t.Helper()
	p := models.Payment{PaymentData: models.PaymentData{
		BookingID: bookingID,
		Amount:    amount,
		Method:    models.MethodCash,
		Status:    models.PaymentRecordCompleted,
	}}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, database.SyncPaymentStatus(db, bookingID))
	return p
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, apperr.AsAppError(err).HTTPStatus, err.Error())
}

func TestParseKind(t *testing.T) {
	k, err := archive.ParseKind(" Bookings ")
	require.NoError(t, err)
	assert.Equal(t, archive.Bookings, k)

	_, err = archive.ParseKind("users")
	requireStatus(t, err, http.StatusBadRequest)
	assert.Len(t, archive.Kinds(), 5)
}

func TestArchiveRequiresReason(t *testing.T) {
	db := testutil.NewDB(t)
	c := seedClient(t, db, "Ana", "ana@example.com")

	_, err := archive.Archive(db, archive.Clients, c.ID, meta("   "))
	requireStatus(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, int64(1), count(t, db, &models.Client{}))
}

func TestArchiveMissingRecord(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := archive.Archive(db, archive.Expenses, 42, meta("typo"))
	requireStatus(t, err, http.StatusNotFound)
}

func TestArchiveAndRestoreClient(t *testing.T) {
	db := testutil.NewDB(t)
	c := seedClient(t, db, "Ana Reyes", "ana@example.com")

	res, err := archive.Archive(db, archive.Clients, c.ID, meta("duplicate entry"))
	require.NoError(t, err)
	assert.Equal(t, c.ID, res.OriginalID)
	assert.Equal(t, int64(0), count(t, db, &models.Client{}))

	var row models.ArchivedClient
	require.NoError(t, db.First(&row, res.ArchivedID).Error)
	assert.Equal(t, "Ana Reyes", row.FullName)
	assert.Equal(t, "duplicate entry", row.Reason)
	assert.Equal(t, "admin", row.DeletedByName)
	require.NotNil(t, row.DeletedBy)
	assert.Equal(t, uint(1), *row.DeletedBy)

	restored, err := archive.Restore(db, archive.Clients, res.ArchivedID, admin, rules)
	require.NoError(t, err)
	assert.Equal(t, c.ID, restored.OriginalID)

	var back models.Client
	require.NoError(t, db.First(&back, c.ID).Error)
	assert.Equal(t, "ana@example.com", back.Email)
	assert.WithinDuration(t, c.CreatedAt, back.CreatedAt, time.Second)
	assert.Equal(t, int64(0), count(t, db, &models.ArchivedClient{}))

	var logs []models.AuditLog
	require.NoError(t, db.Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, "client.archive", logs[0].Activity)
	assert.Contains(t, logs[0].Details, "duplicate entry")
	assert.Equal(t, "client.restore", logs[1].Activity)
	assert.Equal(t, "127.0.0.1", logs[1].IPAddress)
}

func TestClientWithLiveBookingsCannotBeArchived(t *testing.T) {
	db := testutil.NewDB(t)
	c := seedClient(t, db, "Maria", "maria@example.com")
	seedBooking(t, db, &c.ID, "BB-AAAA0001")

	_, err := archive.Archive(db, archive.Clients, c.ID, meta("cleanup"))
	requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, int64(1), count(t, db, &models.Client{}))
	assert.Equal(t, int64(0), count(t, db, &models.AuditLog{}))
}

func TestRestoreClientWithDuplicateEmail(t *testing.T) {
	db := testutil.NewDB(t)
	c := seedClient(t, db, "Ana", "ana@example.com")
	res, err := archive.Archive(db, archive.Clients, c.ID, meta("merge"))
	require.NoError(t, err)

	seedClient(t, db, "Ana R.", "ANA@example.com")

	_, err = archive.Restore(db, archive.Clients, res.ArchivedID, admin, rules)
	requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, int64(1), count(t, db, &models.ArchivedClient{}))
}

func TestArchiveBookingCascadesPayments(t *testing.T) {
	db := testutil.NewDB(t)
	b := seedBooking(t, db, nil, "BB-CASC0001")
	p1 := seedPayment(t, db, b.ID, 4000)
	p2 := seedPayment(t, db, b.ID, 6000)

	res, err := archive.Archive(db, archive.Bookings, b.ID, meta("client cancelled"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Children)
	assert.Equal(t, "BB-CASC0001", res.Label)

	assert.Equal(t, int64(0), count(t, db, &models.Booking{}))
	assert.Equal(t, int64(0), count(t, db, &models.Payment{}))
	assert.Equal(t, int64(1), count(t, db, &models.ArchivedBooking{}))

	var children []models.ArchivedPayment
	require.NoError(t, db.Order("original_id").Find(&children).Error)
	require.Len(t, children, 2)
	for _, ch := range children {
		assert.Equal(t, "booking", ch.ParentKind)
		require.NotNil(t, ch.ParentID)
		assert.Equal(t, b.ID, *ch.ParentID)
	}

	_, err = archive.Restore(db, archive.Payments, children[0].ID, admin, rules)
	requireStatus(t, err, http.StatusConflict)

	restored, err := archive.Restore(db, archive.Bookings, res.ArchivedID, admin, rules)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Children)

	var back models.Booking
	require.NoError(t, db.Preload("Payments").First(&back, b.ID).Error)
	assert.Equal(t, models.PaymentPaid, back.PaymentStatus)
	require.Len(t, back.Payments, 2)
	ids := []uint{back.Payments[0].ID, back.Payments[1].ID}
	assert.ElementsMatch(t, []uint{p1.ID, p2.ID}, ids)
	assert.Equal(t, int64(0), count(t, db, &models.ArchivedPayment{}))
}

func TestRestoreBookingNeedsLiveClient(t *testing.T) {
	db := testutil.NewDB(t)
	c := seedClient(t, db, "Maria", "maria@example.com")
	b := seedBooking(t, db, &c.ID, "BB-ORDR0001")

	bRes, err := archive.Archive(db, archive.Bookings, b.ID, meta("cancelled"))
	require.NoError(t, err)
	cRes, err := archive.Archive(db, archive.Clients, c.ID, meta("left"))
	require.NoError(t, err)

	_, err = archive.Restore(db, archive.Bookings, bRes.ArchivedID, admin, rules)
	requireStatus(t, err, http.StatusConflict)

	_, err = archive.Restore(db, archive.Clients, cRes.ArchivedID, admin, rules)
	require.NoError(t, err)
	_, err = archive.Restore(db, archive.Bookings, bRes.ArchivedID, admin, rules)
	require.NoError(t, err)
}

func TestRestoreBookingRechecksCapacity(t *testing.T) {
	db := testutil.NewDB(t)
	b := seedBooking(t, db, nil, "BB-FULL0001")
	res, err := archive.Archive(db, archive.Bookings, b.ID, meta("moved"))
	require.NoError(t, err)

	seedBooking(t, db, nil, "BB-FULL0002")

	_, err = archive.Restore(db, archive.Bookings, res.ArchivedID, admin, archive.Rules{MaxPerDay: 1})
	requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, int64(1), count(t, db, &models.Booking{}))
	assert.Equal(t, int64(1), count(t, db, &models.ArchivedBooking{}))
}

func TestRestoreCancelledBookingIgnoresCapacity(t *testing.T) {
	db := testutil.NewDB(t)
	b := seedBooking(t, db, nil, "BB-CANC0001")
	require.NoError(t, db.Model(&b).Update("status", models.BookingCancelled).Error)
	res, err := archive.Archive(db, archive.Bookings, b.ID, meta("old"))
	require.NoError(t, err)

	seedBooking(t, db, nil, "BB-CANC0002")

	_, err = archive.Restore(db, archive.Bookings, res.ArchivedID, admin, archive.Rules{MaxPerDay: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count(t, db, &models.Booking{}))
}

func TestArchivePaymentUpdatesBookingStatus(t *testing.T) {
	db := testutil.NewDB(t)
	b := seedBooking(t, db, nil, "BB-PAY00001")
	seedPayment(t, db, b.ID, 4000)
	p := seedPayment(t, db, b.ID, 6000)

	status := func() models.PaymentStatus {
		var got models.Booking
		require.NoError(t, db.First(&got, b.ID).Error)
		return got.PaymentStatus
	}
	require.Equal(t, models.PaymentPaid, status())

	res, err := archive.Archive(db, archive.Payments, p.ID, meta("bounced"))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartial, status())

	_, err = archive.Restore(db, archive.Payments, res.ArchivedID, admin, rules)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, status())
}

func TestRestoreConflictsWhenIDTaken(t *testing.T) {
	db := testutil.NewDB(t)
	e := models.Expense{ExpenseData: models.ExpenseData{
		Category: models.ExpenseSupplies, Description: "Balloons", Amount: 800, ExpenseDate: time.Now(),
	}}
	require.NoError(t, db.Create(&e).Error)

	res, err := archive.Archive(db, archive.Expenses, e.ID, meta("wrong amount"))
	require.NoError(t, err)

	again := models.Expense{ID: e.ID, ExpenseData: e.ExpenseData}
	require.NoError(t, db.Create(&again).Error)

	_, err = archive.Restore(db, archive.Expenses, res.ArchivedID, admin, rules)
	requireStatus(t, err, http.StatusConflict)
}

func TestPurgeBookingRemovesChildren(t *testing.T) {
	db := testutil.NewDB(t)
	b := seedBooking(t, db, nil, "BB-PURG0001")
	seedPayment(t, db, b.ID, 1000)

	res, err := archive.Archive(db, archive.Bookings, b.ID, meta("spam"))
	require.NoError(t, err)

	purged, err := archive.Purge(db, archive.Bookings, res.ArchivedID, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, purged.Children)
	assert.Equal(t, int64(0), count(t, db, &models.ArchivedBooking{}))
	assert.Equal(t, int64(0), count(t, db, &models.ArchivedPayment{}))

	var last models.AuditLog
	require.NoError(t, db.Order("id DESC").First(&last).Error)
	assert.Equal(t, "booking.purge", last.Activity)

	_, err = archive.Purge(db, archive.Bookings, res.ArchivedID, admin)
	requireStatus(t, err, http.StatusNotFound)
}

func TestPurgeBookingRemovesSeparatelyArchivedPayments(t *testing.T) {
	db := testutil.NewDB(t)
	b := seedBooking(t, db, nil, "BB-PURG0002")
	p := seedPayment(t, db, b.ID, 1000)
	seedPayment(t, db, b.ID, 2000)

	_, err := archive.Archive(db, archive.Payments, p.ID, meta("duplicate"))
	require.NoError(t, err)
	res, err := archive.Archive(db, archive.Bookings, b.ID, meta("spam"))
	require.NoError(t, err)
	require.Equal(t, int64(2), count(t, db, &models.ArchivedPayment{}))

	purged, err := archive.Purge(db, archive.Bookings, res.ArchivedID, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, purged.Children)
	assert.Equal(t, int64(0), count(t, db, &models.ArchivedPayment{}))
}

func TestListArchived(t *testing.T) {
	db := testutil.NewDB(t)
	for _, subject := range []string{"Party inquiry", "Price question", "Party add-ons"} {
		m := models.Message{MessageData: models.MessageData{
			Name: "Guest", Email: "guest@example.com", Subject: subject, Body: "hello", Status: models.MessageUnread,
		}}
		require.NoError(t, db.Create(&m).Error)
		_, err := archive.Archive(db, archive.Messages, m.ID, meta("handled"))
		require.NoError(t, err)
	}

	items, total, err := archive.List(db, archive.Messages, archive.ListQuery{Page: database.Page{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	rows := items.([]models.ArchivedMessage)
	require.Len(t, rows, 2)
	assert.Equal(t, "Party add-ons", rows[0].Subject)

	items, total, err = archive.List(db, archive.Messages, archive.ListQuery{Search: "party"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items.([]models.ArchivedMessage), 2)
}
