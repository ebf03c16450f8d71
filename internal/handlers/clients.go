package handlers

import (
	"fmt"
	"strings"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/archive"
	"baby-bliss/internal/database"
	"baby-bliss/internal/middleware"
	"baby-bliss/internal/models"
	"baby-bliss/internal/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type clientRow struct {
	models.Client
	BookingCount int64 `json:"booking_count"`
}

func (h *Handler) ListClients(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.Client{}).
		Scopes(database.Search(c.Query("search"), "full_name", "email", "phone")).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Error(c, err)
		return
	}

	clients := []models.Client{}
	order := sortClause(c, []string{"full_name", "email", "created_at"}, "created_at")
	if err := q.Scopes(database.Paginate(page)).Order(order).Order("id DESC").Find(&clients).Error; err != nil {
		response.Error(c, err)
		return
	}

	rows := make([]clientRow, len(clients))
	ids := make([]uint, len(clients))
	for i, cl := range clients {
		rows[i].Client = cl
		ids[i] = cl.ID
	}
	if len(ids) > 0 {
		var counts []struct {
			ClientID uint
			N        int64
		}
		if err := h.db.WithContext(c.Request.Context()).Model(&models.Booking{}).
			Select("client_id, COUNT(*) AS n").
			Where("client_id IN ?", ids).
			Group("client_id").
			Scan(&counts).Error; err != nil {
			response.Error(c, err)
			return
		}
		byClient := make(map[uint]int64, len(counts))
		for _, cnt := range counts {
			byClient[cnt.ClientID] = cnt.N
		}
		for i := range rows {
			rows[i].BookingCount = byClient[rows[i].ID]
		}
	}

	response.Paged(c, rows, page, total)
}

func (h *Handler) GetClient(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var client models.Client
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Bookings", func(tx *gorm.DB) *gorm.DB { return tx.Order("event_date DESC") }).
		First(&client, id).Error; err != nil {
		response.Error(c, notFound(err, "client"))
		return
	}
	response.OK(c, client)
}

type clientRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=150"`
	Email    string `json:"email" binding:"omitempty,email,max=150"`
	Phone    string `json:"phone" binding:"max=40"`
	Address  string `json:"address" binding:"max=255"`
	Notes    string `json:"notes" binding:"max=2000"`
}

func (r clientRequest) data() models.ClientData {
	return models.ClientData{
		FullName: strings.TrimSpace(r.FullName),
		Email:    strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:    strings.TrimSpace(r.Phone),
		Address:  strings.TrimSpace(r.Address),
		Notes:    strings.TrimSpace(r.Notes),
	}
}

// ensureUniqueEmail rejects an email already used by another live client.
func ensureUniqueEmail(tx *gorm.DB, email string, exceptID uint) error {
	if email == "" {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Client{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, exceptID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict(fmt.Sprintf("a client with email %s already exists", email))
	}
	return nil
}

func (h *Handler) CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}

	client := models.Client{ClientData: req.data()}
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueEmail(tx, client.Email, 0); err != nil {
			return err
		}
		if err := tx.Create(&client).Error; err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "client.create", "created client "+client.FullName)
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c.Request.Context())
	response.Created(c, "client created", client)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}

	var client models.Client
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&client, id).Error; err != nil {
			return notFound(err, "client")
		}
		data := req.data()
		if err := ensureUniqueEmail(tx, data.Email, client.ID); err != nil {
			return err
		}
		client.ClientData = data
		if err := tx.Save(&client).Error; err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "client.update", "updated client "+client.FullName)
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "client updated", client)
}

func (h *Handler) DeleteClient(c *gin.Context) {
	h.archiveRecord(c, archive.Clients)
}
