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

// expenseFilter applies the category and date filters shared by the
// list and summary endpoints.
func expenseFilter(c *gin.Context, q *gorm.DB) (*gorm.DB, error) {
	from, to, err := dateRange(c, "date_from", "date_to")
	if err != nil {
		return nil, err
	}
	if cat := c.Query("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}
	if from != nil {
		q = q.Where("expense_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("expense_date < ?", *to)
	}
	return q, nil
}

func (h *Handler) ListExpenses(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	q, err := expenseFilter(c, h.db.WithContext(c.Request.Context()).Model(&models.Expense{}).
		Scopes(database.Search(c.Query("search"), "description", "vendor")))
	if err != nil {
		response.Error(c, err)
		return
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Error(c, err)
		return
	}

	expenses := []models.Expense{}
	order := sortClause(c, []string{"expense_date", "amount", "category", "created_at"}, "expense_date")
	if err := q.Scopes(database.Paginate(page)).Order(order).Order("id DESC").Find(&expenses).Error; err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, expenses, page, total)
}

func (h *Handler) GetExpense(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var e models.Expense
	if err := h.db.WithContext(c.Request.Context()).First(&e, id).Error; err != nil {
		response.Error(c, notFound(err, "expense"))
		return
	}
	response.OK(c, e)
}

type expenseRequest struct {
	Category    string  `json:"category" binding:"required,oneof=supplies venue staff marketing transport utilities other"`
	Description string  `json:"description" binding:"required,max=255"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	ExpenseDate string  `json:"expense_date" binding:"required,date"`
	Vendor      string  `json:"vendor" binding:"max=150"`
	Notes       string  `json:"notes" binding:"max=2000"`
}

func (h *Handler) CreateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}
	day, _ := parseDate(req.ExpenseDate)

	expense := models.Expense{ExpenseData: models.ExpenseData{
		Category:    models.ExpenseCategory(req.Category),
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		ExpenseDate: day,
		Vendor:      strings.TrimSpace(req.Vendor),
		Notes:       strings.TrimSpace(req.Notes),
	}}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "expense.create",
			fmt.Sprintf("recorded %s expense %q (%.2f)", expense.Category, expense.Description, expense.Amount))
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidateDashboard(c.Request.Context())
	response.Created(c, "expense recorded", expense)
}

type updateExpenseRequest struct {
	Category    *string  `json:"category" binding:"omitempty,oneof=supplies venue staff marketing transport utilities other"`
	Description *string  `json:"description" binding:"omitempty,min=1,max=255"`
	Amount      *float64 `json:"amount" binding:"omitempty,gt=0"`
	ExpenseDate *string  `json:"expense_date" binding:"omitempty,date"`
	Vendor      *string  `json:"vendor" binding:"omitempty,max=150"`
	Notes       *string  `json:"notes" binding:"omitempty,max=2000"`
}

func (h *Handler) UpdateExpense(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req updateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}

	var expense models.Expense
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&expense, id).Error; err != nil {
			return notFound(err, "expense")
		}
		if req.Category != nil {
			expense.Category = models.ExpenseCategory(*req.Category)
		}
		if v := trimmed(req.Description); v != nil {
			expense.Description = *v
		}
		if req.Amount != nil {
			expense.Amount = *req.Amount
		}
		if req.ExpenseDate != nil {
			expense.ExpenseDate, _ = parseDate(*req.ExpenseDate)
		}
		if v := trimmed(req.Vendor); v != nil {
			expense.Vendor = *v
		}
		if v := trimmed(req.Notes); v != nil {
			expense.Notes = *v
		}

		if err := tx.Save(&expense).Error; err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "expense.update",
			fmt.Sprintf("updated expense #%d", expense.ID))
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidateDashboard(c.Request.Context())
	response.Message(c, "expense updated", expense)
}

func (h *Handler) DeleteExpense(c *gin.Context) {
	h.archiveRecord(c, archive.Expenses)
}

type categoryTotal struct {
	Category models.ExpenseCategory `json:"category"`
	Total    float64                `json:"total"`
	Count    int64                  `json:"count"`
}

type expenseSummary struct {
	Categories []categoryTotal `json:"categories"`
	Total      float64         `json:"total"`
	Count      int64           `json:"count"`
}

// ExpenseSummary totals expenses per category for the optional date range.
func (h *Handler) ExpenseSummary(c *gin.Context) {
	q, err := expenseFilter(c, h.db.WithContext(c.Request.Context()).Model(&models.Expense{}))
	if err != nil {
		response.Error(c, err)
		return
	}

	rows := []categoryTotal{}
	if err := q.Select("category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("category").
		Order("total DESC").
		Scan(&rows).Error; err != nil {
		response.Error(c, apperr.Internal("failed to summarise expenses", err))
		return
	}

	summary := expenseSummary{Categories: rows}
	for _, r := range rows {
		summary.Total += r.Total
		summary.Count += r.Count
	}
	response.OK(c, summary)
}
