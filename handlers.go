package main

import (
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/Ayman-Hesham/Fintrack/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

var accountNumRE = regexp.MustCompile(`^\d{8,12}$`)

func setupRoutes(r *gin.Engine) {
	r.GET("/healthz", healthHandler)
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.POST("/accounts", linkAccountHandler)
	authGroup.GET("/accounts", listAccountsHandler)
	authGroup.GET("/categories", listCategoriesHandler)
	authGroup.POST("/categories", createCategoryHandler)
	authGroup.DELETE("/categories/:id", deleteCategoryHandler)
	authGroup.GET("/budgets", listBudgetsHandler)
	authGroup.POST("/budgets", createBudgetHandler)
	authGroup.PUT("/budgets/:id", updateBudgetHandler)
	authGroup.DELETE("/budgets/:id", deleteBudgetHandler)
	authGroup.POST("/transactions", createTransactionHandler)
	authGroup.GET("/transactions", listTransactionsHandler)
	authGroup.GET("/dashboard", dashboardHandler)
	authGroup.POST("/jobs", createJobHandler)
	authGroup.GET("/jobs/:jobId", getJobHandler)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		email, _ := claims["email"].(string)
		c.Set("email", email)
		c.Next()
	}
}

// getUserFromContext fetches the currently authenticated user using the email set by jwtAuthMiddleware
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	emailVal, _ := c.Get("email")
	if emailVal == nil {
		return nil, false
	}
	email := emailVal.(string)
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func registerHandler(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterUser(req.Name, req.Email, req.Password); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": user.Email,
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString})
}

func meHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// linkAccountHandler connects a bank account and seeds it with a random
// starting balance, the way a real aggregator would report an opening state.
func linkAccountHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		BankName    string `json:"bankName" binding:"required,min=3,max=15"`
		NickName    string `json:"nickName" binding:"required,min=4,max=20"`
		AccountType string `json:"accountType" binding:"required,oneof=CHECKING SAVINGS CREDIT"`
		AccountNum  string `json:"accountNum" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !accountNumRE.MatchString(req.AccountNum) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account number must be 8-12 digits"})
		return
	}
	account := models.BankAccount{
		UserID:      user.ID,
		BankName:    req.BankName,
		NickName:    req.NickName,
		AccountType: req.AccountType,
		AccountNum:  req.AccountNum,
		Balance:     randomBalance(5000, 10000),
		LastSync:    time.Now(),
	}
	if err := db.Create(&account).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to link account"})
		return
	}
	c.JSON(http.StatusCreated, account)
}

// randomBalance picks a 2-decimal amount in [min, max).
func randomBalance(min, max float64) decimal.Decimal {
	v := min + (max-min)*rand.Float64()
	return decimal.NewFromFloat(v).Round(2)
}

func listAccountsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var accounts []models.BankAccount
	if err := db.Where("user_id = ?", user.ID).Order("id").Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func listCategoriesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	categories, err := categoriesForUser(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func createCategoryHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Name  string `json:"name" binding:"required,min=3,max=30"`
		Icon  string `json:"icon"`
		Color string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var cnt int64
	db.Model(&models.Category{}).
		Where("name = ? AND (user_id = ? OR user_id IS NULL)", req.Name, user.ID).
		Count(&cnt)
	if cnt > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category already exists with name: " + req.Name})
		return
	}
	uid := user.ID
	category := models.Category{Name: req.Name, Icon: req.Icon, Color: req.Color, Custom: true, UserID: &uid}
	if err := db.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func deleteCategoryHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var category models.Category
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	var inUse int64
	db.Model(&models.Transaction{}).Where("category_id = ?", category.ID).Count(&inUse)
	if inUse > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category has transactions and cannot be deleted"})
		return
	}
	if err := db.Delete(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

func budgetResponse(b models.Budget, spent decimal.Decimal) gin.H {
	return gin.H{
		"id":           b.ID,
		"categoryId":   b.CategoryID,
		"categoryName": b.Category.Name,
		"amount":       b.Amount,
		"period":       b.Period,
		"spentAmount":  spent,
	}
}

func listBudgetsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	budgets, err := budgetsWithSpend(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(budgets))
	for _, bs := range budgets {
		out = append(out, budgetResponse(bs.Budget, bs.Spent))
	}
	c.JSON(http.StatusOK, out)
}

func createBudgetHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		CategoryID uint            `json:"categoryId" binding:"required"`
		Amount     decimal.Decimal `json:"amount"`
		Period     string          `json:"period" binding:"required,oneof=WEEKLY MONTHLY YEARLY"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	var category models.Category
	if err := db.Where("id = ? AND (user_id = ? OR user_id IS NULL)", req.CategoryID, user.ID).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	budget := models.Budget{UserID: user.ID, CategoryID: category.ID, Amount: req.Amount, Period: req.Period}
	if err := db.Create(&budget).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "budget already exists for this category"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	budget.Category = category
	spent, err := spendByCategory(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusCreated, budgetResponse(budget, spent[category.ID]))
}

func updateBudgetHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var budget models.Budget
	if err := db.Preload("Category").Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&budget).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "budget not found"})
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Period string          `json:"period" binding:"required,oneof=WEEKLY MONTHLY YEARLY"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	budget.Amount = req.Amount
	budget.Period = req.Period
	if err := db.Save(&budget).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	spent, err := spendByCategory(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, budgetResponse(budget, spent[budget.CategoryID]))
}

func deleteBudgetHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	res := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).Delete(&models.Budget{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "budget not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "budget deleted"})
}

// createTransactionHandler records a manual transaction. The balance change
// rides in the same locked commit the sync engine uses.
func createTransactionHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		BankAccountID uint            `json:"bankAccountId" binding:"required"`
		CategoryID    uint            `json:"categoryId" binding:"required"`
		Type          string          `json:"type" binding:"required,oneof=INCOME EXPENSE"`
		Amount        decimal.Decimal `json:"amount"`
		Description   string          `json:"description"`
		Date          string          `json:"date"` // optional YYYY-MM-DD
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	var account models.BankAccount
	if err := db.Where("id = ? AND user_id = ?", req.BankAccountID, user.ID).First(&account).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "bank account not found"})
		return
	}
	var category models.Category
	if err := db.Where("id = ? AND (user_id = ? OR user_id IS NULL)", req.CategoryID, user.ID).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}
	description := req.Description
	if description == "" {
		description = "Transaction"
	}
	txns := []models.Transaction{{
		BankAccountID: account.ID,
		CategoryID:    category.ID,
		Type:          req.Type,
		Amount:        req.Amount,
		Description:   description,
		Manual:        true,
		Date:          date,
	}}
	net := req.Amount
	if req.Type == models.TransactionExpense {
		net = net.Neg()
	}
	if err := applyToAccount(account.ID, txns, net, nil); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, txns[0])
}

func listTransactionsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	q := db.Model(&models.Transaction{}).Preload("Category").
		Joins("JOIN bank_accounts ON bank_accounts.id = transactions.bank_account_id").
		Where("bank_accounts.user_id = ?", user.ID)
	if t := c.Query("type"); t != "" {
		q = q.Where("transactions.type = ?", t)
	}
	if cid := c.Query("categoryId"); cid != "" {
		q = q.Where("transactions.category_id = ?", cid)
	}
	if from := c.Query("from"); from != "" {
		if parsed, err := time.Parse("2006-01-02", from); err == nil {
			q = q.Where("transactions.date >= ?", parsed)
		}
	}
	if to := c.Query("to"); to != "" {
		if parsed, err := time.Parse("2006-01-02", to); err == nil {
			q = q.Where("transactions.date <= ?", parsed)
		}
	}
	if s := c.Query("q"); s != "" {
		q = q.Where("transactions.description ILIKE ?", "%"+s+"%")
	}
	limit := 50
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	var txns []models.Transaction
	if err := q.Order("transactions.date desc, transactions.id desc").
		Limit(limit).Offset(offset).Find(&txns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, txns)
}

// createJobHandler accepts a bank-sync job. Submission only guarantees the
// row exists; execution happens on the worker pool, so the response is 202
// regardless of how the job later ends.
func createJobHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key header is required"})
		return
	}
	var req struct {
		BankAccountID uint `json:"bankAccountId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bankAccountId is required"})
		return
	}
	jobID, err := submitSyncJob(idempotencyKey, req.BankAccountID, user.ID)
	if err != nil {
		jobLog.Error().Err(err).Str("idempotency_key", idempotencyKey).Msg("job submission failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit job"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"jobId": jobID, "status": models.JobSubmitted})
}

func getJobHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var job models.SyncJob
	if err := db.Where("id = ? AND user_id = ?", c.Param("jobId"), user.ID).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}
